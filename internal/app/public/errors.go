package public

import "errors"

var (
	ErrInvalidRequest    = errors.New("invalid_request")
	ErrAgentNotFound     = errors.New("agent_not_found")
	ErrReceiptNotFound   = errors.New("receipt_not_found")
	ErrBattleNotFound    = errors.New("battle_not_found")
	ErrBettorNotFound    = errors.New("bettor_not_found")
	ErrEscrowUnavailable = errors.New("escrow_unavailable")
)
