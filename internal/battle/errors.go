package battle

import "errors"

var (
	ErrInvalidType    = errors.New("invalid_battle_type")
	ErrAgentCount     = errors.New("invalid_agent_count")
	ErrDuplicateAgent = errors.New("duplicate_agent")
	ErrUnknownAgent   = errors.New("unknown_agent")
	ErrNotLobby       = errors.New("battle_not_in_lobby")
)
