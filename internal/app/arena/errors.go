package arena

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid_request")
	ErrInvalidRating    = errors.New("invalid_rating")
	ErrReceiptNotFound  = errors.New("receipt_not_found")
	ErrBattleNotFound   = errors.New("battle_not_found")
	ErrWebhookDisabled  = errors.New("webhook_disabled")
	ErrInvalidSignature = errors.New("invalid_signature")
)
