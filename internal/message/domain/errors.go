package domain

import "errors"

var (
	ErrMessageNotFound   = errors.New("message not found")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrContentRequired   = errors.New("username and content are required")
	ErrContentTooLong    = errors.New("message content too long")
)
