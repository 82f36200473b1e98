package payment

import "errors"

var (
	ErrLoginRequired     = errors.New("login required")
	ErrAlreadyRegistered = errors.New("already registered for event")
	ErrEventNotFound     = errors.New("event not found")
	ErrCheckoutFailed    = errors.New("payment failed to initialize")
)
