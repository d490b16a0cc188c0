package domain

import "errors"

var (
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrConcurrencyExhausted = errors.New("inventory adjust retries exhausted")
	ErrInventoryNotFound    = errors.New("inventory record not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrEventNotFound        = errors.New("webhook event not found")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
)
