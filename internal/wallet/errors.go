package wallet

import "errors"

var (
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrInvalidAmount       = errors.New("wallet amount must be positive")
	ErrInvalidType         = errors.New("unknown wallet transaction type")
	ErrBalanceChanged      = errors.New("wallet balance changed concurrently")
	ErrBusy                = errors.New("resource busy, please try again later (lock)")
)
