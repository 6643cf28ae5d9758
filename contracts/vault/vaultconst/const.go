// Package vaultconst contains constants shared by the Vault contract and its
// off-chain clients.
package vaultconst

// Error kinds. Every failed Vault invocation panics with a message starting
// with one of them, optionally followed by ": " and details.
const (
	ErrNotInitialized         = "vault not initialized"
	ErrAlreadyInitialized     = "vault already initialized"
	ErrUnauthorized           = "unauthorized"
	ErrAmountNotPositive      = "amount must be positive"
	ErrBelowMinimum           = "deposit below minimum"
	ErrExceedsCap             = "amount exceeds max deduct"
	ErrInsufficientBalance    = "insufficient balance"
	ErrEmptyBatch             = "batch must contain at least one item"
	ErrOverflow               = "balance overflow"
	ErrInvalidArgument        = "invalid argument"
	ErrExternalTransferFailed = "external transfer failed"
)

// MaxAmountDecimal is the decimal form of the largest balance or amount the
// vault accepts (2^127 - 1). It doubles as the "unbounded" max deduct value.
const MaxAmountDecimal = "170141183460469231731687303715884105727"
