package vault

import (
	"math/big"
	"strings"

	"github.com/meterpay/vault-contract/contracts/vault/vaultconst"
)

// Error kinds of the Vault contract, see [FaultKind].
const (
	ErrNotInitialized         = vaultconst.ErrNotInitialized
	ErrAlreadyInitialized     = vaultconst.ErrAlreadyInitialized
	ErrUnauthorized           = vaultconst.ErrUnauthorized
	ErrAmountNotPositive      = vaultconst.ErrAmountNotPositive
	ErrBelowMinimum           = vaultconst.ErrBelowMinimum
	ErrExceedsCap             = vaultconst.ErrExceedsCap
	ErrInsufficientBalance    = vaultconst.ErrInsufficientBalance
	ErrEmptyBatch             = vaultconst.ErrEmptyBatch
	ErrOverflow               = vaultconst.ErrOverflow
	ErrInvalidArgument        = vaultconst.ErrInvalidArgument
	ErrExternalTransferFailed = vaultconst.ErrExternalTransferFailed
)

var errorKinds = []string{
	ErrNotInitialized,
	ErrAlreadyInitialized,
	ErrUnauthorized,
	ErrAmountNotPositive,
	ErrBelowMinimum,
	ErrExceedsCap,
	ErrInsufficientBalance,
	ErrEmptyBatch,
	ErrOverflow,
	ErrInvalidArgument,
	ErrExternalTransferFailed,
}

// MaxAmount returns the largest balance or amount accepted by the vault.
func MaxAmount() *big.Int {
	v, _ := new(big.Int).SetString(vaultconst.MaxAmountDecimal, 10)
	return v
}

// FaultKind returns the error kind of the FAULT exception (or an error
// wrapping it) produced by the Vault contract. False is returned if the
// exception doesn't belong to the contract.
func FaultKind(exception string) (string, bool) {
	for _, kind := range errorKinds {
		if strings.Contains(exception, kind) {
			return kind, true
		}
	}
	return "", false
}

// IsFault checks whether err is caused by the Vault contract failure of the
// given kind.
func IsFault(err error, kind string) bool {
	if err == nil {
		return false
	}
	k, ok := FaultKind(err.Error())
	return ok && k == kind
}
