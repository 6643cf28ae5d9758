package vault

import (
	"github.com/meterpay/vault-contract/common"
	"github.com/meterpay/vault-contract/contracts/vault/vaultconst"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
)

// pullIntoCustody moves amount of token from the depositor to the vault. It
// must succeed before the ledger is credited.
func pullIntoCustody(token, from interop.Hash160, amount int) {
	if !common.TransferNEP17(token, from, runtime.GetExecutingScriptHash(), amount, nil) {
		panic(vaultconst.ErrExternalTransferFailed + ": deposit was not received")
	}
}

// payOut moves amount of token from the vault to the receiver. It is called
// after the ledger is debited; a failed transfer faults the whole invocation.
func payOut(token, to interop.Hash160, amount int) {
	if !common.TransferNEP17(token, runtime.GetExecutingScriptHash(), to, amount, nil) {
		panic(vaultconst.ErrExternalTransferFailed + ": payout was not sent")
	}
}

// custody returns the amount of token held by the vault.
func custody(token interop.Hash160) int {
	return common.BalanceOfNEP17(token, runtime.GetExecutingScriptHash())
}

// undistributed returns custodied tokens not backing the recorded balance.
func undistributed(r Record) int {
	held := custody(r.Token)
	if held <= r.Balance {
		return 0
	}
	return held - r.Balance
}
