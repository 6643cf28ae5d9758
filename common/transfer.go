package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/util"
)

// TransferNEP17 invokes `transfer` method of the NEP-17 token and returns its
// result.
func TransferNEP17(token, from, to interop.Hash160, amount int, data interface{}) bool {
	return contract.Call(token, "transfer", contract.All, from, to, amount, data).(bool)
}

// BalanceOfNEP17 returns NEP-17 token balance of the account.
func BalanceOfNEP17(token, account interop.Hash160) int {
	return contract.Call(token, "balanceOf", contract.ReadStates, account).(int)
}

// AbortWithMessage calls `runtime.Log` with passed message
// and calls `ABORT` opcode.
func AbortWithMessage(msg string) {
	runtime.Log(msg)
	util.Abort()
}
