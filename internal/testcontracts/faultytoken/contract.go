// Package faultytoken is a NEP-17 like token whose transfers can be made to
// fail or to report success without moving funds. It's used in tests only.
package faultytoken

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// Transfer modes.
const (
	ModeNormal = 0
	// ModeFail makes every transfer return false.
	ModeFail = 1
	// ModeLie makes every transfer return true without moving funds.
	ModeLie = 2
	// ModeReenter makes every transfer to a contract call its deduct method
	// charging 1 from the sender before the payment callback.
	ModeReenter = 3
)

const (
	modeKey        = "mode"
	balancePrefix  = "b"
	totalSupplyKey = "supply"
)

func Symbol() string {
	return "FAULTY"
}

func Decimals() int {
	return 0
}

func TotalSupply() int {
	return getInt(storage.GetReadOnlyContext(), totalSupplyKey)
}

func BalanceOf(account interop.Hash160) int {
	return getInt(storage.GetReadOnlyContext(), balanceKey(account))
}

func Transfer(from, to interop.Hash160, amount int, data any) bool {
	ctx := storage.GetContext()
	mode := getInt(ctx, modeKey)
	switch mode {
	case ModeFail:
		return false
	case ModeLie:
		return true
	}

	if amount < 0 {
		panic("negative amount")
	}
	if !runtime.CheckWitness(from) {
		return false
	}

	fromBalance := getInt(ctx, balanceKey(from))
	if fromBalance < amount {
		return false
	}
	if !from.Equals(to) {
		storage.Put(ctx, balanceKey(from), fromBalance-amount)
		storage.Put(ctx, balanceKey(to), getInt(ctx, balanceKey(to))+amount)
	}

	if management.GetContract(to) != nil {
		if mode == ModeReenter {
			contract.Call(to, "deduct", contract.All, from, 1, nil)
		}
		contract.Call(to, "onNEP17Payment", contract.All, from, amount, data)
	}
	return true
}

// Mint creates amount of tokens on the account without any checks.
func Mint(to interop.Hash160, amount int) {
	ctx := storage.GetContext()
	storage.Put(ctx, balanceKey(to), getInt(ctx, balanceKey(to))+amount)
	storage.Put(ctx, totalSupplyKey, getInt(ctx, totalSupplyKey)+amount)
}

// SetMode switches transfer behaviour, see Mode* constants.
func SetMode(mode int) {
	storage.Put(storage.GetContext(), modeKey, mode)
}

func balanceKey(account interop.Hash160) []byte {
	return append([]byte(balancePrefix), account...)
}

func getInt(ctx storage.Context, key any) int {
	val := storage.Get(ctx, key)
	if val == nil {
		return 0
	}
	return val.(int)
}
