package vault

import (
	"github.com/meterpay/vault-contract/contracts/vault/vaultconst"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
)

// maxAmount returns the upper bound of vault balances and amounts.
func maxAmount() int {
	return std.Atoi(vaultconst.MaxAmountDecimal, 10)
}

// credit returns the balance after a deposit of amount.
func credit(balance, minDeposit, amount int) int {
	if amount <= 0 {
		panic(vaultconst.ErrAmountNotPositive)
	}
	if amount < minDeposit {
		panic(vaultconst.ErrBelowMinimum + ": expected >=" + std.Itoa(minDeposit, 10))
	}
	if balance > maxAmount()-amount {
		panic(vaultconst.ErrOverflow)
	}

	return balance + amount
}

// debit returns the balance after a deduction of amount.
func debit(balance, maxDeduct, amount int) int {
	if amount <= 0 {
		panic(vaultconst.ErrAmountNotPositive)
	}
	if amount > maxDeduct {
		panic(vaultconst.ErrExceedsCap + ": " + std.Itoa(maxDeduct, 10))
	}
	if amount > balance {
		panic(vaultconst.ErrInsufficientBalance)
	}

	return balance - amount
}

// withdrawal returns the balance after amount is withdrawn. Withdrawals are
// not limited by max deduct.
func withdrawal(balance, amount int) int {
	if amount <= 0 {
		panic(vaultconst.ErrAmountNotPositive)
	}
	if amount > balance {
		panic(vaultconst.ErrInsufficientBalance)
	}

	return balance - amount
}

// projectBatch checks every item against the running balance in list order
// and returns the balance after each of them. It doesn't touch storage, so a
// failing item leaves the vault untouched.
func projectBatch(balance, maxDeduct int, items []DeductItem) []int {
	if len(items) == 0 {
		panic(vaultconst.ErrEmptyBatch)
	}

	running := []int{}
	for i := range items {
		balance = debit(balance, maxDeduct, items[i].Amount)
		running = append(running, balance)
	}

	return running
}
