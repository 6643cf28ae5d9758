/*
Package reconcile compares the balance recorded by the Vault contract with the
amount of tokens the contract actually holds.

The vault ledger is only as good as the token it custodies: a token that
reports a successful transfer without moving funds makes the recorded balance
exceed the custody. Checker detects such a deficit. Custody above the recorded
balance is the vault revenue and is expected.
*/
package reconcile

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

// VaultReader provides the recorded state of the vault. It's implemented by
// [vault.ContractReader].
type VaultReader interface {
	Balance() (*big.Int, error)
	Token() (util.Uint160, error)
}

// BalanceReader provides token balances. It's implemented by
// [nep17.TokenReader].
type BalanceReader interface {
	BalanceOf(account util.Uint160) (*big.Int, error)
}

// Report is a result of a single check.
type Report struct {
	Vault    util.Uint160
	Token    util.Uint160
	Recorded *big.Int
	Custody  *big.Int
}

// Revenue returns custodied tokens not backing the recorded balance.
func (r Report) Revenue() *big.Int {
	d := new(big.Int).Sub(r.Custody, r.Recorded)
	if d.Sign() < 0 {
		return new(big.Int)
	}
	return d
}

// Deficit returns the part of the recorded balance not backed by custody.
func (r Report) Deficit() *big.Int {
	d := new(big.Int).Sub(r.Recorded, r.Custody)
	if d.Sign() < 0 {
		return new(big.Int)
	}
	return d
}

// Diverged checks whether the recorded balance exceeds custody.
func (r Report) Diverged() bool {
	return r.Recorded.Cmp(r.Custody) > 0
}

// Prm groups parameters of the Checker.
type Prm struct {
	// Writes check results into the log.
	Logger *zap.Logger

	// Vault contract address.
	Vault util.Uint160

	// Reader of the vault contract.
	Reader VaultReader

	// Invoker used to read token balances, required if Tokens is not set.
	Invoker nep17.Invoker

	// Optional constructor of token readers, nep17.NewReader over Invoker by
	// default.
	Tokens func(token util.Uint160) BalanceReader

	// Whether to export results to the package metrics.
	Metrics bool
}

// Checker checks that the vault custody covers its recorded balance.
type Checker struct {
	prm Prm
}

// New creates a Checker.
func New(prm Prm) (*Checker, error) {
	if prm.Reader == nil {
		return nil, errors.New("missing vault reader")
	}
	if prm.Tokens == nil {
		if prm.Invoker == nil {
			return nil, errors.New("missing invoker")
		}
		inv := prm.Invoker
		prm.Tokens = func(token util.Uint160) BalanceReader {
			return nep17.NewReader(inv, token)
		}
	}
	if prm.Logger == nil {
		prm.Logger = zap.NewNop()
	}

	return &Checker{prm: prm}, nil
}

// Check reads the recorded balance and the custody of the vault. Divergence
// is not an error, it's reported by Report.Diverged.
func (c *Checker) Check() (Report, error) {
	rep, err := c.check()
	if err != nil {
		if c.prm.Metrics {
			checkErrors.Inc()
		}
		c.prm.Logger.Error("vault reconciliation failed",
			zap.Stringer("vault", c.prm.Vault), zap.Error(err))
		return rep, err
	}

	if c.prm.Metrics {
		exportReport(rep)
	}

	if rep.Diverged() {
		c.prm.Logger.Warn("vault custody does not cover recorded balance",
			zap.Stringer("vault", rep.Vault),
			zap.Stringer("token", rep.Token),
			zap.Stringer("recorded", rep.Recorded),
			zap.Stringer("custody", rep.Custody),
			zap.Stringer("deficit", rep.Deficit()))
	} else {
		c.prm.Logger.Info("vault is consistent",
			zap.Stringer("vault", rep.Vault),
			zap.Stringer("recorded", rep.Recorded),
			zap.Stringer("revenue", rep.Revenue()))
	}

	return rep, nil
}

func (c *Checker) check() (Report, error) {
	rep := Report{Vault: c.prm.Vault}

	var err error
	rep.Token, err = c.prm.Reader.Token()
	if err != nil {
		return rep, fmt.Errorf("read vault token: %w", err)
	}

	rep.Recorded, err = c.prm.Reader.Balance()
	if err != nil {
		return rep, fmt.Errorf("read vault balance: %w", err)
	}

	rep.Custody, err = c.prm.Tokens(rep.Token).BalanceOf(c.prm.Vault)
	if err != nil {
		return rep, fmt.Errorf("read custody of token %s: %w", rep.Token.StringLE(), err)
	}

	return rep, nil
}
