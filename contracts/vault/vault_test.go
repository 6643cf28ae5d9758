package vault_test

import (
	"math/big"
	"math/rand"
	"path"
	"testing"

	"github.com/meterpay/vault-contract/common"
	"github.com/meterpay/vault-contract/contracts/vault/vaultconst"
	"github.com/meterpay/vault-contract/internal/testcontracts/faultytoken"
	rpcvault "github.com/meterpay/vault-contract/rpc/vault"
	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

const (
	vaultPath       = "."
	faultyTokenPath = "../../internal/testcontracts/faultytoken"
	receiverPath    = "../../internal/testcontracts/nep17recv"
)

type vaultEnv struct {
	e     *neotest.Executor
	hash  util.Uint160
	token util.Uint160
	owner neotest.Signer
	// vault invoker signed by the owner
	vault *neotest.ContractInvoker
}

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

func deployContract(t *testing.T, e *neotest.Executor, ctrPath string) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, ctrPath, path.Join(ctrPath, "config.yml"))
	e.DeployContract(t, c, nil)
	return c.Hash
}

// deployVault deploys the vault contract on behalf of the deployer which is
// then the only account allowed to initialize it.
func deployVault(t *testing.T, e *neotest.Executor, deployer neotest.Signer) util.Uint160 {
	c := *neotest.CompileFile(t, deployer.ScriptHash(), vaultPath, path.Join(vaultPath, "config.yml"))
	c.Hash = state.CreateContractHash(deployer.ScriptHash(), c.NEF.Checksum, c.Manifest.Name)
	e.DeployContractBy(t, deployer, &c, nil)
	return c.Hash
}

// newGASVault deploys uninitialized vault holding GAS. The vault is deployed
// and pre-funded with prefund GAS units by the owner.
func newGASVault(t *testing.T, prefund int64) *vaultEnv {
	e := newExecutor(t)
	owner := e.NewAccount(t)
	h := deployVault(t, e, owner)

	gasHash, err := e.Chain.GetNativeContractScriptHash(nativenames.Gas)
	require.NoError(t, err)

	if prefund > 0 {
		e.NewInvoker(gasHash, owner).Invoke(t, true, "transfer", owner.ScriptHash(), h, prefund, nil)
	}

	return &vaultEnv{
		e:     e,
		hash:  h,
		token: gasHash,
		owner: owner,
		vault: e.NewInvoker(h, owner),
	}
}

// newFaultyVault deploys uninitialized vault holding faulty token. The vault
// is pre-funded with prefund tokens.
func newFaultyVault(t *testing.T, prefund *big.Int) (*vaultEnv, *neotest.ContractInvoker) {
	e := newExecutor(t)
	owner := e.NewAccount(t)
	h := deployVault(t, e, owner)
	ftHash := deployContract(t, e, faultyTokenPath)

	ft := e.CommitteeInvoker(ftHash)
	ft.Invoke(t, stackitem.Null{}, "mint", h, prefund)

	return &vaultEnv{
		e:     e,
		hash:  h,
		token: ftHash,
		owner: owner,
		vault: e.NewInvoker(h, owner),
	}, ft
}

func (v *vaultEnv) initialize(t *testing.T, initialBalance, minDeposit, revenuePool, maxDeduct any) {
	v.vault.InvokeAndCheck(t, func(t testing.TB, stack []stackitem.Item) {
		require.Len(t, stack, 1)

		var rec rpcvault.VaultRecordView
		require.NoError(t, rec.FromStackItem(stack[0]))
		require.Equal(t, v.owner.ScriptHash(), rec.Owner)
		require.Equal(t, v.owner.ScriptHash(), rec.Admin)
		require.Equal(t, v.token, rec.Token)
	}, "initialize", v.owner.ScriptHash(), v.token, initialBalance, minDeposit, revenuePool, maxDeduct)
}

func (v *vaultEnv) record(t *testing.T) *rpcvault.VaultRecordView {
	s, err := v.vault.TestInvoke(t, "getRecord")
	require.NoError(t, err)

	var rec rpcvault.VaultRecordView
	require.NoError(t, rec.FromStackItem(s.Pop().Item()))
	return &rec
}

func (v *vaultEnv) deductEvents(t *testing.T, h util.Uint256) []*rpcvault.DeductEvent {
	aer := v.e.GetTxExecResult(t, h)

	var res []*rpcvault.DeductEvent
	for _, ev := range aer.Events {
		if !ev.ScriptHash.Equals(v.hash) || ev.Name != "Deduct" {
			continue
		}
		event := new(rpcvault.DeductEvent)
		require.NoError(t, event.FromStackItem(ev.Item))
		res = append(res, event)
	}
	return res
}

func TestVault_NotInitialized(t *testing.T) {
	v := newGASVault(t, 0)
	owner := v.owner.ScriptHash()

	v.vault.InvokeFail(t, vaultconst.ErrNotInitialized, "balance")
	v.vault.InvokeFail(t, vaultconst.ErrNotInitialized, "getRecord")
	v.vault.InvokeFail(t, vaultconst.ErrNotInitialized, "deposit", owner, 10)
	v.vault.InvokeFail(t, vaultconst.ErrNotInitialized, "deduct", owner, 10, nil)
	v.vault.InvokeFail(t, vaultconst.ErrNotInitialized, "withdraw", 10)
	v.vault.InvokeFail(t, vaultconst.ErrNotInitialized, "setAllowedDepositor", owner, nil)
	v.vault.InvokeFail(t, vaultconst.ErrNotInitialized, "transferOwnership", util.Uint160{1})
}

func TestVault_Initialize(t *testing.T) {
	v := newGASVault(t, 500)
	owner := v.owner.ScriptHash()

	t.Run("foreign witness", func(t *testing.T) {
		stranger := v.e.NewAccount(t)
		v.vault.WithSigners(stranger).InvokeFail(t, common.ErrWitnessFailed,
			"initialize", owner, v.token, nil, nil, nil, nil)
	})
	t.Run("invalid arguments", func(t *testing.T) {
		v.vault.InvokeFail(t, vaultconst.ErrInvalidArgument, "initialize", owner, v.token, nil, nil, nil, 0)
		v.vault.InvokeFail(t, vaultconst.ErrInvalidArgument, "initialize", owner, v.token, nil, -1, nil, nil)
		v.vault.InvokeFail(t, vaultconst.ErrInvalidArgument, "initialize", owner, v.token, -5, nil, nil, nil)
		v.vault.InvokeFail(t, vaultconst.ErrInvalidArgument, "initialize", owner, v.token, nil, nil, []byte{1, 2, 3}, nil)
		v.vault.InvokeFail(t, vaultconst.ErrInvalidArgument, "initialize", owner, []byte{1}, nil, nil, nil, nil)
		v.vault.InvokeFail(t, vaultconst.ErrInvalidArgument, "initialize", owner, v.token, nil, nil, nil,
			new(big.Int).Add(rpcvault.MaxAmount(), big.NewInt(1)))
	})
	t.Run("not a deployer", func(t *testing.T) {
		// Pre-funded tokens can't be claimed by initializing the vault
		// with another owner.
		stranger := v.e.NewAccount(t)
		strangerInv := v.vault.WithSigners(stranger)
		strangerInv.InvokeFail(t, vaultconst.ErrUnauthorized+": deployer only",
			"initialize", stranger.ScriptHash(), v.token, 500, nil, nil, nil)
		strangerInv.InvokeFail(t, vaultconst.ErrNotInitialized, "withdraw", 500)
	})
	t.Run("initial balance is not custodied", func(t *testing.T) {
		v.vault.InvokeFail(t, vaultconst.ErrInsufficientBalance, "initialize", owner, v.token, 501, nil, nil, nil)
	})

	v.initialize(t, 500, nil, nil, nil)

	rec := v.record(t)
	require.EqualValues(t, 500, rec.Balance.Int64())
	require.EqualValues(t, 0, rec.MinDeposit.Int64())
	require.Equal(t, 0, rpcvault.MaxAmount().Cmp(rec.MaxDeduct))
	require.Nil(t, rec.RevenuePool)
	require.Nil(t, rec.AllowedDepositor)

	v.vault.Invoke(t, owner, "owner")
	v.vault.Invoke(t, owner, "admin")
	v.vault.Invoke(t, v.token, "token")
	v.vault.Invoke(t, stackitem.Null{}, "revenuePool")
	v.vault.Invoke(t, stackitem.Null{}, "allowedDepositor")
	v.vault.Invoke(t, common.Version, "version")

	t.Run("already initialized", func(t *testing.T) {
		v.vault.InvokeFail(t, vaultconst.ErrAlreadyInitialized, "initialize", owner, v.token, nil, nil, nil, nil)
		v.vault.Invoke(t, 500, "balance")
	})
}

func TestVault_InitializeAnotherOwner(t *testing.T) {
	v := newGASVault(t, 0)
	other := v.e.NewAccount(t)

	v.vault.WithSigners(other).InvokeFail(t, vaultconst.ErrUnauthorized+": deployer only",
		"initialize", other.ScriptHash(), v.token, nil, nil, nil, nil)

	v.vault.WithSigners(v.owner, other).InvokeAndCheck(t, func(t testing.TB, stack []stackitem.Item) {
		require.Len(t, stack, 1)

		var rec rpcvault.VaultRecordView
		require.NoError(t, rec.FromStackItem(stack[0]))
		require.Equal(t, other.ScriptHash(), rec.Owner)
		require.Equal(t, other.ScriptHash(), rec.Admin)
	}, "initialize", other.ScriptHash(), v.token, nil, nil, nil, nil)
}

func TestVault_DepositDeductScenario(t *testing.T) {
	v := newGASVault(t, 1000)
	owner := v.owner.ScriptHash()

	v.initialize(t, 1000, nil, nil, nil)
	v.vault.Invoke(t, 1000, "balance")

	v.vault.Invoke(t, 1200, "deposit", owner, 200)
	v.vault.Invoke(t, 1150, "deduct", owner, 50, nil)
	v.vault.InvokeFail(t, vaultconst.ErrInsufficientBalance, "deduct", owner, 2000, nil)
	v.vault.Invoke(t, 1150, "balance")

	// Deducted value stays in custody without revenue pool.
	v.e.CheckGASBalance(t, v.hash, big.NewInt(1200))
	v.vault.Invoke(t, 50, "revenue")
}

func TestVault_DeductCap(t *testing.T) {
	v := newGASVault(t, 300)
	owner := v.owner.ScriptHash()

	v.initialize(t, 300, nil, nil, 100)
	v.vault.Invoke(t, 100, "maxDeduct")

	v.vault.InvokeFail(t, vaultconst.ErrExceedsCap, "deduct", owner, 150, nil)
	v.vault.Invoke(t, 300, "balance")
	v.vault.Invoke(t, 200, "deduct", owner, 100, "req-1")

	v.vault.InvokeFail(t, vaultconst.ErrAmountNotPositive, "deduct", owner, 0, nil)
	v.vault.InvokeFail(t, vaultconst.ErrAmountNotPositive, "deduct", owner, -1, nil)
	v.vault.InvokeFail(t, vaultconst.ErrExceedsCap, "batchDeduct", owner, []any{
		[]any{50, nil},
		[]any{101, nil},
	})
	v.vault.Invoke(t, 200, "balance")

	t.Run("withdraw is not capped", func(t *testing.T) {
		v.vault.Invoke(t, 50, "withdraw", 150)
	})
}

func TestVault_DeductEvent(t *testing.T) {
	v := newGASVault(t, 100)
	owner := v.owner.ScriptHash()
	v.initialize(t, 100, nil, nil, nil)

	h := v.vault.Invoke(t, 90, "deduct", owner, 10, "req-1")
	events := v.deductEvents(t, h)
	require.Len(t, events, 1)
	require.Equal(t, owner, events[0].Caller)
	require.Equal(t, "req-1", events[0].RequestID)
	require.EqualValues(t, 10, events[0].Amount.Int64())
	require.EqualValues(t, 90, events[0].Balance.Int64())

	h = v.vault.Invoke(t, 85, "deduct", owner, 5, nil)
	events = v.deductEvents(t, h)
	require.Len(t, events, 1)
	require.Equal(t, "", events[0].RequestID)
}

func TestVault_BatchDeduct(t *testing.T) {
	t.Run("running balances", func(t *testing.T) {
		v := newGASVault(t, 100)
		owner := v.owner.ScriptHash()
		v.initialize(t, 100, nil, nil, nil)

		h := v.vault.Invoke(t, 40, "batchDeduct", owner, []any{
			[]any{10, "a"},
			[]any{20, nil},
			[]any{30, "c"},
		})

		events := v.deductEvents(t, h)
		require.Len(t, events, 3)
		for i, exp := range []struct {
			rid     string
			amount  int64
			balance int64
		}{{"a", 10, 90}, {"", 20, 70}, {"c", 30, 40}} {
			require.Equal(t, exp.rid, events[i].RequestID)
			require.EqualValues(t, exp.amount, events[i].Amount.Int64())
			require.EqualValues(t, exp.balance, events[i].Balance.Int64())
		}
		v.vault.Invoke(t, 40, "balance")
	})
	t.Run("all or nothing", func(t *testing.T) {
		v := newGASVault(t, 25)
		owner := v.owner.ScriptHash()
		v.initialize(t, 25, nil, nil, nil)

		v.vault.InvokeFail(t, vaultconst.ErrInsufficientBalance, "batchDeduct", owner, []any{
			[]any{60, nil},
			[]any{60, nil},
		})
		v.vault.InvokeFail(t, vaultconst.ErrInsufficientBalance, "batchDeduct", owner, []any{
			[]any{15, nil},
			[]any{15, nil},
		})
		v.vault.InvokeFail(t, vaultconst.ErrAmountNotPositive, "batchDeduct", owner, []any{
			[]any{5, nil},
			[]any{0, nil},
		})
		v.vault.InvokeFail(t, vaultconst.ErrEmptyBatch, "batchDeduct", owner, []any{})
		v.vault.Invoke(t, 25, "balance")
	})
}

func TestVault_DepositAccess(t *testing.T) {
	v := newGASVault(t, 0)
	owner := v.owner.ScriptHash()
	v.initialize(t, nil, 10, nil, nil)

	depositor := v.e.NewAccount(t)
	stranger := v.e.NewAccount(t)
	depositorInv := v.vault.WithSigners(depositor)
	strangerInv := v.vault.WithSigners(stranger)

	t.Run("validation", func(t *testing.T) {
		v.vault.InvokeFail(t, vaultconst.ErrAmountNotPositive, "deposit", owner, 0)
		v.vault.InvokeFail(t, vaultconst.ErrBelowMinimum, "deposit", owner, 9)
		v.vault.Invoke(t, 10, "deposit", owner, 10)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		strangerInv.InvokeFail(t, vaultconst.ErrUnauthorized, "deposit", stranger.ScriptHash(), 100)
		strangerInv.InvokeFail(t, common.ErrWitnessFailed, "deposit", owner, 100)
		strangerInv.InvokeFail(t, vaultconst.ErrUnauthorized+": owner only",
			"setAllowedDepositor", stranger.ScriptHash(), stranger.ScriptHash())
	})

	v.vault.Invoke(t, stackitem.Null{}, "setAllowedDepositor", owner, depositor.ScriptHash())
	v.vault.Invoke(t, depositor.ScriptHash(), "allowedDepositor")

	depositorInv.Invoke(t, 110, "deposit", depositor.ScriptHash(), 100)
	strangerInv.InvokeFail(t, vaultconst.ErrUnauthorized, "deposit", stranger.ScriptHash(), 100)

	t.Run("transfer failure", func(t *testing.T) {
		// Depositor has only 100 GAS.
		depositorInv.InvokeFail(t, vaultconst.ErrExternalTransferFailed,
			"deposit", depositor.ScriptHash(), int64(1000_0000_0000))
		v.vault.Invoke(t, 110, "balance")
	})

	t.Run("allowed depositor can't deduct", func(t *testing.T) {
		depositorInv.InvokeFail(t, vaultconst.ErrUnauthorized, "deduct", depositor.ScriptHash(), 1, nil)
	})

	v.vault.Invoke(t, stackitem.Null{}, "setAllowedDepositor", owner, nil)
	v.vault.Invoke(t, stackitem.Null{}, "allowedDepositor")
	depositorInv.InvokeFail(t, vaultconst.ErrUnauthorized, "deposit", depositor.ScriptHash(), 100)

	v.vault.Invoke(t, 110, "balance")
	v.e.CheckGASBalance(t, v.hash, big.NewInt(110))
}

func TestVault_Withdraw(t *testing.T) {
	v := newGASVault(t, 1000)
	v.initialize(t, 1000, nil, nil, nil)

	stranger := v.e.NewAccount(t)
	v.vault.WithSigners(stranger).InvokeFail(t, common.ErrWitnessFailed, "withdraw", 10)
	v.vault.WithSigners(stranger).InvokeFail(t, common.ErrWitnessFailed, "withdrawTo", stranger.ScriptHash(), 10)

	v.vault.InvokeFail(t, vaultconst.ErrAmountNotPositive, "withdraw", 0)
	v.vault.InvokeFail(t, vaultconst.ErrInsufficientBalance, "withdraw", 1001)

	v.vault.Invoke(t, 900, "withdraw", 100)

	dest := util.Uint160{1, 2, 3}
	v.vault.InvokeFail(t, vaultconst.ErrInvalidArgument, "withdrawTo", []byte{1, 2}, 10)
	v.vault.Invoke(t, 650, "withdrawTo", dest, 250)

	v.e.CheckGASBalance(t, dest, big.NewInt(250))
	v.e.CheckGASBalance(t, v.hash, big.NewInt(650))
	v.vault.Invoke(t, 0, "revenue")
}

func TestVault_RevenuePool(t *testing.T) {
	v := newGASVault(t, 100)
	owner := v.owner.ScriptHash()

	pool := deployContract(t, v.e, receiverPath)
	poolInv := v.e.CommitteeInvoker(pool)

	v.initialize(t, 100, nil, pool, nil)
	v.vault.Invoke(t, pool, "revenuePool")

	v.vault.Invoke(t, 90, "deduct", owner, 10, nil)
	poolInv.Invoke(t, 1, "count")
	v.e.CheckGASBalance(t, pool, big.NewInt(10))

	v.vault.Invoke(t, 84, "batchDeduct", owner, []any{
		[]any{1, nil},
		[]any{2, nil},
		[]any{3, nil},
	})

	// Single aggregate transfer for the whole batch.
	poolInv.Invoke(t, 2, "count")
	s, err := poolInv.TestInvoke(t, "get")
	require.NoError(t, err)
	call := s.Pop().Array()
	from, err := call[1].TryBytes()
	require.NoError(t, err)
	require.Equal(t, v.hash.BytesBE(), from)
	amount, err := call[2].TryInteger()
	require.NoError(t, err)
	require.EqualValues(t, 6, amount.Int64())

	v.e.CheckGASBalance(t, pool, big.NewInt(16))
	v.e.CheckGASBalance(t, v.hash, big.NewInt(84))
	v.vault.Invoke(t, 0, "revenue")
}

func TestVault_Distribute(t *testing.T) {
	v := newGASVault(t, 100)
	owner := v.owner.ScriptHash()
	v.initialize(t, 100, nil, nil, nil)

	v.vault.Invoke(t, 70, "deduct", owner, 30, nil)
	v.vault.Invoke(t, 30, "revenue")

	dest := util.Uint160{4, 5, 6}
	stranger := v.e.NewAccount(t)
	v.vault.WithSigners(stranger).InvokeFail(t, vaultconst.ErrUnauthorized+": admin only",
		"distribute", stranger.ScriptHash(), dest, 10)

	v.vault.InvokeFail(t, vaultconst.ErrAmountNotPositive, "distribute", owner, dest, 0)
	v.vault.InvokeFail(t, vaultconst.ErrInsufficientBalance, "distribute", owner, dest, 31)

	v.vault.Invoke(t, stackitem.Null{}, "distribute", owner, dest, 30)
	v.e.CheckGASBalance(t, dest, big.NewInt(30))
	v.vault.Invoke(t, 0, "revenue")
	v.vault.Invoke(t, 70, "balance")
}

func TestVault_Roles(t *testing.T) {
	v := newGASVault(t, 100)
	owner := v.owner.ScriptHash()
	v.initialize(t, 100, nil, nil, nil)

	backend := v.e.NewAccount(t)
	newOwner := v.e.NewAccount(t)
	backendInv := v.vault.WithSigners(backend)

	t.Run("ownership to self", func(t *testing.T) {
		v.vault.InvokeFail(t, vaultconst.ErrInvalidArgument, "transferOwnership", owner)
		v.vault.Invoke(t, owner, "owner")
	})

	backendInv.InvokeFail(t, vaultconst.ErrUnauthorized+": owner or admin only", "deduct", backend.ScriptHash(), 1, nil)
	backendInv.InvokeFail(t, common.ErrWitnessFailed, "transferAdmin", backend.ScriptHash())

	v.vault.Invoke(t, stackitem.Null{}, "transferAdmin", backend.ScriptHash())
	v.vault.Invoke(t, backend.ScriptHash(), "admin")

	backendInv.Invoke(t, 99, "deduct", backend.ScriptHash(), 1, nil)
	v.vault.InvokeFail(t, vaultconst.ErrUnauthorized+": admin only", "distribute", owner, owner, 1)
	backendInv.Invoke(t, stackitem.Null{}, "distribute", backend.ScriptHash(), backend.ScriptHash(), 1)

	v.vault.Invoke(t, stackitem.Null{}, "transferOwnership", newOwner.ScriptHash())
	v.vault.Invoke(t, newOwner.ScriptHash(), "owner")
	v.vault.Invoke(t, backend.ScriptHash(), "admin")

	v.vault.InvokeFail(t, common.ErrWitnessFailed, "withdraw", 10)
	v.vault.InvokeFail(t, vaultconst.ErrUnauthorized, "deduct", owner, 1, nil)
	v.vault.WithSigners(newOwner).Invoke(t, 89, "withdraw", 10)
}

func TestVault_Overflow(t *testing.T) {
	v, ft := newFaultyVault(t, rpcvault.MaxAmount())
	owner := v.owner.ScriptHash()

	v.initialize(t, rpcvault.MaxAmount(), nil, nil, nil)
	ft.Invoke(t, stackitem.Null{}, "mint", owner, 1)

	v.vault.InvokeFail(t, vaultconst.ErrOverflow, "deposit", owner, 1)
	v.vault.Invoke(t, rpcvault.MaxAmount(), "balance")
}

func TestVault_FaultyToken(t *testing.T) {
	v, ft := newFaultyVault(t, big.NewInt(100))
	owner := v.owner.ScriptHash()

	v.initialize(t, 100, nil, nil, nil)
	ft.Invoke(t, stackitem.Null{}, "mint", owner, 50)

	v.vault.Invoke(t, 110, "deposit", owner, 10)

	ft.Invoke(t, stackitem.Null{}, "setMode", faultytoken.ModeFail)
	v.vault.InvokeFail(t, vaultconst.ErrExternalTransferFailed, "deposit", owner, 10)
	v.vault.InvokeFail(t, vaultconst.ErrExternalTransferFailed, "withdraw", 10)
	v.vault.InvokeFail(t, vaultconst.ErrExternalTransferFailed, "withdrawTo", util.Uint160{1}, 10)
	v.vault.Invoke(t, 110, "balance")

	// Token reports success without moving funds, so the recorded balance
	// exceeds custody and there is no revenue to distribute.
	ft.Invoke(t, stackitem.Null{}, "setMode", faultytoken.ModeLie)
	v.vault.Invoke(t, 120, "deposit", owner, 10)
	ft.Invoke(t, 110, "balanceOf", v.hash)
	v.vault.Invoke(t, 0, "revenue")
}

func TestVault_FaultyTokenPayout(t *testing.T) {
	t.Run("revenue pool", func(t *testing.T) {
		v, ft := newFaultyVault(t, big.NewInt(100))
		owner := v.owner.ScriptHash()

		pool := deployContract(t, v.e, receiverPath)
		v.initialize(t, 100, nil, pool, nil)

		v.vault.Invoke(t, 90, "deduct", owner, 10, nil)
		ft.Invoke(t, 10, "balanceOf", pool)

		ft.Invoke(t, stackitem.Null{}, "setMode", faultytoken.ModeFail)
		v.vault.InvokeFail(t, vaultconst.ErrExternalTransferFailed, "deduct", owner, 10, "req")
		v.vault.InvokeFail(t, vaultconst.ErrExternalTransferFailed, "batchDeduct", owner, []any{
			[]any{5, nil},
			[]any{5, nil},
		})

		v.vault.Invoke(t, 90, "balance")
		ft.Invoke(t, 10, "balanceOf", pool)
		ft.Invoke(t, 90, "balanceOf", v.hash)
	})
	t.Run("distribute", func(t *testing.T) {
		v, ft := newFaultyVault(t, big.NewInt(100))
		owner := v.owner.ScriptHash()
		v.initialize(t, 100, nil, nil, nil)

		v.vault.Invoke(t, 70, "deduct", owner, 30, nil)
		v.vault.Invoke(t, 30, "revenue")

		ft.Invoke(t, stackitem.Null{}, "setMode", faultytoken.ModeFail)
		v.vault.InvokeFail(t, vaultconst.ErrExternalTransferFailed, "distribute", owner, util.Uint160{7}, 10)

		v.vault.Invoke(t, 70, "balance")
		v.vault.Invoke(t, 30, "revenue")
	})
}

func TestVault_DepositReentrance(t *testing.T) {
	v, ft := newFaultyVault(t, big.NewInt(100))
	owner := v.owner.ScriptHash()

	v.initialize(t, 100, nil, nil, nil)
	ft.Invoke(t, stackitem.Null{}, "mint", owner, 50)

	// Token deducts 1 from the vault in the middle of the deposit, the
	// deposit must keep it.
	ft.Invoke(t, stackitem.Null{}, "setMode", faultytoken.ModeReenter)
	h := v.vault.Invoke(t, 109, "deposit", owner, 10)
	require.Len(t, v.deductEvents(t, h), 1)

	v.vault.Invoke(t, 109, "balance")
	ft.Invoke(t, 110, "balanceOf", v.hash)
	v.vault.Invoke(t, 1, "revenue")
}

// ledgerModel mirrors the vault ledger rules and returns the error kind an
// operation must fail with or an empty string.
type ledgerModel struct {
	balance    int64
	minDeposit int64
	maxDeduct  int64
}

func (m *ledgerModel) deposit(amount int64) string {
	switch {
	case amount <= 0:
		return vaultconst.ErrAmountNotPositive
	case amount < m.minDeposit:
		return vaultconst.ErrBelowMinimum
	}
	m.balance += amount
	return ""
}

func (m *ledgerModel) debit(balance, amount int64) (int64, string) {
	switch {
	case amount <= 0:
		return balance, vaultconst.ErrAmountNotPositive
	case amount > m.maxDeduct:
		return balance, vaultconst.ErrExceedsCap
	case amount > balance:
		return balance, vaultconst.ErrInsufficientBalance
	}
	return balance - amount, ""
}

func (m *ledgerModel) batch(amounts []int64) string {
	if len(amounts) == 0 {
		return vaultconst.ErrEmptyBatch
	}
	balance := m.balance
	for _, a := range amounts {
		var kind string
		if balance, kind = m.debit(balance, a); kind != "" {
			return kind
		}
	}
	m.balance = balance
	return ""
}

func (m *ledgerModel) withdraw(amount int64) string {
	switch {
	case amount <= 0:
		return vaultconst.ErrAmountNotPositive
	case amount > m.balance:
		return vaultconst.ErrInsufficientBalance
	}
	m.balance -= amount
	return ""
}

func TestVault_RandomSequence(t *testing.T) {
	v := newGASVault(t, 100)
	owner := v.owner.ScriptHash()

	m := &ledgerModel{balance: 100, minDeposit: 5, maxDeduct: 40}
	v.initialize(t, m.balance, m.minDeposit, nil, m.maxDeduct)
	before := v.record(t)

	rnd := rand.New(rand.NewSource(42))
	amount := func() int64 { return rnd.Int63n(70) - 5 }

	for i := 0; i < 60; i++ {
		var (
			kind   string
			method string
			args   []any
		)

		switch rnd.Intn(4) {
		case 0:
			a := amount()
			kind, method, args = m.deposit(a), "deposit", []any{owner, a}
		case 1:
			a := amount()
			var balance int64
			balance, kind = m.debit(m.balance, a)
			if kind == "" {
				m.balance = balance
			}
			method, args = "deduct", []any{owner, a, nil}
		case 2:
			n := rnd.Intn(4)
			amounts := make([]int64, n)
			items := make([]any, n)
			for j := range amounts {
				amounts[j] = amount()
				items[j] = []any{amounts[j], nil}
			}
			kind, method, args = m.batch(amounts), "batchDeduct", []any{owner, items}
		case 3:
			a := amount()
			kind, method, args = m.withdraw(a), "withdraw", []any{a}
		}

		if kind != "" {
			v.vault.InvokeFail(t, kind, method, args...)
		} else {
			v.vault.Invoke(t, m.balance, method, args...)
		}

		require.GreaterOrEqual(t, m.balance, int64(0))
		v.vault.Invoke(t, m.balance, "balance")
	}

	after := v.record(t)
	require.Equal(t, before.Owner, after.Owner)
	require.Equal(t, before.Admin, after.Admin)
	require.Nil(t, after.AllowedDepositor)
}

func TestVault_RejectionKeepsRoles(t *testing.T) {
	v := newGASVault(t, 100)
	owner := v.owner.ScriptHash()
	v.initialize(t, 100, 5, nil, 50)

	depositor := v.e.NewAccount(t)
	backend := v.e.NewAccount(t)
	stranger := v.e.NewAccount(t)
	v.vault.Invoke(t, stackitem.Null{}, "setAllowedDepositor", owner, depositor.ScriptHash())
	v.vault.Invoke(t, stackitem.Null{}, "transferAdmin", backend.ScriptHash())

	before := v.record(t)
	strangerInv := v.vault.WithSigners(stranger)
	depositorInv := v.vault.WithSigners(depositor)
	backendInv := v.vault.WithSigners(backend)

	for _, tc := range []struct {
		inv    *neotest.ContractInvoker
		kind   string
		method string
		args   []any
	}{
		{strangerInv, vaultconst.ErrUnauthorized, "transferOwnership", []any{stranger.ScriptHash()}},
		{strangerInv, vaultconst.ErrUnauthorized, "transferAdmin", []any{stranger.ScriptHash()}},
		{strangerInv, vaultconst.ErrUnauthorized, "setAllowedDepositor", []any{stranger.ScriptHash(), stranger.ScriptHash()}},
		{strangerInv, vaultconst.ErrUnauthorized, "setAllowedDepositor", []any{owner, nil}},
		{strangerInv, vaultconst.ErrUnauthorized, "deduct", []any{stranger.ScriptHash(), 1, nil}},
		{strangerInv, vaultconst.ErrUnauthorized, "withdraw", []any{1}},
		{depositorInv, vaultconst.ErrUnauthorized, "deduct", []any{depositor.ScriptHash(), 1, nil}},
		{depositorInv, vaultconst.ErrUnauthorized, "transferOwnership", []any{depositor.ScriptHash()}},
		{v.vault, vaultconst.ErrInvalidArgument, "transferOwnership", []any{owner}},
		{backendInv, vaultconst.ErrInvalidArgument, "transferAdmin", []any{[]byte{1}}},
		{v.vault, vaultconst.ErrUnauthorized, "distribute", []any{owner, owner, 1}},
		{v.vault, vaultconst.ErrBelowMinimum, "deposit", []any{owner, 4}},
		{v.vault, vaultconst.ErrExceedsCap, "deduct", []any{owner, 51, nil}},
		{v.vault, vaultconst.ErrInsufficientBalance, "withdraw", []any{101}},
		{v.vault, vaultconst.ErrEmptyBatch, "batchDeduct", []any{owner, []any{}}},
		{v.vault, vaultconst.ErrAlreadyInitialized, "initialize", []any{owner, v.token, nil, nil, nil, nil}},
	} {
		tc.inv.InvokeFail(t, tc.kind, tc.method, tc.args...)

		after := v.record(t)
		require.Equal(t, before.Owner, after.Owner, tc.method)
		require.Equal(t, before.Admin, after.Admin, tc.method)
		require.Equal(t, before.AllowedDepositor, after.AllowedDepositor, tc.method)
		require.Zero(t, before.Balance.Cmp(after.Balance), tc.method)
	}

	require.Equal(t, depositor.ScriptHash(), *before.AllowedDepositor)
	require.Equal(t, backend.ScriptHash(), before.Admin)
}

func TestVault_OnNEP17Payment(t *testing.T) {
	e := newExecutor(t)
	owner := e.NewAccount(t)
	h := deployVault(t, e, owner)
	ftHash := deployContract(t, e, faultyTokenPath)

	gasHash, err := e.Chain.GetNativeContractScriptHash(nativenames.Gas)
	require.NoError(t, err)

	e.CommitteeInvoker(ftHash).Invoke(t, stackitem.Null{}, "mint", owner.ScriptHash(), 10)
	ftInv := e.NewInvoker(ftHash, owner)

	// Any token is accepted before initialization.
	ftInv.Invoke(t, true, "transfer", owner.ScriptHash(), h, 5, nil)

	v := &vaultEnv{e: e, hash: h, token: gasHash, owner: owner, vault: e.NewInvoker(h, owner)}
	v.initialize(t, nil, nil, nil, nil)

	ftInv.InvokeFail(t, "ABORT", "transfer", owner.ScriptHash(), h, 5, nil)
	e.NewInvoker(gasHash, owner).Invoke(t, true, "transfer", owner.ScriptHash(), h, 5, nil)

	// Direct transfers are not credited, they are revenue.
	v.vault.Invoke(t, 0, "balance")
	v.vault.Invoke(t, 5, "revenue")
}

func TestVault_Update(t *testing.T) {
	v := newGASVault(t, 0)
	v.vault.InvokeFail(t, common.ErrCommitteeWitnessFailed, "update", []byte{}, []byte{}, nil)
}
