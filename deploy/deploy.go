package deploy

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/meterpay/vault-contract/rpc/vault"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for the vault deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions to the
	// blockchain.
	actor.RPCActor

	contractStates
}

type contractStates interface {
	// GetContractStateByHash returns network state of the smart contract by
	// its address. It returns error with 'Unknown contract' substring if
	// requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// VaultPrm groups initialization parameters of the Vault contract. Nil
// fields are left to the contract defaults.
type VaultPrm struct {
	Token          util.Uint160
	InitialBalance *big.Int
	MinDeposit     *big.Int
	RevenuePool    *util.Uint160
	MaxDeduct      *big.Int

	// Optional account the admin role is handed to after initialization.
	Admin *util.Uint160

	// Optional allowed depositor set after initialization.
	AllowedDepositor *util.Uint160
}

// Prm groups all parameters of the vault deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance the vault is deployed to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// It deploys the contract and becomes the vault owner.
	LocalAccount *wallet.Account

	Contract CommonDeployPrm
	Vault    VaultPrm
}

// Deploy deploys the Vault contract signed by Prm.LocalAccount and
// initializes it. Every stage is skipped if it's already done, so Deploy can
// be repeated after a failure. If Prm.Vault.InitialBalance is positive, the
// vault is pre-funded with the token from the local account before
// initialization. The contract accepts initialization from its deployer only,
// so pre-funded tokens can't be claimed by a third party.
//
// Deploy returns the vault address.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	owner := prm.LocalAccount.ScriptHash()
	addr := prm.Contract.Hash(owner)

	act, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return addr, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	return addr, deployVault(ctx, deployVaultPrm{
		logger:     prm.Logger,
		contracts:  prm.Blockchain,
		management: management.New(act),
		vault:      vault.New(act, addr),
		token:      nep17.New(act, prm.Vault.Token),
		waiter:     act,
		owner:      owner,
		address:    addr,
		contract:   prm.Contract,
		vaultPrm:   prm.Vault,
	})
}

type contractDeployer interface {
	Deploy(nefFile *nef.File, manif *manifest.Manifest, data any) (util.Uint256, uint32, error)
}

// vaultContract is implemented by [vault.Contract].
type vaultContract interface {
	Owner() (util.Uint160, error)
	Initialize(owner util.Uint160, token util.Uint160, initialBalance *big.Int, minDeposit *big.Int, revenuePool *util.Uint160, maxDeduct *big.Int) (util.Uint256, uint32, error)
	SetAllowedDepositor(caller util.Uint160, depositor *util.Uint160) (util.Uint256, uint32, error)
	TransferAdmin(newAdmin util.Uint160) (util.Uint256, uint32, error)
}

// tokenContract is implemented by [nep17.Token].
type tokenContract interface {
	BalanceOf(account util.Uint160) (*big.Int, error)
	Transfer(from util.Uint160, to util.Uint160, amount *big.Int, data any) (util.Uint256, uint32, error)
}

// txWaiter is implemented by [actor.Actor].
type txWaiter interface {
	WaitAny(ctx context.Context, vub uint32, hashes ...util.Uint256) (*state.AppExecResult, error)
}

type deployVaultPrm struct {
	logger     *zap.Logger
	contracts  contractStates
	management contractDeployer
	vault      vaultContract
	token      tokenContract
	waiter     txWaiter

	owner    util.Uint160
	address  util.Uint160
	contract CommonDeployPrm
	vaultPrm VaultPrm
}

func deployVault(ctx context.Context, prm deployVaultPrm) error {
	if prm.logger == nil {
		prm.logger = zap.NewNop()
	}
	l := prm.logger.With(zap.Stringer("address", prm.address))

	_, err := prm.contracts.GetContractStateByHash(prm.address)
	switch {
	case err == nil:
		l.Info("vault contract is already deployed")
	case isErrContractNotFound(err):
		l.Info("deploying vault contract...")

		h, vub, err := prm.management.Deploy(&prm.contract.NEF, &prm.contract.Manifest, nil)
		if err = await(ctx, prm.waiter, h, vub, err); err != nil {
			return fmt.Errorf("deploy vault contract: %w", err)
		}

		l.Info("vault contract successfully deployed", zap.Stringer("tx", h))
	default:
		return fmt.Errorf("get vault contract state: %w", err)
	}

	_, err = prm.vault.Owner()
	switch {
	case err == nil:
		l.Info("vault is already initialized")
		return nil
	case !vault.IsFault(err, vault.ErrNotInitialized):
		return fmt.Errorf("read vault owner: %w", err)
	}

	v := prm.vaultPrm
	if needsPrefunding(v.InitialBalance) {
		custody, err := prm.token.BalanceOf(prm.address)
		if err != nil {
			return fmt.Errorf("read vault custody: %w", err)
		}

		if lack := new(big.Int).Sub(v.InitialBalance, custody); lack.Sign() > 0 {
			l.Info("pre-funding vault...", zap.Stringer("amount", lack))

			h, vub, err := prm.token.Transfer(prm.owner, prm.address, lack, nil)
			if err = await(ctx, prm.waiter, h, vub, err); err != nil {
				return fmt.Errorf("pre-fund vault: %w", err)
			}
		}
	}

	l.Info("initializing vault...")

	h, vub, err := prm.vault.Initialize(prm.owner, v.Token, v.InitialBalance, v.MinDeposit, v.RevenuePool, v.MaxDeduct)
	if err = await(ctx, prm.waiter, h, vub, err); err != nil {
		return fmt.Errorf("initialize vault: %w", err)
	}

	if v.AllowedDepositor != nil {
		h, vub, err = prm.vault.SetAllowedDepositor(prm.owner, v.AllowedDepositor)
		if err = await(ctx, prm.waiter, h, vub, err); err != nil {
			return fmt.Errorf("set allowed depositor: %w", err)
		}
	}

	if v.Admin != nil && !v.Admin.Equals(prm.owner) {
		h, vub, err = prm.vault.TransferAdmin(*v.Admin)
		if err = await(ctx, prm.waiter, h, vub, err); err != nil {
			return fmt.Errorf("transfer admin: %w", err)
		}
	}

	l.Info("vault successfully initialized")

	return nil
}

func needsPrefunding(initialBalance *big.Int) bool {
	return initialBalance != nil && initialBalance.Sign() > 0
}

// await waits for the transaction sent with the given result to be accepted
// and checks it's HALTed.
func await(ctx context.Context, w txWaiter, h util.Uint256, vub uint32, err error) error {
	if err != nil {
		return fmt.Errorf("send transaction: %w", err)
	}

	res, err := w.WaitAny(ctx, vub, h)
	if err != nil {
		return fmt.Errorf("wait for transaction %s: %w", h.StringLE(), err)
	}

	return checkExecResult(res)
}

func checkExecResult(res *state.AppExecResult) error {
	if res.VMState != vmstate.Halt {
		return fmt.Errorf("transaction %s failed with %s state: %s", res.Container.StringLE(), res.VMState, res.FaultException)
	}
	return nil
}

func isErrContractNotFound(err error) bool {
	return strings.Contains(err.Error(), "Unknown contract")
}
