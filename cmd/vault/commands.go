package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/meterpay/vault-contract/deploy"
	"github.com/meterpay/vault-contract/meter"
	"github.com/meterpay/vault-contract/reconcile"
	"github.com/meterpay/vault-contract/rpc/vault"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var deployCommand = cli.Command{
	Name:  "deploy",
	Usage: "Deploy and initialize the vault owned by the signing account",
	Flags: append([]cli.Flag{
		cli.StringFlag{Name: "sources", Usage: "Directory with the vault contract sources", Value: "contracts/vault"},
		cli.StringFlag{Name: "token", Usage: "Custodied NEP-17 token, GAS by default"},
		cli.StringFlag{Name: "initial-balance", Usage: "Initial recorded balance pre-funded from the signing account"},
		cli.StringFlag{Name: "min-deposit", Usage: "Minimum deposit amount"},
		cli.StringFlag{Name: "max-deduct", Usage: "Maximum single deduction amount"},
		cli.StringFlag{Name: "revenue-pool", Usage: "Account receiving deducted tokens"},
		cli.StringFlag{Name: "admin", Usage: "Account the admin role is handed to"},
		cli.StringFlag{Name: "depositor", Usage: "Allowed depositor"},
	}, rpcFlag, walletFlag, accountFlag, passwordFlag, logLevelFlag),
	Action: func(c *cli.Context) error {
		log, err := newLogger(c.String("log-level"))
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		var prm deploy.Prm
		prm.Logger = log

		prm.Vault.Token = gas.Hash
		if s := c.String("token"); s != "" {
			if prm.Vault.Token, err = parseHash(s); err != nil {
				return err
			}
		}
		if prm.Vault.InitialBalance, err = parseAmount(c.String("initial-balance")); err != nil {
			return err
		}
		if prm.Vault.MinDeposit, err = parseAmount(c.String("min-deposit")); err != nil {
			return err
		}
		if prm.Vault.MaxDeduct, err = parseAmount(c.String("max-deduct")); err != nil {
			return err
		}
		if prm.Vault.RevenuePool, err = parseOptionalHash(c.String("revenue-pool")); err != nil {
			return err
		}
		if prm.Vault.Admin, err = parseOptionalHash(c.String("admin")); err != nil {
			return err
		}
		if prm.Vault.AllowedDepositor, err = parseOptionalHash(c.String("depositor")); err != nil {
			return err
		}

		prm.Contract, err = deploy.CompileContract(c.String("sources"))
		if err != nil {
			return err
		}

		prm.LocalAccount, err = openAccount(c)
		if err != nil {
			return err
		}

		b, err := newRemoteBlockChain(c.String("rpc"), prm.LocalAccount, transaction.CalledByEntry)
		if err != nil {
			return fmt.Errorf("init remote blockchain: %w", err)
		}
		defer b.close()
		prm.Blockchain = b.rpc

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		addr, err := deploy.Deploy(ctx, prm)
		if err != nil {
			return err
		}

		fmt.Fprintf(c.App.Writer, "vault: %s (%s)\n", address.Uint160ToString(addr), addr.StringLE())
		return nil
	},
}

var inspectCommand = cli.Command{
	Name:  "inspect",
	Usage: "Print vault record",
	Flags: []cli.Flag{rpcFlag, contractFlag},
	Action: func(c *cli.Context) error {
		vaultHash, err := requiredHash(c, "contract")
		if err != nil {
			return err
		}

		b, err := newRemoteBlockChain(c.String("rpc"), nil, transaction.None)
		if err != nil {
			return fmt.Errorf("init remote blockchain: %w", err)
		}
		defer b.close()

		reader := vault.NewReader(b.actor, vaultHash)

		r, err := reader.GetRecord()
		if err != nil {
			return fmt.Errorf("get vault record: %w", err)
		}

		revenue, err := reader.Revenue()
		if err != nil {
			return fmt.Errorf("get vault revenue: %w", err)
		}

		version, err := reader.Version()
		if err != nil {
			return fmt.Errorf("get vault version: %w", err)
		}

		w := c.App.Writer
		fmt.Fprintf(w, "Version:           %s\n", version)
		fmt.Fprintf(w, "Owner:             %s\n", address.Uint160ToString(r.Owner))
		fmt.Fprintf(w, "Admin:             %s\n", address.Uint160ToString(r.Admin))
		fmt.Fprintf(w, "Token:             %s\n", r.Token.StringLE())
		fmt.Fprintf(w, "Balance:           %s\n", r.Balance)
		fmt.Fprintf(w, "Min deposit:       %s\n", r.MinDeposit)
		fmt.Fprintf(w, "Max deduct:        %s\n", formatMaxDeduct(r.MaxDeduct))
		fmt.Fprintf(w, "Revenue pool:      %s\n", formatOptionalHash(r.RevenuePool))
		fmt.Fprintf(w, "Allowed depositor: %s\n", formatOptionalHash(r.AllowedDepositor))
		fmt.Fprintf(w, "Revenue:           %s\n", revenue)
		return nil
	},
}

var storageCommand = cli.Command{
	Name:  "storage",
	Usage: "Dump vault contract storage at the latest state root",
	Flags: []cli.Flag{rpcFlag, contractFlag},
	Action: func(c *cli.Context) error {
		vaultHash, err := requiredHash(c, "contract")
		if err != nil {
			return err
		}

		b, err := newRemoteBlockChain(c.String("rpc"), nil, transaction.None)
		if err != nil {
			return fmt.Errorf("init remote blockchain: %w", err)
		}
		defer b.close()

		return b.iterateContractStorage(vaultHash, func(key, value []byte) error {
			fmt.Fprintf(c.App.Writer, "%s: %s\n", formatStorageKey(key), formatStorageValue(value))
			return nil
		})
	},
}

var depositCommand = cli.Command{
	Name:  "deposit",
	Usage: "Deposit tokens from the signing account",
	Flags: append([]cli.Flag{amountFlag}, signerFlags...),
	Action: func(c *cli.Context) error {
		amount, err := requiredAmount(c)
		if err != nil {
			return err
		}

		// token contract checks the caller witness too
		b, vaultHash, err := dialSigner(c, transaction.Global)
		if err != nil {
			return err
		}
		defer b.close()

		return awaitTx(c, b, func(v *vault.Contract) (util.Uint256, uint32, error) {
			return v.Deposit(b.acc.ScriptHash(), amount)
		}, vaultHash)
	},
}

var withdrawCommand = cli.Command{
	Name:  "withdraw",
	Usage: "Withdraw tokens to the owner or the given account",
	Flags: append([]cli.Flag{
		amountFlag,
		cli.StringFlag{Name: "to", Usage: "Destination account, the owner by default"},
	}, signerFlags...),
	Action: func(c *cli.Context) error {
		amount, err := requiredAmount(c)
		if err != nil {
			return err
		}

		to, err := parseOptionalHash(c.String("to"))
		if err != nil {
			return err
		}

		b, vaultHash, err := dialSigner(c, transaction.CalledByEntry)
		if err != nil {
			return err
		}
		defer b.close()

		return awaitTx(c, b, func(v *vault.Contract) (util.Uint256, uint32, error) {
			if to != nil {
				return v.WithdrawTo(*to, amount)
			}
			return v.Withdraw(amount)
		}, vaultHash)
	},
}

var chargeCommand = cli.Command{
	Name:      "charge",
	Usage:     "Deduct given amounts from the vault in batches",
	ArgsUsage: "AMOUNT[:REQUEST_ID]...",
	Flags: append([]cli.Flag{
		cli.IntFlag{Name: "batch", Usage: "Max number of charges per transaction", Value: meter.DefaultBatchSize},
	}, signerFlags...),
	Action: func(c *cli.Context) error {
		if !c.Args().Present() {
			return errors.New("no charges given")
		}

		log, err := newLogger(c.String("log-level"))
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		b, vaultHash, err := dialSigner(c, transaction.CalledByEntry)
		if err != nil {
			return err
		}
		defer b.close()

		v := vault.New(b.actor, vaultHash)

		maxDeduct, err := v.MaxDeduct()
		if err != nil {
			return fmt.Errorf("get max deduct: %w", err)
		}

		m, err := meter.New(meter.Prm{
			Logger:    log,
			Deductor:  v,
			Caller:    b.acc.ScriptHash(),
			BatchSize: c.Int("batch"),
			MaxDeduct: maxDeduct,
		})
		if err != nil {
			return err
		}

		for _, arg := range c.Args() {
			amount, requestID, err := parseCharge(arg)
			if err != nil {
				return err
			}

			if _, err = m.Charge(amount, requestID); err != nil {
				return fmt.Errorf("charge '%s': %w", arg, err)
			}
		}

		subs, err := m.Flush()
		for _, s := range subs {
			res, werr := b.actor.WaitAny(context.Background(), s.ValidUntilBlock, s.Hash)
			if werr != nil {
				return fmt.Errorf("wait for transaction %s: %w", s.Hash.StringLE(), werr)
			}
			fmt.Fprintf(c.App.Writer, "%s: %d charges, %s\n", s.Hash.StringLE(), len(s.Items), res.VMState)
		}
		if err != nil {
			return fmt.Errorf("%w (%d charges not sent)", err, m.Pending())
		}
		return nil
	},
}

var reconcileCommand = cli.Command{
	Name:  "reconcile",
	Usage: "Check that vault custody covers its recorded balance",
	Flags: []cli.Flag{rpcFlag, contractFlag, logLevelFlag},
	Action: func(c *cli.Context) error {
		vaultHash, err := requiredHash(c, "contract")
		if err != nil {
			return err
		}

		log, err := newLogger(c.String("log-level"))
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		b, err := newRemoteBlockChain(c.String("rpc"), nil, transaction.None)
		if err != nil {
			return fmt.Errorf("init remote blockchain: %w", err)
		}
		defer b.close()

		checker, err := reconcile.New(reconcile.Prm{
			Logger:  log,
			Vault:   vaultHash,
			Reader:  vault.NewReader(b.actor, vaultHash),
			Invoker: b.actor,
		})
		if err != nil {
			return err
		}

		rep, err := checker.Check()
		if err != nil {
			return err
		}

		fmt.Fprintf(c.App.Writer, "recorded %s, custody %s, revenue %s, deficit %s\n",
			rep.Recorded, rep.Custody, rep.Revenue(), rep.Deficit())
		if rep.Diverged() {
			return cli.NewExitError("vault custody does not cover recorded balance", 2)
		}
		return nil
	},
}

var watchCommand = cli.Command{
	Name:  "watch",
	Usage: "Periodically reconcile the vault and export metrics",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "config", Usage: "Path to YAML configuration file", EnvVar: "VAULT_CONFIG"},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadWatchConfig(c.String("config"))
		if err != nil {
			return err
		}

		vaultHash, err := parseHash(cfg.Contract)
		if err != nil {
			return err
		}

		log, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		b, err := newRemoteBlockChain(cfg.RPCEndpoint, nil, transaction.None)
		if err != nil {
			return fmt.Errorf("init remote blockchain: %w", err)
		}
		defer b.close()

		if err = reconcile.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}

		checker, err := reconcile.New(reconcile.Prm{
			Logger:  log,
			Vault:   vaultHash,
			Reader:  vault.NewReader(b.actor, vaultHash),
			Invoker: b.actor,
			Metrics: true,
		})
		if err != nil {
			return err
		}

		sched := cron.New(cron.WithChain(cron.Recover(cronLogger{log.Sugar()})))
		if _, err = sched.AddFunc(cfg.Schedule, func() { _, _ = checker.Check() }); err != nil {
			return fmt.Errorf("schedule reconciliation '%s': %w", cfg.Schedule, err)
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: cfg.MetricsAddress, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

		errCh := make(chan error, 1)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		log.Info("watching vault",
			zap.Stringer("vault", vaultHash),
			zap.String("schedule", cfg.Schedule),
			zap.String("metrics", cfg.MetricsAddress))

		_, _ = checker.Check()
		sched.Start()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		select {
		case <-ctx.Done():
		case err = <-errCh:
			log.Error("metrics server failed", zap.Error(err))
		}

		<-sched.Stop().Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)

		return err
	},
}

// cronLogger passes cron messages to zap.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (x cronLogger) Info(msg string, keysAndValues ...any) {
	x.l.Debugw(msg, keysAndValues...)
}

func (x cronLogger) Error(err error, msg string, keysAndValues ...any) {
	x.l.Errorw(msg, append(keysAndValues, "error", err)...)
}

// awaitTx sends vault transaction and waits for its result.
func awaitTx(c *cli.Context, b *remoteBlockchain, send func(*vault.Contract) (util.Uint256, uint32, error), vaultHash util.Uint160) error {
	h, vub, err := send(vault.New(b.actor, vaultHash))
	if err != nil {
		return fmt.Errorf("send transaction: %w", err)
	}

	res, err := b.actor.WaitAny(context.Background(), vub, h)
	if err != nil {
		return fmt.Errorf("wait for transaction %s: %w", h.StringLE(), err)
	}

	fmt.Fprintf(c.App.Writer, "%s: %s %s\n", h.StringLE(), res.VMState, res.FaultException)
	if res.FaultException != "" {
		if kind, ok := vault.FaultKind(res.FaultException); ok {
			return fmt.Errorf("vault failure: %s", kind)
		}
		return errors.New(res.FaultException)
	}
	return nil
}

// parseCharge parses AMOUNT[:REQUEST_ID] charge argument.
func parseCharge(s string) (*big.Int, string, error) {
	amountStr, requestID, _ := strings.Cut(s, ":")

	amount, err := parseAmount(amountStr)
	if err != nil {
		return nil, "", err
	}
	if amount == nil {
		return nil, "", fmt.Errorf("missing amount in '%s'", s)
	}

	return amount, requestID, nil
}

func formatOptionalHash(h *util.Uint160) string {
	if h == nil {
		return "none"
	}
	return address.Uint160ToString(*h)
}

func formatMaxDeduct(v *big.Int) string {
	if v.Cmp(vault.MaxAmount()) == 0 {
		return "unbounded"
	}
	return v.String()
}

func formatStorageKey(key []byte) string {
	if utf8.Valid(key) {
		return string(key)
	}
	return hex.EncodeToString(key)
}

func formatStorageValue(value []byte) string {
	item, err := stackitem.Deserialize(value)
	if err != nil {
		return hex.EncodeToString(value)
	}

	js, err := stackitem.ToJSONWithTypes(item)
	if err != nil {
		return hex.EncodeToString(value)
	}
	return string(js)
}
