package main

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	rpcFlag = cli.StringFlag{
		Name:   "rpc, r",
		Usage:  "Network address of the Neo RPC server",
		EnvVar: "VAULT_RPC_ENDPOINT",
	}
	contractFlag = cli.StringFlag{
		Name:   "contract, c",
		Usage:  "Vault contract address or LE script hash",
		EnvVar: "VAULT_CONTRACT",
	}
	walletFlag = cli.StringFlag{
		Name:   "wallet, w",
		Usage:  "Path to the NEP-6 wallet with the signing account",
		EnvVar: "VAULT_WALLET",
	}
	accountFlag = cli.StringFlag{
		Name:  "account, a",
		Usage: "Signing account address, wallet change address by default",
	}
	passwordFlag = cli.StringFlag{
		Name:   "password",
		Usage:  "Password of the signing account",
		EnvVar: "VAULT_WALLET_PASSWORD",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "Amount in the smallest token units",
	}
	logLevelFlag = cli.StringFlag{
		Name:  "log-level",
		Usage: "Logging level",
		Value: "info",
	}
)

var signerFlags = []cli.Flag{rpcFlag, contractFlag, walletFlag, accountFlag, passwordFlag, logLevelFlag}

// parseHash parses Neo address or LE hex-encoded script hash.
func parseHash(s string) (util.Uint160, error) {
	if h, err := address.StringToUint160(s); err == nil {
		return h, nil
	}
	h, err := util.Uint160DecodeStringLE(s)
	if err != nil {
		return h, fmt.Errorf("invalid address or script hash '%s'", s)
	}
	return h, nil
}

// parseOptionalHash is parseHash returning nil for empty s.
func parseOptionalHash(s string) (*util.Uint160, error) {
	if s == "" {
		return nil, nil
	}
	h, err := parseHash(s)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// parseAmount parses decimal integer amount. Empty s gives nil.
func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount '%s'", s)
	}
	return v, nil
}

func requiredHash(c *cli.Context, flag string) (util.Uint160, error) {
	s := c.String(flag)
	if s == "" {
		return util.Uint160{}, fmt.Errorf("missing --%s", flag)
	}
	return parseHash(s)
}

func requiredAmount(c *cli.Context) (*big.Int, error) {
	v, err := parseAmount(c.String("amount"))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errors.New("missing --amount")
	}
	return v, nil
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level '%s': %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// openAccount opens the account referenced by command flags and decrypts it.
func openAccount(c *cli.Context) (*wallet.Account, error) {
	path := c.String("wallet")
	if path == "" {
		return nil, errors.New("missing --wallet")
	}

	w, err := wallet.NewWalletFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}
	defer w.Close()

	var h util.Uint160
	if s := c.String("account"); s != "" {
		h, err = parseHash(s)
		if err != nil {
			return nil, err
		}
	} else {
		h = w.GetChangeAddress()
	}

	acc := w.GetAccount(h)
	if acc == nil {
		return nil, fmt.Errorf("account %s not found in the wallet", address.Uint160ToString(h))
	}

	err = acc.Decrypt(c.String("password"), w.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypt account: %w", err)
	}

	return acc, nil
}

// dialSigner opens signing account and dials the RPC server.
func dialSigner(c *cli.Context, scope transaction.WitnessScope) (*remoteBlockchain, util.Uint160, error) {
	vaultHash, err := requiredHash(c, "contract")
	if err != nil {
		return nil, vaultHash, err
	}

	acc, err := openAccount(c)
	if err != nil {
		return nil, vaultHash, err
	}

	b, err := newRemoteBlockChain(c.String("rpc"), acc, scope)
	if err != nil {
		return nil, vaultHash, fmt.Errorf("init remote blockchain: %w", err)
	}

	return b, vaultHash, nil
}
