// Package vault contains RPC wrappers for the Vault contract.
package vault

import (
	"errors"
	"fmt"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"math/big"
	"unicode/utf8"
)

// VaultRecordView is a contract-specific vault.RecordView type used by its methods.
type VaultRecordView struct {
	Owner util.Uint160
	Admin util.Uint160
	Token util.Uint160
	Balance *big.Int
	MinDeposit *big.Int
	MaxDeduct *big.Int
	RevenuePool *util.Uint160
	AllowedDepositor *util.Uint160
}

// VaultDeductItem is a contract-specific vault.DeductItem type used by its methods.
// Nil RequestID is sent as null.
type VaultDeductItem struct {
	Amount *big.Int
	RequestID *string
}

// InitializeEvent represents "Initialize" event emitted by the contract.
type InitializeEvent struct {
	Owner util.Uint160
	Token util.Uint160
	Balance *big.Int
}

// AllowedDepositorChangedEvent represents "AllowedDepositorChanged" event emitted by the contract.
type AllowedDepositorChangedEvent struct {
	Depositor *util.Uint160
}

// DepositEvent represents "Deposit" event emitted by the contract.
type DepositEvent struct {
	From util.Uint160
	Amount *big.Int
	Balance *big.Int
}

// DeductEvent represents "Deduct" event emitted by the contract.
type DeductEvent struct {
	Caller util.Uint160
	RequestID string
	Amount *big.Int
	Balance *big.Int
}

// WithdrawEvent represents "Withdraw" event emitted by the contract.
type WithdrawEvent struct {
	Owner util.Uint160
	Amount *big.Int
	Balance *big.Int
}

// WithdrawToEvent represents "WithdrawTo" event emitted by the contract.
type WithdrawToEvent struct {
	Owner util.Uint160
	To util.Uint160
	Amount *big.Int
	Balance *big.Int
}

// DistributeEvent represents "Distribute" event emitted by the contract.
type DistributeEvent struct {
	Admin util.Uint160
	To util.Uint160
	Amount *big.Int
}

// OwnershipTransferredEvent represents "OwnershipTransferred" event emitted by the contract.
type OwnershipTransferredEvent struct {
	Previous util.Uint160
	Owner util.Uint160
}

// AdminTransferredEvent represents "AdminTransferred" event emitted by the contract.
type AdminTransferredEvent struct {
	Previous util.Uint160
	Admin util.Uint160
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeRun(script []byte) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
	SendRun(script []byte) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	hash util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// Admin invokes `admin` method of contract.
func (c *ContractReader) Admin() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "admin"))
}

// AllowedDepositor invokes `allowedDepositor` method of contract.
// Nil is returned if no depositor is allowed.
func (c *ContractReader) AllowedDepositor() (*util.Uint160, error) {
	return itemToOptionalUint160(unwrap.Item(c.invoker.Call(c.hash, "allowedDepositor")))
}

// Balance invokes `balance` method of contract.
func (c *ContractReader) Balance() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "balance"))
}

// GetRecord invokes `getRecord` method of contract.
func (c *ContractReader) GetRecord() (*VaultRecordView, error) {
	return itemToVaultRecordView(unwrap.Item(c.invoker.Call(c.hash, "getRecord")))
}

// MaxDeduct invokes `maxDeduct` method of contract.
func (c *ContractReader) MaxDeduct() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "maxDeduct"))
}

// MinDeposit invokes `minDeposit` method of contract.
func (c *ContractReader) MinDeposit() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "minDeposit"))
}

// Owner invokes `owner` method of contract.
func (c *ContractReader) Owner() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "owner"))
}

// Revenue invokes `revenue` method of contract.
func (c *ContractReader) Revenue() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "revenue"))
}

// RevenuePool invokes `revenuePool` method of contract.
// Nil is returned if no revenue pool is configured.
func (c *ContractReader) RevenuePool() (*util.Uint160, error) {
	return itemToOptionalUint160(unwrap.Item(c.invoker.Call(c.hash, "revenuePool")))
}

// Token invokes `token` method of contract.
func (c *ContractReader) Token() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "token"))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// BatchDeduct creates a transaction invoking `batchDeduct` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) BatchDeduct(caller util.Uint160, items []*VaultDeductItem) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "batchDeduct", caller, deductItemsToParam(items))
}

// BatchDeductTransaction creates a transaction invoking `batchDeduct` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) BatchDeductTransaction(caller util.Uint160, items []*VaultDeductItem) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "batchDeduct", caller, deductItemsToParam(items))
}

// BatchDeductUnsigned creates a transaction invoking `batchDeduct` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) BatchDeductUnsigned(caller util.Uint160, items []*VaultDeductItem) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "batchDeduct", nil, caller, deductItemsToParam(items))
}

// Deduct creates a transaction invoking `deduct` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Deduct(caller util.Uint160, amount *big.Int, requestID *string) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "deduct", caller, amount, optionalString(requestID))
}

// DeductTransaction creates a transaction invoking `deduct` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) DeductTransaction(caller util.Uint160, amount *big.Int, requestID *string) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "deduct", caller, amount, optionalString(requestID))
}

// DeductUnsigned creates a transaction invoking `deduct` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) DeductUnsigned(caller util.Uint160, amount *big.Int, requestID *string) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "deduct", nil, caller, amount, optionalString(requestID))
}

// Deposit creates a transaction invoking `deposit` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Deposit(caller util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "deposit", caller, amount)
}

// DepositTransaction creates a transaction invoking `deposit` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) DepositTransaction(caller util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "deposit", caller, amount)
}

// DepositUnsigned creates a transaction invoking `deposit` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) DepositUnsigned(caller util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "deposit", nil, caller, amount)
}

// Distribute creates a transaction invoking `distribute` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Distribute(caller util.Uint160, to util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "distribute", caller, to, amount)
}

// DistributeTransaction creates a transaction invoking `distribute` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) DistributeTransaction(caller util.Uint160, to util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "distribute", caller, to, amount)
}

// DistributeUnsigned creates a transaction invoking `distribute` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) DistributeUnsigned(caller util.Uint160, to util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "distribute", nil, caller, to, amount)
}

// Initialize creates a transaction invoking `initialize` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Initialize(owner util.Uint160, token util.Uint160, initialBalance *big.Int, minDeposit *big.Int, revenuePool *util.Uint160, maxDeduct *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "initialize", initializeParams(owner, token, initialBalance, minDeposit, revenuePool, maxDeduct)...)
}

// InitializeTransaction creates a transaction invoking `initialize` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) InitializeTransaction(owner util.Uint160, token util.Uint160, initialBalance *big.Int, minDeposit *big.Int, revenuePool *util.Uint160, maxDeduct *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "initialize", initializeParams(owner, token, initialBalance, minDeposit, revenuePool, maxDeduct)...)
}

// InitializeUnsigned creates a transaction invoking `initialize` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) InitializeUnsigned(owner util.Uint160, token util.Uint160, initialBalance *big.Int, minDeposit *big.Int, revenuePool *util.Uint160, maxDeduct *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "initialize", nil, initializeParams(owner, token, initialBalance, minDeposit, revenuePool, maxDeduct)...)
}

// SetAllowedDepositor creates a transaction invoking `setAllowedDepositor` method of the contract.
// Nil depositor revokes deposit rights.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) SetAllowedDepositor(caller util.Uint160, depositor *util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "setAllowedDepositor", caller, optionalUint160(depositor))
}

// SetAllowedDepositorTransaction creates a transaction invoking `setAllowedDepositor` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) SetAllowedDepositorTransaction(caller util.Uint160, depositor *util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "setAllowedDepositor", caller, optionalUint160(depositor))
}

// SetAllowedDepositorUnsigned creates a transaction invoking `setAllowedDepositor` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) SetAllowedDepositorUnsigned(caller util.Uint160, depositor *util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "setAllowedDepositor", nil, caller, optionalUint160(depositor))
}

// TransferAdmin creates a transaction invoking `transferAdmin` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) TransferAdmin(newAdmin util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "transferAdmin", newAdmin)
}

// TransferAdminTransaction creates a transaction invoking `transferAdmin` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) TransferAdminTransaction(newAdmin util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "transferAdmin", newAdmin)
}

// TransferAdminUnsigned creates a transaction invoking `transferAdmin` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) TransferAdminUnsigned(newAdmin util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "transferAdmin", nil, newAdmin)
}

// TransferOwnership creates a transaction invoking `transferOwnership` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) TransferOwnership(newOwner util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "transferOwnership", newOwner)
}

// TransferOwnershipTransaction creates a transaction invoking `transferOwnership` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) TransferOwnershipTransaction(newOwner util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "transferOwnership", newOwner)
}

// TransferOwnershipUnsigned creates a transaction invoking `transferOwnership` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) TransferOwnershipUnsigned(newOwner util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "transferOwnership", nil, newOwner)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(script []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", script, manifest, data)
}

// UpdateTransaction creates a transaction invoking `update` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UpdateTransaction(script []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "update", script, manifest, data)
}

// UpdateUnsigned creates a transaction invoking `update` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UpdateUnsigned(script []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "update", nil, script, manifest, data)
}

// Withdraw creates a transaction invoking `withdraw` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Withdraw(amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "withdraw", amount)
}

// WithdrawTransaction creates a transaction invoking `withdraw` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) WithdrawTransaction(amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "withdraw", amount)
}

// WithdrawUnsigned creates a transaction invoking `withdraw` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) WithdrawUnsigned(amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "withdraw", nil, amount)
}

// WithdrawTo creates a transaction invoking `withdrawTo` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) WithdrawTo(to util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "withdrawTo", to, amount)
}

// WithdrawToTransaction creates a transaction invoking `withdrawTo` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) WithdrawToTransaction(to util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "withdrawTo", to, amount)
}

// WithdrawToUnsigned creates a transaction invoking `withdrawTo` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) WithdrawToUnsigned(to util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "withdrawTo", nil, to, amount)
}

func initializeParams(owner util.Uint160, token util.Uint160, initialBalance *big.Int, minDeposit *big.Int, revenuePool *util.Uint160, maxDeduct *big.Int) []any {
	return []any{owner, token, optionalBigInt(initialBalance), optionalBigInt(minDeposit), optionalUint160(revenuePool), optionalBigInt(maxDeduct)}
}

func deductItemsToParam(items []*VaultDeductItem) []any {
	res := make([]any, 0, len(items))
	for _, it := range items {
		res = append(res, []any{it.Amount, optionalString(it.RequestID)})
	}
	return res
}

func optionalBigInt(v *big.Int) any {
	if v == nil {
		return nil
	}
	return v
}

func optionalUint160(v *util.Uint160) any {
	if v == nil {
		return nil
	}
	return *v
}

func optionalString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

// itemToVaultRecordView converts stack item into *VaultRecordView.
func itemToVaultRecordView(item stackitem.Item, err error) (*VaultRecordView, error) {
	if err != nil {
		return nil, err
	}
	var res = new(VaultRecordView)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of VaultRecordView from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *VaultRecordView) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 8 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err error
	)
	index++
	res.Owner, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Owner: %w", err)
	}

	index++
	res.Admin, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Admin: %w", err)
	}

	index++
	res.Token, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Token: %w", err)
	}

	index++
	res.Balance, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Balance: %w", err)
	}

	index++
	res.MinDeposit, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field MinDeposit: %w", err)
	}

	index++
	res.MaxDeduct, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field MaxDeduct: %w", err)
	}

	index++
	res.RevenuePool, err = itemToOptionalUint160(arr[index], nil)
	if err != nil {
		return fmt.Errorf("field RevenuePool: %w", err)
	}

	index++
	res.AllowedDepositor, err = itemToOptionalUint160(arr[index], nil)
	if err != nil {
		return fmt.Errorf("field AllowedDepositor: %w", err)
	}

	return nil
}

func itemToUint160(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	u, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return util.Uint160{}, err
	}
	return u, nil
}

// itemToOptionalUint160 converts stack item into *util.Uint160, Null item
// is converted to nil.
func itemToOptionalUint160(item stackitem.Item, err error) (*util.Uint160, error) {
	if err != nil {
		return nil, err
	}
	if _, ok := item.(stackitem.Null); ok {
		return nil, nil
	}
	u, err := itemToUint160(item)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func itemToUTF8String(item stackitem.Item) (string, error) {
	b, err := item.TryBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.New("not a UTF-8 string")
	}
	return string(b), nil
}

// eventsFromApplicationLog calls fn for every event with the given name from
// the provided [result.ApplicationLog].
func eventsFromApplicationLog(log *result.ApplicationLog, name string, fn func(*stackitem.Array) error) error {
	if log == nil {
		return errors.New("nil application log")
	}

	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != name {
				continue
			}
			err := fn(e.Item)
			if err != nil {
				return fmt.Errorf("failed to deserialize %sEvent from stackitem (execution #%d, event #%d): %w", name, i, j, err)
			}
		}
	}

	return nil
}

func checkEventArray(item *stackitem.Array, n int) ([]stackitem.Item, error) {
	if item == nil {
		return nil, errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, errors.New("not an array")
	}
	if len(arr) != n {
		return nil, errors.New("wrong number of structure elements")
	}
	return arr, nil
}

// InitializeEventsFromApplicationLog retrieves a set of all emitted events
// with "Initialize" name from the provided [result.ApplicationLog].
func InitializeEventsFromApplicationLog(log *result.ApplicationLog) ([]*InitializeEvent, error) {
	var res []*InitializeEvent
	err := eventsFromApplicationLog(log, "Initialize", func(item *stackitem.Array) error {
		event := new(InitializeEvent)
		err := event.FromStackItem(item)
		if err == nil {
			res = append(res, event)
		}
		return err
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to InitializeEvent or
// returns an error if it's not possible to do to so.
func (e *InitializeEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := checkEventArray(item, 3)
	if err != nil {
		return err
	}

	var index = -1
	index++
	e.Owner, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Owner: %w", err)
	}

	index++
	e.Token, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Token: %w", err)
	}

	index++
	e.Balance, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Balance: %w", err)
	}

	return nil
}

// AllowedDepositorChangedEventsFromApplicationLog retrieves a set of all emitted events
// with "AllowedDepositorChanged" name from the provided [result.ApplicationLog].
func AllowedDepositorChangedEventsFromApplicationLog(log *result.ApplicationLog) ([]*AllowedDepositorChangedEvent, error) {
	var res []*AllowedDepositorChangedEvent
	err := eventsFromApplicationLog(log, "AllowedDepositorChanged", func(item *stackitem.Array) error {
		event := new(AllowedDepositorChangedEvent)
		err := event.FromStackItem(item)
		if err == nil {
			res = append(res, event)
		}
		return err
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to AllowedDepositorChangedEvent or
// returns an error if it's not possible to do to so.
func (e *AllowedDepositorChangedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := checkEventArray(item, 1)
	if err != nil {
		return err
	}

	e.Depositor, err = itemToOptionalUint160(arr[0], nil)
	if err != nil {
		return fmt.Errorf("field Depositor: %w", err)
	}

	return nil
}

// DepositEventsFromApplicationLog retrieves a set of all emitted events
// with "Deposit" name from the provided [result.ApplicationLog].
func DepositEventsFromApplicationLog(log *result.ApplicationLog) ([]*DepositEvent, error) {
	var res []*DepositEvent
	err := eventsFromApplicationLog(log, "Deposit", func(item *stackitem.Array) error {
		event := new(DepositEvent)
		err := event.FromStackItem(item)
		if err == nil {
			res = append(res, event)
		}
		return err
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to DepositEvent or
// returns an error if it's not possible to do to so.
func (e *DepositEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := checkEventArray(item, 3)
	if err != nil {
		return err
	}

	var index = -1
	index++
	e.From, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field From: %w", err)
	}

	index++
	e.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	index++
	e.Balance, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Balance: %w", err)
	}

	return nil
}

// DeductEventsFromApplicationLog retrieves a set of all emitted events
// with "Deduct" name from the provided [result.ApplicationLog].
func DeductEventsFromApplicationLog(log *result.ApplicationLog) ([]*DeductEvent, error) {
	var res []*DeductEvent
	err := eventsFromApplicationLog(log, "Deduct", func(item *stackitem.Array) error {
		event := new(DeductEvent)
		err := event.FromStackItem(item)
		if err == nil {
			res = append(res, event)
		}
		return err
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to DeductEvent or
// returns an error if it's not possible to do to so.
func (e *DeductEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := checkEventArray(item, 4)
	if err != nil {
		return err
	}

	var index = -1
	index++
	e.Caller, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Caller: %w", err)
	}

	index++
	e.RequestID, err = itemToUTF8String(arr[index])
	if err != nil {
		return fmt.Errorf("field RequestID: %w", err)
	}

	index++
	e.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	index++
	e.Balance, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Balance: %w", err)
	}

	return nil
}

// WithdrawEventsFromApplicationLog retrieves a set of all emitted events
// with "Withdraw" name from the provided [result.ApplicationLog].
func WithdrawEventsFromApplicationLog(log *result.ApplicationLog) ([]*WithdrawEvent, error) {
	var res []*WithdrawEvent
	err := eventsFromApplicationLog(log, "Withdraw", func(item *stackitem.Array) error {
		event := new(WithdrawEvent)
		err := event.FromStackItem(item)
		if err == nil {
			res = append(res, event)
		}
		return err
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to WithdrawEvent or
// returns an error if it's not possible to do to so.
func (e *WithdrawEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := checkEventArray(item, 3)
	if err != nil {
		return err
	}

	var index = -1
	index++
	e.Owner, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Owner: %w", err)
	}

	index++
	e.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	index++
	e.Balance, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Balance: %w", err)
	}

	return nil
}

// WithdrawToEventsFromApplicationLog retrieves a set of all emitted events
// with "WithdrawTo" name from the provided [result.ApplicationLog].
func WithdrawToEventsFromApplicationLog(log *result.ApplicationLog) ([]*WithdrawToEvent, error) {
	var res []*WithdrawToEvent
	err := eventsFromApplicationLog(log, "WithdrawTo", func(item *stackitem.Array) error {
		event := new(WithdrawToEvent)
		err := event.FromStackItem(item)
		if err == nil {
			res = append(res, event)
		}
		return err
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to WithdrawToEvent or
// returns an error if it's not possible to do to so.
func (e *WithdrawToEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := checkEventArray(item, 4)
	if err != nil {
		return err
	}

	var index = -1
	index++
	e.Owner, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Owner: %w", err)
	}

	index++
	e.To, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field To: %w", err)
	}

	index++
	e.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	index++
	e.Balance, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Balance: %w", err)
	}

	return nil
}

// DistributeEventsFromApplicationLog retrieves a set of all emitted events
// with "Distribute" name from the provided [result.ApplicationLog].
func DistributeEventsFromApplicationLog(log *result.ApplicationLog) ([]*DistributeEvent, error) {
	var res []*DistributeEvent
	err := eventsFromApplicationLog(log, "Distribute", func(item *stackitem.Array) error {
		event := new(DistributeEvent)
		err := event.FromStackItem(item)
		if err == nil {
			res = append(res, event)
		}
		return err
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to DistributeEvent or
// returns an error if it's not possible to do to so.
func (e *DistributeEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := checkEventArray(item, 3)
	if err != nil {
		return err
	}

	var index = -1
	index++
	e.Admin, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Admin: %w", err)
	}

	index++
	e.To, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field To: %w", err)
	}

	index++
	e.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// OwnershipTransferredEventsFromApplicationLog retrieves a set of all emitted events
// with "OwnershipTransferred" name from the provided [result.ApplicationLog].
func OwnershipTransferredEventsFromApplicationLog(log *result.ApplicationLog) ([]*OwnershipTransferredEvent, error) {
	var res []*OwnershipTransferredEvent
	err := eventsFromApplicationLog(log, "OwnershipTransferred", func(item *stackitem.Array) error {
		event := new(OwnershipTransferredEvent)
		err := event.FromStackItem(item)
		if err == nil {
			res = append(res, event)
		}
		return err
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to OwnershipTransferredEvent or
// returns an error if it's not possible to do to so.
func (e *OwnershipTransferredEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := checkEventArray(item, 2)
	if err != nil {
		return err
	}

	e.Previous, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field Previous: %w", err)
	}

	e.Owner, err = itemToUint160(arr[1])
	if err != nil {
		return fmt.Errorf("field Owner: %w", err)
	}

	return nil
}

// AdminTransferredEventsFromApplicationLog retrieves a set of all emitted events
// with "AdminTransferred" name from the provided [result.ApplicationLog].
func AdminTransferredEventsFromApplicationLog(log *result.ApplicationLog) ([]*AdminTransferredEvent, error) {
	var res []*AdminTransferredEvent
	err := eventsFromApplicationLog(log, "AdminTransferred", func(item *stackitem.Array) error {
		event := new(AdminTransferredEvent)
		err := event.FromStackItem(item)
		if err == nil {
			res = append(res, event)
		}
		return err
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to AdminTransferredEvent or
// returns an error if it's not possible to do to so.
func (e *AdminTransferredEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := checkEventArray(item, 2)
	if err != nil {
		return err
	}

	e.Previous, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field Previous: %w", err)
	}

	e.Admin, err = itemToUint160(arr[1])
	if err != nil {
		return fmt.Errorf("field Admin: %w", err)
	}

	return nil
}
