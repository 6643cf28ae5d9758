package vault

import (
	"github.com/meterpay/vault-contract/common"
	"github.com/meterpay/vault-contract/contracts/vault/vaultconst"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

type (
	// Record is the persisted state of the vault. Optional fields live under
	// their own storage keys.
	Record struct {
		Owner      interop.Hash160
		Admin      interop.Hash160
		Token      interop.Hash160
		Balance    int
		MinDeposit int
		MaxDeduct  int
	}

	// RecordView is the full vault state returned by getRecord. RevenuePool
	// and AllowedDepositor are nil when not set.
	RecordView struct {
		Owner            interop.Hash160
		Admin            interop.Hash160
		Token            interop.Hash160
		Balance          int
		MinDeposit       int
		MaxDeduct        int
		RevenuePool      interface{}
		AllowedDepositor interface{}
	}

	// DeductItem is a single charge of a batchDeduct call.
	DeductItem struct {
		Amount    int
		RequestID interface{}
	}
)

const (
	recordKey      = "record"
	depositorKey   = "allowedDepositor"
	revenuePoolKey = "revenuePool"
	deployerKey    = "deployer"
)

// nolint:unused
func _deploy(data interface{}, isUpdate bool) {
	if isUpdate {
		args := data.([]interface{})
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	ctx := storage.GetContext()
	storage.Put(ctx, deployerKey, runtime.GetScriptContainer().Sender)

	runtime.Log("vault contract deployed")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(script []byte, manifest []byte, data interface{}) {
	common.CheckCommitteeWitness()

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("vault contract updated")
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// OnNEP17Payment accepts tokens sent to the vault. Before initialization any
// NEP-17 token is accepted so that the initial balance can be pre-funded,
// afterwards only the vault token is.
func OnNEP17Payment(from interop.Hash160, amount int, data interface{}) {
	rec := common.GetSerialized(storage.GetReadOnlyContext(), recordKey)
	if rec == nil {
		runtime.Log("vault: pre-funding received")
		return
	}

	if !runtime.GetCallingScriptHash().Equals(rec.(Record).Token) {
		common.AbortWithMessage("vault: only the vault token can be accepted")
	}
}

// Initialize creates the vault record. The vault token is fixed here and can't
// be changed later. Optional arguments may be nil: initialBalance and
// minDeposit default to 0, maxDeduct defaults to MaxAmountDecimal and no
// revenue pool is configured.
//
// A positive initialBalance must already be custodied by the vault. Only the
// account that deployed the contract can initialize it, so tokens sent to the
// vault before initialization can't be claimed by anyone else. Initialize
// panics with ErrAlreadyInitialized if the record exists.
func Initialize(owner, token interop.Hash160, initialBalance, minDeposit, revenuePool, maxDeduct interface{}) RecordView {
	checkHash(owner, "owner")
	checkHash(token, "token")
	common.CheckWitness(owner)

	ctx := storage.GetContext()
	if storage.Get(ctx, recordKey) != nil {
		panic(vaultconst.ErrAlreadyInitialized)
	}

	deployer := storage.Get(ctx, deployerKey)
	if deployer == nil || !runtime.CheckWitness(deployer.([]byte)) {
		panic(vaultconst.ErrUnauthorized + ": deployer only")
	}

	limit := maxAmount()
	r := Record{
		Owner:      owner,
		Admin:      owner,
		Token:      token,
		Balance:    optionalAmount(initialBalance, 0),
		MinDeposit: optionalAmount(minDeposit, 0),
		MaxDeduct:  optionalAmount(maxDeduct, limit),
	}

	if r.Balance < 0 || r.Balance > limit {
		panic(vaultconst.ErrInvalidArgument + ": initial balance out of range")
	}
	if r.MinDeposit < 0 {
		panic(vaultconst.ErrInvalidArgument + ": negative min deposit")
	}
	if r.MaxDeduct <= 0 || r.MaxDeduct > limit {
		panic(vaultconst.ErrInvalidArgument + ": max deduct out of range")
	}
	if revenuePool != nil {
		checkHash(revenuePool.(interop.Hash160), "revenue pool")
	}
	if r.Balance > 0 && custody(r.Token) < r.Balance {
		panic(vaultconst.ErrInsufficientBalance + ": initial balance is not custodied")
	}

	storeRecord(ctx, r)
	common.PutOptional(ctx, revenuePoolKey, revenuePool)

	runtime.Notify("Initialize", owner, token, r.Balance)
	return view(ctx, r)
}

// SetAllowedDepositor grants deposit rights to depositor or revokes them when
// depositor is nil. Only the owner can call it.
func SetAllowedDepositor(caller interop.Hash160, depositor interface{}) {
	ctx := storage.GetContext()
	r := loadRecord(ctx)
	checkAccess(opSetDepositor, caller, r, nil)

	if depositor != nil {
		checkHash(depositor.(interop.Hash160), "depositor")
	}

	common.PutOptional(ctx, depositorKey, depositor)

	runtime.Notify("AllowedDepositorChanged", depositor)
}

// Deposit pulls amount of the vault token from caller into custody and
// credits it to the vault. Caller must be the owner or the allowed depositor
// and must allow the token contract to check its witness.
func Deposit(caller interop.Hash160, amount int) int {
	ctx := storage.GetContext()
	r := loadRecord(ctx)
	checkAccess(opDeposit, caller, r, storage.Get(ctx, depositorKey))

	credit(r.Balance, r.MinDeposit, amount)

	pullIntoCustody(r.Token, caller, amount)

	// token may have called the vault during transfer
	r = loadRecord(ctx)
	r.Balance = credit(r.Balance, r.MinDeposit, amount)
	storeRecord(ctx, r)

	runtime.Notify("Deposit", caller, amount, r.Balance)
	return r.Balance
}

// Deduct charges amount from the vault. The value is forwarded to the revenue
// pool if one is configured, otherwise it stays in custody as revenue.
// requestID is an optional string recorded in the Deduct notification.
func Deduct(caller interop.Hash160, amount int, requestID interface{}) int {
	ctx := storage.GetContext()
	r := loadRecord(ctx)
	checkAccess(opDeduct, caller, r, nil)

	r.Balance = debit(r.Balance, r.MaxDeduct, amount)
	storeRecord(ctx, r)

	pool := storage.Get(ctx, revenuePoolKey)
	if pool != nil {
		payOut(r.Token, pool.(interop.Hash160), amount)
	}

	runtime.Notify("Deduct", caller, requestIDString(requestID), amount, r.Balance)
	return r.Balance
}

// BatchDeduct charges all items as one unit: either every item is accepted
// or the vault is left untouched. One Deduct notification is produced per
// item with the balance after it, followed by a single transfer of the sum
// to the revenue pool if one is configured.
func BatchDeduct(caller interop.Hash160, items []DeductItem) int {
	ctx := storage.GetContext()
	r := loadRecord(ctx)
	checkAccess(opDeduct, caller, r, nil)

	running := projectBatch(r.Balance, r.MaxDeduct, items)
	final := running[len(running)-1]
	total := r.Balance - final

	r.Balance = final
	storeRecord(ctx, r)

	for i := range items {
		runtime.Notify("Deduct", caller, requestIDString(items[i].RequestID), items[i].Amount, running[i])
	}

	pool := storage.Get(ctx, revenuePoolKey)
	if pool != nil {
		payOut(r.Token, pool.(interop.Hash160), total)
	}

	return final
}

// Withdraw sends amount from the vault to the owner.
func Withdraw(amount int) int {
	ctx := storage.GetContext()
	r := loadRecord(ctx)
	checkAccess(opWithdraw, r.Owner, r, nil)

	r.Balance = withdrawal(r.Balance, amount)
	storeRecord(ctx, r)

	payOut(r.Token, r.Owner, amount)

	runtime.Notify("Withdraw", r.Owner, amount, r.Balance)
	return r.Balance
}

// WithdrawTo sends amount from the vault to the given destination. Only the
// owner can call it.
func WithdrawTo(to interop.Hash160, amount int) int {
	ctx := storage.GetContext()
	r := loadRecord(ctx)
	checkAccess(opWithdraw, r.Owner, r, nil)
	checkHash(to, "destination")

	r.Balance = withdrawal(r.Balance, amount)
	storeRecord(ctx, r)

	payOut(r.Token, to, amount)

	runtime.Notify("WithdrawTo", r.Owner, to, amount, r.Balance)
	return r.Balance
}

// Distribute sends accumulated revenue (custodied tokens not backing the
// recorded balance) to the given address. Only the admin can call it.
func Distribute(caller, to interop.Hash160, amount int) {
	ctx := storage.GetReadOnlyContext()
	r := loadRecord(ctx)
	checkAccess(opDistribute, caller, r, nil)
	checkHash(to, "destination")

	if amount <= 0 {
		panic(vaultconst.ErrAmountNotPositive)
	}
	if amount > undistributed(r) {
		panic(vaultconst.ErrInsufficientBalance + ": amount exceeds undistributed revenue")
	}

	payOut(r.Token, to, amount)

	runtime.Notify("Distribute", caller, to, amount)
}

// TransferOwnership hands the vault over to newOwner. Only the owner can call
// it and newOwner must differ from the current owner.
func TransferOwnership(newOwner interop.Hash160) {
	ctx := storage.GetContext()
	r := loadRecord(ctx)
	checkAccess(opTransferOwnership, r.Owner, r, nil)
	checkHash(newOwner, "new owner")

	if newOwner.Equals(r.Owner) {
		panic(vaultconst.ErrInvalidArgument + ": new owner equals current owner")
	}

	previous := r.Owner
	r.Owner = newOwner
	storeRecord(ctx, r)

	runtime.Notify("OwnershipTransferred", previous, newOwner)
}

// TransferAdmin hands the admin role over to newAdmin. Only the admin can
// call it.
func TransferAdmin(newAdmin interop.Hash160) {
	ctx := storage.GetContext()
	r := loadRecord(ctx)
	checkAccess(opTransferAdmin, r.Admin, r, nil)
	checkHash(newAdmin, "new admin")

	previous := r.Admin
	r.Admin = newAdmin
	storeRecord(ctx, r)

	runtime.Notify("AdminTransferred", previous, newAdmin)
}

// Balance returns the recorded balance of the vault.
func Balance() int {
	return loadRecord(storage.GetReadOnlyContext()).Balance
}

// GetRecord returns the full vault state.
func GetRecord() RecordView {
	ctx := storage.GetReadOnlyContext()
	return view(ctx, loadRecord(ctx))
}

// Owner returns the vault owner.
func Owner() interop.Hash160 {
	return loadRecord(storage.GetReadOnlyContext()).Owner
}

// Admin returns the vault admin.
func Admin() interop.Hash160 {
	return loadRecord(storage.GetReadOnlyContext()).Admin
}

// Token returns the hash of the token held by the vault.
func Token() interop.Hash160 {
	return loadRecord(storage.GetReadOnlyContext()).Token
}

// MinDeposit returns the smallest accepted deposit.
func MinDeposit() int {
	return loadRecord(storage.GetReadOnlyContext()).MinDeposit
}

// MaxDeduct returns the largest accepted single deduction.
func MaxDeduct() int {
	return loadRecord(storage.GetReadOnlyContext()).MaxDeduct
}

// AllowedDepositor returns the allowed depositor or nil.
func AllowedDepositor() interface{} {
	ctx := storage.GetReadOnlyContext()
	loadRecord(ctx)
	return storage.Get(ctx, depositorKey)
}

// RevenuePool returns the revenue pool or nil.
func RevenuePool() interface{} {
	ctx := storage.GetReadOnlyContext()
	loadRecord(ctx)
	return storage.Get(ctx, revenuePoolKey)
}

// Revenue returns the amount of custodied tokens that don't back the recorded
// balance and can be distributed by the admin.
func Revenue() int {
	return undistributed(loadRecord(storage.GetReadOnlyContext()))
}

func loadRecord(ctx storage.Context) Record {
	r := common.GetSerialized(ctx, recordKey)
	if r == nil {
		panic(vaultconst.ErrNotInitialized)
	}

	return r.(Record)
}

func storeRecord(ctx storage.Context, r Record) {
	common.SetSerialized(ctx, recordKey, r)
}

func view(ctx storage.Context, r Record) RecordView {
	return RecordView{
		Owner:            r.Owner,
		Admin:            r.Admin,
		Token:            r.Token,
		Balance:          r.Balance,
		MinDeposit:       r.MinDeposit,
		MaxDeduct:        r.MaxDeduct,
		RevenuePool:      storage.Get(ctx, revenuePoolKey),
		AllowedDepositor: storage.Get(ctx, depositorKey),
	}
}

func checkHash(h interop.Hash160, name string) {
	if h == nil || len(h) != interop.Hash160Len {
		panic(vaultconst.ErrInvalidArgument + ": malformed " + name)
	}
}

func optionalAmount(v interface{}, def int) int {
	if v == nil {
		return def
	}
	return v.(int)
}

func requestIDString(v interface{}) string {
	if v == nil {
		return ""
	}
	return v.(string)
}
