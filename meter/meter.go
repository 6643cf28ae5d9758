// Package meter accumulates metered charges and submits them to the Vault
// contract as batchDeduct transactions.
package meter

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"github.com/meterpay/vault-contract/rpc/vault"
	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

// DefaultBatchSize is the number of charges sent in a single transaction if
// Prm.BatchSize is not set.
const DefaultBatchSize = 64

// ErrInvalidCharge is returned by Meter.Charge for charges the vault would
// reject anyway.
var ErrInvalidCharge = errors.New("invalid charge")

// Deductor sends batchDeduct transactions to the vault. It's implemented by
// [vault.Contract].
type Deductor interface {
	BatchDeduct(caller util.Uint160, items []*vault.VaultDeductItem) (util.Uint256, uint32, error)
}

// Prm groups parameters of the Meter.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Vault contract client.
	Deductor Deductor

	// Account the charges are made on behalf of, must be the vault owner or
	// admin and must sign the transactions.
	Caller util.Uint160

	// Max number of charges per transaction, DefaultBatchSize if zero.
	BatchSize int

	// Optional local copy of the vault max deduct limit. Charges above it are
	// rejected without sending anything.
	MaxDeduct *big.Int
}

// Meter collects charges and sends them in batches. It's safe for
// concurrent use.
type Meter struct {
	prm Prm

	flushMtx sync.Mutex

	mtx     sync.Mutex
	pending []*vault.VaultDeductItem
}

// Submission describes a sent batchDeduct transaction.
type Submission struct {
	Hash            util.Uint256
	ValidUntilBlock uint32
	Items           []*vault.VaultDeductItem
}

// New creates a Meter.
func New(prm Prm) (*Meter, error) {
	if prm.Deductor == nil {
		return nil, errors.New("missing deductor")
	}
	if prm.BatchSize < 0 {
		return nil, fmt.Errorf("negative batch size %d", prm.BatchSize)
	}
	if prm.BatchSize == 0 {
		prm.BatchSize = DefaultBatchSize
	}
	if prm.Logger == nil {
		prm.Logger = zap.NewNop()
	}

	return &Meter{prm: prm}, nil
}

// NewRequestID returns a new unique request identifier.
func NewRequestID() string {
	id := uuid.New()
	return base58.Encode(id[:])
}

// Charge queues a charge of amount. Empty requestID is replaced with a new
// one, the resulting ID is returned. The charge is sent by the next Flush.
func (m *Meter) Charge(amount *big.Int, requestID string) (string, error) {
	if amount == nil || amount.Sign() <= 0 {
		return "", fmt.Errorf("%w: %s", ErrInvalidCharge, vault.ErrAmountNotPositive)
	}
	if m.prm.MaxDeduct != nil && amount.Cmp(m.prm.MaxDeduct) > 0 {
		return "", fmt.Errorf("%w: %s", ErrInvalidCharge, vault.ErrExceedsCap)
	}
	if requestID == "" {
		requestID = NewRequestID()
	}

	m.mtx.Lock()
	m.pending = append(m.pending, &vault.VaultDeductItem{
		Amount:    new(big.Int).Set(amount),
		RequestID: &requestID,
	})
	m.mtx.Unlock()

	return requestID, nil
}

// Pending returns the number of queued charges.
func (m *Meter) Pending() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return len(m.pending)
}

// Flush sends all charges queued before the call in batches of
// Prm.BatchSize. Each batch is applied by the vault as a whole or not at all,
// so on failure the failed batch and all following ones are queued again
// ahead of newer charges and the error is returned along with the batches
// sent so far. Charges can be queued while Flush sends transactions,
// concurrent Flush calls are serialized.
func (m *Meter) Flush() ([]Submission, error) {
	m.flushMtx.Lock()
	defer m.flushMtx.Unlock()

	m.mtx.Lock()
	queued := m.pending
	m.pending = nil
	m.mtx.Unlock()

	var res []Submission
	for len(queued) > 0 {
		n := m.prm.BatchSize
		if n > len(queued) {
			n = len(queued)
		}
		batch := queued[:n]

		h, vub, err := m.prm.Deductor.BatchDeduct(m.prm.Caller, batch)
		if err != nil {
			kind, _ := vault.FaultKind(err.Error())
			m.prm.Logger.Error("failed to send deduction batch",
				zap.Int("items", n),
				zap.Stringer("total", total(batch)),
				zap.String("kind", kind),
				zap.Error(err))

			m.mtx.Lock()
			m.pending = append(queued, m.pending...)
			m.mtx.Unlock()

			return res, fmt.Errorf("send batch of %d charges: %w", n, err)
		}

		m.prm.Logger.Info("deduction batch sent",
			zap.Stringer("tx", h),
			zap.Uint32("vub", vub),
			zap.Int("items", n),
			zap.Stringer("total", total(batch)))

		res = append(res, Submission{Hash: h, ValidUntilBlock: vub, Items: batch})
		queued = queued[n:]
	}

	return res, nil
}

// Drop discards all queued charges and returns them. Charges being sent by
// Flush at the moment aren't affected.
func (m *Meter) Drop() []*vault.VaultDeductItem {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	res := m.pending
	m.pending = nil
	return res
}

func total(items []*vault.VaultDeductItem) *big.Int {
	sum := new(big.Int)
	for _, it := range items {
		sum.Add(sum, it.Amount)
	}
	return sum
}
