package service

import (
	"context"
	"sync"
	"time"

	dErrors "kycgate/pkg/domain-errors"
	txcontext "kycgate/pkg/platform/tx"
)

// TxRunner runs fn as one unit of work serialized on lockKey. Stores reached
// through the ctx passed to fn take part in the unit of work.
type TxRunner interface {
	RunInTx(ctx context.Context, lockKey string, fn func(ctx context.Context) error) error
}

// shardedCaseTx serializes units of work per entity with sharded mutexes and
// rolls back in-memory writes through the journal when fn fails.
const numCaseShards = 128

// defaultCaseTxTimeout is the maximum duration for a case transaction.
const defaultCaseTxTimeout = 5 * time.Second

type shardedCaseTx struct {
	shards  [numCaseShards]sync.Mutex
	timeout time.Duration
}

// NewMemoryTx returns the TxRunner used with the in-memory stores.
func NewMemoryTx(timeout time.Duration) TxRunner {
	return &shardedCaseTx{timeout: timeout}
}

func (t *shardedCaseTx) RunInTx(ctx context.Context, lockKey string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultCaseTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := hashLockKey(lockKey) % numCaseShards
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	journal := &txcontext.Journal{}
	if err := fn(txcontext.WithJournal(ctx, journal)); err != nil {
		journal.Rollback()
		return err
	}
	journal.Commit()
	return nil
}

// hashLockKey uses FNV-1a for better hash distribution than simple multiply-add.
func hashLockKey(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}

func lockKeyFor(entityType, entityID string) string {
	return entityType + ":" + entityID
}
