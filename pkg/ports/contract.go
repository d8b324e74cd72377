package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunLedgerContract runs a suite of tests to verify that a RunLedger
// implementation adheres to the interface contract.
func RunLedgerContract(t *testing.T, ledger RunLedger) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")

	newRecord := func(id, tag string) *domain.RunRecord {
		v := domain.NewViewport(100, 100, true)
		v.Update(0, 0)
		d := domain.NewExecutionDetails(tag, v)
		d.StartTime = time.Now().UTC().Truncate(time.Millisecond)
		d.Cycles = 42
		d.MoveCount = 7
		return &domain.RunRecord{
			ID:         id,
			Outcome:    domain.OutcomeCompleted,
			Output:     "out/" + id,
			RecordedAt: time.Now().UTC().Truncate(time.Millisecond),
			Details:    d,
		}
	}

	t.Run("Record and Load", func(t *testing.T) {
		id := prefix + "-load"
		rec := newRecord(id, "alpha")
		require.NoError(t, ledger.Record(ctx, rec))

		loaded, err := ledger.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, loaded.ID)
		assert.Equal(t, domain.OutcomeCompleted, loaded.Outcome)
		assert.Equal(t, rec.Output, loaded.Output)
		require.NotNil(t, loaded.Details)
		assert.Equal(t, 42, loaded.Details.Cycles)
		assert.Equal(t, 7, loaded.Details.MoveCount)
		assert.Equal(t, "alpha", loaded.Tag())
		require.NotNil(t, loaded.Details.BoundingBox)
		assert.Equal(t, 1, loaded.Details.BoundingBox.Width)

		_ = ledger.Delete(ctx, id)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := ledger.Load(ctx, prefix+"-missing")
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		id := prefix + "-delete"
		require.NoError(t, ledger.Record(ctx, newRecord(id, "")))

		require.NoError(t, ledger.Delete(ctx, id))

		_, err := ledger.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
		assert.NoError(t, ledger.Delete(ctx, id), "Delete should be idempotent")
	})

	t.Run("List by Tag", func(t *testing.T) {
		a1, a2, b1 := prefix+"-a1", prefix+"-a2", prefix+"-b1"
		tagA, tagB := prefix+"-tagA", prefix+"-tagB"
		require.NoError(t, ledger.Record(ctx, newRecord(a1, tagA)))
		require.NoError(t, ledger.Record(ctx, newRecord(a2, tagA)))
		require.NoError(t, ledger.Record(ctx, newRecord(b1, tagB)))
		defer func() {
			_ = ledger.Delete(ctx, a1)
			_ = ledger.Delete(ctx, a2)
			_ = ledger.Delete(ctx, b1)
		}()

		ids, err := ledger.List(ctx, tagA)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{a1, a2}, ids)

		all, err := ledger.List(ctx, "")
		require.NoError(t, err)
		assert.Subset(t, all, []string{a1, a2, b1})
	})
}
