package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/turtleshot/internal/adapters/memory"
	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedger_Contract(t *testing.T) {
	ports.RunLedgerContract(t, memory.New())
}

func TestMemoryLedger_Isolation(t *testing.T) {
	l := memory.New()
	ctx := context.Background()

	rec := &domain.RunRecord{ID: "r", Outcome: domain.OutcomeCompleted}
	require.NoError(t, l.Record(ctx, rec))
	rec.Outcome = domain.OutcomeFailed

	loaded, err := l.Load(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompleted, loaded.Outcome)
}
