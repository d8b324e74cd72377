package middleware_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/turtleshot/internal/adapters/memory"
	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/persistence/middleware"
	"github.com/aretw0/turtleshot/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failedRecord(id, errText string) *domain.RunRecord {
	d := domain.NewExecutionDetails("batch", domain.NewViewport(10, 10, true))
	d.SetError(errText)
	return &domain.RunRecord{ID: id, Outcome: domain.OutcomeFailed, Output: "out/" + id, Details: d}
}

func key(b byte) []byte { return bytes.Repeat([]byte{b}, 32) }

func TestRedactMiddleware_Masking(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	mw, err := middleware.NewRedactMiddleware([]string{`/home/[^/ ]+`, `(?i)token=\S+`})
	require.NoError(t, err)
	ledger := mw(backend)

	rec := failedRecord("r1", "source read error: read /home/alice/prog.logo token=abc123: denied")
	require.NoError(t, ledger.Record(ctx, rec))

	// The caller's record is not modified.
	assert.Contains(t, *rec.Details.Error, "alice")

	stored, err := backend.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "source read error: read ***/prog.logo *** denied", *stored.Details.Error)
}

func TestRedactMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewRedactMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestSealMiddleware_RoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	mw, err := middleware.NewSealMiddleware(middleware.SealConfig{ActiveKey: key(1)})
	require.NoError(t, err)
	ledger := mw(backend)

	require.NoError(t, ledger.Record(ctx, failedRecord("r1", "interpretation error: boom")))

	stored, err := backend.Load(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(*stored.Details.Error, "sealed:"))
	assert.NotContains(t, *stored.Details.Error, "boom")
	assert.Equal(t, "batch", stored.Tag(), "tag stays in clear for listing")

	loaded, err := ledger.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "interpretation error: boom", *loaded.Details.Error)
}

func TestSealMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()

	oldMW, err := middleware.NewSealMiddleware(middleware.SealConfig{ActiveKey: key(1)})
	require.NoError(t, err)
	require.NoError(t, oldMW(backend).Record(ctx, failedRecord("r1", "old secret")))

	rotated, err := middleware.NewSealMiddleware(middleware.SealConfig{ActiveKey: key(2), FallbackKeys: [][]byte{key(1)}})
	require.NoError(t, err)
	loaded, err := rotated(backend).Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "old secret", *loaded.Details.Error)

	wrong, err := middleware.NewSealMiddleware(middleware.SealConfig{ActiveKey: key(3)})
	require.NoError(t, err)
	_, err = wrong(backend).Load(ctx, "r1")
	assert.ErrorContains(t, err, "decryption failed")
}

func TestSealMiddleware_PlainRecordsPassThrough(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	require.NoError(t, backend.Record(ctx, failedRecord("legacy", "plain text")))

	mw, err := middleware.NewSealMiddleware(middleware.SealConfig{ActiveKey: key(1)})
	require.NoError(t, err)
	loaded, err := mw(backend).Load(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, "plain text", *loaded.Details.Error)
}

func TestSealMiddleware_KeyLength(t *testing.T) {
	_, err := middleware.NewSealMiddleware(middleware.SealConfig{ActiveKey: []byte("short")})
	assert.ErrorContains(t, err, "32 bytes")
}

func TestChain_Contract(t *testing.T) {
	redact, err := middleware.NewRedactMiddleware([]string{"secret"})
	require.NoError(t, err)
	seal, err := middleware.NewSealMiddleware(middleware.SealConfig{ActiveKey: key(7)})
	require.NoError(t, err)

	ledger := middleware.Chain(memory.New(), redact, seal)
	ports.RunLedgerContract(t, ledger)

	ctx := context.Background()
	require.NoError(t, ledger.Record(ctx, failedRecord("chained", "a secret word")))
	loaded, err := ledger.Load(ctx, "chained")
	require.NoError(t, err)
	assert.Equal(t, "a *** word", *loaded.Details.Error)
}
