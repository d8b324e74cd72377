package turtleshot_test

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/turtleshot"
	"github.com/aretw0/turtleshot/internal/adapters/memory"
	"github.com/aretw0/turtleshot/internal/testutils"
	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_SplitSuccess(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "square")
	p := turtleshot.New()

	res, err := p.Execute(context.Background(), turtleshot.Request{
		Source:       "repeat 4 [fd 100 rt 90] print \"done",
		OutputPrefix: prefix,
		Width:        400,
		Height:       400,
		Margin:       5,
		Tag:          "square",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ExitOK, res.Status)
	assert.Equal(t, domain.OutcomeCompleted, res.Outcome)

	text, err := os.ReadFile(prefix + ".txt")
	require.NoError(t, err)
	assert.Equal(t, "done\n", string(text))
	assert.FileExists(t, prefix+".png")
	assert.NoFileExists(t, prefix+".err")

	doc := testutils.ReadJSON(t, prefix+".json")
	assert.Equal(t, "square", doc["tag"])
	assert.Equal(t, 4.0, doc["moveCount"])
	assert.Equal(t, 10.0, doc["cycles"])

	// Square from (0,0) to (100,100) in turtle space, 5px margin, 400x400
	// canvas: image x 195..305, y 95..205.
	box := doc["boundingBox"].(map[string]any)
	assert.Equal(t, map[string]any{"x": 195.0, "y": 95.0}, box["min"])
	assert.Equal(t, map[string]any{"x": 305.0, "y": 205.0}, box["max"])
	assert.Equal(t, 111.0, box["width"])
	assert.Equal(t, 111.0, box["height"])
}

func TestExecute_ProgramFailure(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "broken")
	p := turtleshot.New()

	res, err := p.Execute(context.Background(), turtleshot.Request{
		Source:       "print 1 fd 10 frobnicate",
		OutputPrefix: prefix,
		Width:        100,
		Height:       100,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInterpretation)
	assert.Equal(t, domain.ExitFailure, res.Status)
	assert.Equal(t, domain.OutcomeFailed, res.Outcome)

	errText, readErr := os.ReadFile(prefix + ".err")
	require.NoError(t, readErr)
	assert.Contains(t, string(errText), "frobnicate")

	doc := testutils.ReadJSON(t, prefix+".json")
	assert.Contains(t, doc["error"], "frobnicate")
	assert.Equal(t, 0.0, doc["cycles"], "counters are not copied from a failed run")
	assert.Equal(t, 1.0, doc["moveCount"])

	text, readErr := os.ReadFile(prefix + ".txt")
	require.NoError(t, readErr)
	assert.Equal(t, "1\n", string(text))
}

func TestExecute_FailureKeepsPartialDrawing(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "partial")
	p := turtleshot.New()

	res, err := p.Execute(context.Background(), turtleshot.Request{
		Source:       "fd 20 rt 90 fd 30 frobnicate",
		OutputPrefix: prefix,
		Width:        200,
		Height:       200,
		Margin:       5,
	})
	require.Error(t, err)
	assert.Equal(t, domain.ExitFailure, res.Status)

	// Drawn points (0,0) (0,20) (30,20) plus a 5px margin, centred on a
	// 200x200 canvas: image x 95..135, y 75..105.
	f, openErr := os.Open(prefix + ".png")
	require.NoError(t, openErr)
	defer f.Close()
	img, decodeErr := png.Decode(f)
	require.NoError(t, decodeErr)
	assert.Equal(t, 41, img.Bounds().Dx())
	assert.Equal(t, 31, img.Bounds().Dy())

	doc := testutils.ReadJSON(t, prefix+".json")
	require.NotNil(t, doc["boundingBox"])
	box := doc["boundingBox"].(map[string]any)
	assert.Equal(t, map[string]any{"x": 95.0, "y": 75.0}, box["min"])
	assert.Equal(t, map[string]any{"x": 135.0, "y": 105.0}, box["max"])
	require.NotNil(t, doc["error"])
	assert.Contains(t, doc["error"], "frobnicate")
	assert.NotContains(t, doc["error"], "interpretation error", "details carry the raw error text")
}

func TestExecute_Combined(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "bundle")
	p := turtleshot.New()

	res, err := p.Execute(context.Background(), turtleshot.Request{
		Source:       "pr \"hi fd 20",
		OutputPrefix: prefix,
		Combined:     true,
		Width:        100,
		Height:       100,
	})
	require.NoError(t, err)
	assert.Equal(t, prefix, res.Output(true))

	doc := testutils.ReadJSON(t, prefix)
	assert.Equal(t, "hi\n", doc["text"])
	assert.Contains(t, doc["image"], "data:image/png;base64,")
	assert.Contains(t, doc, "details")
	assert.NoFileExists(t, prefix+".txt")
	assert.NoFileExists(t, prefix+".png")
	assert.NoFileExists(t, prefix+".json")
}

func TestExecute_SourceReadFailure(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "missing")
	p := turtleshot.New()

	res, err := p.Execute(context.Background(), turtleshot.Request{
		SourcePath:   filepath.Join(dir, "nope.logo"),
		OutputPrefix: prefix,
		Width:        50,
		Height:       50,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceRead)
	assert.Equal(t, domain.ExitFailure, res.Status)
	assert.FileExists(t, prefix+".err")
	assert.FileExists(t, prefix+".png")
}

func TestExecute_SourcePath(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.logo")
	require.NoError(t, os.WriteFile(src, []byte("print 2 * 21"), 0644))

	_, err := turtleshot.New().Execute(context.Background(), turtleshot.Request{
		SourcePath:   src,
		Source:       "ignored",
		OutputPrefix: filepath.Join(dir, "out"),
		Width:        50,
		Height:       50,
	})
	require.NoError(t, err)

	text, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "42\n", string(text))
}

func TestExecute_TranscriptUnavailable(t *testing.T) {
	res, err := turtleshot.New().Execute(context.Background(), turtleshot.Request{
		Source:       "fd 1",
		OutputPrefix: filepath.Join(t.TempDir(), "no", "such", "dir", "out"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Nil(t, res)
}

func TestExecute_FatalDoubleFailure(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "out")
	// A directory where the image should go makes every persistence
	// attempt fail.
	require.NoError(t, os.Mkdir(prefix+".png", 0755))

	var exits []int
	ledger := memory.New()
	p := turtleshot.New(
		turtleshot.WithExit(func(code int) { exits = append(exits, code) }),
		turtleshot.WithLedger(ledger),
	)

	res, err := p.Execute(context.Background(), turtleshot.Request{
		Source:       "fd 10",
		OutputPrefix: prefix,
		Width:        50,
		Height:       50,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, domain.ExitFatal, res.Status)
	assert.Equal(t, []int{domain.ExitFatal}, exits)

	ids, listErr := ledger.List(context.Background(), "")
	require.NoError(t, listErr)
	assert.Empty(t, ids, "fatal runs are not recorded")
}

func TestExecute_RecordsInLedger(t *testing.T) {
	dir := t.TempDir()
	ledger := memory.New()
	p := turtleshot.New(
		turtleshot.WithLedger(ledger),
		turtleshot.WithIDGenerator(func() string { return "run-1" }),
	)

	res, err := p.Execute(context.Background(), turtleshot.Request{
		Source:       "fd 10",
		OutputPrefix: filepath.Join(dir, "out"),
		Tag:          "batch",
		Width:        50,
		Height:       50,
	})
	require.NoError(t, err)
	assert.Equal(t, "run-1", res.ID)

	rec, err := ledger.Load(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompleted, rec.Outcome)
	assert.Equal(t, filepath.Join(dir, "out"), rec.Output)
	assert.Equal(t, "batch", rec.Tag())
}

type failingLedger struct{ memory.Ledger }

func (*failingLedger) Record(context.Context, *domain.RunRecord) error {
	return errors.New("ledger down")
}

func TestExecute_LedgerFailureIsNotEscalated(t *testing.T) {
	p := turtleshot.New(turtleshot.WithLedger(&failingLedger{}))
	res, err := p.Execute(context.Background(), turtleshot.Request{
		Source:       "fd 10",
		OutputPrefix: filepath.Join(t.TempDir(), "out"),
		Width:        50,
		Height:       50,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ExitOK, res.Status)
}

func TestExecute_CycleCeiling(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "loop")
	res, err := turtleshot.New().Execute(context.Background(), turtleshot.Request{
		Source:       "to spin\n rt 1 spin\nend\nspin",
		OutputPrefix: prefix,
		Width:        50,
		Height:       50,
		MaxCycles:    500,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCycleLimit)
	assert.Equal(t, domain.ExitFailure, res.Status)
}
