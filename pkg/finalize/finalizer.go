// Package finalize turns a settled run, successful or not, into durable
// artifacts: a cropped raster, the transcript, and the execution details.
package finalize

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/turtleshot/pkg/domain"
)

// DefaultMargin is the number of pixels kept around the drawn region.
const DefaultMargin = 5

// Bundle is the single document written in combined mode.
type Bundle struct {
	Image   string                   `json:"image"`
	Text    string                   `json:"text"`
	Details *domain.ExecutionDetails `json:"details"`
}

// Option defines a functional option for configuring the Finalizer.
type Option func(*Finalizer)

// WithMargin sets the crop margin in pixels.
func WithMargin(margin int) Option {
	return func(f *Finalizer) {
		f.margin = margin
	}
}

// WithCombined selects the single-file layout.
func WithCombined(combined bool) Option {
	return func(f *Finalizer) {
		f.combined = combined
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Finalizer) {
		f.logger = logger
	}
}

// Finalizer persists the artifacts of one run in either the split or the
// combined layout.
type Finalizer struct {
	outputs    domain.OutputSet
	transcript io.Closer
	margin     int
	combined   bool
	logger     *slog.Logger

	box *domain.Viewport
}

// New returns a Finalizer writing to outputs. transcript is the stream the
// program wrote to during the run; it is closed before anything reads it.
func New(outputs domain.OutputSet, transcript io.Closer, opts ...Option) *Finalizer {
	f := &Finalizer{
		outputs:    outputs,
		transcript: transcript,
		margin:     DefaultMargin,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Finalize closes the transcript, crops raster to the drawn region and writes
// the artifacts. runErr is the failure of the run, or nil.
//
// A failed run additionally gets its error text written to the error
// artifact and recorded in details before any document is serialized.
func (f *Finalizer) Finalize(details *domain.ExecutionDetails, raster []byte, runErr error) error {
	if err := f.transcript.Close(); err != nil {
		return err
	}

	if runErr != nil {
		text := errorText(runErr)
		details.SetError(text)
		if err := writeFile(f.outputs.Error, []byte(text)); err != nil {
			return err
		}
	}

	box := f.cropBox(details.Viewport)
	wire := box.Box()
	details.BoundingBox = &wire

	image, err := Crop(raster, box)
	if err != nil {
		return err
	}

	if f.combined {
		return f.saveCombined(details, image, runErr != nil)
	}
	return f.saveSplit(details, image)
}

// errorText drops the taxonomy prefix of a *domain.RunError so artifacts
// carry the raw failure text.
func errorText(err error) string {
	var re *domain.RunError
	if errors.As(err, &re) && re.Err != nil {
		return re.Err.Error()
	}
	return err.Error()
}

// cropBox expands the run's viewport by the margin and converts it to image
// space. The result is memoized so the margin is applied exactly once even
// if Finalize is reached a second time while handling a failure.
func (f *Finalizer) cropBox(viewport *domain.Viewport) *domain.Viewport {
	if f.box == nil {
		f.box = viewport.Expand(f.margin).ToImageSpace()
	}
	return f.box
}

func (f *Finalizer) saveSplit(details *domain.ExecutionDetails, image []byte) error {
	if err := writeFile(f.outputs.Image, image); err != nil {
		return err
	}
	data, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		return domain.PersistenceError(fmt.Errorf("marshal details: %w", err))
	}
	f.logger.Debug("execution details", "details", string(data))
	return writeFile(f.outputs.Details, data)
}

func (f *Finalizer) saveCombined(details *domain.ExecutionDetails, image []byte, failed bool) error {
	text, err := os.ReadFile(f.outputs.Text)
	if err != nil {
		return domain.PersistenceError(fmt.Errorf("read transcript: %w", err))
	}

	bundle := Bundle{
		Image:   DataURL(image),
		Text:    string(text),
		Details: details,
	}
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return domain.PersistenceError(fmt.Errorf("marshal bundle: %w", err))
	}
	if err := writeFile(f.outputs.Combined, data); err != nil {
		return err
	}

	f.removeRedundant(f.outputs.Text)
	if failed {
		f.removeRedundant(f.outputs.Error)
	}
	return nil
}

// removeRedundant deletes a file already folded into the bundle. Failure is
// logged, not returned.
func (f *Finalizer) removeRedundant(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		f.logger.Warn("could not remove redundant artifact", "path", path, "err", err)
	}
}

// DataURL encodes a PNG as a self-contained data URL.
func DataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return domain.PersistenceError(fmt.Errorf("write %s: %w", path, err))
	}
	return nil
}
