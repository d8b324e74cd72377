package domain

import (
	"encoding/json"
	"time"
)

// ExecutionDetails is the metadata collected about a single run.
//
// It is created once per run, mutated only by the harness while the run is
// active, and read by the finalizer afterwards. Viewport stays in turtle space;
// BoundingBox is filled in by the finalizer with the image-space crop box.
type ExecutionDetails struct {
	Tag       *string
	StartTime time.Time
	RunTime   time.Duration
	Cycles    int
	StackPeak int
	MoveCount int
	Error     *string

	Viewport    *Viewport
	BoundingBox *Box
}

// NewExecutionDetails returns details bound to viewport. An empty tag is
// serialized as null.
func NewExecutionDetails(tag string, viewport *Viewport) *ExecutionDetails {
	d := &ExecutionDetails{Viewport: viewport}
	if tag != "" {
		d.Tag = &tag
	}
	return d
}

// SetError records the raw error text of a failed run.
func (d *ExecutionDetails) SetError(text string) {
	d.Error = &text
}

// TagValue returns the tag or "" when unset.
func (d *ExecutionDetails) TagValue() string {
	if d.Tag == nil {
		return ""
	}
	return *d.Tag
}

type detailsJSON struct {
	Tag         *string   `json:"tag"`
	StartTime   time.Time `json:"startTime"`
	RunTime     float64   `json:"runTime"`
	Cycles      int       `json:"cycles"`
	StackPeak   int       `json:"stackPeak"`
	MoveCount   int       `json:"moveCount"`
	BoundingBox *Box      `json:"boundingBox"`
	Error       *string   `json:"error"`
}

// MarshalJSON emits runTime in milliseconds. When the finalizer has not set
// BoundingBox yet, the turtle-space viewport is used instead.
func (d *ExecutionDetails) MarshalJSON() ([]byte, error) {
	box := d.BoundingBox
	if box == nil && d.Viewport != nil {
		b := d.Viewport.Box()
		box = &b
	}
	return json.Marshal(detailsJSON{
		Tag:         d.Tag,
		StartTime:   d.StartTime,
		RunTime:     float64(d.RunTime) / float64(time.Millisecond),
		Cycles:      d.Cycles,
		StackPeak:   d.StackPeak,
		MoveCount:   d.MoveCount,
		BoundingBox: box,
		Error:       d.Error,
	})
}

// UnmarshalJSON restores details read back from a ledger. The live Viewport
// is not restored.
func (d *ExecutionDetails) UnmarshalJSON(data []byte) error {
	var raw detailsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = ExecutionDetails{
		Tag:         raw.Tag,
		StartTime:   raw.StartTime,
		RunTime:     time.Duration(raw.RunTime * float64(time.Millisecond)),
		Cycles:      raw.Cycles,
		StackPeak:   raw.StackPeak,
		MoveCount:   raw.MoveCount,
		BoundingBox: raw.BoundingBox,
		Error:       raw.Error,
	}
	return nil
}
