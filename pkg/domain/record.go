package domain

import "time"

// Outcome is the settled state of a run.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// RunRecord is what a RunLedger stores about one finished run.
type RunRecord struct {
	ID         string            `json:"id"`
	Outcome    Outcome           `json:"outcome"`
	Output     string            `json:"output"`
	RecordedAt time.Time         `json:"recordedAt"`
	Details    *ExecutionDetails `json:"details"`
}

// Tag returns the tag of the recorded run or "".
func (r *RunRecord) Tag() string {
	if r.Details == nil {
		return ""
	}
	return r.Details.TagValue()
}
