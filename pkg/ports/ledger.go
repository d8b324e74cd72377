package ports

import (
	"context"

	"github.com/aretw0/turtleshot/pkg/domain"
)

// RunLedger persists finished runs so batch executions can be grouped and
// inspected later.
type RunLedger interface {
	// Record stores rec under rec.ID, replacing any previous record.
	Record(ctx context.Context, rec *domain.RunRecord) error

	// Load returns the record for id.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, id string) (*domain.RunRecord, error)

	// List returns the IDs of recorded runs carrying tag, or all runs when
	// tag is empty.
	List(ctx context.Context, tag string) ([]string, error)

	// Delete removes a record. Deleting an unknown run is not an error.
	Delete(ctx context.Context, id string) error
}
