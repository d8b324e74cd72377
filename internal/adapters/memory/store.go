package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/ports"
)

var _ ports.RunLedger = (*Ledger)(nil)

// Ledger implements ports.RunLedger in memory.
// Safe for concurrent use.
type Ledger struct {
	data map[string][]byte
	tags map[string]string
	mu   sync.RWMutex
}

// New creates a new in-memory ledger.
func New() *Ledger {
	return &Ledger{
		data: make(map[string][]byte),
		tags: make(map[string]string),
	}
}

// Record stores the run serialized, so later mutation of rec by the caller
// cannot reach the ledger.
func (l *Ledger) Record(ctx context.Context, rec *domain.RunRecord) error {
	if rec.ID == "" {
		return errors.New("run id cannot be empty")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.data[rec.ID] = data
	l.tags[rec.ID] = rec.Tag()
	return nil
}

// Load returns a fresh copy of the run.
func (l *Ledger) Load(ctx context.Context, id string) (*domain.RunRecord, error) {
	l.mu.RLock()
	data, ok := l.data[id]
	l.mu.RUnlock()
	if !ok {
		return nil, domain.ErrRunNotFound
	}

	var rec domain.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &rec, nil
}

// Delete removes the run.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.data, id)
	delete(l.tags, id)
	return nil
}

// List returns run IDs for tag, or all when tag is empty, sorted.
func (l *Ledger) List(ctx context.Context, tag string) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.data))
	for id, t := range l.tags {
		if tag == "" || t == tag {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
