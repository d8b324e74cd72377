package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

var _ ports.RunLedger = (*Ledger)(nil)

// DefaultPrefix namespaces every key the ledger writes.
const DefaultPrefix = "turtleshot:run:"

// neverExpires is the index score used when no TTL is set (2100-01-01).
const neverExpires = 4102444800

// Ledger implements ports.RunLedger using Redis.
//
// Each run is a JSON string key. Two sorted sets, one global and one per
// tag, index run IDs scored by expiry time so List can prune lazily.
type Ledger struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Ledger)

// WithTTL sets the expiration for recorded runs.
func WithTTL(ttl time.Duration) Option {
	return func(l *Ledger) {
		l.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(l *Ledger) {
		l.prefix = prefix
	}
}

// New creates a new Redis ledger with options.
func New(address, password string, db int, opts ...Option) *Ledger {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis ledger from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Ledger {
	l := &Ledger{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) key(id string) string {
	return l.prefix + id
}

func (l *Ledger) indexKey() string {
	return l.prefix + "index"
}

func (l *Ledger) tagKey(tag string) string {
	return l.prefix + "tag:" + tag
}

// Record persists the run and indexes it globally and by tag.
func (l *Ledger) Record(ctx context.Context, rec *domain.RunRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("run id cannot be empty")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	score := float64(time.Now().Add(l.ttl).Unix())
	if l.ttl == 0 {
		score = neverExpires
	}
	member := backend.Z{Score: score, Member: rec.ID}

	pipe := l.client.Pipeline()
	pipe.Set(ctx, l.key(rec.ID), data, l.ttl)
	pipe.ZAdd(ctx, l.indexKey(), member)
	if tag := rec.Tag(); tag != "" {
		pipe.ZAdd(ctx, l.tagKey(tag), member)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves a run from Redis.
func (l *Ledger) Load(ctx context.Context, id string) (*domain.RunRecord, error) {
	val, err := l.client.Get(ctx, l.key(id)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var rec domain.RunRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &rec, nil
}

// Delete removes the run and its index entries.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	rec, err := l.Load(ctx, id)
	if err == domain.ErrRunNotFound {
		return l.client.ZRem(ctx, l.indexKey(), id).Err()
	}
	if err != nil {
		return err
	}

	pipe := l.client.Pipeline()
	pipe.Del(ctx, l.key(id))
	pipe.ZRem(ctx, l.indexKey(), id)
	if tag := rec.Tag(); tag != "" {
		pipe.ZRem(ctx, l.tagKey(tag), id)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// List returns live run IDs for tag, or every run when tag is empty.
// Expired entries are removed from the index first.
func (l *Ledger) List(ctx context.Context, tag string) ([]string, error) {
	index := l.indexKey()
	if tag != "" {
		index = l.tagKey(tag)
	}

	now := fmt.Sprintf("%f", float64(time.Now().Unix()))
	if err := l.client.ZRemRangeByScore(ctx, index, "-inf", now).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired runs: %w", err)
	}

	ids, err := l.client.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (l *Ledger) Close() error {
	return l.client.Close()
}
