package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/ports"
)

// Mask replaces every redacted match.
const Mask = "***"

type redactMiddleware struct {
	next     ports.RunLedger
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks every match of patterns
// in the error text of recorded runs. Error text can echo source paths and
// program words.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		patterns[i] = re
	}
	return func(next ports.RunLedger) ports.RunLedger {
		return &redactMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Record(ctx context.Context, rec *domain.RunRecord) error {
	text, ok := errorText(rec)
	if !ok {
		return m.next.Record(ctx, rec)
	}
	for _, p := range m.patterns {
		text = p.ReplaceAllString(text, Mask)
	}
	return m.next.Record(ctx, withError(rec, text))
}

func (m *redactMiddleware) Load(ctx context.Context, id string) (*domain.RunRecord, error) {
	return m.next.Load(ctx, id)
}

func (m *redactMiddleware) List(ctx context.Context, tag string) ([]string, error) {
	return m.next.List(ctx, tag)
}

func (m *redactMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}
