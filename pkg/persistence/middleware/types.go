// Package middleware wraps a RunLedger to transform records on their way to
// and from the backend.
package middleware

import (
	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/ports"
)

// Middleware allows wrapping a RunLedger to add behavior.
type Middleware func(ports.RunLedger) ports.RunLedger

// Chain applies mws so that the first one sees records first.
func Chain(ledger ports.RunLedger, mws ...Middleware) ports.RunLedger {
	for i := len(mws) - 1; i >= 0; i-- {
		ledger = mws[i](ledger)
	}
	return ledger
}

// withError returns a copy of rec whose details carry text as error. The
// caller's record and details are left untouched.
func withError(rec *domain.RunRecord, text string) *domain.RunRecord {
	cloned := *rec
	details := *rec.Details
	details.Error = &text
	cloned.Details = &details
	return &cloned
}

func errorText(rec *domain.RunRecord) (string, bool) {
	if rec == nil || rec.Details == nil || rec.Details.Error == nil {
		return "", false
	}
	return *rec.Details.Error, true
}
