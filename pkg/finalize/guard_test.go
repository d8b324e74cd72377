package finalize_test

import (
	"errors"
	"testing"

	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/finalize"
	"github.com/stretchr/testify/assert"
)

type exitRecorder struct {
	codes []int
}

func (e *exitRecorder) exit(code int) { e.codes = append(e.codes, code) }

func TestGuard_RecoverySucceeds(t *testing.T) {
	rec := &exitRecorder{}
	g := finalize.NewGuard(rec.exit, nil)

	var seen error
	status := g.Handle(errors.New("first"), func(err error) error {
		seen = err
		return nil
	})

	assert.Equal(t, domain.ExitFailure, status)
	assert.EqualError(t, seen, "first")
	assert.Empty(t, rec.codes)
}

func TestGuard_RecoveryFails(t *testing.T) {
	rec := &exitRecorder{}
	g := finalize.NewGuard(rec.exit, nil)

	status := g.Handle(errors.New("first"), func(error) error {
		return errors.New("disk full")
	})

	assert.Equal(t, domain.ExitFatal, status)
	assert.Equal(t, []int{domain.ExitFatal}, rec.codes)
}

func TestGuard_RecoveryPanics(t *testing.T) {
	rec := &exitRecorder{}
	g := finalize.NewGuard(rec.exit, nil)

	status := g.Handle(errors.New("first"), func(error) error {
		panic("nil map")
	})

	assert.Equal(t, domain.ExitFatal, status)
	assert.Equal(t, []int{domain.ExitFatal}, rec.codes)
}

func TestGuard_SecondFailureIsFatal(t *testing.T) {
	rec := &exitRecorder{}
	g := finalize.NewGuard(rec.exit, nil)

	calls := 0
	recovery := func(error) error {
		calls++
		return nil
	}
	assert.Equal(t, domain.ExitFailure, g.Handle(errors.New("first"), recovery))
	assert.Equal(t, domain.ExitFatal, g.Handle(errors.New("second"), recovery))
	assert.Equal(t, 1, calls)
	assert.Equal(t, []int{domain.ExitFatal}, rec.codes)
}
