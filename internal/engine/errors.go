package engine

import (
	"errors"
	"fmt"

	"github.com/MikeSquared-Agency/Rigger/internal/catalog"
	"github.com/MikeSquared-Agency/Rigger/internal/rules"
)

var (
	// ErrNotFound is returned by the selector when no candidate fits.
	ErrNotFound            = errors.New("no matching component")
	ErrInvalidRequirements = errors.New("invalid build requirements")
)

// NoSuitableComponentError aborts an assembly when a required category has no
// candidates. Constraints holds the set active at the failing step.
type NoSuitableComponentError struct {
	Category    catalog.Category
	Ceiling     int
	Constraints ConstraintSet
}

func (e *NoSuitableComponentError) Error() string {
	msg := fmt.Sprintf("no suitable %s found within budget", e.Category)
	if !e.Constraints.Empty() {
		msg += fmt.Sprintf(" (price <= %d, %s)", e.Ceiling, e.Constraints)
	}
	return msg
}

func (e *NoSuitableComponentError) Unwrap() error { return ErrNotFound }

type UnimplementedPurposeError struct {
	Purpose rules.Purpose
}

func (e *UnimplementedPurposeError) Error() string {
	return fmt.Sprintf("build purpose %s not yet implemented", e.Purpose)
}
