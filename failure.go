package aimux

import (
	"errors"
	"fmt"
	"strings"
)

// Attempt records one failed adapter attempt: which (provider, model)
// candidate was tried and why it failed.
type Attempt struct {
	Provider Provider
	Model    string
	Err      error
}

func (a Attempt) String() string {
	return fmt.Sprintf("[%s/%s] %v", a.Provider, a.Model, a.Err)
}

// AggregateErr is the failure surfaced to the caller when every candidate in
// a fallback chain has failed. Attempts holds one entry per attempt actually
// made, in attempt order; there are no entries for candidates that were
// never reached.
type AggregateErr struct {
	Attempts []Attempt
}

func (e *AggregateErr) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "all %d attempts failed: ", len(e.Attempts))
	for i, a := range e.Attempts {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(a.String())
	}
	return b.String()
}

// Unwrap exposes every recorded failure, so errors.Is and errors.As see
// through the aggregate to the individual attempt errors.
func (e *AggregateErr) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}

// appendFailure extends the running attempt list with the outcome of one
// failed unit. A unit that is itself a fallback strategy contributes every
// failure it collected, preserving order; a bare adapter contributes a
// single entry tagged with its identity.
func appendFailure(attempts []Attempt, unit any, model string, err error) []Attempt {
	var agg *AggregateErr
	if errors.As(err, &agg) {
		return append(attempts, agg.Attempts...)
	}
	provider, defModel := identityOf(unit)
	if model == "" {
		model = defModel
	}
	return append(attempts, Attempt{Provider: provider, Model: model, Err: err})
}
