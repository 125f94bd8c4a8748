package eval

import (
	"time"

	"github.com/benbjohnson/clock"
)

// ExecutionState is auxiliary struct for data/context that needs to be passed
// to evaluation functions
type ExecutionState struct {
	Funcs Funcs
	// Clock is read by TODAY().
	Clock clock.Clock
	// Location is the time zone dates are reported in.
	Location *time.Location
}

// CreateExecutionState returns the builtin functions, the wall clock and UTC.
func CreateExecutionState() ExecutionState {
	return ExecutionState{
		Funcs:    NewFunctions(),
		Clock:    clock.New(),
		Location: time.UTC,
	}
}

func (es ExecutionState) now() time.Time {
	c := es.Clock
	if c == nil {
		c = clock.New()
	}
	loc := es.Location
	if loc == nil {
		loc = time.UTC
	}
	return c.Now().In(loc)
}
