package service

import (
	"sync/atomic"

	"github.com/yndnr/authclient/internal/core/domain"
)

// SubmitState is the state of a flow's submission.
type SubmitState int32

const (
	StateIdle SubmitState = iota
	StateSubmitting
)

// String implements fmt.Stringer.
func (s SubmitState) String() string {
	if s == StateSubmitting {
		return "submitting"
	}
	return "idle"
}

// submitGuard admits one submission at a time. A flow returns to Idle on
// every exit path through the func returned by begin.
type submitGuard struct {
	state atomic.Int32
}

// begin moves Idle to Submitting. It returns ErrSubmitInProgress when a
// submission is already outstanding.
func (g *submitGuard) begin() (end func(), err error) {
	if !g.state.CompareAndSwap(int32(StateIdle), int32(StateSubmitting)) {
		return nil, domain.ErrSubmitInProgress
	}
	return func() { g.state.Store(int32(StateIdle)) }, nil
}

func (g *submitGuard) current() SubmitState {
	return SubmitState(g.state.Load())
}
