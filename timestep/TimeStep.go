// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either the
// first environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType denotes how an episode ended. An episode may end because a
// terminal state was reached or because it was cut off.
type EndType int

const (
	// NotEnded is the EndType of all non-Last TimeSteps
	NotEnded EndType = iota

	// TerminalStateReached denotes that the environment itself reached
	// a terminal state (e.g. the goal)
	TerminalStateReached

	// Timeout denotes that a step limit cut the episode off before any
	// terminal state was reached
	Timeout
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Timeout:
		return "Timeout"
	default:
		return "NotEnded"
	}
}

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	StepType
	Reward      float64
	Discount    float64
	Observation *mat.VecDense
	Number      int
	endType     EndType
}

// New returns a new TimeStep
func New(t StepType, r, d float64, o *mat.VecDense, n int) TimeStep {
	return TimeStep{
		StepType:    t,
		Reward:      r,
		Discount:    d,
		Observation: o,
		Number:      n,
		endType:     NotEnded,
	}
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

// SetEnd sets the way in which the episode ended. SetEnd does not
// change the StepType, which should be set separately by Enders.
func (t *TimeStep) SetEnd(e EndType) {
	t.endType = e
}

// EndType returns how the episode ended on this TimeStep
func (t *TimeStep) EndType() EndType {
	return t.endType
}

// Terminal returns whether the TimeStep is the last in its episode
// because a terminal state was reached. The value of a terminal state
// is zero, so a learner should not bootstrap from it.
func (t *TimeStep) Terminal() bool {
	return t.Last() && t.endType == TerminalStateReached
}

// Truncated returns whether the episode was cut off on this TimeStep
// without reaching a terminal state
func (t *TimeStep) Truncated() bool {
	return t.Last() && t.endType == Timeout
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  End: %v  |  Reward:  %.2f  |  " +
		"Discount: %.2f  |  Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.endType, t.Reward, t.Discount,
		t.Number)
}
