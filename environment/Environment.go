// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"github.com/samuelfneumann/acrobot-a2c/timestep"
	"gonum.org/v1/gonum/mat"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines whether an episode should end on a TimeStep. If the
// episode should end, the Ender modifies the TimeStep so that its
// StepType is timestep.Last and its EndType records why it ended.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// Task implements the reward scheme for taking actions in some
// environment as well as the start and end conditions of episodes
type Task interface {
	Starter
	Ender
	GetReward(state, action, nextState mat.Vector) float64
	AtGoal(state mat.Matrix) bool
	Min() float64 // Minimum attainable reward on a single timestep
	Max() float64 // Maximum attainable reward on a single timestep
	RewardSpec() Spec
}

// Environment implements a simulated environment, which includes a
// Task to complete.
//
// Reset begins a new episode and returns its first TimeStep. Step
// applies an action and returns the next TimeStep and whether the
// episode has ended, either because a terminal state was reached or
// because the episode was cut off. The two cases are distinguished by
// the EndType of the returned TimeStep.
type Environment interface {
	Task
	Reset() (timestep.TimeStep, error)
	Step(action *mat.VecDense) (timestep.TimeStep, bool, error)
	LastTimeStep() timestep.TimeStep
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}
