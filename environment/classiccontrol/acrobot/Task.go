package acrobot

import (
	"fmt"

	env "github.com/samuelfneumann/acrobot-a2c/environment"
	ts "github.com/samuelfneumann/acrobot-a2c/timestep"
	"gonum.org/v1/gonum/mat"
)

const (
	// Goal position in the classic control problem is to swing the
	// tip above one link length above the fixed base. Here, we use
	// the length of the first link (which is also equal to the length
	// of the second link).
	GoalHeight float64 = LinkLength1

	// Max and min reward possible for the default classic control case.
	// maxReward is given at episode termination, and minReward is
	// given on all other timesteps.
	maxReward, minReward float64 = 0.0, -1.0
)

// TipHeight returns the height of the tip of the second link above
// the fixed base given a 6-dimensional observation
// [cos θ1, sin θ1, cos θ2, sin θ2, θ̇1, θ̇2]. Since
// cos(θ1 + θ2) = cos θ1 cos θ2 - sin θ1 sin θ2, the height
// -cos θ1 - cos(θ1 + θ2) can be computed without recovering the angles.
func TipHeight(obs mat.Vector) float64 {
	cos1, sin1 := obs.AtVec(0), obs.AtVec(1)
	cos2, sin2 := obs.AtVec(2), obs.AtVec(3)
	return -LinkLength1*cos1 - LinkLength2*(cos1*cos2-sin1*sin2)
}

// SwingUp implements the classic control Acrobot task where the
// agent must swing the tip of the second link above some set
// height.
//
// The task is a cost-to-goal task:
// A reward of -1.0 is given on all timesteps except for the timestep
// which transitions the acrobot's second link above the goal line.
// On this timestep, a reward of 0.0 is given.
//
// Episodes end when the acrobot's second link swings above the goal
// height (timestep.TerminalStateReached) or a step limit is reached
// (timestep.Timeout).
type SwingUp struct {
	env.Starter
	stepLimitEnder env.StepLimit

	f         func(*mat.VecDense) bool
	lineEnder env.Ender
}

// NewSwingUp returns a new SwingUp task with start state distribution
// defined by s, episodic step limit stepLimit, and goal height
// goalHeight. For the default classic control case, the goal height
// should be set to the GoalHeight constant defined in this package.
func NewSwingUp(s env.Starter, stepLimit int,
	goalHeight float64) *SwingUp {
	stepLimitEnder := env.NewStepLimit(stepLimit)

	endFunc := func(obs *mat.VecDense) bool {
		if obs.Len() != ObservationDims {
			panic(fmt.Sprintf("end: illegal observation length "+
				"\n\twant(%v) \n\thave(%v)", ObservationDims, obs.Len()))
		}

		return TipHeight(obs) > goalHeight
	}

	lineEnder := env.NewFunctionEnder(endFunc, ts.TerminalStateReached)

	return &SwingUp{s, stepLimitEnder, endFunc, lineEnder}
}

// StepLimit returns the episode step limit of the task
func (s *SwingUp) StepLimit() int {
	return s.stepLimitEnder.Limit()
}

// AtGoal returns whether the argument observation is a goal state
func (s *SwingUp) AtGoal(obs mat.Matrix) bool {
	r, c := obs.Dims()
	if c > 1 {
		panic("atGoal: state should consist of a single observation")
	}

	obsVec, ok := obs.(*mat.VecDense)
	if !ok {
		obsVec = mat.NewVecDense(r, nil)
		for i := 0; i < r; i++ {
			obsVec.SetVec(i, obs.At(i, 0))
		}
	}
	return s.f(obsVec)
}

// End determines if a timestep is the last timestep in the episode.
// If so, it changes the TimeStep's StepType to timestep.Last and
// adjusts the TimeStep's EndType to the appropriate ending type.
// Reaching the goal takes precedence over the step limit.
func (s *SwingUp) End(t *ts.TimeStep) bool {
	if ended := s.lineEnder.End(t); ended {
		return true
	}
	return s.stepLimitEnder.End(t)
}

// GetReward returns the reward for a given state and action, resulting
// in a given next state. Since this is a cost-to-goal Task, rewards are
// -1.0 for all actions, except for an action which leads to the goal
// state, which results in a reward of 0.0.
func (s *SwingUp) GetReward(_, _, nextObs mat.Vector) float64 {
	nextObsVec, ok := nextObs.(*mat.VecDense)
	if !ok {
		nextObsVec = mat.VecDenseCopyOf(nextObs)
	}

	if s.f(nextObsVec) {
		return maxReward
	}
	return minReward
}

// Min returns the minimum attainable reward over all timesteps
func (s *SwingUp) Min() float64 {
	return minReward
}

// Max returns the maximum attainable reward over all timesteps
func (s *SwingUp) Max() float64 {
	return maxReward
}

// RewardSpec returns the reward specification for the environment
func (s *SwingUp) RewardSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{s.Min()})
	upperBound := mat.NewVecDense(1, []float64{s.Max()})

	return env.NewSpec(shape, env.Reward, lowerBound, upperBound,
		env.Continuous)
}
