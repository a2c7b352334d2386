// Package a2c implements the online one-step Advantage Actor-Critic
// algorithm for discrete actions
package a2c

import (
	"errors"
	"fmt"

	"github.com/samuelfneumann/acrobot-a2c/agent"
	ts "github.com/samuelfneumann/acrobot-a2c/timestep"
	"gonum.org/v1/gonum/mat"
)

// ErrObservationShape is returned when an observation does not have
// the number of features the agent was constructed for
var ErrObservationShape = errors.New("illegal observation shape")

const (
	// Names of the function approximators in the map returned by
	// Weights()
	ActorKey  = "actor"
	CriticKey = "critic"

	windowSize = 2
)

// Actor is a stochastic policy over a finite set of actions which can
// be updated with a weighted policy gradient step
type Actor interface {
	// Probabilities returns the probability of each action in a state
	Probabilities(obs []float64) ([]float64, error)

	// Sample samples an action given action probabilities
	Sample(probs []float64) int

	// Learn performs a gradient step on -weight * log π(action | obs)
	// and returns the loss before the step
	Learn(obs []float64, action int, weight float64) (float64, error)

	Weights() [][]float64
	SetWeights([][]float64) error
}

// Critic is a state value function which can be updated toward a
// target value
type Critic interface {
	// Value returns the estimated value of a state
	Value(obs []float64) (float64, error)

	// Learn performs a gradient step on the squared error between the
	// value of obs and target and returns the loss before the step
	Learn(obs []float64, target float64) (float64, error)

	Weights() [][]float64
	SetWeights([][]float64) error
}

// Update records the quantities computed in a single update of an A2C
// agent
type Update struct {
	Target     float64 // r + γ v(s'), or r if s' is terminal
	Value      float64 // v(s)
	NextValue  float64 // v(s')
	TDError    float64
	ActorLoss  float64
	CriticLoss float64
}

// record is the information the agent keeps about a single timestep
type record struct {
	obs      []float64
	reward   float64
	terminal bool
	action   int
}

// training holds the state that only exists while an A2C agent is in
// agent.Train mode
type training struct {
	window []record

	// Discount accumulator, γ^t on the t-th step of the episode
	i float64
}

// A2C implements the online one-step Advantage Actor-Critic algorithm.
//
// On each step in agent.Train mode, the agent uses the transition
// between the previous and current timestep to take one gradient step
// with the critic on the squared TD error and one gradient step with
// the actor on the TD error weighted policy gradient. The policy
// gradient is additionally weighted by γ^t, where t is the number of
// steps taken in the current episode before the transition.
//
// Transitions into terminal states are not bootstrapped. Transitions
// into states where the episode was cut off are bootstrapped.
type A2C struct {
	actor    Actor
	critic   Critic
	features int
	discount float64

	mode     agent.Mode
	training *training

	lastUpdate Update
	updates    int
}

// New returns a new A2C agent using the argument actor and critic on
// observations with features features and discount factor discount.
// The agent starts in agent.Idle mode.
func New(actor Actor, critic Critic, features int,
	discount float64) (*A2C, error) {
	if actor == nil || critic == nil {
		return nil, fmt.Errorf("new: actor and critic must be non-nil")
	}
	if features <= 0 {
		return nil, fmt.Errorf("new: features must be positive, have %v",
			features)
	}
	if discount < 0 || discount > 1 {
		return nil, fmt.Errorf("new: discount must be in [0, 1], have %v",
			discount)
	}

	return &A2C{
		actor:    actor,
		critic:   critic,
		features: features,
		discount: discount,
		mode:     agent.Idle,
	}, nil
}

// ResetMode sets the mode of the agent and starts a new episode. In
// agent.Train mode, the transition window is emptied and the discount
// accumulator is reset to 1.
func (a *A2C) ResetMode(m agent.Mode) {
	switch m {
	case agent.Train:
		a.training = &training{
			window: make([]record, 0, windowSize),
			i:      1.0,
		}
	case agent.Idle:
		a.training = nil
	default:
		panic(fmt.Sprintf("resetMode: illegal mode %v", m))
	}
	a.mode = m
}

// Mode returns the current mode of the agent
func (a *A2C) Mode() agent.Mode {
	return a.mode
}

// PlayStep samples an action from the actor for the observation of t.
// In agent.Train mode, the timestep is added to the transition window
// and, once the window holds two timesteps, the actor and critic are
// updated using the transition between them.
func (a *A2C) PlayStep(t ts.TimeStep) (int, error) {
	if t.Observation == nil || t.Observation.Len() != a.features {
		have := 0
		if t.Observation != nil {
			have = t.Observation.Len()
		}
		return 0, fmt.Errorf("playStep: %w \n\twant(%v) \n\thave(%v)",
			ErrObservationShape, a.features, have)
	}
	obs := mat.Col(nil, 0, t.Observation)

	probs, err := a.actor.Probabilities(obs)
	if err != nil {
		return 0, fmt.Errorf("playStep: %v", err)
	}
	action := a.actor.Sample(probs)

	if a.mode == agent.Train {
		a.training.window = append(a.training.window, record{
			obs:      obs,
			reward:   t.Reward,
			terminal: t.Terminal(),
			action:   action,
		})

		if len(a.training.window) == windowSize {
			if err := a.reinforce(); err != nil {
				return 0, fmt.Errorf("playStep: %v", err)
			}
			a.training.window[0] = a.training.window[1]
			a.training.window = a.training.window[:1]
		}

		a.training.i *= a.discount
	}

	return action, nil
}

// reinforce updates the actor and critic using the transition between
// the two timesteps in the transition window
func (a *A2C) reinforce() error {
	if a.training == nil || len(a.training.window) != windowSize {
		have := 0
		if a.training != nil {
			have = len(a.training.window)
		}
		panic(fmt.Sprintf("reinforce: transition window must hold %v "+
			"timesteps, have %v", windowSize, have))
	}
	prev, curr := a.training.window[0], a.training.window[1]

	nextValue, err := a.critic.Value(curr.obs)
	if err != nil {
		return fmt.Errorf("reinforce: could not compute next state "+
			"value: %v", err)
	}
	target := curr.reward
	if !curr.terminal {
		target += a.discount * nextValue
	}

	value, err := a.critic.Value(prev.obs)
	if err != nil {
		return fmt.Errorf("reinforce: could not compute state value: %v",
			err)
	}
	tdError := target - value

	actorLoss, err := a.actor.Learn(prev.obs, prev.action,
		a.training.i*tdError)
	if err != nil {
		return fmt.Errorf("reinforce: could not update actor: %v", err)
	}

	criticLoss, err := a.critic.Learn(prev.obs, target)
	if err != nil {
		return fmt.Errorf("reinforce: could not update critic: %v", err)
	}

	a.lastUpdate = Update{
		Target:     target,
		Value:      value,
		NextValue:  nextValue,
		TDError:    tdError,
		ActorLoss:  actorLoss,
		CriticLoss: criticLoss,
	}
	a.updates++

	return nil
}

// Discount returns the discount accumulator, which is γ^t after t
// steps in agent.Train mode and 1 in agent.Idle mode
func (a *A2C) Discount() float64 {
	if a.training == nil {
		return 1.0
	}
	return a.training.i
}

// Gamma returns the discount factor of the agent
func (a *A2C) Gamma() float64 {
	return a.discount
}

// LastUpdate returns the quantities computed in the most recent update
// and whether any update has occurred
func (a *A2C) LastUpdate() (Update, bool) {
	return a.lastUpdate, a.updates > 0
}

// Updates returns the number of updates the agent has performed
func (a *A2C) Updates() int {
	return a.updates
}

// Weights returns a copy of the weights of the actor and critic
func (a *A2C) Weights() map[string][][]float64 {
	return map[string][][]float64{
		ActorKey:  a.actor.Weights(),
		CriticKey: a.critic.Weights(),
	}
}

// SetWeights sets the weights of the actor and critic
func (a *A2C) SetWeights(weights map[string][][]float64) error {
	actor, ok := weights[ActorKey]
	if !ok {
		return fmt.Errorf("setWeights: missing %q weights", ActorKey)
	}
	critic, ok := weights[CriticKey]
	if !ok {
		return fmt.Errorf("setWeights: missing %q weights", CriticKey)
	}

	if err := a.actor.SetWeights(actor); err != nil {
		return fmt.Errorf("setWeights: could not set actor weights: %v", err)
	}
	if err := a.critic.SetWeights(critic); err != nil {
		return fmt.Errorf("setWeights: could not set critic weights: %v",
			err)
	}
	return nil
}

// Close closes the actor and critic if they hold resources which must
// be released
func (a *A2C) Close() error {
	type closer interface {
		Close() error
	}

	if c, ok := a.actor.(closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close: %v", err)
		}
	}
	if c, ok := a.critic.(closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close: %v", err)
		}
	}
	return nil
}
