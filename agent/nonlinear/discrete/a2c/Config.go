package a2c

import (
	"fmt"

	"github.com/samuelfneumann/acrobot-a2c/agent"
	"github.com/samuelfneumann/acrobot-a2c/agent/nonlinear/discrete/policy"
	"github.com/samuelfneumann/acrobot-a2c/agent/nonlinear/valuefn"
	env "github.com/samuelfneumann/acrobot-a2c/environment"
	"github.com/samuelfneumann/acrobot-a2c/initwfn"
	"github.com/samuelfneumann/acrobot-a2c/network"
	"github.com/samuelfneumann/acrobot-a2c/solver"
)

// MLP is the agent.Type of A2C agents whose actor and critic are
// multi-layered perceptrons
const MLP agent.Type = "A2C-MLP"

func init() {
	agent.Register(MLP, Config{})
}

// Config implements a configuration of an A2C agent whose actor and
// critic are multi-layered perceptrons with a bias unit in each layer.
//
// If InitWFn is nil, weights are initialized uniformly in
// [-1/√n, 1/√n] for a layer with n inputs using the seed passed to
// CreateAgent.
type Config struct {
	Discount         float64
	ProbabilityFloor float64

	ActorHiddenSizes  []int
	ActorActivations  []*network.Activation
	ActorSolver       *solver.Solver
	CriticHiddenSizes []int
	CriticActivations []*network.Activation
	CriticSolver      *solver.Solver

	InitWFn *initwfn.InitWFn
}

// DefaultConfig returns the default configuration of an A2C agent
func DefaultConfig() Config {
	actorSolver, err := solver.NewDefaultAdam(1e-3, 1)
	if err != nil {
		panic(err)
	}
	criticSolver, err := solver.NewDefaultAdam(5e-3, 1)
	if err != nil {
		panic(err)
	}

	return Config{
		Discount:          0.99,
		ProbabilityFloor:  policy.DefaultProbabilityFloor,
		ActorHiddenSizes:  []int{128},
		ActorActivations:  []*network.Activation{network.ReLU()},
		ActorSolver:       actorSolver,
		CriticHiddenSizes: []int{128},
		CriticActivations: []*network.Activation{network.ReLU()},
		CriticSolver:      criticSolver,
	}
}

// Type returns the type of agent the Config creates
func (c Config) Type() agent.Type {
	return MLP
}

// Validate returns an error if the Config is illegal
func (c Config) Validate() error {
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1], have %v",
			c.Discount)
	}
	if c.ProbabilityFloor <= 0 || c.ProbabilityFloor >= 1 {
		return fmt.Errorf("validate: probability floor must be in (0, 1), "+
			"have %v", c.ProbabilityFloor)
	}

	if err := validateLayers("actor", c.ActorHiddenSizes,
		c.ActorActivations); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	if err := validateLayers("critic", c.CriticHiddenSizes,
		c.CriticActivations); err != nil {
		return fmt.Errorf("validate: %v", err)
	}

	if c.ActorSolver == nil || c.CriticSolver == nil {
		return fmt.Errorf("validate: actor and critic solvers must be " +
			"specified")
	}
	return nil
}

func validateLayers(name string, hiddenSizes []int,
	activations []*network.Activation) error {
	if len(hiddenSizes) != len(activations) {
		return fmt.Errorf("%v: %v hidden layers but %v activations", name,
			len(hiddenSizes), len(activations))
	}
	for i, size := range hiddenSizes {
		if size <= 0 {
			return fmt.Errorf("%v: hidden layer %v has %v units", name, i,
				size)
		}
		if activations[i] == nil {
			return fmt.Errorf("%v: hidden layer %v has no activation", name,
				i)
		}
	}
	return nil
}

// CreateAgent creates a new A2C agent for the environment e. The seed
// determines the initial weights, unless InitWFn sets its own seed,
// and the actions sampled by the agent.
func (c Config) CreateAgent(e env.Environment, seed uint64) (agent.Agent,
	error) {
	a, err := c.Create(e, seed)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create creates a new A2C agent for the environment e and returns it
// as its concrete type
func (c Config) Create(e env.Environment, seed uint64) (*A2C, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("create: %v", err)
	}

	features := e.ObservationSpec().Len()
	numActions, err := e.ActionSpec().NumActions()
	if err != nil {
		return nil, fmt.Errorf("create: %v", err)
	}

	// A fresh initializer is created so that agents created with the
	// same Config and seed have the same weights
	var initConfig initwfn.Config = initwfn.UniformConfig{
		FanIn: true,
		Seed:  seed + 1,
	}
	if c.InitWFn != nil {
		initConfig = c.InitWFn.Config
	}
	init := initConfig.Create()

	actorSolver, err := c.ActorSolver.Clone()
	if err != nil {
		return nil, fmt.Errorf("create: %v", err)
	}
	actor, err := policy.NewCategoricalMLP(features, numActions,
		c.ActorHiddenSizes, biases(len(c.ActorHiddenSizes)),
		c.ActorActivations, init, actorSolver, c.ProbabilityFloor, seed)
	if err != nil {
		return nil, fmt.Errorf("create: could not create actor: %v", err)
	}

	criticSolver, err := c.CriticSolver.Clone()
	if err != nil {
		return nil, fmt.Errorf("create: %v", err)
	}
	critic, err := valuefn.NewMLP(features, c.CriticHiddenSizes,
		biases(len(c.CriticHiddenSizes)), c.CriticActivations, init,
		criticSolver)
	if err != nil {
		return nil, fmt.Errorf("create: could not create critic: %v", err)
	}

	return New(actor, critic, features, c.Discount)
}

func biases(n int) []bool {
	b := make([]bool, n)
	for i := range b {
		b[i] = true
	}
	return b
}
