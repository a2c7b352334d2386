// Package envconfig provides configuration structs for configuring
// environments with default physical parameters and tasks. Environment
// configurations in this package are JSON serializable.
package envconfig

import (
	"fmt"

	env "github.com/samuelfneumann/acrobot-a2c/environment"
	"github.com/samuelfneumann/acrobot-a2c/environment/classiccontrol/acrobot"
	ts "github.com/samuelfneumann/acrobot-a2c/timestep"
	"gonum.org/v1/gonum/spatial/r1"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// TaskName stores the tasks that can be configured with this package
type TaskName string

// Environments and tasks available for configuration
const (
	Acrobot EnvName  = "Acrobot"
	SwingUp TaskName = "SwingUp"
)

// Config implements a specific configuration of a specific environment
// and specific task.
type Config struct {
	Environment   EnvName
	Task          TaskName
	EpisodeCutoff int
	Discount      float64
}

// Default returns the configuration of Acrobot-v1: the SwingUp task
// with an episode cutoff of 500 steps
func Default() Config {
	return Config{
		Environment:   Acrobot,
		Task:          SwingUp,
		EpisodeCutoff: acrobot.DefaultEpisodeCutoff,
		Discount:      1.0,
	}
}

// Validate returns an error describing why the Config is invalid, or
// nil if it is valid
func (c Config) Validate() error {
	if c.Environment != Acrobot {
		return fmt.Errorf("validate: no such environment %v", c.Environment)
	}
	if c.Task != SwingUp {
		return fmt.Errorf("validate: %v environment has no task %v",
			c.Environment, c.Task)
	}
	if c.EpisodeCutoff < 0 {
		return fmt.Errorf("validate: episode cutoff must be non-negative "+
			"\n\thave(%v)", c.EpisodeCutoff)
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1] "+
			"\n\thave(%v)", c.Discount)
	}
	return nil
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment.
func (c Config) Create(seed uint64) (env.Environment, ts.TimeStep, error) {
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %v", err)
	}
	e, step, err := CreateAcrobot(c.EpisodeCutoff, seed, c.Discount)
	if err != nil {
		return nil, ts.TimeStep{}, err
	}
	return e, step, nil
}

// CreateAcrobot is a factory for creating the Acrobot environment with
// default physical parameters and the SwingUp task. All four state
// variables of starting states are sampled uniformly from
// [-acrobot.StartBound, acrobot.StartBound].
func CreateAcrobot(cutoff int, seed uint64,
	discount float64) (*acrobot.Acrobot, ts.TimeStep, error) {
	bounds := r1.Interval{Min: -acrobot.StartBound, Max: acrobot.StartBound}
	s := env.NewUniformStarter([]r1.Interval{
		bounds,
		bounds,
		bounds,
		bounds,
	}, seed)

	task := acrobot.NewSwingUp(s, cutoff, acrobot.GoalHeight)
	return acrobot.New(task, discount)
}
