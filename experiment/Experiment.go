// Package experiment implements functionality for running an experiment:
// training an agent online until it solves its task, then evaluating
// the learned policy
package experiment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/acrobot-a2c/agent"
	"github.com/samuelfneumann/acrobot-a2c/agent/nonlinear/discrete/a2c"
	env "github.com/samuelfneumann/acrobot-a2c/environment"
	"github.com/samuelfneumann/acrobot-a2c/environment/envconfig"
	"github.com/samuelfneumann/acrobot-a2c/experiment/checkpointer"
	"github.com/samuelfneumann/acrobot-a2c/experiment/trackers"
	"gonum.org/v1/gonum/stat"
)

// ErrNotSolved is returned by Train when the maximum number of
// training episodes is reached before the agent solves the task
var ErrNotSolved = errors.New("task not solved")

// Files saved in Config.SavePath
const (
	ReturnFile        = "returns.bin"
	EpisodeLengthFile = "lengths.bin"
	CheckpointName    = "checkpoint"
	CheckpointExt     = ".bin"
)

// Config represents a configuration of an experiment.
//
// Training stops once the mean return over the last Window episodes
// exceeds Threshold. If MaxEpisodes is positive, training also stops
// after MaxEpisodes episodes, and the task is considered not solved.
// If StepLimit is positive, episodes are cut off after StepLimit steps
// regardless of the environment's own episode cutoff.
//
// If SavePath is not empty, episodic returns and lengths are saved in
// SavePath, and the agent's weights are checkpointed there every
// CheckpointInterval training episodes if CheckpointInterval is
// positive.
type Config struct {
	StepLimit          int
	Threshold          float64
	Window             int
	EvalEpisodes       int
	MaxEpisodes        int
	CheckpointInterval int
	SavePath           string

	EnvConf   envconfig.Config
	AgentConf agent.TypedConfig
}

// Default returns the default configuration: an A2C agent on
// Acrobot-v1 which must reach a mean return of -120 over 10 episodes
func Default() Config {
	return Config{
		Threshold:    -120,
		Window:       10,
		EvalEpisodes: 100,
		EnvConf:      envconfig.Default(),
		AgentConf:    agent.NewTypedConfig(a2c.DefaultConfig()),
	}
}

// Validate returns an error if the Config is illegal
func (c Config) Validate() error {
	if c.StepLimit < 0 {
		return fmt.Errorf("validate: step limit must be non-negative, "+
			"have %v", c.StepLimit)
	}
	if c.Window <= 0 {
		return fmt.Errorf("validate: window must be positive, have %v",
			c.Window)
	}
	if c.EvalEpisodes < 0 {
		return fmt.Errorf("validate: evaluation episodes must be "+
			"non-negative, have %v", c.EvalEpisodes)
	}
	if c.MaxEpisodes < 0 {
		return fmt.Errorf("validate: max episodes must be non-negative, "+
			"have %v", c.MaxEpisodes)
	}
	if c.CheckpointInterval < 0 {
		return fmt.Errorf("validate: checkpoint interval must be "+
			"non-negative, have %v", c.CheckpointInterval)
	}

	if err := c.EnvConf.Validate(); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	if c.AgentConf.Config == nil {
		return fmt.Errorf("validate: no agent configuration")
	}
	if err := c.AgentConf.Validate(); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	return nil
}

// CreateTrainer creates the environment and agent described by the
// Config and returns a Trainer for them. The seed determines the
// starting states of the environment, the agent's initial weights, and
// the actions it samples.
func (c Config) CreateTrainer(seed uint64) (*Trainer, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("createTrainer: %v", err)
	}

	e, _, err := c.EnvConf.Create(seed)
	if err != nil {
		return nil, fmt.Errorf("createTrainer: could not create "+
			"environment: %v", err)
	}
	a, err := c.AgentConf.CreateAgent(e, seed)
	if err != nil {
		return nil, fmt.Errorf("createTrainer: could not create agent: %v",
			err)
	}

	t, err := NewTrainer(e, a, c)
	if err != nil {
		return nil, fmt.Errorf("createTrainer: %v", err)
	}
	if c.SavePath == "" {
		return t, nil
	}

	if err := os.MkdirAll(c.SavePath, 0o755); err != nil {
		return nil, fmt.Errorf("createTrainer: could not create save "+
			"directory: %v", err)
	}
	t.Register(trackers.NewReturn(filepath.Join(c.SavePath, ReturnFile)))
	t.Register(trackers.NewEpisodeLength(filepath.Join(c.SavePath,
		EpisodeLengthFile)))

	if w, ok := a.(agent.Weighted); ok && c.CheckpointInterval > 0 {
		check, err := checkpointer.NewNEpisode(c.CheckpointInterval, w,
			checkpointer.FilenameEnumerator(c.SavePath, CheckpointName,
				CheckpointExt))
		if err != nil {
			return nil, fmt.Errorf("createTrainer: %v", err)
		}
		t.AddCheckpointer(check)
	}

	return t, nil
}

// Report describes the state of training or evaluation after an
// episode has finished
type Report struct {
	Mode agent.Mode

	// Index is the number of episodes run so far in this mode
	Index int

	// Mean is the mean return over the last Window episodes when
	// training and over all episodes so far when evaluating
	Mean float64

	Episode
}

// Trainer trains an agent online in an environment and evaluates the
// learned policy.
type Trainer struct {
	env           env.Environment
	agent         agent.Agent
	config        Config
	trackers      []trackers.Tracker
	checkpointers []checkpointer.Checkpointer
	listeners     []func(Report)

	returns []float64
	solved  bool
}

// NewTrainer returns a new Trainer of agent a on environment e using
// the training and evaluation parameters in c. The environment and
// agent configurations of c are ignored.
func NewTrainer(e env.Environment, a agent.Agent, c Config,
	t ...trackers.Tracker) (*Trainer, error) {
	if c.Window <= 0 {
		return nil, fmt.Errorf("newTrainer: window must be positive, "+
			"have %v", c.Window)
	}
	if c.MaxEpisodes < 0 || c.StepLimit < 0 {
		return nil, fmt.Errorf("newTrainer: max episodes and step limit "+
			"must be non-negative")
	}

	return &Trainer{
		env:      e,
		agent:    a,
		config:   c,
		trackers: t,
	}, nil
}

// Register adds a tracker which tracks each timestep of training
func (t *Trainer) Register(tracker trackers.Tracker) {
	t.trackers = append(t.trackers, tracker)
}

// AddCheckpointer adds a checkpointer which is notified after each
// training episode
func (t *Trainer) AddCheckpointer(c checkpointer.Checkpointer) {
	t.checkpointers = append(t.checkpointers, c)
}

// Listen adds a function which is called with a Report after each
// training and evaluation episode
func (t *Trainer) Listen(f func(Report)) {
	t.listeners = append(t.listeners, f)
}

// Env returns the environment in which the agent is trained
func (t *Trainer) Env() env.Environment {
	return t.env
}

// Agent returns the agent being trained
func (t *Trainer) Agent() agent.Agent {
	return t.agent
}

// Train runs episodes in agent.Train mode until the mean return over
// the last Window episodes exceeds the threshold. Training continues
// from the state in which a previous call to Train left the agent.
//
// If the maximum number of episodes is reached first, Train returns
// ErrNotSolved. Any other error ends training immediately.
func (t *Trainer) Train() error {
	for run := 1; t.config.MaxEpisodes == 0 || run <= t.config.MaxEpisodes; run++ {
		episode, err := RunEpisode(t.env, t.agent, agent.Train,
			t.config.StepLimit, t.trackers...)
		if err != nil {
			return fmt.Errorf("train: episode %v: %w", len(t.returns)+1, err)
		}
		t.returns = append(t.returns, episode.Return)

		for _, c := range t.checkpointers {
			if err := c.Checkpoint(len(t.returns)); err != nil {
				return fmt.Errorf("train: could not checkpoint: %v", err)
			}
		}

		mean := t.MeanReturn()
		t.report(Report{
			Mode:    agent.Train,
			Index:   len(t.returns),
			Mean:    mean,
			Episode: episode,
		})

		if len(t.returns) >= t.config.Window && mean > t.config.Threshold {
			t.solved = true
			return nil
		}
	}

	return fmt.Errorf("train: %w after %v episodes", ErrNotSolved,
		t.config.MaxEpisodes)
}

// Evaluate runs n episodes in agent.Idle mode and returns the mean
// return over those episodes. The agent's weights are not changed.
func (t *Trainer) Evaluate(n int) (float64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("evaluate: number of episodes must be "+
			"positive, have %v", n)
	}

	returns := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		episode, err := RunEpisode(t.env, t.agent, agent.Idle,
			t.config.StepLimit)
		if err != nil {
			return 0, fmt.Errorf("evaluate: episode %v: %w", i+1, err)
		}
		returns = append(returns, episode.Return)

		t.report(Report{
			Mode:    agent.Idle,
			Index:   len(returns),
			Mean:    stat.Mean(returns, nil),
			Episode: episode,
		})
	}

	return stat.Mean(returns, nil), nil
}

// MeanReturn returns the mean return over the last Window training
// episodes, or over all training episodes if fewer than Window
// episodes have been run
func (t *Trainer) MeanReturn() float64 {
	if len(t.returns) == 0 {
		return 0
	}
	start := len(t.returns) - t.config.Window
	if start < 0 {
		start = 0
	}
	return stat.Mean(t.returns[start:], nil)
}

// Returns returns the return of each training episode
func (t *Trainer) Returns() []float64 {
	return append([]float64(nil), t.returns...)
}

// Solved returns whether training has reached the threshold
func (t *Trainer) Solved() bool {
	return t.solved
}

// Save saves the data tracked by all trackers to disk
func (t *Trainer) Save() error {
	for _, tracker := range t.trackers {
		if err := tracker.Save(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	return nil
}

// Close releases any resources held by the agent
func (t *Trainer) Close() error {
	if c, ok := t.agent.(agent.Closer); ok {
		return c.Close()
	}
	return nil
}

func (t *Trainer) report(r Report) {
	for _, f := range t.listeners {
		f(r)
	}
}
