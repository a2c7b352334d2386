package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/acrobot-a2c/experiment"
	"github.com/spf13/cobra"
)

// runConfig is the configuration of a run, recorded in config.json in
// the save path so that the run can be repeated with --config
type runConfig struct {
	Seed       uint64
	Experiment experiment.Config
}

var (
	config     = runConfig{Seed: 1, Experiment: experiment.Default()}
	configFile string

	seed               uint64
	savePath           string
	threshold          float64
	window             int
	evalEpisodes       int
	maxEpisodes        int
	stepLimit          int
	episodeCutoff      int
	checkpointInterval int
)

func AddFlags(cmd *cobra.Command) {
	c := config.Experiment
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "JSON configuration file, overridden by any flags set")
	cmd.PersistentFlags().Uint64Var(&seed, "seed", config.Seed, "Seed for the environment and agent")
	cmd.PersistentFlags().StringVar(&savePath, "save-path", "results", "Path to save results")
	cmd.PersistentFlags().Float64Var(&threshold, "threshold", c.Threshold, "Mean return at which the task is solved")
	cmd.PersistentFlags().IntVar(&window, "window", c.Window, "Number of episodes to average returns over")
	cmd.PersistentFlags().IntVar(&evalEpisodes, "eval-episodes", c.EvalEpisodes, "Number of evaluation episodes")
	cmd.PersistentFlags().IntVar(&maxEpisodes, "max-episodes", c.MaxEpisodes, "Maximum number of training episodes, 0 for no limit")
	cmd.PersistentFlags().IntVar(&stepLimit, "step-limit", c.StepLimit, "Maximum number of steps per episode, 0 for no limit")
	cmd.PersistentFlags().IntVar(&episodeCutoff, "episode-cutoff", c.EnvConf.EpisodeCutoff, "Number of steps after which the environment ends an episode")
	cmd.PersistentFlags().IntVar(&checkpointInterval, "checkpoint-interval", c.CheckpointInterval, "Number of episodes between checkpoints, 0 to disable")
}

// UpdateFlags loads the configuration file, if one was given, and
// then overrides it with each flag set on the command line
func UpdateFlags(cmd *cobra.Command) error {
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return fmt.Errorf("could not read config: %v", err)
		}
		if err := json.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("could not parse config: %v", err)
		}
	} else {
		config.Experiment.SavePath = savePath
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		config.Seed = seed
	}
	if flags.Changed("save-path") {
		config.Experiment.SavePath = savePath
	}
	if flags.Changed("threshold") {
		config.Experiment.Threshold = threshold
	}
	if flags.Changed("window") {
		config.Experiment.Window = window
	}
	if flags.Changed("eval-episodes") {
		config.Experiment.EvalEpisodes = evalEpisodes
	}
	if flags.Changed("max-episodes") {
		config.Experiment.MaxEpisodes = maxEpisodes
	}
	if flags.Changed("step-limit") {
		config.Experiment.StepLimit = stepLimit
	}
	if flags.Changed("episode-cutoff") {
		config.Experiment.EnvConf.EpisodeCutoff = episodeCutoff
	}
	if flags.Changed("checkpoint-interval") {
		config.Experiment.CheckpointInterval = checkpointInterval
	}

	return config.Experiment.Validate()
}

// Record saves the configuration of the run to config.json in the
// save path
func Record() error {
	if config.Experiment.SavePath == "" {
		return nil
	}
	if err := os.MkdirAll(config.Experiment.SavePath, 0o755); err != nil {
		return fmt.Errorf("could not create save path: %v", err)
	}

	data, err := json.MarshalIndent(config, "", "\t")
	if err != nil {
		return fmt.Errorf("could not encode config: %v", err)
	}
	return os.WriteFile(filepath.Join(config.Experiment.SavePath,
		"config.json"), data, 0o644)
}
