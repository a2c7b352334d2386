package cmd

import (
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/acrobot-a2c/agent/nonlinear/discrete/a2c"
	"github.com/samuelfneumann/acrobot-a2c/experiment"
)

func TestRecordAndLoadConfig(t *testing.T) {
	dir := t.TempDir()
	config = runConfig{Seed: 9, Experiment: experiment.Default()}
	config.Experiment.SavePath = dir
	config.Experiment.Window = 4
	config.Experiment.MaxEpisodes = 300
	if err := Record(); err != nil {
		t.Fatalf("record: %v", err)
	}

	config = runConfig{Seed: 1, Experiment: experiment.Default()}
	root := RootCommand()
	if err := root.ParseFlags([]string{
		"--config", filepath.Join(dir, "config.json"),
		"--window", "7",
	}); err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if err := UpdateFlags(root); err != nil {
		t.Fatalf("updateFlags: %v", err)
	}

	if config.Seed != 9 {
		t.Errorf("updateFlags: want seed 9 have %v", config.Seed)
	}
	if config.Experiment.Window != 7 {
		t.Errorf("updateFlags: want window 7 have %v",
			config.Experiment.Window)
	}
	if config.Experiment.MaxEpisodes != 300 {
		t.Errorf("updateFlags: want max episodes 300 have %v",
			config.Experiment.MaxEpisodes)
	}
	if config.Experiment.SavePath != dir {
		t.Errorf("updateFlags: want save path %v have %v", dir,
			config.Experiment.SavePath)
	}
	if config.Experiment.AgentConf.Type != a2c.MLP {
		t.Errorf("updateFlags: want agent type %v have %v", a2c.MLP,
			config.Experiment.AgentConf.Type)
	}
}

func TestUpdateFlagsValidates(t *testing.T) {
	config = runConfig{Seed: 1, Experiment: experiment.Default()}
	root := RootCommand()
	if err := root.ParseFlags([]string{"--window", "0"}); err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if err := UpdateFlags(root); err == nil {
		t.Error("updateFlags: want error with window 0")
	}
}
