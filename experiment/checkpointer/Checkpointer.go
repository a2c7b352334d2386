// Package checkpointer implements functionality for periodically saving
// the weights of agents during an experiment
package checkpointer

import (
	"encoding/gob"
	"fmt"
	"os"
)

// Weighted is an object whose weights can be checkpointed. Weights are
// keyed by the name of the function approximator they belong to.
type Weighted interface {
	Weights() map[string][][]float64
	SetWeights(map[string][][]float64) error
}

// Checkpointer checkpoints objects based on the number of episodes
// completed in an experiment
type Checkpointer interface {
	Checkpoint(episode int) error
}

// Save saves the weights of w to the file filename
func Save(filename string, w Weighted) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not create checkpoint file: %v", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(w.Weights()); err != nil {
		return fmt.Errorf("save: could not encode weights: %v", err)
	}
	return file.Close()
}

// Load sets the weights of w to those saved in the file filename
func Load(filename string, w Weighted) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("load: could not open checkpoint file: %v", err)
	}
	defer file.Close()

	var weights map[string][][]float64
	if err := gob.NewDecoder(file).Decode(&weights); err != nil {
		return fmt.Errorf("load: could not decode weights: %v", err)
	}

	if err := w.SetWeights(weights); err != nil {
		return fmt.Errorf("load: %v", err)
	}
	return nil
}
