package experiment

import (
	"fmt"

	"github.com/samuelfneumann/acrobot-a2c/agent"
	env "github.com/samuelfneumann/acrobot-a2c/environment"
	"github.com/samuelfneumann/acrobot-a2c/experiment/trackers"
	ts "github.com/samuelfneumann/acrobot-a2c/timestep"
	"gonum.org/v1/gonum/mat"
)

// Episode summarizes a single episode run by RunEpisode
type Episode struct {
	Return float64
	Steps  int

	// End records whether the episode ended because a terminal state
	// was reached or because it was cut off
	End ts.EndType
}

// RunEpisode runs a single episode of agent a on environment e online.
// The agent is reset to mode at the start of the episode, and each
// timestep the environment returns, including the last, is passed to
// the agent so that in agent.Train mode the agent learns from every
// transition in the episode.
//
// If stepLimit is positive, the episode is cut off after stepLimit
// environment steps even if the environment has not ended the episode.
// Each timestep is also sent to all trackers t.
//
// An error from the environment or the agent aborts the episode.
// The Episode returned with the error describes the episode up to
// the step where the error occurred.
func RunEpisode(e env.Environment, a agent.Agent, mode agent.Mode,
	stepLimit int, t ...trackers.Tracker) (Episode, error) {
	step, err := e.Reset()
	if err != nil {
		return Episode{}, fmt.Errorf("runEpisode: could not reset "+
			"environment: %v", err)
	}
	a.ResetMode(mode)
	track(t, step)

	var episode Episode
	for {
		action, err := a.PlayStep(step)
		if err != nil {
			return episode, fmt.Errorf("runEpisode: %w", err)
		}
		if step.Last() {
			break
		}

		step, _, err = e.Step(mat.NewVecDense(1, []float64{float64(action)}))
		if err != nil {
			return episode, fmt.Errorf("runEpisode: %v", err)
		}
		episode.Return += step.Reward
		episode.Steps++

		if stepLimit > 0 && episode.Steps >= stepLimit && !step.Last() {
			step.StepType = ts.Last
			step.SetEnd(ts.Timeout)
		}
		track(t, step)
	}

	episode.End = step.EndType()
	return episode, nil
}

// track sends a timestep to each tracker
func track(t []trackers.Tracker, step ts.TimeStep) {
	for _, tracker := range t {
		tracker.Track(step)
	}
}
