package trackers

import (
	"fmt"

	ts "github.com/samuelfneumann/acrobot-a2c/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes in an
// experiment, along with how each episode ended.
//
// Note that an episode must finish for this Tracker to save its data.
// If the last episode in an experiment does not finish, that episode's
// length will not be saved.
type EpisodeLength struct {
	episodeLengths []int
	truncated      int
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength Tracker which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track caches the episode length if the timestep passed to it is the
// last timestep in the episode.
func (e *EpisodeLength) Track(t ts.TimeStep) {
	if t.Last() {
		e.episodeLengths = append(e.episodeLengths, t.Number)
		if t.Truncated() {
			e.truncated++
		}
	}
}

// Lengths returns the lengths of all episodes tracked so far
func (e *EpisodeLength) Lengths() []int {
	return append([]int(nil), e.episodeLengths...)
}

// Truncated returns the number of tracked episodes that were cut off
// before reaching a terminal state
func (e *EpisodeLength) Truncated() int {
	return e.truncated
}

// Save saves the data tracked by the EpisodeLength Tracker to disk.
func (e *EpisodeLength) Save() error {
	if err := save(e.filename, e.episodeLengths); err != nil {
		return fmt.Errorf("save: %v", err)
	}
	return nil
}
