package checkpointer

import (
	"fmt"
	"path/filepath"
)

// nEpisode implements checkpointing every N episodes
type nEpisode struct {
	interval int
	object   Weighted

	// filename returns the name of the file to save the object in
	// after the argument episode
	filename func(episode int) string
}

// NewNEpisode returns a checkpointer that checkpoints object every n
// episodes. The filename function determines the checkpoint file for
// each episode. Use FilenameEnumerator to save each checkpoint to a
// separate, numbered file.
func NewNEpisode(n int, object Weighted,
	filename func(episode int) string) (Checkpointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("newNEpisode: checkpoint interval must be "+
			"positive, have %v", n)
	}

	return &nEpisode{
		interval: n,
		object:   object,
		filename: filename,
	}, nil
}

// Checkpoint saves the checkpointer's object if the number of
// completed episodes is a multiple of the checkpoint interval
func (n *nEpisode) Checkpoint(episode int) error {
	if episode > 0 && episode%n.interval == 0 {
		return Save(n.filename(episode), n.object)
	}
	return nil
}

// FilenameEnumerator returns a function which returns filenames in dir
// with the episode number as a suffix, for example
// dir/checkpoint-0100.bin.
func FilenameEnumerator(dir, name, extension string) func(int) string {
	return func(episode int) string {
		return filepath.Join(dir, fmt.Sprintf("%v-%04d%v", name, episode,
			extension))
	}
}
