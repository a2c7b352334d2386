package checkpointer

import (
	"os"
	"path/filepath"
	"testing"
)

type weights struct {
	w map[string][][]float64
}

func (w *weights) Weights() map[string][][]float64 { return w.w }

func (w *weights) SetWeights(s map[string][][]float64) error {
	w.w = s
	return nil
}

func TestNEpisode(t *testing.T) {
	dir := t.TempDir()
	object := &weights{map[string][][]float64{
		"actor":  {{1, 2, 3}, {4}},
		"critic": {{-1}},
	}}

	c, err := NewNEpisode(10, object, FilenameEnumerator(dir, "checkpoint",
		".bin"))
	if err != nil {
		t.Fatalf("newNEpisode: %v", err)
	}

	for episode := 0; episode <= 25; episode++ {
		if err := c.Checkpoint(episode); err != nil {
			t.Fatalf("checkpoint: %v", err)
		}
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("checkpoint: want 2 checkpoints have %v", files)
	}

	loaded := &weights{}
	file := filepath.Join(dir, "checkpoint-0020.bin")
	if _, err := os.Stat(file); err != nil {
		t.Fatalf("checkpoint: %v", err)
	}
	if err := Load(file, loaded); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.w["actor"][0][2] != 3 || loaded.w["critic"][0][0] != -1 {
		t.Errorf("load: want %v have %v", object.w, loaded.w)
	}
}

func TestNewNEpisodeInterval(t *testing.T) {
	if _, err := NewNEpisode(0, &weights{}, nil); err == nil {
		t.Error("newNEpisode: want error on zero interval")
	}
}
