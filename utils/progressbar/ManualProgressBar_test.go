package progressbar

import (
	"bytes"
	"strings"
	"testing"
)

func TestDisplay(t *testing.T) {
	var out bytes.Buffer
	p := NewManualProgressBar(&out, 10, 4)

	p.Increment()
	p.Increment()
	p.SetMessage("episode %v | return %.1f", 2, -500.0)
	p.Display()
	p.Close()

	s := out.String()
	if !strings.Contains(s, "50.00%") {
		t.Errorf("display: want progress of 50.00%% have %q", s)
	}
	if !strings.Contains(s, "episode 2 | return -500.0") {
		t.Errorf("display: message not displayed in %q", s)
	}
}

func TestIncrementStopsAtMax(t *testing.T) {
	p := NewManualProgressBar(&bytes.Buffer{}, 10, 2)
	for i := 0; i < 5; i++ {
		p.Increment()
	}
	if p.currentProgress != 2 {
		t.Errorf("increment: want progress 2 have %v", p.currentProgress)
	}

	unbounded := NewManualProgressBar(&bytes.Buffer{}, 10, 0)
	for i := 0; i < 5; i++ {
		unbounded.Increment()
	}
	if unbounded.currentProgress != 5 {
		t.Errorf("increment: want progress 5 have %v",
			unbounded.currentProgress)
	}
}
