package plots

import (
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestMovingAverage(t *testing.T) {
	data := []float64{-500, -300, -100, -100}
	want := []float64{-500, -400, -200, -100}

	if have := MovingAverage(data, 2); !floats.Equal(have, want) {
		t.Errorf("movingAverage: want %v have %v", want, have)
	}
}

func TestReturnCurve(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "returns.png")
	returns := []float64{-500, -500, -430, -300, -250, -180, -110, -95}

	if err := ReturnCurve(returns, 3, -120, filename); err != nil {
		t.Fatalf("returnCurve: %v", err)
	}
	info, err := os.Stat(filename)
	if err != nil {
		t.Fatalf("returnCurve: %v", err)
	}
	if info.Size() == 0 {
		t.Error("returnCurve: empty plot file")
	}

	if err := ReturnCurve(nil, 3, -120, filename); err == nil {
		t.Error("returnCurve: want error with no returns")
	}
}
