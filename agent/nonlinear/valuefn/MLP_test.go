package valuefn

import (
	"math"
	"testing"

	"github.com/samuelfneumann/acrobot-a2c/network"
	"github.com/samuelfneumann/acrobot-a2c/solver"
	G "gorgonia.org/gorgonia"
)

func newValueFn(t *testing.T) *MLP {
	s, err := solver.NewDefaultAdam(0.01, 1)
	if err != nil {
		t.Fatalf("newDefaultAdam: %v", err)
	}

	v, err := NewMLP(6, []int{16}, []bool{true},
		[]*network.Activation{network.ReLU()}, G.GlorotU(1.0), s)
	if err != nil {
		t.Fatalf("newMLP: %v", err)
	}
	t.Cleanup(func() { v.Close() })
	return v
}

func TestLearnMovesTowardTarget(t *testing.T) {
	v := newValueFn(t)
	obs := []float64{0.6, 0.8, -0.8, 0.6, 1.5, -2.5}
	const target = -5.0

	before, err := v.Value(obs)
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var loss float64
	for i := 0; i < 50; i++ {
		value, err := v.Value(obs)
		if err != nil {
			t.Fatalf("value: %v", err)
		}

		loss, err = v.Learn(obs, target)
		if err != nil {
			t.Fatalf("learn: %v", err)
		}

		// The loss is computed before the update
		want := (value - target) * (value - target)
		if math.Abs(loss-want) > 1e-9 {
			t.Fatalf("learn: want loss %v have %v", want, loss)
		}
	}

	after, err := v.Value(obs)
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if math.Abs(after-target) >= math.Abs(before-target) {
		t.Errorf("learn: value did not move toward target: %v -> %v",
			before, after)
	}
}

func TestSetWeights(t *testing.T) {
	a := newValueFn(t)
	b := newValueFn(t)
	if err := b.SetWeights(a.Weights()); err != nil {
		t.Fatalf("setWeights: %v", err)
	}

	obs := []float64{1, 0, 1, 0, 0, 0}
	va, err := a.Value(obs)
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	vb, err := b.Value(obs)
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if va != vb {
		t.Errorf("setWeights: values differ %v and %v", va, vb)
	}
}

func TestValueInputLength(t *testing.T) {
	v := newValueFn(t)
	if _, err := v.Value([]float64{1, 2}); err == nil {
		t.Error("value: want error on short input")
	}
}
