package policy

import (
	"math"
	"testing"

	"github.com/samuelfneumann/acrobot-a2c/network"
	"github.com/samuelfneumann/acrobot-a2c/solver"
	"gonum.org/v1/gonum/floats"
	G "gorgonia.org/gorgonia"
)

const (
	features   = 6
	numActions = 3
)

func newPolicy(t *testing.T, seed uint64) *CategoricalMLP {
	s, err := solver.NewVanilla(0.1, 1, -1)
	if err != nil {
		t.Fatalf("newVanilla: %v", err)
	}

	c, err := NewCategoricalMLP(features, numActions, []int{16},
		[]bool{true}, []*network.Activation{network.ReLU()},
		G.GlorotU(1.0), s, DefaultProbabilityFloor, seed)
	if err != nil {
		t.Fatalf("newCategoricalMLP: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestProbabilitiesAreDistribution(t *testing.T) {
	c := newPolicy(t, 1)

	observations := [][]float64{
		{1, 0, 1, 0, 0, 0},
		{-1, 0, 1, 0, 4 * math.Pi, -9 * math.Pi},
		{0.6, 0.8, -0.8, 0.6, 3.1, 7.7},
	}
	for _, obs := range observations {
		probs, err := c.Probabilities(obs)
		if err != nil {
			t.Fatalf("probabilities: %v", err)
		}
		if len(probs) != numActions {
			t.Fatalf("probabilities: want %v actions have %v", numActions,
				len(probs))
		}
		for _, p := range probs {
			if p < 0 {
				t.Errorf("probabilities: negative probability %v", p)
			}
		}
		if sum := floats.Sum(probs); math.Abs(sum-1) > 1e-9 {
			t.Errorf("probabilities: %v sum to %v", probs, sum)
		}
	}
}

func TestSampleFrequencies(t *testing.T) {
	c := newPolicy(t, 42)

	probs := []float64{0.2, 0.5, 0.3}
	const samples = 20000
	counts := make([]float64, numActions)
	for i := 0; i < samples; i++ {
		counts[c.Sample(probs)]++
	}

	for i := range counts {
		freq := counts[i] / samples
		if math.Abs(freq-probs[i]) > 0.02 {
			t.Errorf("sample: action %v frequency %v, want %v", i, freq,
				probs[i])
		}
	}
}

func TestSelectActionIsSeeded(t *testing.T) {
	a := newPolicy(t, 7)
	b := newPolicy(t, 7)
	if err := b.SetWeights(a.Weights()); err != nil {
		t.Fatalf("setWeights: %v", err)
	}

	obs := []float64{1, 0, 1, 0, 0.1, -0.1}
	for i := 0; i < 50; i++ {
		actionA, err := a.SelectAction(obs)
		if err != nil {
			t.Fatalf("selectAction: %v", err)
		}
		actionB, err := b.SelectAction(obs)
		if err != nil {
			t.Fatalf("selectAction: %v", err)
		}
		if actionA != actionB {
			t.Fatalf("selectAction: same seed selected actions %v and %v",
				actionA, actionB)
		}
		if actionA < 0 || actionA >= numActions {
			t.Fatalf("selectAction: illegal action %v", actionA)
		}
	}
}

func TestLearnIncreasesProbability(t *testing.T) {
	c := newPolicy(t, 3)
	obs := []float64{0.6, 0.8, -0.8, 0.6, 1.5, -2.5}
	const action = 2

	before, err := c.Probabilities(obs)
	if err != nil {
		t.Fatalf("probabilities: %v", err)
	}

	for i := 0; i < 10; i++ {
		loss, err := c.Learn(obs, action, 1.0)
		if err != nil {
			t.Fatalf("learn: %v", err)
		}
		if loss < 0 {
			t.Errorf("learn: negative log likelihood loss %v", loss)
		}
	}

	after, err := c.Probabilities(obs)
	if err != nil {
		t.Fatalf("probabilities: %v", err)
	}
	if after[action] <= before[action] {
		t.Errorf("learn: probability of action did not increase: %v -> %v",
			before[action], after[action])
	}
}

func TestLearnClampsProbability(t *testing.T) {
	c := newPolicy(t, 5)

	// Zero every weight except the output bias, which makes the last
	// action nearly impossible in all states
	weights := c.Weights()
	for i := range weights {
		for j := range weights[i] {
			weights[i][j] = 0
		}
	}
	outputBias := weights[len(weights)-1]
	outputBias[numActions-1] = -100
	if err := c.SetWeights(weights); err != nil {
		t.Fatalf("setWeights: %v", err)
	}

	obs := []float64{1, 0, 1, 0, 0, 0}
	loss, err := c.Learn(obs, numActions-1, 2.0)
	if err != nil {
		t.Fatalf("learn: %v", err)
	}

	want := -2.0 * math.Log(DefaultProbabilityFloor)
	if math.Abs(loss-want) > 1e-9 {
		t.Errorf("learn: want clamped loss %v have %v", want, loss)
	}

	// A clamped log probability has no gradient
	after := c.Weights()
	for i := range weights {
		if !floats.Equal(weights[i], after[i]) {
			t.Errorf("learn: weights %v changed with a clamped probability",
				i)
		}
	}
}

func TestLearnIllegalAction(t *testing.T) {
	c := newPolicy(t, 9)
	if _, err := c.Learn([]float64{1, 0, 1, 0, 0, 0}, numActions, 1); err == nil {
		t.Error("learn: want error on illegal action")
	}
}
