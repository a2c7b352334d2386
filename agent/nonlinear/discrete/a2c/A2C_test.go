package a2c

import (
	"errors"
	"math"
	"testing"

	"github.com/samuelfneumann/acrobot-a2c/agent"
	ts "github.com/samuelfneumann/acrobot-a2c/timestep"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const features = 6

// stubActor selects actions in a fixed cycle and records its updates
type stubActor struct {
	next    int
	updates []actorUpdate
	weights [][]float64
}

type actorUpdate struct {
	obs    []float64
	action int
	weight float64
}

func (s *stubActor) Probabilities([]float64) ([]float64, error) {
	return []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, nil
}

func (s *stubActor) Sample([]float64) int {
	action := s.next
	s.next = (s.next + 1) % 3
	return action
}

func (s *stubActor) Learn(obs []float64, action int,
	weight float64) (float64, error) {
	s.updates = append(s.updates, actorUpdate{obs, action, weight})
	return -weight * math.Log(1.0/3), nil
}

func (s *stubActor) Weights() [][]float64 { return s.weights }

func (s *stubActor) SetWeights(w [][]float64) error {
	s.weights = w
	return nil
}

// stubCritic estimates the value of a state as the sum of its features
// and records its targets
type stubCritic struct {
	targets []float64
}

func (s *stubCritic) Value(obs []float64) (float64, error) {
	return floats.Sum(obs), nil
}

func (s *stubCritic) Learn(obs []float64, target float64) (float64, error) {
	s.targets = append(s.targets, target)
	v := floats.Sum(obs)
	return (v - target) * (v - target), nil
}

func (s *stubCritic) Weights() [][]float64 { return nil }

func (s *stubCritic) SetWeights([][]float64) error { return nil }

func newStubAgent(t *testing.T, discount float64) (*A2C, *stubActor,
	*stubCritic) {
	actor := &stubActor{}
	critic := &stubCritic{}
	a, err := New(actor, critic, features, discount)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return a, actor, critic
}

// observation returns an observation whose features sum to sum
func observation(sum float64) *mat.VecDense {
	return mat.NewVecDense(features, []float64{sum, 0, 0, 0, 0, 0})
}

func step(stepType ts.StepType, reward, sum float64, n int) ts.TimeStep {
	return ts.New(stepType, reward, 1.0, observation(sum), n)
}

func TestDiscountAccumulator(t *testing.T) {
	const γ = 0.9
	a, _, _ := newStubAgent(t, γ)

	for episode := 0; episode < 2; episode++ {
		a.ResetMode(agent.Train)
		if d := a.Discount(); d != 1.0 {
			t.Fatalf("resetMode: want discount accumulator 1 have %v", d)
		}

		for i := 0; i < 20; i++ {
			stepType := ts.Mid
			if i == 0 {
				stepType = ts.First
			}
			if _, err := a.PlayStep(step(stepType, -1, 0.5, i)); err != nil {
				t.Fatalf("playStep: %v", err)
			}

			want := math.Pow(γ, float64(i+1))
			if d := a.Discount(); math.Abs(d-want) > 1e-12 {
				t.Errorf("playStep: after %v steps want discount "+
					"accumulator %v have %v", i+1, want, d)
			}
		}
	}

	// Idle mode does not track the accumulator
	a.ResetMode(agent.Idle)
	for i := 0; i < 5; i++ {
		if _, err := a.PlayStep(step(ts.Mid, -1, 0.5, i)); err != nil {
			t.Fatalf("playStep: %v", err)
		}
	}
	if d := a.Discount(); d != 1.0 {
		t.Errorf("idle: want discount accumulator 1 have %v", d)
	}
}

func TestUpdateIffTwoRecords(t *testing.T) {
	a, actor, critic := newStubAgent(t, 0.99)
	a.ResetMode(agent.Train)

	if _, err := a.PlayStep(step(ts.First, 0, 0.1, 0)); err != nil {
		t.Fatalf("playStep: %v", err)
	}
	if a.Updates() != 0 || len(actor.updates) != 0 ||
		len(critic.targets) != 0 {
		t.Fatalf("playStep: update with a single timestep")
	}
	if _, ok := a.LastUpdate(); ok {
		t.Errorf("lastUpdate: reported an update before any occurred")
	}

	for i := 1; i < 10; i++ {
		if _, err := a.PlayStep(step(ts.Mid, -1, 0.1, i)); err != nil {
			t.Fatalf("playStep: %v", err)
		}
		if a.Updates() != i || len(actor.updates) != i ||
			len(critic.targets) != i {
			t.Fatalf("playStep: want %v updates have %v", i, a.Updates())
		}
	}

	// A new episode empties the transition window
	a.ResetMode(agent.Train)
	if _, err := a.PlayStep(step(ts.First, 0, 0.1, 0)); err != nil {
		t.Fatalf("playStep: %v", err)
	}
	if a.Updates() != 9 {
		t.Errorf("resetMode: update across episodes")
	}
}

func TestReinforcePanicsWithOneRecord(t *testing.T) {
	a, _, _ := newStubAgent(t, 0.99)
	a.ResetMode(agent.Train)
	if _, err := a.PlayStep(step(ts.First, 0, 0.1, 0)); err != nil {
		t.Fatalf("playStep: %v", err)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("reinforce: want panic with a single timestep")
		}
	}()
	a.reinforce()
}

func TestTDTarget(t *testing.T) {
	const γ = 0.9

	tests := []struct {
		name       string
		end        ts.EndType
		nextSum    float64
		reward     float64
		wantTarget float64
	}{
		{"Mid", ts.NotEnded, 2.0, -1.0, -1.0 + γ*2.0},
		{"Terminal", ts.TerminalStateReached, 2.0, 0.0, 0.0},
		{"Truncated", ts.Timeout, 2.0, -1.0, -1.0 + γ*2.0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			a, actor, critic := newStubAgent(t, γ)
			a.ResetMode(agent.Train)

			first, err := a.PlayStep(step(ts.First, 0, 1.0, 0))
			if err != nil {
				t.Fatalf("playStep: %v", err)
			}

			next := step(ts.Mid, test.reward, test.nextSum, 1)
			if test.end != ts.NotEnded {
				next.StepType = ts.Last
				next.SetEnd(test.end)
			}
			if _, err := a.PlayStep(next); err != nil {
				t.Fatalf("playStep: %v", err)
			}

			if len(critic.targets) != 1 {
				t.Fatalf("playStep: want 1 critic update have %v",
					len(critic.targets))
			}
			if critic.targets[0] != test.wantTarget {
				t.Errorf("target: want %v have %v", test.wantTarget,
					critic.targets[0])
			}

			update, ok := a.LastUpdate()
			if !ok {
				t.Fatal("lastUpdate: no update reported")
			}
			wantTDError := test.wantTarget - 1.0
			if update.TDError != wantTDError || update.Value != 1.0 ||
				update.NextValue != test.nextSum {
				t.Errorf("lastUpdate: want td error %v, v(s) 1, v(s') %v "+
					"have %+v", wantTDError, test.nextSum, update)
			}

			// The actor is updated on the first transition's action with
			// the accumulated discount at the time of the update
			u := actor.updates[0]
			if u.action != first {
				t.Errorf("actor: want update on action %v have %v", first,
					u.action)
			}
			if math.Abs(u.weight-γ*wantTDError) > 1e-12 {
				t.Errorf("actor: want weight %v have %v", γ*wantTDError,
					u.weight)
			}
			if floats.Sum(u.obs) != 1.0 {
				t.Errorf("actor: updated on wrong state %v", u.obs)
			}
		})
	}
}

func TestObservationShape(t *testing.T) {
	a, _, _ := newStubAgent(t, 0.99)
	a.ResetMode(agent.Train)

	bad := ts.New(ts.First, 0, 1, mat.NewVecDense(4, nil), 0)
	if _, err := a.PlayStep(bad); !errors.Is(err, ErrObservationShape) {
		t.Errorf("playStep: want %v have %v", ErrObservationShape, err)
	}

	empty := ts.New(ts.First, 0, 1, nil, 0)
	if _, err := a.PlayStep(empty); !errors.Is(err, ErrObservationShape) {
		t.Errorf("playStep: want %v have %v", ErrObservationShape, err)
	}
}

func TestIdleModeDoesNotLearn(t *testing.T) {
	a, actor, critic := newStubAgent(t, 0.99)
	a.ResetMode(agent.Idle)

	for i := 0; i < 10; i++ {
		action, err := a.PlayStep(step(ts.Mid, -1, float64(i), i))
		if err != nil {
			t.Fatalf("playStep: %v", err)
		}
		if action < 0 || action > 2 {
			t.Errorf("playStep: illegal action %v", action)
		}
	}

	if len(actor.updates) != 0 || len(critic.targets) != 0 ||
		a.Updates() != 0 {
		t.Error("idle: agent learned in idle mode")
	}
}

func TestResetModeIllegal(t *testing.T) {
	a, _, _ := newStubAgent(t, 0.99)

	defer func() {
		if r := recover(); r == nil {
			t.Error("resetMode: want panic on illegal mode")
		}
	}()
	a.ResetMode(agent.Mode(7))
}
