package acrobot_test

import (
	"math"
	"testing"

	"github.com/samuelfneumann/acrobot-a2c/environment"
	"github.com/samuelfneumann/acrobot-a2c/environment/classiccontrol/acrobot"
	ts "github.com/samuelfneumann/acrobot-a2c/timestep"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

func newAcrobot(t *testing.T, cutoff int, seed uint64) (*acrobot.Acrobot,
	ts.TimeStep) {
	bounds := r1.Interval{Min: -acrobot.StartBound, Max: acrobot.StartBound}
	s := environment.NewUniformStarter([]r1.Interval{bounds, bounds, bounds,
		bounds}, seed)
	task := acrobot.NewSwingUp(s, cutoff, acrobot.GoalHeight)

	a, step, err := acrobot.New(task, 1.0)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return a, step
}

func inSpec(obs mat.Vector, spec environment.Spec) bool {
	for i := 0; i < obs.Len(); i++ {
		if obs.AtVec(i) < spec.LowerBound.AtVec(i) ||
			obs.AtVec(i) > spec.UpperBound.AtVec(i) {
			return false
		}
	}
	return true
}

func TestReset(t *testing.T) {
	a, step := newAcrobot(t, 500, 11)

	if !step.First() {
		t.Errorf("reset: want first timestep, have %v", step.StepType)
	}
	if l := step.Observation.Len(); l != acrobot.ObservationDims {
		t.Fatalf("reset: observation length want(%v) have(%v)",
			acrobot.ObservationDims, l)
	}
	if !inSpec(step.Observation, a.ObservationSpec()) {
		t.Errorf("reset: observation %v outside of observation spec",
			mat.Formatted(step.Observation.T()))
	}

	state := a.State()
	for i := 0; i < state.Len(); i++ {
		if math.Abs(state.AtVec(i)) > acrobot.StartBound {
			t.Errorf("reset: state variable %v = %v outside of start bounds",
				i, state.AtVec(i))
		}
	}
}

func TestObserve(t *testing.T) {
	state := mat.NewVecDense(4, []float64{0.3, -1.2, 2.0, -3.0})
	obs := acrobot.Observe(state)

	want := []float64{math.Cos(0.3), math.Sin(0.3), math.Cos(-1.2),
		math.Sin(-1.2), 2.0, -3.0}
	for i := range want {
		if obs.AtVec(i) != want[i] {
			t.Errorf("observe: index %v want(%v) have(%v)", i, want[i],
				obs.AtVec(i))
		}
	}

	height := acrobot.TipHeight(obs)
	wantHeight := -math.Cos(0.3) - math.Cos(0.3-1.2)
	if math.Abs(height-wantHeight) > 1e-12 {
		t.Errorf("tipHeight: want(%v) have(%v)", wantHeight, height)
	}
}

func TestStepTimeout(t *testing.T) {
	const cutoff = 20
	a, step := newAcrobot(t, cutoff, 3)

	// Applying no torque from near rest never reaches the goal
	action := mat.NewVecDense(1, []float64{1})
	var done bool
	var err error
	for i := 0; i < cutoff; i++ {
		if done {
			t.Fatalf("step: episode ended early at step %v", i)
		}
		step, done, err = a.Step(action)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if step.Reward != -1 {
			t.Errorf("step: want reward -1 have %v", step.Reward)
		}
		if !inSpec(step.Observation, a.ObservationSpec()) {
			t.Errorf("step: observation outside of observation spec")
		}
	}

	if !done || !step.Truncated() || step.Terminal() {
		t.Errorf("step: want truncated episode after %v steps, have %v",
			cutoff, step)
	}
	if step.Number != cutoff {
		t.Errorf("step: want step number %v have %v", cutoff, step.Number)
	}

	if _, _, err := a.Step(action); err == nil {
		t.Error("step: stepping an ended episode should fail")
	}
}

func TestStepIllegalAction(t *testing.T) {
	a, _ := newAcrobot(t, 500, 5)

	for _, action := range []float64{-1, 3, 0.5} {
		_, _, err := a.Step(mat.NewVecDense(1, []float64{action}))
		if err == nil {
			t.Errorf("step: action %v should be illegal", action)
		}
	}
}

func TestRewardAndEnd(t *testing.T) {
	bounds := r1.Interval{Min: -acrobot.StartBound, Max: acrobot.StartBound}
	s := environment.NewUniformStarter([]r1.Interval{bounds, bounds, bounds,
		bounds}, 1)
	task := acrobot.NewSwingUp(s, 500, acrobot.GoalHeight)

	// Both links pointing straight up
	up := acrobot.Observe(mat.NewVecDense(4, []float64{math.Pi, 0, 0, 0}))
	down := acrobot.Observe(mat.NewVecDense(4, []float64{0, 0, 0, 0}))

	if r := task.GetReward(down, nil, up); r != 0 {
		t.Errorf("getReward: want 0 at goal, have %v", r)
	}
	if r := task.GetReward(up, nil, down); r != -1 {
		t.Errorf("getReward: want -1 away from goal, have %v", r)
	}

	step := ts.New(ts.Mid, 0, 1, up, 3)
	if !task.End(&step) || !step.Terminal() {
		t.Errorf("end: want terminal timestep, have %v", step)
	}
}

func TestRender(t *testing.T) {
	a, _ := newAcrobot(t, 500, 7)

	img := a.Render(64)
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Errorf("render: want 64x64 image, have %vx%v", b.Dx(), b.Dy())
	}
}
