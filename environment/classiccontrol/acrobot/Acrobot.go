// Package acrobot implements the classic control environment Acrobot
// with discrete actions
package acrobot

import (
	"fmt"
	"math"

	env "github.com/samuelfneumann/acrobot-a2c/environment"
	ts "github.com/samuelfneumann/acrobot-a2c/timestep"
	"github.com/samuelfneumann/acrobot-a2c/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

const (
	dt float64 = 0.2

	// Physical constants
	LinkLength1 float64 = 1.0 // Metres, length of link 1
	LinkLength2 float64 = 1.0 // Metres, length of link 2
	LinkMass1   float64 = 1.0 // Kg, mass of link 1
	LinkMass2   float64 = 1.0 // Kg, mass of link 2
	LinkCOMPos1 float64 = 0.5 // Metres, centre of mass link 1
	LinkCOMPos2 float64 = 0.5 // Metres, centre of mass link 2
	LinkMOI     float64 = 1.0 // Moments of inertia for both links
	MaxVel1     float64 = 4 * math.Pi
	MinVel1     float64 = -MaxVel1
	MaxVel2     float64 = 9 * math.Pi
	MinVel2     float64 = -MaxVel2
	Gravity     float64 = 9.8
	MaxAngle    float64 = math.Pi
	MinAngle    float64 = -MaxAngle
	MinTorque   float64 = -1.0
	MaxTorque   float64 = 1.0

	// Environment constants
	StateDims         int = 4
	ObservationDims   int = 6
	ActionDims        int = 1
	MinDiscreteAction int = 0 // Applies MinTorque
	MaxDiscreteAction int = 2 // Applies MaxTorque
	NumActions        int = MaxDiscreteAction - MinDiscreteAction + 1

	// StartBound bounds each state variable of starting states in
	// [-StartBound, StartBound]
	StartBound float64 = 0.1

	// DefaultEpisodeCutoff is the episode step limit of Acrobot-v1.
	// Acrobot-v0 used a cutoff of 200.
	DefaultEpisodeCutoff int = 500
)

// Acrobot implements the classic control environment Acrobot. In this
// environment, a double hinged and double linked pendulum is attached
// to a single actuated fixed base. Torque can be applied to the base
// to swing the double pendulum (acrobot) around.
//
// The underlying state is 4-dimensional:
//
//		s = [θ1, θ2, θ̇1, θ̇2], where:
//		θ1 = angle of the first link measured from the negative y-axis
//		θ2 = angle of the second link relative to the first link
//		θ̇1 = angular velocity of the first link
//		θ̇2 = angular velocity of the second link
//
// Observations hide the angles behind their sines and cosines, so
// that observation vectors are 6-dimensional:
//
//		o = [cos θ1, sin θ1, cos θ2, sin θ2, θ̇1, θ̇2]
//
// Angles are wrapped to stay within [-π, π] and angular velocities are
// clipped to [MinVel1, MaxVel1] for the first link and [MinVel2,
// MaxVel2] for the second link.
//
// Actions are discrete in {0, 1, 2} and apply a torque of action - 1
// to the joint between the two links.
type Acrobot struct {
	env.Task
	state           *mat.VecDense
	lastStep        ts.TimeStep
	discount        float64
	angleBounds     r1.Interval
	velocity1Bounds r1.Interval
	velocity2Bounds r1.Interval
}

// New returns a new Acrobot environment using Task t and discount
// factor discount, as well as the first timestep of the first episode.
func New(t env.Task, discount float64) (*Acrobot, ts.TimeStep, error) {
	acrobot := &Acrobot{
		Task:            t,
		discount:        discount,
		angleBounds:     r1.Interval{Min: MinAngle, Max: MaxAngle},
		velocity1Bounds: r1.Interval{Min: MinVel1, Max: MaxVel1},
		velocity2Bounds: r1.Interval{Min: MinVel2, Max: MaxVel2},
	}

	firstStep, err := acrobot.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}

	return acrobot, firstStep, nil
}

// validateState checks if the state is valid and returns an error
// denoting whether the state is a valid state or not.
func (a *Acrobot) validateState(state *mat.VecDense) error {
	if l := state.Len(); l != StateDims {
		return fmt.Errorf("illegal state length \n\twant(%v) \n\thave(%v)",
			StateDims, l)
	}
	if !contains(a.angleBounds, state.AtVec(0)) {
		return fmt.Errorf("angle 1 out of bounds")
	}
	if !contains(a.angleBounds, state.AtVec(1)) {
		return fmt.Errorf("angle 2 out of bounds")
	}
	if !contains(a.velocity1Bounds, state.AtVec(2)) {
		return fmt.Errorf("angular velocity 1 out of bounds")
	}
	if !contains(a.velocity2Bounds, state.AtVec(3)) {
		return fmt.Errorf("angular velocity 2 out of bounds")
	}
	return nil
}

func contains(i r1.Interval, v float64) bool {
	return v >= i.Min && v <= i.Max
}

// Observe returns the 6-dimensional observation of a 4-dimensional
// Acrobot state
func Observe(state mat.Vector) *mat.VecDense {
	theta1, theta2 := state.AtVec(0), state.AtVec(1)
	return mat.NewVecDense(ObservationDims, []float64{
		math.Cos(theta1),
		math.Sin(theta1),
		math.Cos(theta2),
		math.Sin(theta2),
		state.AtVec(2),
		state.AtVec(3),
	})
}

// Reset resets the environment, begins a new episode, and returns
// the first timestep of the new episode
func (a *Acrobot) Reset() (ts.TimeStep, error) {
	state := a.Start()
	if err := a.validateState(state); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}
	a.state = state

	startStep := ts.New(ts.First, 0, a.discount, Observe(state), 0)
	a.lastStep = startStep

	return startStep, nil
}

// Step takes one environmental step given action act and returns the
// next timestep and a bool indicating whether or not the episode has
// ended. Actions are discrete and in the set {MinDiscreteAction,
// MinDiscreteAction+1, ..., MaxDiscreteAction}. Actions outside this
// set result in an error.
func (a *Acrobot) Step(act *mat.VecDense) (ts.TimeStep, bool, error) {
	if a.lastStep.Last() {
		return ts.TimeStep{}, true, fmt.Errorf("step: episode has ended, " +
			"environment must be reset")
	}

	if act.Len() != ActionDims {
		return ts.TimeStep{}, false, fmt.Errorf("step: actions should be "+
			"%v-dimensional \n\thave(%v)", ActionDims, act.Len())
	}

	// Ensure a legal action was selected
	action := act.AtVec(0)
	intAction := int(action)
	if float64(intAction) != action || intAction > MaxDiscreteAction ||
		intAction < MinDiscreteAction {
		return ts.TimeStep{}, false, fmt.Errorf("step: illegal action %v "+
			"∉ (0, 1, 2)", action)
	}

	torque := float64(intAction) - 1.0
	prevObs := a.lastStep.Observation
	a.state = a.nextState(torque)
	obs := Observe(a.state)

	reward := a.GetReward(prevObs, act, obs)
	nextStep := ts.New(ts.Mid, reward, a.discount, obs, a.lastStep.Number+1)

	// Check if the step is the last in the episode and adjust step type
	// if necessary
	a.End(&nextStep)

	a.lastStep = nextStep
	return nextStep, nextStep.Last(), nil
}

// nextState returns the next state of the environment given the
// torque to apply to the acrobot.
func (a *Acrobot) nextState(torque float64) *mat.VecDense {
	torque = floatutils.Clip(torque, MinTorque, MaxTorque)

	sAugmented := mat.NewVecDense(StateDims+1, nil)
	sAugmented.SliceVec(0, StateDims).(*mat.VecDense).CopyVec(a.state)
	sAugmented.SetVec(StateDims, torque)

	integrated := rk4(dsDt, sAugmented, []float64{0.0, dt})
	r, _ := integrated.Dims()
	ns := mat.NewVecDense(StateDims, nil)
	ns.CopyVec(integrated.RowView(r - 1).(*mat.VecDense).SliceVec(0,
		StateDims))

	// Ensure state stays in an acceptable range
	ns.SetVec(0, floatutils.WrapInterval(ns.AtVec(0), a.angleBounds))
	ns.SetVec(1, floatutils.WrapInterval(ns.AtVec(1), a.angleBounds))
	ns.SetVec(2, floatutils.ClipInterval(ns.AtVec(2), a.velocity1Bounds))
	ns.SetVec(3, floatutils.ClipInterval(ns.AtVec(3), a.velocity2Bounds))

	return ns
}

// LastTimeStep returns the current timestep of the environment
func (a *Acrobot) LastTimeStep() ts.TimeStep {
	return a.lastStep
}

// State returns a copy of the underlying 4-dimensional state
func (a *Acrobot) State() *mat.VecDense {
	state := mat.NewVecDense(StateDims, nil)
	state.CopyVec(a.state)
	return state
}

// ObservationSpec returns the observation specification of the
// environment
func (a *Acrobot) ObservationSpec() env.Spec {
	shape := mat.NewVecDense(ObservationDims, nil)
	lowerBound := mat.NewVecDense(ObservationDims, []float64{-1, -1, -1,
		-1, MinVel1, MinVel2})
	upperBound := mat.NewVecDense(ObservationDims, []float64{1, 1, 1, 1,
		MaxVel1, MaxVel2})

	return env.NewSpec(shape, env.Observation, lowerBound, upperBound,
		env.Continuous)
}

// ActionSpec returns the action specification of the environment
func (a *Acrobot) ActionSpec() env.Spec {
	shape := mat.NewVecDense(ActionDims, nil)
	lowerBound := mat.NewVecDense(ActionDims,
		[]float64{float64(MinDiscreteAction)})
	upperBound := mat.NewVecDense(ActionDims,
		[]float64{float64(MaxDiscreteAction)})

	return env.NewSpec(shape, env.Action, lowerBound, upperBound,
		env.Discrete)
}

// DiscountSpec returns the discounting specification of the environment
func (a *Acrobot) DiscountSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{a.discount})
	upperBound := mat.NewVecDense(1, []float64{a.discount})

	return env.NewSpec(shape, env.Discount, lowerBound, upperBound,
		env.Continuous)
}

// String implements the fmt.Stringer interface
func (a *Acrobot) String() string {
	return fmt.Sprintf("Acrobot  |  θ1: %v  |  θ2: %v  |  θ̇1: %v  |  θ̇2: %v",
		a.state.AtVec(0), a.state.AtVec(1), a.state.AtVec(2),
		a.state.AtVec(3))
}

// dsDt calculates ds/dt for the environment, where s = the current
// environment state augmented with the applied torque. Dynamics follow
// the RL book rather than the NeurIPS paper.
func dsDt(sAugmented *mat.VecDense, t float64) []float64 {
	m1 := LinkMass1
	m2 := LinkMass2
	l1 := LinkLength1
	lc1 := LinkCOMPos1
	lc2 := LinkCOMPos2
	i1 := LinkMOI
	i2 := LinkMOI
	g := Gravity

	a := sAugmented.AtVec(StateDims)

	theta1 := sAugmented.AtVec(0)
	theta2 := sAugmented.AtVec(1)
	dtheta1 := sAugmented.AtVec(2)
	dtheta2 := sAugmented.AtVec(3)

	d1 := (m1*math.Pow(lc1, 2) +
		m2*(math.Pow(l1, 2)+math.Pow(lc2, 2)+2*l1*lc2*math.Cos(theta2)) +
		i1 + i2)

	d2 := m2*(math.Pow(lc2, 2)+l1*lc2*math.Cos(theta2)) + i2

	phi2 := m2 * lc2 * g * math.Cos(theta1+theta2-(math.Pi/2.0))
	phi1 := (-m2*l1*lc2*math.Pow(dtheta2, 2)*math.Sin(theta2) -
		2*m2*l1*lc2*dtheta2*dtheta1*math.Sin(theta2) +
		(m1*lc1+m2*l1)*g*math.Cos(theta1-(math.Pi/2.0)) +
		phi2)

	ddtheta2 := (a + d2/d1*phi1 - m2*l1*lc2*math.Pow(dtheta1, 2)*
		math.Sin(theta2) - phi2) /
		(m2*math.Pow(lc2, 2) + i2 - math.Pow(d2, 2)/d1)
	ddtheta1 := -(d2*ddtheta2 + phi1) / d1

	// Last component is da/dt == 0.0
	return []float64{dtheta1, dtheta2, ddtheta1, ddtheta2, 0.0}
}

// rk4 integrates an n-dimensional system of ODEs using 4-th order
// Runge-Kutta, returning one row per time in t.
func rk4(derivs func(*mat.VecDense, float64) []float64, y0 *mat.VecDense,
	t []float64) *mat.Dense {
	yout := mat.NewDense(len(t), y0.Len(), nil)
	yout.SetRow(0, y0.RawVector().Data)

	for i := 0; i < len(t)-1; i++ {
		thist := t[i]
		dt := t[i+1] - thist // shadowing package constant
		dt2 := dt / 2.0

		y := mat.VecDenseCopyOf(yout.RowView(i))

		k1 := mat.NewVecDense(y.Len(), derivs(y, thist))

		input := mat.NewVecDense(y.Len(), nil)
		input.AddScaledVec(y, dt2, k1)
		k2 := mat.NewVecDense(y.Len(), derivs(input, thist+dt2))

		input.AddScaledVec(y, dt2, k2)
		k3 := mat.NewVecDense(y.Len(), derivs(input, thist+dt2))

		input.AddScaledVec(y, dt, k3)
		k4 := mat.NewVecDense(y.Len(), derivs(input, thist+dt))

		row := mat.NewVecDense(y.Len(), nil)
		row.CopyVec(k1)
		row.AddScaledVec(row, 2.0, k2)
		row.AddScaledVec(row, 2.0, k3)
		row.AddVec(row, k4)
		row.AddScaledVec(y, dt/6.0, row)

		yout.SetRow(i+1, row.RawVector().Data)
	}
	return yout
}
