// Package agent defines an agent interface
package agent

import (
	"fmt"

	"github.com/samuelfneumann/acrobot-a2c/timestep"
)

// Mode determines whether an agent learns from the timesteps it
// observes.
//
// In Idle mode an agent only selects actions: it keeps no history of
// the episode and never changes its weights. In Train mode an agent
// keeps whatever history its learning algorithm needs and updates its
// weights online.
type Mode int

const (
	Idle Mode = iota
	Train
)

// String implements the fmt.Stringer interface
func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Train:
		return "train"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText implements the encoding.TextMarshaler interface
func (m Mode) MarshalText() ([]byte, error) {
	if m != Idle && m != Train {
		return nil, fmt.Errorf("marshalText: illegal mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface
func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*m = Idle
	case "train":
		*m = Train
	default:
		return fmt.Errorf("unmarshalText: illegal mode %q", text)
	}
	return nil
}

// Agent selects actions in an environment and, depending on its Mode,
// learns from the consequences of those actions.
type Agent interface {
	// PlayStep selects an action for the observation in the argument
	// TimeStep. The reward and episode ending information in the
	// TimeStep are the consequences of the previous action that the
	// agent selected. In Train mode, PlayStep may update the agent's
	// weights.
	PlayStep(t timestep.TimeStep) (int, error)

	// ResetMode sets the agent's mode and discards any history kept
	// from previous episodes. ResetMode must be called at the start
	// of each episode before PlayStep.
	ResetMode(Mode)

	// Mode returns the current mode of the agent
	Mode() Mode
}

// A Closer is an agent that must be closed after it is done learning
type Closer interface {
	Agent
	Close() error
}

// Weighted is an agent whose weights can be saved and restored. Weights
// are keyed by the name of the function approximator they belong to,
// and each approximator's learnable tensors are flattened in order.
type Weighted interface {
	Agent
	Weights() map[string][][]float64
	SetWeights(map[string][][]float64) error
}
