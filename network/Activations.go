package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

type activationType string

const (
	relu     activationType = "relu"
	identity activationType = "identity"
	tanh     activationType = "tanh"
	softmax  activationType = "softmax"
)

// Activation represents an activation function type
type Activation struct {
	activationType
	f func(x *G.Node) (*G.Node, error)
}

// fwd performs the forward pass of an Activation
func (a *Activation) fwd(x *G.Node) (*G.Node, error) {
	return a.f(x)
}

// String implements the Stringer interface
func (a *Activation) String() string {
	return string(a.activationType)
}

// IsIdentity returns whether or not the Activation is the identity
// function.
func (a *Activation) IsIdentity() bool {
	return a.activationType == identity
}

// GobEncode implements the GobEncoder interface
func (a *Activation) GobEncode() ([]byte, error) {
	return []byte(a.activationType), nil
}

// GobDecode implements the GobDecoder interface
func (a *Activation) GobDecode(encoded []byte) error {
	act, err := activationFor(activationType(encoded))
	if err != nil {
		return fmt.Errorf("gobdecode: %v", err)
	}
	*a = *act
	return nil
}

// MarshalText implements the encoding.TextMarshaler interface so that
// Activations can be stored in JSON configuration files
func (a *Activation) MarshalText() ([]byte, error) {
	return []byte(a.activationType), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface
func (a *Activation) UnmarshalText(text []byte) error {
	act, err := activationFor(activationType(text))
	if err != nil {
		return fmt.Errorf("unmarshalText: %v", err)
	}
	*a = *act
	return nil
}

func activationFor(t activationType) (*Activation, error) {
	switch t {
	case relu:
		return ReLU(), nil
	case identity:
		return Identity(), nil
	case tanh:
		return TanH(), nil
	case softmax:
		return SoftMax(), nil
	}
	return nil, fmt.Errorf("illegal Activation type %q", t)
}

// Identity returns an identity *Activation
func Identity() *Activation {
	return &Activation{
		activationType: identity,
		f: func(x *G.Node) (*G.Node, error) {
			return x, nil
		},
	}
}

// ReLU returns a ReLU *Activation
func ReLU() *Activation {
	return &Activation{
		activationType: relu,
		f:              G.Rectify,
	}
}

// TanH returns a tanh *Activation
func TanH() *Activation {
	return &Activation{
		activationType: tanh,
		f:              G.Tanh,
	}
}

// SoftMax returns a softmax *Activation, which normalizes each row of
// its input into a probability distribution. The softmax is computed
// as exp(x - LogSumExp(x)) so that large inputs do not overflow.
func SoftMax() *Activation {
	return &Activation{
		activationType: softmax,
		f: func(x *G.Node) (*G.Node, error) {
			logProbs, err := LogSoftMax(x)
			if err != nil {
				return nil, err
			}
			return G.Exp(logProbs)
		},
	}
}

// LogSumExp computes log(Σ exp(x)) along an axis of logits in a
// numerically stable way by first subtracting the maximum logit
func LogSumExp(logits *G.Node, along int) (*G.Node, error) {
	max, err := G.Max(logits, along)
	if err != nil {
		return nil, fmt.Errorf("logSumExp: %v", err)
	}

	exponent, err := G.BroadcastSub(logits, max, nil, []byte{1})
	if err != nil {
		return nil, fmt.Errorf("logSumExp: %v", err)
	}
	exponent = G.Must(G.Exp(exponent))

	// Sum along rows
	sum := G.Must(G.Sum(exponent, along))
	log := G.Must(G.Log(sum))

	return G.Add(max, log)
}

// LogSoftMax returns the logarithm of the softmax of each row of a
// matrix of logits
func LogSoftMax(logits *G.Node) (*G.Node, error) {
	if !logits.IsMatrix() {
		return nil, fmt.Errorf("logSoftMax: logits must be a matrix")
	}

	logSumExp, err := LogSumExp(logits, 1)
	if err != nil {
		return nil, fmt.Errorf("logSoftMax: %v", err)
	}

	return G.BroadcastSub(logits, logSumExp, nil, []byte{1})
}
