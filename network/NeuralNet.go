// Package network implements feed forward neural networks on Gorgonia
// computational graphs
package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// NeuralNet is a function approximator on a Gorgonia computational
// graph. Inputs are set with SetInput(), after which a VM running the
// network's graph computes the network's Prediction(), which can be
// read with Output().
type NeuralNet interface {
	Graph() *G.ExprGraph
	Clone() (NeuralNet, error)
	CloneWithBatch(int) (NeuralNet, error)
	BatchSize() int
	Features() int
	Outputs() int
	SetInput([]float64) error
	Set(NeuralNet) error
	Learnables() G.Nodes
	Model() []G.ValueGrad
	Output() G.Value
	Prediction() *G.Node

	// Linear returns the output node of the final affine layer, before
	// the network's output transform
	Linear() *G.Node

	// Weights returns a copy of the value of each learnable node in
	// the order given by Learnables()
	Weights() [][]float64

	// SetWeights sets the value of each learnable node in the order
	// given by Learnables()
	SetWeights([][]float64) error
}

// Set sets the weights of dest to be equal to the weights of source
func Set(dest, source NeuralNet) error {
	return dest.Set(source)
}

// Scalar returns the single float64 held by a Gorgonia Value, such as
// the value of a loss node
func Scalar(v G.Value) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("scalar: value has not been computed")
	}

	switch data := v.Data().(type) {
	case float64:
		return data, nil
	case []float64:
		if len(data) == 1 {
			return data[0], nil
		}
		return 0, fmt.Errorf("scalar: value has %v elements", len(data))
	default:
		return 0, fmt.Errorf("scalar: illegal data type %T", data)
	}
}
