package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Layer is a single layer of a feed forward neural network
type Layer interface {
	fwd(*G.Node) (*G.Node, error)
	Weights() *G.Node
	Bias() *G.Node
	Activation() *Activation
}

// fcLayer implements a fully connected layer of a feed forward neural
// network
type fcLayer struct {
	weights *G.Node
	bias    *G.Node
	act     *Activation
}

// newFCLayer adds the learnable nodes of a fully connected layer with
// inputs inputs and outputs outputs to the graph g. Weights are
// initialized with init and biases, if used, are initialized to 0.
func newFCLayer(g *G.ExprGraph, inputs, outputs int, bias bool,
	act *Activation, init G.InitWFn, name string) *fcLayer {
	weights := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(inputs, outputs),
		G.WithName(fmt.Sprintf("%vW", name)),
		G.WithInit(init),
	)

	var b *G.Node
	if bias {
		b = G.NewMatrix(
			g,
			tensor.Float64,
			G.WithShape(1, outputs),
			G.WithName(fmt.Sprintf("%vB", name)),
			G.WithInit(G.Zeroes()),
		)
	}

	return &fcLayer{weights: weights, bias: b, act: act}
}

// fwd adds the forward pass of the fcLayer to the computational graph
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	x, err := G.Mul(x, f.Weights())
	if err != nil {
		return nil, err
	}
	if f.Bias() != nil {
		// Broadcast the bias weights to all samples along the batch
		// dimension
		x, err = G.BroadcastAdd(x, f.Bias(), nil, []byte{0})
		if err != nil {
			return nil, err
		}
	}
	if f.Activation() == nil {
		return x, nil
	}
	return f.Activation().fwd(x)
}

func (f *fcLayer) Activation() *Activation {
	return f.act
}

func (f *fcLayer) Bias() *G.Node {
	return f.bias
}

func (f *fcLayer) Weights() *G.Node {
	return f.weights
}
