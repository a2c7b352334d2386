// Package valuefn implements state value functions using neural network
// function approximation with Gorgonia
package valuefn

import (
	"fmt"

	"github.com/samuelfneumann/acrobot-a2c/network"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// MLP implements a state value function v(s) using a multi-layered
// perceptron with a single, linear output.
//
// Two copies of the network are kept. The prediction network has no
// gradient nodes and is used to estimate state values. The training
// network computes the mean squared error between its prediction and
// an externally given target and is bound to a solver. After each
// update, the prediction network's weights are set to those of the
// training network.
type MLP struct {
	net network.NeuralNet
	vm  G.VM

	trainNet network.NeuralNet
	trainVM  G.VM
	solver   G.Solver
	targets  *G.Node
	lossVal  G.Value
}

// NewMLP returns a new state value function which takes inputs of size
// features. The arguments hiddenSizes, biases, and activations
// determine the hidden layers of the network, and init determines the
// initialization of the network's weights. The solver s is used to
// update the weights and should not be shared with any other network.
func NewMLP(features int, hiddenSizes []int, biases []bool,
	activations []*network.Activation, init G.InitWFn,
	s G.Solver) (*MLP, error) {
	net, err := network.NewMLP(features, 1, 1, G.NewGraph(), hiddenSizes,
		biases, init, activations, network.Identity())
	if err != nil {
		return nil, fmt.Errorf("newMLP: could not create value function: %v",
			err)
	}

	trainNet, err := net.Clone()
	if err != nil {
		return nil, fmt.Errorf("newMLP: could not create training value "+
			"function: %v", err)
	}

	// Create the mean squared error loss, treating targets as constants
	targets := G.NewMatrix(
		trainNet.Graph(),
		tensor.Float64,
		G.WithShape(trainNet.Prediction().Shape()...),
		G.WithName("ValueFunctionUpdateTarget"),
		G.WithInit(G.Zeroes()),
	)
	loss := G.Must(G.Sub(trainNet.Prediction(), targets))
	loss = G.Must(G.Square(loss))
	loss = G.Must(G.Mean(loss))

	v := &MLP{
		net:      net,
		trainNet: trainNet,
		solver:   s,
		targets:  targets,
	}
	G.Read(loss, &v.lossVal)

	if _, err := G.Grad(loss, trainNet.Learnables()...); err != nil {
		return nil, fmt.Errorf("newMLP: could not compute value function "+
			"gradient: %v", err)
	}

	v.vm = G.NewTapeMachine(net.Graph())
	v.trainVM = G.NewTapeMachine(trainNet.Graph(),
		G.BindDualValues(trainNet.Learnables()...))

	return v, nil
}

// Value returns the estimated value of the state with features obs
func (v *MLP) Value(obs []float64) (float64, error) {
	if err := v.net.SetInput(obs); err != nil {
		return 0, fmt.Errorf("value: %v", err)
	}
	if err := v.vm.RunAll(); err != nil {
		return 0, fmt.Errorf("value: %v", err)
	}
	value := v.net.Output().Data().([]float64)[0]
	v.vm.Reset()

	return value, nil
}

// Learn performs a single gradient step on the mean squared error
// between the estimated value of obs and target. The returned loss is
// the mean squared error before the update.
func (v *MLP) Learn(obs []float64, target float64) (float64, error) {
	if err := v.trainNet.SetInput(obs); err != nil {
		return 0, fmt.Errorf("learn: %v", err)
	}

	targetTensor := tensor.New(
		tensor.WithBacking([]float64{target}),
		tensor.WithShape(v.targets.Shape()...),
	)
	if err := G.Let(v.targets, targetTensor); err != nil {
		return 0, fmt.Errorf("learn: could not set target: %v", err)
	}

	if err := v.trainVM.RunAll(); err != nil {
		return 0, fmt.Errorf("learn: %v", err)
	}
	loss, err := network.Scalar(v.lossVal)
	if err != nil {
		return 0, fmt.Errorf("learn: %v", err)
	}

	if err := v.solver.Step(v.trainNet.Model()); err != nil {
		return 0, fmt.Errorf("learn: could not step solver: %v", err)
	}
	v.trainVM.Reset()

	if err := network.Set(v.net, v.trainNet); err != nil {
		return 0, fmt.Errorf("learn: could not update prediction "+
			"network: %v", err)
	}

	return loss, nil
}

// Weights returns a copy of the weights of the value function
func (v *MLP) Weights() [][]float64 {
	return v.trainNet.Weights()
}

// SetWeights sets the weights of the value function
func (v *MLP) SetWeights(weights [][]float64) error {
	if err := v.trainNet.SetWeights(weights); err != nil {
		return fmt.Errorf("setWeights: %v", err)
	}
	return network.Set(v.net, v.trainNet)
}

// Close closes the VMs of the value function
func (v *MLP) Close() error {
	if err := v.vm.Close(); err != nil {
		return err
	}
	return v.trainVM.Close()
}
