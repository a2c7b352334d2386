// Package policy implements policies over discrete actions using
// nonlinear function approximation with Gorgonia.
package policy

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/acrobot-a2c/network"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// DefaultProbabilityFloor is the default lower bound on the
// probability of an action used when computing its log probability
const DefaultProbabilityFloor float64 = 1e-6

// CategoricalMLP implements a softmax policy over a finite set of
// actions using a multi-layered perceptron. The network outputs one
// logit per action, and the probability of each action is the softmax
// of these logits. Actions are sampled from this distribution using a
// seeded source of randomness.
//
// Two copies of the network are kept. The prediction network computes
// action probabilities. The training network computes the log
// probability of an externally given action, scaled by an externally
// given weight, and is bound to a solver. After each update, the
// prediction network's weights are set to those of the training
// network.
type CategoricalMLP struct {
	net network.NeuralNet
	vm  G.VM

	trainNet      network.NeuralNet
	trainVM       G.VM
	solver        G.Solver
	actionIndices *G.Node
	weights       *G.Node
	lossVal       G.Value

	numActions int
	floor      float64
	src        rand.Source
}

// NewCategoricalMLP returns a new softmax policy with numActions
// actions for states with features features. The arguments hiddenSizes,
// biases, and activations determine the hidden layers of the network,
// and init determines the initialization of the network's weights.
// The solver s is used to update the weights and should not be shared
// with any other network.
//
// Log probabilities of actions with probability below floor are
// computed as log(floor), and such actions produce no gradient. The
// seed determines the actions that are sampled.
func NewCategoricalMLP(features, numActions int, hiddenSizes []int,
	biases []bool, activations []*network.Activation, init G.InitWFn,
	s G.Solver, floor float64, seed uint64) (*CategoricalMLP, error) {
	if numActions < 2 {
		return nil, fmt.Errorf("newCategoricalMLP: at least 2 actions "+
			"required, have %v", numActions)
	}
	if floor <= 0 || floor >= 1.0/float64(numActions) {
		return nil, fmt.Errorf("newCategoricalMLP: probability floor must "+
			"be in (0, %v), have %v", 1.0/float64(numActions), floor)
	}

	net, err := network.NewMLP(features, 1, numActions, G.NewGraph(),
		hiddenSizes, biases, init, activations, network.SoftMax())
	if err != nil {
		return nil, fmt.Errorf("newCategoricalMLP: could not create "+
			"policy network: %v", err)
	}

	trainNet, err := net.Clone()
	if err != nil {
		return nil, fmt.Errorf("newCategoricalMLP: could not create "+
			"training policy network: %v", err)
	}

	// Log probability of the action given by a one-hot row
	actionIndices := G.NewMatrix(
		trainNet.Graph(),
		tensor.Float64,
		G.WithShape(trainNet.Linear().Shape()...),
		G.WithName("ActionIndices"),
		G.WithInit(G.Zeroes()),
	)
	logProbs, err := network.LogSoftMax(trainNet.Linear())
	if err != nil {
		return nil, fmt.Errorf("newCategoricalMLP: %v", err)
	}
	logProb := G.Must(G.HadamardProd(actionIndices, logProbs))
	logProb = G.Must(G.Sum(logProb, 1))

	// Policy gradient loss, weights are treated as constants
	weights := G.NewVector(
		trainNet.Graph(),
		tensor.Float64,
		G.WithShape(trainNet.BatchSize()),
		G.WithName("PolicyGradientWeights"),
		G.WithInit(G.Zeroes()),
	)
	loss := G.Must(G.HadamardProd(logProb, weights))
	loss = G.Must(G.Mean(loss))
	loss = G.Must(G.Neg(loss))

	c := &CategoricalMLP{
		net:           net,
		trainNet:      trainNet,
		solver:        s,
		actionIndices: actionIndices,
		weights:       weights,
		numActions:    numActions,
		floor:         floor,
		src:           rand.NewSource(seed),
	}
	G.Read(loss, &c.lossVal)

	if _, err := G.Grad(loss, trainNet.Learnables()...); err != nil {
		return nil, fmt.Errorf("newCategoricalMLP: could not compute "+
			"policy gradient: %v", err)
	}

	c.vm = G.NewTapeMachine(net.Graph())
	c.trainVM = G.NewTapeMachine(trainNet.Graph(),
		G.BindDualValues(trainNet.Learnables()...))

	return c, nil
}

// NumActions returns the number of actions the policy selects from
func (c *CategoricalMLP) NumActions() int {
	return c.numActions
}

// Probabilities returns the probability of selecting each action in
// the state with features obs
func (c *CategoricalMLP) Probabilities(obs []float64) ([]float64, error) {
	if err := c.net.SetInput(obs); err != nil {
		return nil, fmt.Errorf("probabilities: %v", err)
	}
	if err := c.vm.RunAll(); err != nil {
		return nil, fmt.Errorf("probabilities: %v", err)
	}
	probs := append([]float64(nil), c.net.Output().Data().([]float64)...)
	c.vm.Reset()

	return probs, nil
}

// Sample samples an action from the categorical distribution with
// action probabilities probs
func (c *CategoricalMLP) Sample(probs []float64) int {
	return int(distuv.NewCategorical(probs, c.src).Rand())
}

// SelectAction samples an action in the state with features obs
func (c *CategoricalMLP) SelectAction(obs []float64) (int, error) {
	probs, err := c.Probabilities(obs)
	if err != nil {
		return 0, fmt.Errorf("selectAction: %v", err)
	}
	return c.Sample(probs), nil
}

// Learn performs a single gradient step on the loss
// -weight * log π(action | obs), where the probability of the action
// is first clamped to the policy's probability floor. The returned
// loss is computed before the update.
func (c *CategoricalMLP) Learn(obs []float64, action int,
	weight float64) (float64, error) {
	if action < 0 || action >= c.numActions {
		return 0, fmt.Errorf("learn: illegal action %v", action)
	}

	probs, err := c.Probabilities(obs)
	if err != nil {
		return 0, fmt.Errorf("learn: %v", err)
	}

	// The clamped log probability is constant, so the step is taken
	// with a zero gradient
	clamped := probs[action] < c.floor
	scale := weight
	if clamped {
		scale = 0
	}

	if err := c.trainNet.SetInput(obs); err != nil {
		return 0, fmt.Errorf("learn: %v", err)
	}

	oneHot := make([]float64, c.numActions)
	oneHot[action] = 1.0
	oneHotTensor := tensor.New(
		tensor.WithBacking(oneHot),
		tensor.WithShape(c.actionIndices.Shape()...),
	)
	if err := G.Let(c.actionIndices, oneHotTensor); err != nil {
		return 0, fmt.Errorf("learn: could not set action: %v", err)
	}

	weightTensor := tensor.New(
		tensor.WithBacking([]float64{scale}),
		tensor.WithShape(c.weights.Shape()...),
	)
	if err := G.Let(c.weights, weightTensor); err != nil {
		return 0, fmt.Errorf("learn: could not set weight: %v", err)
	}

	if err := c.trainVM.RunAll(); err != nil {
		return 0, fmt.Errorf("learn: %v", err)
	}
	loss, err := network.Scalar(c.lossVal)
	if err != nil {
		return 0, fmt.Errorf("learn: %v", err)
	}
	if clamped {
		loss = -weight * math.Log(c.floor)
	}

	if err := c.solver.Step(c.trainNet.Model()); err != nil {
		return 0, fmt.Errorf("learn: could not step solver: %v", err)
	}
	c.trainVM.Reset()

	if err := network.Set(c.net, c.trainNet); err != nil {
		return 0, fmt.Errorf("learn: could not update prediction "+
			"network: %v", err)
	}

	return loss, nil
}

// Weights returns a copy of the weights of the policy
func (c *CategoricalMLP) Weights() [][]float64 {
	return c.trainNet.Weights()
}

// SetWeights sets the weights of the policy
func (c *CategoricalMLP) SetWeights(weights [][]float64) error {
	if err := c.trainNet.SetWeights(weights); err != nil {
		return fmt.Errorf("setWeights: %v", err)
	}
	return network.Set(c.net, c.trainNet)
}

// Close closes the VMs of the policy
func (c *CategoricalMLP) Close() error {
	if err := c.vm.Close(); err != nil {
		return err
	}
	return c.trainVM.Close()
}
