package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// mlp implements a multi-layered perceptron: a stack of fully
// connected layers followed by an output transform.
type mlp struct {
	g          *G.ExprGraph
	layers     []Layer
	input      *G.Node
	numOutputs int
	numInputs  int
	batchSize  int

	// Data needed for cloning and gobbing
	hiddenSizes []int
	biases      []bool
	activations []*Activation
	output      *Activation
	init        G.InitWFn

	learnables G.Nodes
	model      []G.ValueGrad

	linear     *G.Node
	prediction *G.Node
	predVal    G.Value
}

// NewMLP creates and returns a new multi-layered perceptron with
// features inputs and outputs outputs. The graph parameter g is
// populated with the MLP.
//
// The MLP has number of layers equal to len(hiddenSizes) + 1. For
// index i, hiddenSizes[i] is the number of nodes in hidden layer i;
// biases[i] is true if the hidden layer will contain a bias unit and
// false otherwise; and activations[i] is the activation function for
// hidden layer i. A final affine layer with a bias unit and no
// activation is always added so that the network has outputs outputs.
// The result of this final layer is then passed through the output
// transform output, which may be nil to denote the identity function.
//
// The parameter init determines the weight initialization scheme. Bias
// units are initialized to 0. The batch parameter determines the
// number of input vectors the network processes at once.
func NewMLP(features, batch, outputs int, g *G.ExprGraph,
	hiddenSizes []int, biases []bool, init G.InitWFn,
	activations []*Activation, output *Activation) (NeuralNet, error) {
	// Ensure we have one activation per layer
	if len(hiddenSizes) != len(activations) {
		msg := "newMLP: invalid number of activations" +
			"\n\twant(%d)\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(activations))
	}

	// Ensure one bias bool per layer
	if len(hiddenSizes) != len(biases) {
		msg := "newMLP: invalid number of biases\n\twant(%d)" +
			"\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(biases))
	}

	if features <= 0 || batch <= 0 || outputs <= 0 {
		return nil, fmt.Errorf("newMLP: features (%v), batch size (%v), "+
			"and outputs (%v) must be positive", features, batch, outputs)
	}

	if init == nil {
		return nil, fmt.Errorf("newMLP: no weight initializer given")
	}

	if output == nil {
		output = Identity()
	}

	// Set up the input node
	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, features),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	// Add each hidden layer, then the final affine layer which has no
	// activation of its own
	layers := make([]Layer, 0, len(hiddenSizes)+1)
	in := features
	for i := range hiddenSizes {
		layers = append(layers, newFCLayer(g, in, hiddenSizes[i], biases[i],
			activations[i], init, fmt.Sprintf("L%v", i)))
		in = hiddenSizes[i]
	}
	layers = append(layers, newFCLayer(g, in, outputs, true, nil, init,
		fmt.Sprintf("L%v", len(hiddenSizes))))

	network := &mlp{
		g:           g,
		layers:      layers,
		input:       input,
		numOutputs:  outputs,
		numInputs:   features,
		batchSize:   batch,
		hiddenSizes: append([]int(nil), hiddenSizes...),
		biases:      append([]bool(nil), biases...),
		activations: append([]*Activation(nil), activations...),
		output:      output,
		init:        init,
	}

	if _, err := network.fwd(input); err != nil {
		return nil, fmt.Errorf("newMLP: could not compute forward pass: %v",
			err)
	}

	return network, nil
}

// fwd performs the forward pass of the mlp on the input node
func (e *mlp) fwd(input *G.Node) (*G.Node, error) {
	pred := input
	var err error
	for i, l := range e.layers {
		if pred, err = l.fwd(pred); err != nil {
			msg := "fwd: could not compute forward pass of layer %v: %v"
			return nil, fmt.Errorf(msg, i, err)
		}
	}
	e.linear = pred

	if pred, err = e.output.fwd(pred); err != nil {
		return nil, fmt.Errorf("fwd: could not compute output transform "+
			"%v: %v", e.output, err)
	}
	e.prediction = pred

	G.Read(e.prediction, &e.predVal)

	return pred, nil
}

// Graph returns the computational graph of the mlp.
func (e *mlp) Graph() *G.ExprGraph {
	return e.g
}

// Clone clones an mlp onto a new computational graph
func (e *mlp) Clone() (NeuralNet, error) {
	return e.CloneWithBatch(e.batchSize)
}

// CloneWithBatch clones an mlp onto a new computational graph with a
// new input batch size. The clone has the same weights as e, but the
// weights are not shared.
func (e *mlp) CloneWithBatch(batchSize int) (NeuralNet, error) {
	clone, err := NewMLP(e.numInputs, batchSize, e.numOutputs, G.NewGraph(),
		e.hiddenSizes, e.biases, e.init, e.activations, e.output)
	if err != nil {
		return nil, fmt.Errorf("cloneWithBatch: could not clone: %v", err)
	}

	if err := clone.Set(e); err != nil {
		return nil, fmt.Errorf("cloneWithBatch: could not set weights: %v",
			err)
	}
	return clone, nil
}

// BatchSize returns the batch size of inputs to the network
func (e *mlp) BatchSize() int {
	return e.batchSize
}

// Features returns the number of features in a single observation
// vector that the network takes as input.
func (e *mlp) Features() int {
	return e.numInputs
}

// Outputs returns the number of outputs from the network
func (e *mlp) Outputs() int {
	return e.numOutputs
}

// SetInput sets the value of the input node before running the forward
// pass.
func (e *mlp) SetInput(input []float64) error {
	if len(input) != e.numInputs*e.batchSize {
		return fmt.Errorf("setInput: invalid number of inputs\n\twant(%v)"+
			"\n\thave(%v)", e.numInputs*e.batchSize, len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(e.input.Shape()...),
	)
	return G.Let(e.input, inputTensor)
}

// Set sets the weights of an mlp to be equal to the weights of another
// NeuralNet with the same architecture. Weights are copied, not shared.
func (dest *mlp) Set(source NeuralNet) error {
	return dest.SetWeights(source.Weights())
}

// Weights returns a copy of the value of each learnable node in the
// order given by Learnables()
func (e *mlp) Weights() [][]float64 {
	nodes := e.Learnables()
	weights := make([][]float64, len(nodes))
	for i, node := range nodes {
		weights[i] = append([]float64(nil),
			node.Value().Data().([]float64)...)
	}
	return weights
}

// SetWeights copies weights into the learnable nodes of the mlp. The
// values are copied in place so that VMs already compiled for the
// graph see the new weights.
func (e *mlp) SetWeights(weights [][]float64) error {
	nodes := e.Learnables()
	if len(weights) != len(nodes) {
		return fmt.Errorf("setWeights: invalid number of weight tensors "+
			"\n\twant(%v) \n\thave(%v)", len(nodes), len(weights))
	}

	for i, node := range nodes {
		data := node.Value().Data().([]float64)
		if len(data) != len(weights[i]) {
			return fmt.Errorf("setWeights: invalid size for learnable %v "+
				"\n\twant(%v) \n\thave(%v)", node.Name(), len(data),
				len(weights[i]))
		}
		copy(data, weights[i])
	}
	return nil
}

// Learnables returns the learnable nodes in an mlp
func (e *mlp) Learnables() G.Nodes {
	// Lazy instantiation
	if e.learnables == nil {
		learnables := make([]*G.Node, 0, 2*len(e.layers))
		for i := range e.layers {
			learnables = append(learnables, e.layers[i].Weights())
			if bias := e.layers[i].Bias(); bias != nil {
				learnables = append(learnables, bias)
			}
		}
		e.learnables = G.Nodes(learnables)
	}
	return e.learnables
}

// Model returns the learnables nodes with their gradients.
func (e *mlp) Model() []G.ValueGrad {
	// Lazy instantiation
	if e.model == nil {
		model := make([]G.ValueGrad, 0, 2*len(e.layers))
		for _, node := range e.Learnables() {
			model = append(model, node)
		}
		e.model = model
	}
	return e.model
}

// Output returns the output of the mlp computed on the last run of a
// VM on the mlp's graph
func (e *mlp) Output() G.Value {
	return e.predVal
}

// Prediction returns the node of the computational graph that stores
// the output of the mlp
func (e *mlp) Prediction() *G.Node {
	return e.prediction
}

// Linear returns the node of the computational graph that stores the
// output of the final affine layer, before the output transform
func (e *mlp) Linear() *G.Node {
	return e.linear
}

// GobEncode implements the gob.GobEncoder interface
func (e *mlp) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	fields := []struct {
		name  string
		value interface{}
	}{
		{"number of inputs", e.numInputs},
		{"batch size", e.batchSize},
		{"number of outputs", e.numOutputs},
		{"hidden sizes", e.hiddenSizes},
		{"biases", e.biases},
		{"activations", e.activations},
		{"output transform", e.output},
		{"weights", e.Weights()},
	}

	for _, field := range fields {
		if err := enc.Encode(field.value); err != nil {
			return nil, fmt.Errorf("gobEncode: could not encode %v: %v",
				field.name, err)
		}
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The decoded mlp
// is placed on a new computational graph.
func (e *mlp) GobDecode(in []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(in))

	var numInputs, batchSize, numOutputs int
	var hiddenSizes []int
	var biases []bool
	var activations []*Activation
	var output *Activation
	var weights [][]float64

	fields := []struct {
		name  string
		value interface{}
	}{
		{"number of inputs", &numInputs},
		{"batch size", &batchSize},
		{"number of outputs", &numOutputs},
		{"hidden sizes", &hiddenSizes},
		{"biases", &biases},
		{"activations", &activations},
		{"output transform", &output},
		{"weights", &weights},
	}

	for _, field := range fields {
		if err := dec.Decode(field.value); err != nil {
			return fmt.Errorf("gobDecode: could not decode %v: %v",
				field.name, err)
		}
	}

	net, err := NewMLP(numInputs, batchSize, numOutputs, G.NewGraph(),
		hiddenSizes, biases, G.Zeroes(), activations, output)
	if err != nil {
		return fmt.Errorf("gobDecode: could not construct new MLP: %v", err)
	}
	if err := net.SetWeights(weights); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}

	*e = *net.(*mlp)
	return nil
}
