package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an action, an observation, a discount, or a
// reward
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
	Reward
)

// Cardinality determines the cardinality of a number (discrete or
// continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an environment specification, which tells the type,
// shape, and bounds of an action, observation, discount, or reward in
// an environment
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs a new environment specification.
//
// The shape argument outlines the shape of the data described by the
// specification. The argument t outlines what the specification is
// describing (e.g. actions, observations, etc.). The cardinality
// arguments describes whether the values that the spec describes are
// continuous or discrete.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	if shape.Len() != lowerBound.Len() {
		panic(fmt.Sprintf("shape length %v must match lower bounds length %v",
			shape.Len(), lowerBound.Len()))
	}
	if shape.Len() != upperBound.Len() {
		panic(fmt.Sprintf("shape length %v must match upper bounds length %v",
			shape.Len(), upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}

// Len returns the number of elements described by the Spec
func (s Spec) Len() int {
	return s.Shape.Len()
}

// NumActions returns the number of discrete values described by a
// 1-dimensional discrete Spec, which is the size of the action set
// for discrete action specifications
func (s Spec) NumActions() (int, error) {
	if s.Cardinality != Discrete {
		return 0, fmt.Errorf("numActions: spec cardinality is %v",
			s.Cardinality)
	}
	if s.Len() != 1 {
		return 0, fmt.Errorf("numActions: spec must be 1-dimensional "+
			"\n\twant(1) \n\thave(%v)", s.Len())
	}
	return int(s.UpperBound.AtVec(0)-s.LowerBound.AtVec(0)) + 1, nil
}
