// Package initwfn implements functionality to wrap Gorgonia InitWFn
// so that they can be JSON serialized into configuration files.
package initwfn

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Type describes different types of InitWFn that are available.
// Type is used to implement a basic type system of InitWFn's.
type Type string

// Available InitWFn types
const (
	GlorotU Type = "GlorotU"
	GlorotN Type = "GlorotN"
	Uniform Type = "Uniform"
	Zeroes  Type = "Zeroes"
)

// InitWFn wraps Gorgonia InitWFn so that they can be JSON marshalled and
// unmarshalled.
type InitWFn struct {
	initWFn G.InitWFn
	Type
	Config
}

// newInitWFn returns a new InitWFn
func newInitWFn(c Config) (*InitWFn, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newInitWFn: %v", err)
	}

	init := InitWFn{Type: c.Type(), Config: c}
	init.initWFn = init.Config.Create()

	return &init, nil
}

// InitWFn returns the wrapped Gorgonia InitWFn
func (i *InitWFn) InitWFn() G.InitWFn {
	return i.initWFn
}

// String implements the fmt.Stringer interface
func (i *InitWFn) String() string {
	return fmt.Sprintf("{%v InitWFn: %v}", i.Type, i.Config)
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (i *InitWFn) UnmarshalJSON(data []byte) error {
	config, typeName, err := unmarshalConfig(
		data,
		"Type",
		"Config",
		map[string]reflect.Type{
			string(GlorotU): reflect.TypeOf(GlorotUConfig{}),
			string(GlorotN): reflect.TypeOf(GlorotNConfig{}),
			string(Uniform): reflect.TypeOf(UniformConfig{}),
			string(Zeroes):  reflect.TypeOf(ZeroesConfig{}),
		})
	if err != nil {
		return fmt.Errorf("unmarshalJSON: %v", err)
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("unmarshalJSON: %v", err)
	}

	i.Type = typeName
	i.Config = config
	i.initWFn = i.Config.Create()

	return nil
}

// unmarshalConfig uses reflection to unmarshall a Config into its
// concrete type. Both the Config and its Type are returned.
func unmarshalConfig(data []byte, typeJsonField, valueJsonField string,
	customTypes map[string]reflect.Type) (Config, Type, error) {
	m := map[string]interface{}{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, "", err
	}

	typeName, ok := m[typeJsonField].(string)
	if !ok {
		return nil, "", fmt.Errorf("missing field %q", typeJsonField)
	}

	ty, found := customTypes[typeName]
	if !found {
		return nil, "", fmt.Errorf("unknown InitWFn type %q", typeName)
	}
	value := reflect.New(ty).Interface()

	valueBytes, err := json.Marshal(m[valueJsonField])
	if err != nil {
		return nil, "", err
	}

	if err = json.Unmarshal(valueBytes, value); err != nil {
		return nil, "", err
	}
	concreteValue := reflect.ValueOf(value).Elem().Interface().(Config)

	return concreteValue, Type(typeName), nil
}

// Config implements a Gorgonia InitWFn configuration and can be used to
// create the described Gorgonia InitWFn's.
type Config interface {
	// Create returns the Gorgonia InitWFn that the Config describes
	Create() G.InitWFn

	// Type returns the type of Gorgonia InitWFn that is returned
	Type() Type

	// Validate returns an error if the Config describes an illegal
	// InitWFn
	Validate() error
}

// fans returns the fan in and fan out of a weight tensor with shape s
func fans(s ...int) (int, int) {
	switch len(s) {
	case 0:
		panic("fans: cannot initialize a scalar")
	case 1:
		return 1, s[0]
	default:
		return s[0], tensor.Shape(s[1:]).TotalSize()
	}
}

// seededUniform returns a Gorgonia InitWFn which draws weights from a
// uniform distribution whose bounds depend on the shape of the weight
// tensor being initialized. Draws are taken from src so that weight
// initialization is reproducible independently of Gorgonia's global
// random state.
func seededUniform(src rand.Source,
	bounds func(s ...int) (float64, float64)) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		low, high := bounds(s...)
		dist := distuv.Uniform{Min: low, Max: high, Src: src}

		size := tensor.Shape(s).TotalSize()
		switch dt {
		case tensor.Float64:
			retVal := make([]float64, size)
			for i := range retVal {
				retVal[i] = dist.Rand()
			}
			return retVal

		case tensor.Float32:
			retVal := make([]float32, size)
			for i := range retVal {
				retVal[i] = float32(dist.Rand())
			}
			return retVal

		default:
			panic(fmt.Sprintf("seededUniform: dtype %v not implemented", dt))
		}
	}
}

// glorotLimit returns the bound of the Glorot uniform distribution for
// a weight tensor with shape s
func glorotLimit(gain float64, s ...int) float64 {
	fanIn, fanOut := fans(s...)
	return gain * math.Sqrt(6.0/float64(fanIn+fanOut))
}
