package agent

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Type represents a specific type of an agent Config. Config's with
// this type can create Agents of the corresponding type.
type Type string

// Registered types with the package. Once a Type has been registered
// with this map, a TypedConfig with that type can be deserialized.
//
// No Type's are registered with this package upon initialization.
// Each agent package registers its own Config in an init function to
// avoid circular imports.
var registeredTypes = make(map[Type]reflect.Type)

// Register registers an agent's Type with a concrete Config type so
// that upon deserialization of a TypedConfig, Configs of type
// agentType are deserialized into the concrete type of config.
func Register(agentType Type, config Config) {
	registeredTypes[agentType] = reflect.TypeOf(config)
}

// TypedConfig implements functionality for typing a Config. In this
// way, a Config can explicitly have its type stored so that when
// deserializing the Config, we can deserialize it into its concrete
// type without declaring a variable of its concrete type beforehand.
type TypedConfig struct {
	Type
	Config
}

// NewTypedConfig types the argument Config and returns it as a
// TypedConfig which explicitly holds its Type.
func NewTypedConfig(c Config) TypedConfig {
	return TypedConfig{Type: c.Type(), Config: c}
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (t *TypedConfig) UnmarshalJSON(data []byte) error {
	config, typeName, err := unmarshalConfig(data, "Type", "Config")
	if err != nil {
		return fmt.Errorf("unmarshalJSON: %v", err)
	}

	t.Type = typeName
	t.Config = config

	return nil
}

// unmarshalConfig uses reflection to unmarshall a Config into its
// concrete type. Both the Config and its Type are returned.
func unmarshalConfig(data []byte, typeJsonField,
	valueJsonField string) (Config, Type, error) {
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, "", err
	}

	var typeName Type
	if err := json.Unmarshal(m[typeJsonField], &typeName); err != nil {
		return nil, "", fmt.Errorf("could not read field %q: %v",
			typeJsonField, err)
	}

	ty, found := registeredTypes[typeName]
	if !found {
		return nil, "", fmt.Errorf("unregistered agent type %q", typeName)
	}
	value := reflect.New(ty).Interface()

	if raw, ok := m[valueJsonField]; ok {
		if err := json.Unmarshal(raw, value); err != nil {
			return nil, "", err
		}
	}
	concreteValue := reflect.ValueOf(value).Elem().Interface().(Config)

	return concreteValue, typeName, nil
}
