package chiptrack

import (
	"bytes"
	"encoding/json"
)

// Optional is a value that may be absent, used for the optional modulation
// sources of an Instrument. The zero value is empty. In YAML, an empty
// Optional is left out (with omitempty) and in JSON it is null.
type Optional[T any] struct {
	value  T
	exists bool
}

// Some returns an Optional holding value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, exists: true}
}

// None returns an empty Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it exists. If it does not, the returned
// value is the zero value of T.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.exists
}

// Value returns the value, panicking if it does not exist.
func (o Optional[T]) Value() T {
	if !o.exists {
		panic("access value of empty Optional")
	}
	return o.value
}

// Empty reports whether there is no value.
func (o Optional[T]) Empty() bool {
	return !o.exists
}

// Or returns the value if it exists, otherwise def.
func (o Optional[T]) Or(def T) T {
	if !o.exists {
		return def
	}
	return o.value
}

// IsZero is used by the yaml encoders to implement omitempty.
func (o Optional[T]) IsZero() bool {
	return !o.exists
}

func (o Optional[T]) MarshalYAML() (interface{}, error) {
	if !o.exists {
		return nil, nil
	}
	return o.value, nil
}

// UnmarshalYAML uses the callback form so that both gopkg.in/yaml.v2 and
// gopkg.in/yaml.v3 can decode into an Optional.
func (o *Optional[T]) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v *T
	if err := unmarshal(&v); err != nil {
		return err
	}
	if v == nil {
		*o = Optional[T]{}
		return nil
	}
	*o = Some(*v)
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.exists {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
