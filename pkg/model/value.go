package model

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ValueType represents the type of a property value
type ValueType uint8

const (
	TypeString ValueType = iota
	TypeFloat
)

// Value represents a typed property value. Piping attributes are either
// descriptive strings (line tag, material code) or numeric (nominal
// diameter, wall thickness).
type Value struct {
	Type ValueType
	Data []byte
}

// StringValue creates a string-typed value
func StringValue(s string) Value {
	return Value{Type: TypeString, Data: []byte(s)}
}

// FloatValue creates a float-typed value
func FloatValue(f float64) Value {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, math.Float64bits(f))
	return Value{Type: TypeFloat, Data: data}
}

// AsString decodes a string value
func (v Value) AsString() (string, error) {
	if v.Type != TypeString {
		return "", fmt.Errorf("value is not a string")
	}
	return string(v.Data), nil
}

// AsFloat decodes a float value
func (v Value) AsFloat() (float64, error) {
	if v.Type != TypeFloat {
		return 0, fmt.Errorf("value is not a float")
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(v.Data)), nil
}

// Text renders the value for display or key building. Floats render with
// trailing zeros trimmed so "150" and "150.0" build the same key.
func (v Value) Text() string {
	switch v.Type {
	case TypeString:
		return string(v.Data)
	case TypeFloat:
		f, _ := v.AsFloat()
		return trimFloat(f)
	default:
		return ""
	}
}

func trimFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
