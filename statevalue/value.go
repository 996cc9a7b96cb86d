// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package statevalue - the values an attribute can hold
//
// A Value is a closed tagged union; the zero Value is null.  Values
// are immutable and safe to share between goroutines.
package statevalue

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/bitmark-inc/statehistory/fault"
)

// Type - tag identifying the kind of a value
type Type byte

// the value tags, the numeric values are part of the stored format
const (
	NullType    Type = 0
	IntegerType Type = 1
	LongType    Type = 2
	DoubleType  Type = 3
	StringType  Type = 4
	CustomType  Type = 5
)

// String - name of a type tag
func (t Type) String() string {
	switch t {
	case NullType:
		return "null"
	case IntegerType:
		return "integer"
	case LongType:
		return "long"
	case DoubleType:
		return "double"
	case StringType:
		return "string"
	case CustomType:
		return "custom"
	default:
		return "type(" + strconv.Itoa(int(t)) + ")"
	}
}

// Value - a state value
type Value struct {
	tag      Type
	number   int64   // integer, long
	double   float64 // double
	text     string  // string
	customID byte    // custom
	data     []byte  // custom
}

// Null - the absent value
func Null() Value {
	return Value{}
}

// Int - 32 bit integer value, also used for stack depths
func Int(i int32) Value {
	return Value{tag: IntegerType, number: int64(i)}
}

// Long - 64 bit integer value
func Long(l int64) Value {
	return Value{tag: LongType, number: l}
}

// Double - floating point value
func Double(d float64) Value {
	return Value{tag: DoubleType, double: d}
}

// String - text value
func String(s string) Value {
	return Value{tag: StringType, text: s}
}

// Custom - opaque value owned by some higher layer, identified by a
// one byte id; the data is copied
func Custom(id byte, data []byte) Value {
	d := make([]byte, len(data))
	copy(d, data)
	return Value{tag: CustomType, customID: id, data: d}
}

// Type - the tag of the value
func (v Value) Type() Type {
	return v.tag
}

// IsNull - true for the absent value
func (v Value) IsNull() bool {
	return NullType == v.tag
}

// Int - unbox an integer value
func (v Value) Int() (int32, error) {
	if IntegerType != v.tag {
		return 0, fmt.Errorf("%s is not an integer: %w", v.tag, fault.ErrWrongValueType)
	}
	return int32(v.number), nil
}

// Long - unbox a long value
func (v Value) Long() (int64, error) {
	if LongType != v.tag {
		return 0, fmt.Errorf("%s is not a long: %w", v.tag, fault.ErrWrongValueType)
	}
	return v.number, nil
}

// Double - unbox a double value
func (v Value) Double() (float64, error) {
	if DoubleType != v.tag {
		return 0, fmt.Errorf("%s is not a double: %w", v.tag, fault.ErrWrongValueType)
	}
	return v.double, nil
}

// Text - unbox a string value
func (v Value) Text() (string, error) {
	if StringType != v.tag {
		return "", fmt.Errorf("%s is not a string: %w", v.tag, fault.ErrWrongValueType)
	}
	return v.text, nil
}

// CustomData - unbox a custom value, the returned data must not be modified
func (v Value) CustomData() (byte, []byte, error) {
	if CustomType != v.tag {
		return 0, nil, fmt.Errorf("%s is not custom: %w", v.tag, fault.ErrWrongValueType)
	}
	return v.customID, v.data, nil
}

// Equal - same tag and same payload
//
// doubles are compared by bit pattern so NaN equals NaN
func (v Value) Equal(other Value) bool {
	if v.tag != other.tag {
		return false
	}
	switch v.tag {
	case NullType:
		return true
	case IntegerType, LongType:
		return v.number == other.number
	case DoubleType:
		return math.Float64bits(v.double) == math.Float64bits(other.double)
	case StringType:
		return v.text == other.text
	case CustomType:
		return v.customID == other.customID && bytes.Equal(v.data, other.data)
	default:
		return false
	}
}

// String - for diagnostics
func (v Value) String() string {
	switch v.tag {
	case NullType:
		return "null"
	case IntegerType, LongType:
		return strconv.FormatInt(v.number, 10)
	case DoubleType:
		return strconv.FormatFloat(v.double, 'g', -1, 64)
	case StringType:
		return strconv.Quote(v.text)
	case CustomType:
		return fmt.Sprintf("custom(%d):%x", v.customID, v.data)
	default:
		return v.tag.String()
	}
}
