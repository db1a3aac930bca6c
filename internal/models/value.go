package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindUndefined Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "undefined"
	}
}

var (
	ErrNotScalar = errors.New("value must be a string, number or boolean")

	numericPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	booleanPattern = regexp.MustCompile(`(?i)^(true|false)$`)
)

// Value is a scalar configuration value: a string, a number or a boolean.
// The zero Value is undefined and is what a missing JSON field decodes to.
type Value struct {
	v ldvalue.Value
}

func StringValue(s string) Value  { return Value{v: ldvalue.String(s)} }
func NumberValue(f float64) Value { return Value{v: ldvalue.Float64(f)} }
func BoolValue(b bool) Value      { return Value{v: ldvalue.Bool(b)} }

func (v Value) Kind() Kind {
	switch v.v.Type() {
	case ldvalue.StringType:
		return KindString
	case ldvalue.NumberType:
		return KindNumber
	case ldvalue.BoolType:
		return KindBool
	default:
		return KindUndefined
	}
}

func (v Value) IsDefined() bool { return v.Kind() != KindUndefined }

func (v Value) StringValue() string  { return v.v.StringValue() }
func (v Value) NumberValue() float64 { return v.v.Float64Value() }
func (v Value) BoolValue() bool      { return v.v.BoolValue() }

// Raw exposes the underlying ldvalue.
func (v Value) Raw() ldvalue.Value { return v.v }

func (v Value) Equal(other Value) bool { return v.v.Equal(other.v) }

// String returns the JSON representation.
func (v Value) String() string { return v.v.JSONString() }

// Coerce converts textual values that look like numbers or booleans into
// those types. Non-string values and non-matching strings are returned as is.
func (v Value) Coerce() Value {
	if v.Kind() != KindString {
		return v
	}
	s := v.v.StringValue()
	if numericPattern.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return NumberValue(f)
		}
		return v
	}
	if booleanPattern.MatchString(s) {
		return BoolValue(strings.EqualFold(s, "true"))
	}
	return v
}

func (v Value) MarshalJSON() ([]byte, error) {
	return v.v.MarshalJSON()
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var lv ldvalue.Value
	if err := lv.UnmarshalJSON(data); err != nil {
		return err
	}
	switch lv.Type() {
	case ldvalue.StringType, ldvalue.NumberType, ldvalue.BoolType:
		v.v = lv
		return nil
	default:
		return ErrNotScalar
	}
}

// Value implements driver.Valuer; values are stored as their JSON text.
func (v Value) Value() (driver.Value, error) {
	if !v.IsDefined() {
		return nil, ErrNotScalar
	}
	return v.v.JSONString(), nil
}

// Scan implements sql.Scanner.
func (v *Value) Scan(src interface{}) error {
	var data []byte
	switch s := src.(type) {
	case string:
		data = []byte(s)
	case []byte:
		data = s
	case nil:
		*v = Value{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Value", src)
	}
	return v.UnmarshalJSON(data)
}
