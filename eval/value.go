package eval

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrorCode is an in-band spreadsheet error such as #REF!.
// Every code begins with '#'.
type ErrorCode string

const (
	// ErrGeneric covers unparseable formulas, unknown functions and missing arguments.
	ErrGeneric ErrorCode = "#ERR"
	// ErrRef is an unresolved reference, including references caught in a cycle.
	ErrRef ErrorCode = "#REF!"
	// ErrType is an operand that failed numeric or date coercion.
	ErrType ErrorCode = "#TYPE!"
	// ErrDivZero is a division by zero.
	ErrDivZero ErrorCode = "#DIV/0!"
)

var errorCodes = map[ErrorCode]bool{
	ErrGeneric: true,
	ErrRef:     true,
	ErrType:    true,
	ErrDivZero: true,
}

func (c ErrorCode) Error() string {
	return string(c)
}

// IsErrorCode reports whether s is one of the known error codes.
func IsErrorCode(s string) bool {
	return errorCodes[ErrorCode(s)]
}

type ValueType uint8

const (
	TNull ValueType = iota
	TNumber
	TString
	TBool
	TError
)

func (v ValueType) String() string {
	switch v {
	case TNull:
		return "null"
	case TNumber:
		return "number"
	case TString:
		return "string"
	case TBool:
		return "boolean"
	case TError:
		return "error"
	}
	return "invalid type"
}

// Value is the result of evaluating a formula or the content of a field.
// The zero Value is null.
type Value struct {
	typ  ValueType
	num  float64
	str  string
	b    bool
	code ErrorCode
}

var Null = Value{}

func NewNumber(f float64) Value {
	return Value{typ: TNumber, num: f}
}

func NewString(s string) Value {
	return Value{typ: TString, str: s}
}

func NewBool(b bool) Value {
	return Value{typ: TBool, b: b}
}

func NewError(code ErrorCode) Value {
	return Value{typ: TError, code: code}
}

// ValueOf converts a raw Go value into a Value.
// Strings equal to a known error code become errors.
func ValueOf(v interface{}) Value {
	switch value := v.(type) {
	case nil:
		return Null
	case Value:
		return value
	case ErrorCode:
		return NewError(value)
	case float64:
		return NewNumber(value)
	case float32:
		return NewNumber(float64(value))
	case int:
		return NewNumber(float64(value))
	case int8:
		return NewNumber(float64(value))
	case int16:
		return NewNumber(float64(value))
	case int32:
		return NewNumber(float64(value))
	case int64:
		return NewNumber(float64(value))
	case uint:
		return NewNumber(float64(value))
	case uint8:
		return NewNumber(float64(value))
	case uint16:
		return NewNumber(float64(value))
	case uint32:
		return NewNumber(float64(value))
	case uint64:
		return NewNumber(float64(value))
	case json.Number:
		if f, err := value.Float64(); err == nil {
			return NewNumber(f)
		}
		return NewString(value.String())
	case string:
		if IsErrorCode(value) {
			return NewError(ErrorCode(value))
		}
		return NewString(value)
	case bool:
		return NewBool(value)
	case time.Time:
		return NewString(formatTime(value))
	case fmt.Stringer:
		return NewString(value.String())
	}
	return NewString(fmt.Sprint(v))
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(time.RFC3339)
}

func (v Value) Type() ValueType {
	return v.typ
}

func (v Value) IsNull() bool {
	return v.typ == TNull
}

func (v Value) IsError() bool {
	return v.typ == TError
}

// Number returns the number held by v, zero for any other type.
func (v Value) Number() float64 {
	return v.num
}

// Text returns the string held by v, empty for any other type.
func (v Value) Text() string {
	return v.str
}

// Bool returns the boolean held by v, false for any other type.
func (v Value) Bool() bool {
	return v.b
}

// ErrorCode returns the code held by v, empty for any other type.
func (v Value) ErrorCode() ErrorCode {
	return v.code
}

// String is the display form of the value.
// Numbers are rendered without trailing zeros, null renders empty.
func (v Value) String() string {
	switch v.typ {
	case TNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case TString:
		return v.str
	case TBool:
		return strconv.FormatBool(v.b)
	case TError:
		return string(v.code)
	}
	return ""
}

// Interface returns the value as a plain Go value: float64, string, bool, nil,
// or the error code string.
func (v Value) Interface() interface{} {
	switch v.typ {
	case TNumber:
		return v.num
	case TString:
		return v.str
	case TBool:
		return v.b
	case TError:
		return string(v.code)
	}
	return nil
}

// Equal reports whether both values have the same type and content.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TNumber:
		return v.num == o.num
	case TString:
		return v.str == o.str
	case TBool:
		return v.b == o.b
	case TError:
		return v.code == o.code
	}
	return true
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ValueOf(raw)
	return nil
}

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ToNumber coerces v to a number.
// Numbers pass through, strings must hold a decimal literal once trimmed.
// Every other value fails.
func ToNumber(v Value) (float64, bool) {
	switch v.typ {
	case TNumber:
		return v.num, true
	case TString:
		s := strings.TrimSpace(v.str)
		if !decimalPattern.MatchString(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// ToText is the string form used by LEN and CONCAT.
func ToText(v Value) string {
	return v.String()
}

// Truthy follows loose truthiness: zero, NaN, the empty string, null, false
// and errors are false.
func Truthy(v Value) bool {
	switch v.typ {
	case TNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case TString:
		return v.str != ""
	case TBool:
		return v.b
	}
	return false
}

// finite turns overflow and NaN results into #ERR.
func finite(f float64) Value {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return NewError(ErrGeneric)
	}
	return NewNumber(f)
}
