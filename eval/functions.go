package eval

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const dateLayout = "2006-01-02"

// dateLayouts are tried in order when reading a date-like string.
var dateLayouts = []string{
	dateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// A callable function from within the expression
type Func interface {
	Call(executionState ExecutionState, args ...Value) Value
}

// Lookup for functions, keyed by upper case name.
type Funcs map[string]Func

var builtinFuncs Funcs

func init() {
	builtinFuncs = Funcs{
		"SUM":      builtin{name: "SUM", skipErrors: true, fn: sum},
		"AVG":      builtin{name: "AVG", minArgs: 1, fn: avg},
		"MIN":      builtin{name: "MIN", fn: extremum(func(a, b float64) bool { return a < b })},
		"MAX":      builtin{name: "MAX", fn: extremum(func(a, b float64) bool { return a > b })},
		"COUNT":    builtin{name: "COUNT", skipErrors: true, fn: count},
		"IF":       builtin{name: "IF", minArgs: 1, fn: ifFunc},
		"ROUND":    builtin{name: "ROUND", minArgs: 1, fn: round},
		"FLOOR":    builtin{name: "FLOOR", minArgs: 1, fn: math1(math.Floor)},
		"CEIL":     builtin{name: "CEIL", minArgs: 1, fn: math1(math.Ceil)},
		"ABS":      builtin{name: "ABS", minArgs: 1, fn: math1(math.Abs)},
		"LEN":      builtin{name: "LEN", minArgs: 1, fn: length},
		"CONCAT":   builtin{name: "CONCAT", fn: concat},
		"COALESCE": builtin{name: "COALESCE", skipErrors: true, fn: coalesce},
		"TODAY":    builtin{name: "TODAY", fn: today},
		"DATE":     builtin{name: "DATE", minArgs: 3, fn: date},
		"YEAR":     builtin{name: "YEAR", minArgs: 1, fn: datePart(func(t time.Time) int { return t.Year() })},
		"MONTH":    builtin{name: "MONTH", minArgs: 1, fn: datePart(func(t time.Time) int { return int(t.Month()) })},
		"DAY":      builtin{name: "DAY", minArgs: 1, fn: datePart(func(t time.Time) int { return t.Day() })},
		"NUMBER":   builtin{name: "NUMBER", minArgs: 1, fn: number},
	}
}

// NewFunctions returns a copy of the builtin function table.
// Callers may add their own functions to the copy.
func NewFunctions() Funcs {
	funcs := make(Funcs, len(builtinFuncs))
	for n, f := range builtinFuncs {
		funcs[n] = f
	}
	return funcs
}

// Names returns the function names in the table.
func (f Funcs) Names() []string {
	names := make([]string, 0, len(f))
	for n := range f {
		names = append(names, n)
	}
	return names
}

type builtinFunc func(executionState ExecutionState, args []Value) Value

// builtin checks arity and error arguments before calling fn.
// Extra arguments are ignored.
type builtin struct {
	name       string
	minArgs    int
	skipErrors bool
	fn         builtinFunc
}

func (b builtin) String() string {
	return b.name
}

func (b builtin) Call(executionState ExecutionState, args ...Value) Value {
	if len(args) < b.minArgs {
		return NewError(ErrGeneric)
	}
	if !b.skipErrors {
		for _, a := range args {
			if a.IsError() {
				return a
			}
		}
	}
	v := b.fn(executionState, args)
	if v.Type() == TNumber {
		return finite(v.Number())
	}
	return v
}

func sum(_ ExecutionState, args []Value) Value {
	total := 0.0
	for _, a := range args {
		if f, ok := ToNumber(a); ok {
			total += f
		}
	}
	return NewNumber(total)
}

// avg divides the sum of the numeric arguments by the number of arguments.
func avg(_ ExecutionState, args []Value) Value {
	total := 0.0
	for _, a := range args {
		if f, ok := ToNumber(a); ok {
			total += f
		}
	}
	return NewNumber(total / float64(len(args)))
}

func extremum(better func(a, b float64) bool) builtinFunc {
	return func(_ ExecutionState, args []Value) Value {
		found := false
		result := 0.0
		for _, a := range args {
			f, ok := ToNumber(a)
			if !ok {
				continue
			}
			if !found || better(f, result) {
				result = f
				found = true
			}
		}
		if !found {
			return NewError(ErrGeneric)
		}
		return NewNumber(result)
	}
}

func count(_ ExecutionState, args []Value) Value {
	n := 0
	for _, a := range args {
		if !a.IsNull() && !a.IsError() {
			n++
		}
	}
	return NewNumber(float64(n))
}

func ifFunc(_ ExecutionState, args []Value) Value {
	if Truthy(args[0]) {
		if len(args) > 1 {
			return args[1]
		}
		return Null
	}
	if len(args) > 2 {
		return args[2]
	}
	return Null
}

// round rounds half away from zero to d decimal places, d defaults to 0.
func round(_ ExecutionState, args []Value) Value {
	x, ok := ToNumber(args[0])
	if !ok {
		return NewError(ErrType)
	}
	d := 0.0
	if len(args) > 1 && !args[1].IsNull() {
		if d, ok = ToNumber(args[1]); !ok {
			return NewError(ErrType)
		}
	}
	p := math.Pow(10, math.Trunc(d))
	return NewNumber(math.Round(x*p) / p)
}

func math1(f func(float64) float64) builtinFunc {
	return func(_ ExecutionState, args []Value) Value {
		x, ok := ToNumber(args[0])
		if !ok {
			return NewError(ErrType)
		}
		return NewNumber(f(x))
	}
}

func length(_ ExecutionState, args []Value) Value {
	return NewNumber(float64(utf8.RuneCountInString(ToText(args[0]))))
}

func concat(_ ExecutionState, args []Value) Value {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(ToText(a))
	}
	return NewString(b.String())
}

func coalesce(_ ExecutionState, args []Value) Value {
	for _, a := range args {
		if a.IsNull() || a.IsError() {
			continue
		}
		if a.Type() == TString && a.Text() == "" {
			continue
		}
		return a
	}
	return Null
}

func today(executionState ExecutionState, _ []Value) Value {
	return NewString(executionState.now().Format(dateLayout))
}

// date normalizes out of range parts, DATE(2024, 13, 1) is 2025-01-01.
func date(_ ExecutionState, args []Value) Value {
	var parts [3]int
	for i := range parts {
		f, ok := ToNumber(args[i])
		if !ok {
			return NewError(ErrType)
		}
		parts[i] = int(math.Trunc(f))
	}
	t := time.Date(parts[0], time.Month(parts[1]), parts[2], 0, 0, 0, 0, time.UTC)
	return NewString(t.Format(dateLayout))
}

func datePart(part func(time.Time) int) builtinFunc {
	return func(executionState ExecutionState, args []Value) Value {
		t, ok := toTime(args[0], executionState)
		if !ok {
			return NewError(ErrType)
		}
		return NewNumber(float64(part(t)))
	}
}

// toTime reads a date-like value. Numbers are milliseconds since the Unix epoch.
func toTime(v Value, executionState ExecutionState) (time.Time, bool) {
	loc := executionState.Location
	if loc == nil {
		loc = time.UTC
	}
	switch v.Type() {
	case TNumber:
		return time.UnixMilli(int64(v.Number())).In(loc), true
	case TString:
		s := strings.TrimSpace(v.Text())
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func number(_ ExecutionState, args []Value) Value {
	f, ok := ToNumber(args[0])
	if !ok {
		return NewError(ErrType)
	}
	return NewNumber(f)
}
