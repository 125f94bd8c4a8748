package sheet

import (
	"github.com/influxdata/calcsheet/eval"
)

// CalculateAllValues computes a value for every field.
//
// Constants take their raw value when one is supplied, else their default,
// coerced by their declared type. Formula fields are evaluated in dependency
// order and see every raw value, constant and previously computed field.
// Fields caught in a reference cycle, or depending on one, are #REF!.
func CalculateAllValues(fields []FieldSpec, raw map[string]interface{}) map[string]eval.Value {
	return calculateWithState(fields, raw, eval.CreateExecutionState())
}

func calculateWithState(fields []FieldSpec, raw map[string]interface{}, es eval.ExecutionState) map[string]eval.Value {
	fields = dedupe(fields)
	src := newMemoFormulas(es)
	p := newPlan(fields, src)
	return p.run(fields, raw, src, eval.NewScope())
}

// run evaluates fields, which must be the deduplicated list the plan was built from.
// scope must be empty and is left populated.
func (p *plan) run(fields []FieldSpec, raw map[string]interface{}, src formulas, scope *eval.Scope) map[string]eval.Value {
	for name, v := range raw {
		scope.Set(name, eval.ValueOf(v))
	}

	values := make(map[string]eval.Value, len(fields))
	for _, i := range p.constants {
		f := fields[i]
		v := constantValue(f, raw)
		scope.Set(f.Name, v)
		values[f.Name] = v
	}
	for _, i := range p.order {
		f := fields[i]
		v := src.lookup(f.Formula).eval(scope)
		scope.Set(f.Name, v)
		values[f.Name] = v
	}
	for _, i := range p.cyclic {
		f := fields[i]
		v := eval.NewError(eval.ErrRef)
		scope.Set(f.Name, v)
		values[f.Name] = v
	}
	return values
}

// constantValue picks the raw value of f if present and not nil,
// else its default, and coerces it to the declared type.
func constantValue(f FieldSpec, raw map[string]interface{}) eval.Value {
	rv, ok := raw[f.Name]
	if !ok || rv == nil {
		rv = f.Value
	}
	v := eval.ValueOf(rv)
	switch f.Type {
	case Number:
		if n, ok := eval.ToNumber(v); ok {
			return eval.NewNumber(n)
		}
		return eval.NewNumber(0)
	case Text:
		return eval.NewString(eval.ToText(v))
	case Boolean:
		return eval.NewBool(eval.Truthy(v))
	default:
		return v
	}
}
