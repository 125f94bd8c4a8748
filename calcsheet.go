package calcsheet

import (
	"github.com/influxdata/calcsheet/ast"
	"github.com/influxdata/calcsheet/eval"
	"github.com/influxdata/calcsheet/sheet"
)

type (
	Value      = eval.Value
	EvalResult = eval.EvalResult
	FieldSpec  = sheet.FieldSpec
)

// ParseResult is the outcome of parsing a formula.
// When Success is false, AST is an error node evaluating to #ERR.
type ParseResult struct {
	Success bool
	AST     ast.Node
	Error   string
}

// ParseFormula parses source. It never panics.
func ParseFormula(source string) ParseResult {
	n, err := ast.Parse(source)
	if err != nil {
		return ParseResult{
			AST:   ast.NewErrorNode(ast.ErrorCodeGeneric),
			Error: err.Error(),
		}
	}
	return ParseResult{Success: true, AST: n}
}

// EvaluateFormula evaluates node against the named values in context.
// It never panics; internal failures yield #ERR.
func EvaluateFormula(node ast.Node, context map[string]interface{}) EvalResult {
	return eval.EvaluateFormula(node, eval.NewScopeFrom(context))
}

// CalculateAllValues computes every field of a sheet, see sheet.CalculateAllValues.
func CalculateAllValues(fields []FieldSpec, raw map[string]interface{}) map[string]Value {
	return sheet.CalculateAllValues(fields, raw)
}
