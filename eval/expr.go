package eval

import (
	"errors"

	"github.com/influxdata/calcsheet/ast"
)

// Expression is a compiled formula.
// It holds no per-evaluation state and may be shared between goroutines.
type Expression interface {
	Eval(scope ReadOnlyScope) Value
	Node() ast.Node
}

type expression struct {
	node           ast.Node
	nodeEvaluator  NodeEvaluator
	executionState ExecutionState
}

// NewExpression accept a node and try to "compile"/ "specialise" it
// in order to achieve better runtime performance.
//
// Operators are resolved to their evaluation functions and function names
// are looked up once, so evaluating the expression only walks the evaluator tree.
func NewExpression(node ast.Node) (Expression, error) {
	return NewExpressionWithState(node, CreateExecutionState())
}

// NewExpressionWithState compiles node against the functions, clock and
// location of executionState.
func NewExpressionWithState(node ast.Node, executionState ExecutionState) (Expression, error) {
	if node == nil {
		return nil, errors.New("cannot compile nil node")
	}
	if executionState.Funcs == nil {
		executionState.Funcs = NewFunctions()
	}
	nodeEvaluator, err := createNodeEvaluator(node, executionState)
	if err != nil {
		return nil, err
	}

	return &expression{
		node:           node,
		nodeEvaluator:  nodeEvaluator,
		executionState: executionState,
	}, nil
}

func (se *expression) Node() ast.Node {
	return se.node
}

// Eval evaluates the expression. Any panic inside an evaluator degrades to #ERR.
func (se *expression) Eval(scope ReadOnlyScope) (v Value) {
	defer func() {
		if r := recover(); r != nil {
			v = NewError(ErrGeneric)
		}
	}()
	return se.nodeEvaluator.Eval(scope, se.executionState)
}

// EvalResult is the outcome of evaluating a formula.
type EvalResult struct {
	Value   Value
	IsError bool
}

func newEvalResult(v Value) EvalResult {
	return EvalResult{Value: v, IsError: v.IsError()}
}

// EvaluateFormula compiles and evaluates node against scope.
// It never panics: compile failures and internal faults yield #ERR.
func EvaluateFormula(node ast.Node, scope ReadOnlyScope) EvalResult {
	return EvaluateFormulaWithState(node, scope, CreateExecutionState())
}

// EvaluateFormulaWithState is EvaluateFormula with explicit functions, clock and location.
func EvaluateFormulaWithState(node ast.Node, scope ReadOnlyScope, executionState ExecutionState) (result EvalResult) {
	defer func() {
		if r := recover(); r != nil {
			result = newEvalResult(NewError(ErrGeneric))
		}
	}()
	expr, err := NewExpressionWithState(node, executionState)
	if err != nil {
		return newEvalResult(NewError(ErrGeneric))
	}
	return newEvalResult(expr.Eval(scope))
}
