package eval

import (
	"fmt"
	"strings"

	"github.com/influxdata/calcsheet/ast"
)

// NodeEvaluator evaluates one compiled AST node.
// Failures are reported in-band as error values, never as Go errors.
type NodeEvaluator interface {
	Eval(scope ReadOnlyScope, executionState ExecutionState) Value
}

func createNodeEvaluator(n ast.Node, executionState ExecutionState) (NodeEvaluator, error) {
	switch node := n.(type) {

	case *ast.NumberNode:
		return &EvalNumberNode{Value: NewNumber(node.Float64)}, nil

	case *ast.StringNode:
		return &EvalStringNode{Value: NewString(node.Literal)}, nil

	case *ast.BoolNode:
		return &EvalBoolNode{Value: NewBool(node.Bool)}, nil

	case *ast.ReferenceNode:
		return &EvalReferenceNode{Node: node}, nil

	case *ast.ErrorNode:
		code := ErrorCode(node.Code)
		if !IsErrorCode(node.Code) {
			code = ErrGeneric
		}
		return &EvalErrorNode{Code: code}, nil

	case *ast.UnaryNode:
		return NewEvalUnaryNode(node, executionState)

	case *ast.PostfixNode:
		return NewEvalPostfixNode(node, executionState)

	case *ast.BinaryNode:
		return NewEvalBinaryNode(node, executionState)

	case *ast.FunctionNode:
		return NewEvalFunctionNode(node, executionState)
	}

	return nil, fmt.Errorf("Given node type is not valid evaluation node: %T", n)
}

// EvalNumberNode, EvalStringNode and EvalBoolNode evaluate to their literal.
type EvalNumberNode struct {
	Value Value
}

func (n *EvalNumberNode) Eval(ReadOnlyScope, ExecutionState) Value {
	return n.Value
}

type EvalStringNode struct {
	Value Value
}

func (n *EvalStringNode) Eval(ReadOnlyScope, ExecutionState) Value {
	return n.Value
}

type EvalBoolNode struct {
	Value Value
}

func (n *EvalBoolNode) Eval(ReadOnlyScope, ExecutionState) Value {
	return n.Value
}

// EvalErrorNode always evaluates to its code.
// Unparseable formulas and calls to unknown functions compile to it.
type EvalErrorNode struct {
	Code ErrorCode
}

func (n *EvalErrorNode) Eval(ReadOnlyScope, ExecutionState) Value {
	return NewError(n.Code)
}

type EvalReferenceNode struct {
	Node *ast.ReferenceNode
}

func (n *EvalReferenceNode) Eval(scope ReadOnlyScope, _ ExecutionState) Value {
	if scope == nil {
		return NewError(ErrRef)
	}
	v, ok := scope.Get(n.Node.Reference)
	if !ok {
		return NewError(ErrRef)
	}
	return v
}

type EvalUnaryNode struct {
	operator      ast.TokenType
	nodeEvaluator NodeEvaluator
}

func NewEvalUnaryNode(unaryNode *ast.UnaryNode, executionState ExecutionState) (*EvalUnaryNode, error) {
	if !isValidUnaryOperator(unaryNode.Operator) {
		return nil, fmt.Errorf("Invalid unary operator: %q", unaryNode.Operator)
	}

	nodeEvaluator, err := createNodeEvaluator(unaryNode.Node, executionState)
	if err != nil {
		return nil, fmt.Errorf("Failed to handle node: %v", err)
	}

	return &EvalUnaryNode{
		operator:      unaryNode.Operator,
		nodeEvaluator: nodeEvaluator,
	}, nil
}

func isValidUnaryOperator(operator ast.TokenType) bool {
	return operator == ast.TokenPlus || operator == ast.TokenMinus
}

func (n *EvalUnaryNode) Eval(scope ReadOnlyScope, executionState ExecutionState) Value {
	v := n.nodeEvaluator.Eval(scope, executionState)
	if v.IsError() {
		return v
	}
	f, ok := ToNumber(v)
	if !ok {
		return NewError(ErrType)
	}
	if n.operator == ast.TokenMinus {
		return NewNumber(-f)
	}
	return NewNumber(f)
}

type EvalPostfixNode struct {
	nodeEvaluator NodeEvaluator
}

func NewEvalPostfixNode(postfixNode *ast.PostfixNode, executionState ExecutionState) (*EvalPostfixNode, error) {
	if postfixNode.Operator != ast.TokenPercent {
		return nil, fmt.Errorf("Invalid postfix operator: %q", postfixNode.Operator)
	}

	nodeEvaluator, err := createNodeEvaluator(postfixNode.Node, executionState)
	if err != nil {
		return nil, fmt.Errorf("Failed to handle node: %v", err)
	}
	return &EvalPostfixNode{nodeEvaluator: nodeEvaluator}, nil
}

func (n *EvalPostfixNode) Eval(scope ReadOnlyScope, executionState ExecutionState) Value {
	v := n.nodeEvaluator.Eval(scope, executionState)
	if v.IsError() {
		return v
	}
	f, ok := ToNumber(v)
	if !ok {
		return NewError(ErrType)
	}
	return NewNumber(f / 100)
}

type EvalFunctionNode struct {
	funcName       string
	f              Func
	argsEvaluators []NodeEvaluator
}

// NewEvalFunctionNode resolves the function when the expression is compiled.
// An unknown function compiles to a node that always evaluates to #ERR.
func NewEvalFunctionNode(funcNode *ast.FunctionNode, executionState ExecutionState) (NodeEvaluator, error) {
	f := executionState.Funcs[strings.ToUpper(funcNode.Func)]
	if f == nil {
		return &EvalErrorNode{Code: ErrGeneric}, nil
	}

	evalFuncNode := &EvalFunctionNode{
		funcName: funcNode.Func,
		f:        f,
	}

	evalFuncNode.argsEvaluators = make([]NodeEvaluator, 0, len(funcNode.Args))
	for i, argNode := range funcNode.Args {
		argEvaluator, err := createNodeEvaluator(argNode, executionState)
		if err != nil {
			return nil, fmt.Errorf("Failed to handle %v argument: %v", i+1, err)
		}

		evalFuncNode.argsEvaluators = append(evalFuncNode.argsEvaluators, argEvaluator)
	}

	return evalFuncNode, nil
}

// Eval evaluates every argument left to right, then calls the function.
func (n *EvalFunctionNode) Eval(scope ReadOnlyScope, executionState ExecutionState) Value {
	args := make([]Value, len(n.argsEvaluators))
	for i, argEvaluator := range n.argsEvaluators {
		args[i] = argEvaluator.Eval(scope, executionState)
	}
	return n.f.Call(executionState, args...)
}
