package eval

import (
	"fmt"
	"math"

	"github.com/influxdata/calcsheet/ast"
)

// Evaluation functions
type evaluationFn func(left, right float64) Value

var evaluationFuncs = map[ast.TokenType]evaluationFn{
	ast.TokenPlus: func(l, r float64) Value {
		return finite(l + r)
	},
	ast.TokenMinus: func(l, r float64) Value {
		return finite(l - r)
	},
	ast.TokenMult: func(l, r float64) Value {
		return finite(l * r)
	},
	ast.TokenDiv: func(l, r float64) Value {
		if r == 0 {
			return NewError(ErrDivZero)
		}
		return finite(l / r)
	},
	ast.TokenPow: func(l, r float64) Value {
		return finite(math.Pow(l, r))
	},
	ast.TokenEqual: func(l, r float64) Value {
		return NewBool(l == r)
	},
	ast.TokenEqualEqual: func(l, r float64) Value {
		return NewBool(l == r)
	},
	ast.TokenNotEqual: func(l, r float64) Value {
		return NewBool(l != r)
	},
	ast.TokenLessGreater: func(l, r float64) Value {
		return NewBool(l != r)
	},
	ast.TokenLess: func(l, r float64) Value {
		return NewBool(l < r)
	},
	ast.TokenLessEqual: func(l, r float64) Value {
		return NewBool(l <= r)
	},
	ast.TokenGreater: func(l, r float64) Value {
		return NewBool(l > r)
	},
	ast.TokenGreaterEqual: func(l, r float64) Value {
		return NewBool(l >= r)
	},
}

// EvalBinaryNode is stateless expression which
// is evaluated using "expression trees" instead of stack based interpreter
type EvalBinaryNode struct {
	operator ast.TokenType
	evaluate evaluationFn

	leftEvaluator  NodeEvaluator
	rightEvaluator NodeEvaluator
}

func NewEvalBinaryNode(node *ast.BinaryNode, executionState ExecutionState) (*EvalBinaryNode, error) {
	evaluate, ok := evaluationFuncs[node.Operator]
	if !ok {
		return nil, fmt.Errorf("Invalid binary operator: %q", node.Operator)
	}

	leftEvaluator, err := createNodeEvaluator(node.Left, executionState)
	if err != nil {
		return nil, fmt.Errorf("Failed to handle left node: %v", err)
	}

	rightEvaluator, err := createNodeEvaluator(node.Right, executionState)
	if err != nil {
		return nil, fmt.Errorf("Failed to handle right node: %v", err)
	}

	return &EvalBinaryNode{
		operator:       node.Operator,
		evaluate:       evaluate,
		leftEvaluator:  leftEvaluator,
		rightEvaluator: rightEvaluator,
	}, nil
}

// Eval propagates an error operand, left side first, then coerces both
// operands to numbers.
func (n *EvalBinaryNode) Eval(scope ReadOnlyScope, executionState ExecutionState) Value {
	left := n.leftEvaluator.Eval(scope, executionState)
	if left.IsError() {
		return left
	}
	right := n.rightEvaluator.Eval(scope, executionState)
	if right.IsError() {
		return right
	}

	l, ok := ToNumber(left)
	if !ok {
		return NewError(ErrType)
	}
	r, ok := ToNumber(right)
	if !ok {
		return NewError(ErrType)
	}
	return n.evaluate(l, r)
}
