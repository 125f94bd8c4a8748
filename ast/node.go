package ast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error codes produced by the parser.
// The evaluator defines the full set of codes.
const (
	ErrorCodeGeneric = "#ERR"
)

type Position interface {
	Position() int // byte position of start of node in full original input string
	Char() int
}

type Node interface {
	Position
	String() string
	Format(buf *bytes.Buffer)
	// Report whether to nodes are functionally equal, ignoring position
	Equal(interface{}) bool

	json.Marshaler
	json.Unmarshaler
	unmarshal(JSONNode) error
}

// Format renders the node as canonical formula text.
// Parentheses are written only where precedence or associativity require them.
func Format(n Node) string {
	var buf bytes.Buffer
	n.Format(&buf)
	return buf.String()
}

// Formatting levels, from loosest to tightest binding.
const (
	levelComparison = iota + 1
	levelAdditive
	levelMultiplicative
	levelUnary
	levelPower
	levelPostfix
	levelPrimary
)

func level(n Node) int {
	switch node := n.(type) {
	case *BinaryNode:
		switch {
		case IsCompOperator(node.Operator):
			return levelComparison
		case node.Operator == TokenPlus || node.Operator == TokenMinus:
			return levelAdditive
		case node.Operator == TokenPow:
			return levelPower
		default:
			return levelMultiplicative
		}
	case *UnaryNode:
		return levelUnary
	case *PostfixNode:
		return levelPostfix
	case *NumberNode:
		// A negative literal can only come from a constructed tree.
		if node.Float64 < 0 {
			return levelUnary
		}
	}
	return levelPrimary
}

// formatOperand writes n, wrapping it in parentheses when it binds looser than min.
func formatOperand(buf *bytes.Buffer, n Node, min int) {
	if level(n) < min {
		buf.WriteByte('(')
		n.Format(buf)
		buf.WriteByte(')')
		return
	}
	n.Format(buf)
}

type position struct {
	pos int
}

func (p position) Position() int {
	return p.pos
}

// Char is the 1-based character column of the node.
func (p position) Char() int {
	return p.pos + 1
}

func (p position) String() string {
	return fmt.Sprintf("c%d", p.pos+1)
}

// NumberNode holds a decimal number literal.
type NumberNode struct {
	position
	Float64 float64
	Literal string // source text, kept for diagnostics
}

// create a new number from a text string
func newNumber(p position, text string) (*NumberNode, error) {
	if text == "" {
		return nil, errors.New("invalid number literal, empty string")
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("illegal number syntax: %q", text)
	}
	return &NumberNode{
		position: p,
		Float64:  f,
		Literal:  text,
	}, nil
}

func (n *NumberNode) String() string {
	return fmt.Sprintf("NumberNode@%v{%s}", n.position, strconv.FormatFloat(n.Float64, 'f', -1, 64))
}

func (n *NumberNode) Format(buf *bytes.Buffer) {
	buf.WriteString(strconv.FormatFloat(n.Float64, 'f', -1, 64))
}

func (n *NumberNode) Equal(o interface{}) bool {
	if on, ok := o.(*NumberNode); ok {
		return n.Float64 == on.Float64
	}
	return false
}

// MarshalJSON converts the node to JSON with an additional
// typeOf field.
func (n *NumberNode) MarshalJSON() ([]byte, error) {
	props := JSONNode{}.
		Type("number").
		Set("float64", n.Float64)
	return json.Marshal(&props)
}

func (n *NumberNode) unmarshal(props JSONNode) error {
	err := props.CheckTypeOf("number")
	if err != nil {
		return err
	}
	n.Float64, err = props.Float64("float64")
	return err
}

// UnmarshalJSON converts JSON bytes to a NumberNode.
func (n *NumberNode) UnmarshalJSON(data []byte) error {
	var props JSONNode
	err := json.Unmarshal(data, &props)
	if err != nil {
		return err
	}
	return n.unmarshal(props)
}

// StringNode holds a string literal without its quotes.
type StringNode struct {
	position
	Literal string
}

func newString(p position, txt string) *StringNode {
	// Remove leading and trailing quotes
	return &StringNode{
		position: p,
		Literal:  txt[1 : len(txt)-1],
	}
}

func (n *StringNode) String() string {
	return fmt.Sprintf("StringNode@%v{%s}", n.position, n.Literal)
}

// Format quotes with single quotes unless the literal contains one.
// Literals holding both quote kinds cannot be written in formula syntax.
func (n *StringNode) Format(buf *bytes.Buffer) {
	q := byte('\'')
	if strings.IndexByte(n.Literal, '\'') != -1 {
		q = '"'
	}
	buf.WriteByte(q)
	buf.WriteString(n.Literal)
	buf.WriteByte(q)
}

func (n *StringNode) Equal(o interface{}) bool {
	if on, ok := o.(*StringNode); ok {
		return n.Literal == on.Literal
	}
	return false
}

// MarshalJSON converts the node to JSON with an additional
// typeOf field.
func (n *StringNode) MarshalJSON() ([]byte, error) {
	props := JSONNode{}.
		Type("string").
		Set("literal", n.Literal)
	return json.Marshal(&props)
}

func (n *StringNode) unmarshal(props JSONNode) error {
	err := props.CheckTypeOf("string")
	if err != nil {
		return err
	}
	n.Literal, err = props.String("literal")
	return err
}

// UnmarshalJSON converts JSON bytes to a StringNode.
func (n *StringNode) UnmarshalJSON(data []byte) error {
	var props JSONNode
	err := json.Unmarshal(data, &props)
	if err != nil {
		return err
	}
	return n.unmarshal(props)
}

// BoolNode holds one argument and an operator.
type BoolNode struct {
	position
	Bool bool
}

func newBool(p position, text string) (*BoolNode, error) {
	b, err := strconv.ParseBool(strings.ToLower(text))
	if err != nil {
		return nil, err
	}
	return &BoolNode{
		position: p,
		Bool:     b,
	}, nil
}

func (n *BoolNode) String() string {
	return fmt.Sprintf("BoolNode@%v{%v}", n.position, n.Bool)
}

func (n *BoolNode) Format(buf *bytes.Buffer) {
	if n.Bool {
		buf.WriteString(KW_True)
	} else {
		buf.WriteString(KW_False)
	}
}

func (n *BoolNode) Equal(o interface{}) bool {
	if on, ok := o.(*BoolNode); ok {
		return n.Bool == on.Bool
	}
	return false
}

// MarshalJSON converts the node to JSON with an additional
// typeOf field.
func (n *BoolNode) MarshalJSON() ([]byte, error) {
	props := JSONNode{}.
		Type("bool").
		Set("bool", n.Bool)
	return json.Marshal(&props)
}

func (n *BoolNode) unmarshal(props JSONNode) error {
	err := props.CheckTypeOf("bool")
	if err != nil {
		return err
	}
	n.Bool, err = props.Bool("bool")
	return err
}

// UnmarshalJSON converts JSON bytes to a BoolNode.
func (n *BoolNode) UnmarshalJSON(data []byte) error {
	var props JSONNode
	err := json.Unmarshal(data, &props)
	if err != nil {
		return err
	}
	return n.unmarshal(props)
}

// ReferenceNode is a named field whose value is looked up at evaluation time.
type ReferenceNode struct {
	position
	Reference string
}

func newReference(p position, txt string) *ReferenceNode {
	return &ReferenceNode{
		position:  p,
		Reference: txt,
	}
}

func (n *ReferenceNode) String() string {
	return fmt.Sprintf("ReferenceNode@%v{%s}", n.position, n.Reference)
}

func (n *ReferenceNode) Format(buf *bytes.Buffer) {
	buf.WriteString(n.Reference)
}

func (n *ReferenceNode) Equal(o interface{}) bool {
	if on, ok := o.(*ReferenceNode); ok {
		return n.Reference == on.Reference
	}
	return false
}

// MarshalJSON converts the node to JSON with an additional
// typeOf field.
func (n *ReferenceNode) MarshalJSON() ([]byte, error) {
	props := JSONNode{}.
		Type("reference").
		Set("reference", n.Reference)
	return json.Marshal(&props)
}

func (n *ReferenceNode) unmarshal(props JSONNode) error {
	err := props.CheckTypeOf("reference")
	if err != nil {
		return err
	}
	n.Reference, err = props.String("reference")
	return err
}

// UnmarshalJSON converts JSON bytes to a ReferenceNode.
func (n *ReferenceNode) UnmarshalJSON(data []byte) error {
	var props JSONNode
	err := json.Unmarshal(data, &props)
	if err != nil {
		return err
	}
	return n.unmarshal(props)
}

// UnaryNode is a prefix + or - applied to an operand.
type UnaryNode struct {
	position
	Node     Node
	Operator TokenType
}

func newUnary(p position, op TokenType, n Node) *UnaryNode {
	return &UnaryNode{
		position: p,
		Node:     n,
		Operator: op,
	}
}

func (n *UnaryNode) String() string {
	return fmt.Sprintf("UnaryNode@%v{%s %s}", n.position, n.Operator, n.Node)
}

func (n *UnaryNode) Format(buf *bytes.Buffer) {
	buf.WriteString(n.Operator.String())
	formatOperand(buf, n.Node, levelUnary)
}

func (n *UnaryNode) Equal(o interface{}) bool {
	if on, ok := o.(*UnaryNode); ok {
		return n.Operator == on.Operator && n.Node.Equal(on.Node)
	}
	return false
}

// MarshalJSON converts the node to JSON with an additional
// typeOf field.
func (n *UnaryNode) MarshalJSON() ([]byte, error) {
	props := JSONNode{}.
		Type("unary").
		SetOperator("operator", n.Operator).
		Set("node", n.Node)
	return json.Marshal(&props)
}

func (n *UnaryNode) unmarshal(props JSONNode) error {
	err := props.CheckTypeOf("unary")
	if err != nil {
		return err
	}
	if n.Operator, err = props.Operator("operator"); err != nil {
		return err
	}
	if n.Operator != TokenPlus && n.Operator != TokenMinus {
		return fmt.Errorf("invalid unary operator %v", n.Operator)
	}
	n.Node, err = props.Node("node")
	return err
}

// UnmarshalJSON converts JSON bytes to a UnaryNode
func (n *UnaryNode) UnmarshalJSON(data []byte) error {
	var props JSONNode
	err := json.Unmarshal(data, &props)
	if err != nil {
		return err
	}
	return n.unmarshal(props)
}

// PostfixNode is an operator written after its operand.
// The only postfix operator is %.
type PostfixNode struct {
	position
	Node     Node
	Operator TokenType
}

func newPostfix(p position, op TokenType, n Node) *PostfixNode {
	return &PostfixNode{
		position: p,
		Node:     n,
		Operator: op,
	}
}

func (n *PostfixNode) String() string {
	return fmt.Sprintf("PostfixNode@%v{%s %s}", n.position, n.Node, n.Operator)
}

func (n *PostfixNode) Format(buf *bytes.Buffer) {
	formatOperand(buf, n.Node, levelPostfix)
	buf.WriteString(n.Operator.String())
}

func (n *PostfixNode) Equal(o interface{}) bool {
	if on, ok := o.(*PostfixNode); ok {
		return n.Operator == on.Operator && n.Node.Equal(on.Node)
	}
	return false
}

// MarshalJSON converts the node to JSON with an additional
// typeOf field.
func (n *PostfixNode) MarshalJSON() ([]byte, error) {
	props := JSONNode{}.
		Type("postfix").
		SetOperator("operator", n.Operator).
		Set("node", n.Node)
	return json.Marshal(&props)
}

func (n *PostfixNode) unmarshal(props JSONNode) error {
	err := props.CheckTypeOf("postfix")
	if err != nil {
		return err
	}
	if n.Operator, err = props.Operator("operator"); err != nil {
		return err
	}
	if n.Operator != TokenPercent {
		return fmt.Errorf("invalid postfix operator %v", n.Operator)
	}
	n.Node, err = props.Node("node")
	return err
}

// UnmarshalJSON converts JSON bytes to a PostfixNode
func (n *PostfixNode) UnmarshalJSON(data []byte) error {
	var props JSONNode
	err := json.Unmarshal(data, &props)
	if err != nil {
		return err
	}
	return n.unmarshal(props)
}

// binaryNode holds two arguments and an operator.
type BinaryNode struct {
	position
	Left     Node
	Right    Node
	Operator TokenType
	Parens   bool
}

func newBinary(p position, op TokenType, left, right Node) *BinaryNode {
	return &BinaryNode{
		position: p,
		Left:     left,
		Right:    right,
		Operator: op,
	}
}

func (n *BinaryNode) String() string {
	return fmt.Sprintf("BinaryNode@%v{p:%v %v %v %v}", n.position, n.Parens, n.Left, n.Operator, n.Right)
}

func (n *BinaryNode) Format(buf *bytes.Buffer) {
	l := level(n)
	if n.Operator == TokenPow {
		formatOperand(buf, n.Left, levelPostfix)
		buf.WriteString(" ^ ")
		formatOperand(buf, n.Right, levelUnary)
		return
	}
	formatOperand(buf, n.Left, l)
	buf.WriteByte(' ')
	buf.WriteString(n.Operator.String())
	buf.WriteByte(' ')
	formatOperand(buf, n.Right, l+1)
}

func (n *BinaryNode) Equal(o interface{}) bool {
	if on, ok := o.(*BinaryNode); ok {
		return n.Operator == on.Operator &&
			n.Left.Equal(on.Left) &&
			n.Right.Equal(on.Right)
	}
	return false
}

// MarshalJSON converts the node to JSON with an additional
// typeOf field.
func (n *BinaryNode) MarshalJSON() ([]byte, error) {
	props := JSONNode{}.
		Type("binary").
		SetOperator("operator", n.Operator).
		Set("left", n.Left).
		Set("right", n.Right)
	return json.Marshal(&props)
}

func (n *BinaryNode) unmarshal(props JSONNode) error {
	err := props.CheckTypeOf("binary")
	if err != nil {
		return err
	}
	if n.Operator, err = props.Operator("operator"); err != nil {
		return err
	}
	if !IsExprOperator(n.Operator) {
		return fmt.Errorf("invalid binary operator %v", n.Operator)
	}
	if n.Left, err = props.Node("left"); err != nil {
		return err
	}
	if n.Right, err = props.Node("right"); err != nil {
		return err
	}
	return nil
}

// UnmarshalJSON converts JSON bytes to a BinaryNode
func (n *BinaryNode) UnmarshalJSON(data []byte) error {
	var props JSONNode
	err := json.Unmarshal(data, &props)
	if err != nil {
		return err
	}
	return n.unmarshal(props)
}

// FunctionNode holds a function name and its arguments.
// The name is kept as written; it is resolved case-insensitively by the evaluator.
type FunctionNode struct {
	position
	Func string // The identifier
	Args []Node
}

func newFunc(p position, ident string, args []Node) *FunctionNode {
	return &FunctionNode{
		position: p,
		Func:     ident,
		Args:     args,
	}
}

func (n *FunctionNode) String() string {
	return fmt.Sprintf("FunctionNode@%v{%s %v}", n.position, n.Func, n.Args)
}

func (n *FunctionNode) Format(buf *bytes.Buffer) {
	buf.WriteString(n.Func)
	buf.WriteByte('(')
	for i, arg := range n.Args {
		if i != 0 {
			buf.WriteString(", ")
		}
		arg.Format(buf)
	}
	buf.WriteByte(')')
}

func (n *FunctionNode) Equal(o interface{}) bool {
	if on, ok := o.(*FunctionNode); ok {
		if n.Func != on.Func || len(n.Args) != len(on.Args) {
			return false
		}
		for i := range n.Args {
			if !n.Args[i].Equal(on.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON converts the node to JSON with an additional
// typeOf field.
func (n *FunctionNode) MarshalJSON() ([]byte, error) {
	args := n.Args
	if args == nil {
		args = []Node{}
	}
	props := JSONNode{}.
		Type("func").
		Set("func", n.Func).
		Set("args", args)
	return json.Marshal(&props)
}

func (n *FunctionNode) unmarshal(props JSONNode) error {
	err := props.CheckTypeOf("func")
	if err != nil {
		return err
	}
	if n.Func, err = props.String("func"); err != nil {
		return err
	}
	n.Args, err = props.NodeList("args")
	return err
}

// UnmarshalJSON converts JSON bytes to a FunctionNode
func (n *FunctionNode) UnmarshalJSON(data []byte) error {
	var props JSONNode
	err := json.Unmarshal(data, &props)
	if err != nil {
		return err
	}
	return n.unmarshal(props)
}

// ErrorNode stands in for a formula that could not be parsed.
// It always evaluates to its error code.
type ErrorNode struct {
	position
	Code string
}

// NewErrorNode returns an ErrorNode for code.
func NewErrorNode(code string) *ErrorNode {
	return &ErrorNode{Code: code}
}

func (n *ErrorNode) String() string {
	return fmt.Sprintf("ErrorNode@%v{%s}", n.position, n.Code)
}

func (n *ErrorNode) Format(buf *bytes.Buffer) {
	buf.WriteString(n.Code)
}

func (n *ErrorNode) Equal(o interface{}) bool {
	if on, ok := o.(*ErrorNode); ok {
		return n.Code == on.Code
	}
	return false
}

// MarshalJSON converts the node to JSON with an additional
// typeOf field.
func (n *ErrorNode) MarshalJSON() ([]byte, error) {
	props := JSONNode{}.
		Type("error").
		Set("code", n.Code)
	return json.Marshal(&props)
}

func (n *ErrorNode) unmarshal(props JSONNode) error {
	err := props.CheckTypeOf("error")
	if err != nil {
		return err
	}
	n.Code, err = props.String("code")
	return err
}

// UnmarshalJSON converts JSON bytes to an ErrorNode
func (n *ErrorNode) UnmarshalJSON(data []byte) error {
	var props JSONNode
	err := json.Unmarshal(data, &props)
	if err != nil {
		return err
	}
	return n.unmarshal(props)
}
