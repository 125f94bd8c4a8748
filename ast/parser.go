package ast

import (
	"fmt"
	"runtime"
	"strings"
)

// parser is a recursive descent parser over a fully scanned token stream.
type parser struct {
	// the text being parsed
	text string

	tokens []Token
	pos    int
}

// Parse returns a Node, created by parsing the formula described in the
// argument string. If an error is encountered, parsing stops and a nil Node
// is returned with the error.
func Parse(text string) (Node, error) {
	p := &parser{}
	n, err := p.parse(text)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// --------------------
// Parsing methods
//

// next returns the next token.
func (p *parser) next() Token {
	t := p.peek()
	p.pos++
	return t
}

// backup backs the input stream up one token.
func (p *parser) backup() {
	p.pos--
}

// peek returns but does not consume the next token.
// The last token is always EOF or an error and is returned once the stream is exhausted.
func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

// errorf formats the error and terminates processing.
func (p *parser) errorf(format string, args ...interface{}) {
	format = fmt.Sprintf("parser: %s", format)
	panic(fmt.Errorf(format, args...))
}

// error terminates processing.
func (p *parser) error(err error) {
	p.errorf("%s", err)
}

// expect consumes the next token and guarantees it has the required type.
func (p *parser) expect(expected TokenType) Token {
	token := p.next()
	if token.Type != expected {
		p.unexpected(token, expected)
	}
	return token
}

// unexpected complains about the token and terminates processing.
func (p *parser) unexpected(tok Token, expected ...TokenType) {
	const bufSize = 10
	start := tok.Pos - bufSize
	if start < 0 {
		start = 0
	}
	stop := tok.Pos + bufSize
	if stop > len(p.text) {
		stop = len(p.text)
	}
	expectedStrs := make([]string, len(expected))
	for i := range expected {
		expectedStrs[i] = fmt.Sprintf("%q", expected[i])
	}
	expectedStr := strings.Join(expectedStrs, ",")
	tokStr := tok.Type.String()
	if tok.Type == TokenError {
		tokStr = tok.Val
	}
	p.errorf("unexpected %s at char %d in \"%s\". expected: %s", tokStr, tok.Pos+1, p.text[start:stop], expectedStr)
}

func (p *parser) position(pos int) position {
	return position{pos: pos}
}

// recover is the handler that turns panics into returns from the top level of Parse.
// Runtime errors are reported as parse errors as well so that no panic escapes.
func (p *parser) recover(errp *error) {
	e := recover()
	if e != nil {
		if rerr, ok := e.(runtime.Error); ok {
			*errp = fmt.Errorf("parser: internal error: %v", rerr)
		} else if err, ok := e.(error); ok {
			*errp = err
		} else {
			*errp = fmt.Errorf("parser: %v", e)
		}
		if p != nil {
			p.stopParse()
		}
	}
}

// stopParse terminates parsing.
func (p *parser) stopParse() {
	p.tokens = nil
}

// parse parses the formula text to construct a representation
// of the expression for evaluation.
func (p *parser) parse(text string) (n Node, err error) {
	defer p.recover(&err)
	p.text = text
	p.tokens = lex(text).tokens
	p.pos = 0

	n = p.expression()
	p.expect(TokenEOF)

	p.stopParse()
	return
}

// parse a complete expression
func (p *parser) expression() Node {
	return p.precedence(p.unary(), 0)
}

// Operator Precedence parsing.
// Power is handled by unary/power since it binds tighter than prefix operators.
var precedence = [...]int{
	TokenEqual:        0,
	TokenEqualEqual:   0,
	TokenNotEqual:     0,
	TokenLessGreater:  0,
	TokenGreater:      0,
	TokenGreaterEqual: 0,
	TokenLess:         0,
	TokenLessEqual:    0,
	TokenPlus:         1,
	TokenMinus:        1,
	TokenMult:         2,
	TokenDiv:          2,
}

func isPrecedenceOperator(typ TokenType) bool {
	return IsExprOperator(typ) && typ != TokenPow
}

// parse the expression considering operator precedence.
// https://en.wikipedia.org/wiki/Operator-precedence_parser#Pseudo-code
func (p *parser) precedence(lhs Node, minP int) Node {
	look := p.peek()
	for isPrecedenceOperator(look.Type) && precedence[look.Type] >= minP {
		op := p.next()
		rhs := p.unary()
		look = p.peek()
		// left-associative
		for isPrecedenceOperator(look.Type) && precedence[look.Type] > precedence[op.Type] {
			rhs = p.precedence(rhs, precedence[look.Type])
			look = p.peek()
		}
		lhs = newBinary(p.position(op.Pos), op.Type, lhs, rhs)
	}
	return lhs
}

// parse a prefix + or -, which binds looser than ^ and %
func (p *parser) unary() Node {
	switch tok := p.peek(); tok.Type {
	case TokenPlus, TokenMinus:
		p.next()
		return newUnary(p.position(tok.Pos), tok.Type, p.unary())
	}
	return p.power()
}

// parse a right associative power, the exponent may carry a sign
func (p *parser) power() Node {
	lhs := p.postfix()
	if tok := p.peek(); tok.Type == TokenPow {
		p.next()
		return newBinary(p.position(tok.Pos), TokenPow, lhs, p.unary())
	}
	return lhs
}

// parse any number of trailing % operators
func (p *parser) postfix() Node {
	n := p.primary()
	for tok := p.peek(); tok.Type == TokenPercent; tok = p.peek() {
		p.next()
		n = newPostfix(p.position(tok.Pos), TokenPercent, n)
	}
	return n
}

func (p *parser) primary() Node {
	switch tok := p.peek(); {
	case tok.Type == TokenLParen:
		p.next()
		n := p.expression()
		if b, ok := n.(*BinaryNode); ok {
			b.Parens = true
		}
		p.expect(TokenRParen)
		return n
	case tok.Type == TokenNumber:
		return p.number()
	case tok.Type == TokenString:
		return p.string()
	case tok.Type == TokenBool:
		return p.boolean()
	case tok.Type == TokenIdent:
		p.next()
		if p.peek().Type == TokenLParen {
			p.backup()
			return p.function()
		}
		p.backup()
		return p.reference()
	default:
		p.unexpected(
			tok,
			TokenNumber,
			TokenString,
			TokenBool,
			TokenIdent,
			TokenLParen,
			TokenMinus,
			TokenPlus,
		)
		return nil
	}
}

//parse a function call
func (p *parser) function() Node {
	ident := p.expect(TokenIdent)
	p.expect(TokenLParen)
	args := p.parameters()
	p.expect(TokenRParen)
	return newFunc(p.position(ident.Pos), ident.Val, args)
}

//parse a comma separated argument list
func (p *parser) parameters() (args []Node) {
	if p.peek().Type == TokenRParen {
		return
	}
	for {
		args = append(args, p.expression())
		if p.next().Type != TokenComma {
			p.backup()
			return
		}
	}
}

//parse a number literal
func (p *parser) number() Node {
	token := p.expect(TokenNumber)
	num, err := newNumber(p.position(token.Pos), token.Val)
	if err != nil {
		p.error(err)
	}
	return num
}

//parse a string literal
func (p *parser) string() Node {
	token := p.expect(TokenString)
	return newString(p.position(token.Pos), token.Val)
}

//parse a reference to a named field
func (p *parser) reference() Node {
	token := p.expect(TokenIdent)
	return newReference(p.position(token.Pos), token.Val)
}

func (p *parser) boolean() Node {
	n := p.next()
	b, err := newBool(p.position(n.Pos), n.Val)
	if err != nil {
		p.error(err)
	}
	return b
}
