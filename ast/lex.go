package ast

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type TokenType int

type stateFn func(*lexer) stateFn

const eof = -1

const (
	TokenError TokenType = iota
	TokenEOF
	TokenIdent
	TokenNumber
	TokenString
	TokenBool
	TokenLParen
	TokenRParen
	TokenComma
	TokenPercent

	// begin operator tokens
	begin_tok_operator

	TokenPlus
	TokenMinus
	TokenMult
	TokenDiv
	TokenPow

	// begin comparison operators
	begin_tok_operator_comp

	TokenEqual
	TokenEqualEqual
	TokenNotEqual
	TokenLessGreater
	TokenLess
	TokenGreater
	TokenLessEqual
	TokenGreaterEqual

	//end comparison operators
	end_tok_operator_comp

	//end operator tokens
	end_tok_operator
)

var operatorStr = [...]string{
	TokenPlus:         "+",
	TokenMinus:        "-",
	TokenMult:         "*",
	TokenDiv:          "/",
	TokenPow:          "^",
	TokenPercent:      "%",
	TokenEqual:        "=",
	TokenEqualEqual:   "==",
	TokenNotEqual:     "!=",
	TokenLessGreater:  "<>",
	TokenLess:         "<",
	TokenGreater:      ">",
	TokenLessEqual:    "<=",
	TokenGreaterEqual: ">=",
}

var strToOperator map[string]TokenType

const (
	KW_True  = "true"
	KW_False = "false"
)

func init() {
	strToOperator = make(map[string]TokenType, len(operatorStr))
	for t, s := range operatorStr {
		if s != "" {
			strToOperator[s] = TokenType(t)
		}
	}
}

// NewTokenType returns the operator token for its textual form.
func NewTokenType(s string) (TokenType, error) {
	if t, ok := strToOperator[s]; ok {
		return t, nil
	}
	return TokenError, fmt.Errorf("unknown operator %q", s)
}

//String representation of an TokenType
func (t TokenType) String() string {
	switch {
	case t == TokenError:
		return "ERR"
	case t == TokenEOF:
		return "EOF"
	case t == TokenIdent:
		return "identifier"
	case t == TokenNumber:
		return "number"
	case t == TokenString:
		return "string"
	case t == TokenBool:
		return "boolean"
	case t == TokenLParen:
		return "("
	case t == TokenRParen:
		return ")"
	case t == TokenComma:
		return ","
	case t == TokenPercent:
		return "%"
	case IsExprOperator(t):
		return operatorStr[t]
	}
	return fmt.Sprintf("%d", int(t))
}

// True if token type is a binary operator used in expressions.
func IsExprOperator(typ TokenType) bool {
	return typ > begin_tok_operator && typ < end_tok_operator
}

// True if token type is an operator used in comparisons.
func IsCompOperator(typ TokenType) bool {
	return typ > begin_tok_operator_comp && typ < end_tok_operator_comp
}

// Token is a single lexical element of a formula.
// Pos is the byte offset of the token in the source text.
type Token struct {
	Type TokenType
	Pos  int
	Val  string
}

func (t Token) String() string {
	return fmt.Sprintf("{%v pos: %d val: %s}", t.Type, t.Pos, t.Val)
}

// Tokenize converts formula source text into a flat token stream terminated
// by a TokenEOF token. When the text contains an unrecognized character the
// tokens scanned so far are returned together with an error describing it.
func Tokenize(source string) ([]Token, error) {
	l := lex(source)
	if last := l.tokens[len(l.tokens)-1]; last.Type == TokenError {
		return l.tokens[:len(l.tokens)-1], fmt.Errorf("tokenizer: %s at char %d", last.Val, last.Pos+1)
	}
	return l.tokens, nil
}

// lexer holds the state of the scanner.
type lexer struct {
	input  string  // the string being scanned.
	start  int     // start position of this token.
	pos    int     // current position in the input.
	width  int     // width of last rune read from input.
	tokens []Token // scanned tokens.
}

// lex scans the whole input. The token slice always ends with either
// TokenEOF or TokenError.
func lex(input string) *lexer {
	l := &lexer{
		input:  input,
		tokens: make([]Token, 0, len(input)/2+1),
	}
	l.run()
	return l
}

// run lexes the input by executing state functions until
// the state is nil.
func (l *lexer) run() {
	for state := lexToken; state != nil; {
		state = state(l)
	}
}

// emit passes a token back to the client.
func (l *lexer) emit(t TokenType) {
	l.tokens = append(l.tokens, Token{t, l.start, l.current()})
	l.start = l.pos
}

// next returns the next rune in the input.
func (l *lexer) next() (r rune) {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, l.width =
		utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += l.width
	return
}

// errorf emits an error token and terminates the scan by passing
// back a nil pointer that will be the next state.
func (l *lexer) errorf(format string, args ...interface{}) stateFn {
	l.tokens = append(l.tokens, Token{TokenError, l.start, fmt.Sprintf(format, args...)})
	return nil
}

//Backup the lexer to the previous rune
func (l *lexer) backup() {
	l.pos -= l.width
}

// peek returns but does not consume the next rune in the input.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// current returns the text of the pending token.
func (l *lexer) current() string {
	return l.input[l.start:l.pos]
}

// ignore skips over the pending input before this point.
func (l *lexer) ignore() {
	l.start = l.pos
}

// expect the next rune to be r
func (l *lexer) expect(r rune) bool {
	if l.peek() == r {
		l.next()
		return true
	}
	return false
}

func lexToken(l *lexer) stateFn {
	for {
		switch r := l.next(); {
		case r == eof:
			l.emit(TokenEOF)
			return nil
		case isSpace(r):
			l.ignore()
		case isDigit(r), r == '.':
			l.backup()
			return lexNumber
		case isIdentStart(r):
			return lexIdentOrKeyword
		case r == '"', r == '\'':
			l.backup()
			return lexString
		case r == '(':
			l.emit(TokenLParen)
		case r == ')':
			l.emit(TokenRParen)
		case r == ',':
			l.emit(TokenComma)
		case r == '%':
			l.emit(TokenPercent)
		case isOperatorChar(r):
			l.backup()
			return lexOperator
		default:
			return l.errorf("invalid character %q", r)
		}
	}
}

const operatorChars = "+-*/^=!<>"

func isOperatorChar(r rune) bool {
	return strings.IndexRune(operatorChars, r) != -1
}

func lexOperator(l *lexer) stateFn {
	switch r := l.next(); r {
	case '+', '-', '*', '/', '^':
	case '=':
		l.expect('=')
	case '!':
		if !l.expect('=') {
			return l.errorf("invalid character %q", r)
		}
	case '<':
		if !l.expect('=') {
			l.expect('>')
		}
	case '>':
		l.expect('=')
	default:
		return l.errorf("invalid operator %q", r)
	}
	l.emit(strToOperator[l.current()])
	return lexToken
}

func lexIdentOrKeyword(l *lexer) stateFn {
	for {
		switch r := l.next(); {
		case isValidIdent(r):
			//absorb
		default:
			l.backup()
			if w := l.current(); strings.EqualFold(w, KW_True) || strings.EqualFold(w, KW_False) {
				l.emit(TokenBool)
			} else {
				l.emit(TokenIdent)
			}
			return lexToken
		}
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

// isValidIdent reports whether r is either a letter, a digit or an underscore
func isValidIdent(r rune) bool {
	return unicode.IsDigit(r) || unicode.IsLetter(r) || r == '_'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isSpace reports whether r is a space character.
func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}

func lexNumber(l *lexer) stateFn {
	foundDecimal := false
	digits := 0
	for {
		switch r := l.next(); {
		case r == '.':
			if foundDecimal {
				return l.errorf("multiple decimals in number")
			}
			foundDecimal = true
		case isDigit(r):
			digits++
		default:
			l.backup()
			if digits == 0 {
				return l.errorf("invalid character %q", '.')
			}
			l.emit(TokenNumber)
			return lexToken
		}
	}
}

// lexString scans a single or double quoted string. There are no escape
// sequences, the string ends at the next matching quote.
func lexString(l *lexer) stateFn {
	quote := l.next()
	for {
		switch r := l.next(); r {
		case quote:
			l.emit(TokenString)
			return lexToken
		case eof:
			return l.errorf("unterminated string")
		}
	}
}
