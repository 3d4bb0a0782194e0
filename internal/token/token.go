// Package token implements the span-based tokenizer for the filter
// language. It recognizes identifiers (property paths), quoted string
// literals, bare literals (numbers, booleans, null, dates, UUIDs that begin
// with a digit — left unparsed here and handed to internal/coerce later;
// an unquoted UUID that begins with a letter is not read as one literal),
// comparison and
// string-function operator keywords, the two logical keywords, not,
// parens and comma.
package token

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/go-recordquery/recordquery/internal/queryerr"
)

// Kind identifies the lexical class of a Token.
type Kind int

const (
	End Kind = iota
	Property
	Literal
	Operator
	StringFn
	Logical
	Not
	LParen
	RParen
	Comma
)

// Token is one lexical unit. Value holds the token's text as it appeared in
// the input, with two exceptions: keyword tokens (operators, string
// functions, logicals, not) and the bare literals true, false and null hold
// their case-folded lower-case spelling, and quoted string literals have
// escaped quotes collapsed to a single quote character. Pos is the byte
// offset of the token's first character in the original input.
type Token struct {
	Kind  Kind
	Value string
	Pos   int
}

var fold = cases.Fold()

// Tokenizer walks an input string one byte at a time without allocating
// intermediate substrings except where a quoted string's escape sequence
// forces a copy.
type Tokenizer struct {
	input string
	pos   int
	ch    rune
}

// New returns a Tokenizer positioned at the start of input.
func New(input string) *Tokenizer {
	t := &Tokenizer{input: input}
	if len(input) > 0 {
		t.ch = rune(input[0])
	}
	return t
}

func (t *Tokenizer) advance() {
	t.pos++
	if t.pos >= len(t.input) {
		t.ch = 0
		return
	}
	t.ch = rune(t.input[t.pos])
}

func (t *Tokenizer) peek() rune {
	if t.pos+1 >= len(t.input) {
		return 0
	}
	return rune(t.input[t.pos+1])
}

func (t *Tokenizer) skipWhitespace() {
	for t.ch == ' ' || t.ch == '\t' || t.ch == '\n' || t.ch == '\r' {
		t.advance()
	}
}

// All tokenizes the entire input, always terminating with a single End
// token, or returns the first lexical error encountered.
func All(input string) ([]Token, error) {
	t := New(input)
	var out []Token
	for {
		tok, err := t.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == End {
			return out, nil
		}
	}
}

// Next returns the next token, advancing past it.
func (t *Tokenizer) Next() (Token, error) {
	t.skipWhitespace()

	if t.ch == 0 {
		return Token{Kind: End, Pos: t.pos}, nil
	}

	pos := t.pos

	switch {
	case t.ch == '\'' || t.ch == '"':
		return t.readQuoted(pos)
	case t.ch == '(':
		t.advance()
		return Token{Kind: LParen, Value: "(", Pos: pos}, nil
	case t.ch == ')':
		t.advance()
		return Token{Kind: RParen, Value: ")", Pos: pos}, nil
	case t.ch == ',':
		t.advance()
		return Token{Kind: Comma, Value: ",", Pos: pos}, nil
	case unicode.IsDigit(t.ch) || (t.ch == '-' && unicode.IsDigit(t.peek())):
		return t.readBareLiteral(pos), nil
	case unicode.IsLetter(t.ch) || t.ch == '_':
		return t.readIdentifier(pos), nil
	default:
		return Token{}, queryerr.NewInvalidSyntax(string(t.ch), pos)
	}
}

// readQuoted reads a string literal delimited by ' or ". Unquoted dates and
// GUIDs do not pass through here; readBareLiteral reads them.
func (t *Tokenizer) readQuoted(pos int) (Token, error) {
	quote := t.ch
	t.advance()

	// Fast path: scan for the closing quote without an escape. Only fall
	// back to building a new string when an escaped quote is present.
	start := t.pos
	hasEscape := false
	for t.ch != 0 && t.ch != quote {
		if t.ch == '\\' && t.peek() == quote {
			hasEscape = true
			t.advance()
		}
		t.advance()
	}
	if t.ch != quote {
		return Token{}, queryerr.NewInvalidSyntax(t.input[pos:t.pos], pos)
	}
	raw := t.input[start:t.pos]
	t.advance()

	if !hasEscape {
		return Token{Kind: Literal, Value: raw, Pos: pos}, nil
	}

	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) && raw[i+1] == byte(quote) {
			b.WriteByte(raw[i+1])
			i++
			continue
		}
		b.WriteByte(raw[i])
	}
	return Token{Kind: Literal, Value: b.String(), Pos: pos}, nil
}

func (t *Tokenizer) readBareLiteral(pos int) Token {
	start := t.pos
	if t.ch == '-' {
		t.advance()
	}
	for unicode.IsDigit(t.ch) {
		t.advance()
	}
	if t.ch == '.' {
		t.advance()
		for unicode.IsDigit(t.ch) {
			t.advance()
		}
	}
	if t.ch == 'e' || t.ch == 'E' {
		t.advance()
		if t.ch == '+' || t.ch == '-' {
			t.advance()
		}
		for unicode.IsDigit(t.ch) {
			t.advance()
		}
	}
	// Dates and timezone offsets continue past the digits (e.g.
	// 2024-01-15T10:00:00Z); keep consuming the unquoted literal run.
	for isLiteralContinuation(t.ch) {
		t.advance()
	}
	return Token{Kind: Literal, Value: t.input[start:t.pos], Pos: pos}
}

func isLiteralContinuation(ch rune) bool {
	switch {
	case unicode.IsDigit(ch), unicode.IsLetter(ch):
		return true
	case ch == '-' || ch == ':' || ch == '+' || ch == '.':
		return true
	}
	return false
}

func (t *Tokenizer) readIdentifier(pos int) Token {
	start := t.pos
	for t.ch != 0 && (unicode.IsLetter(t.ch) || unicode.IsDigit(t.ch) || t.ch == '_' || t.ch == '.') {
		t.advance()
	}
	word := t.input[start:t.pos]
	folded := fold.String(word)

	if kind, isKeyword := classify(folded); isKeyword {
		return Token{Kind: kind, Value: folded, Pos: pos}
	}

	if folded == "true" || folded == "false" || folded == "null" {
		return Token{Kind: Literal, Value: folded, Pos: pos}
	}

	return Token{Kind: Property, Value: word, Pos: pos}
}

func classify(folded string) (Kind, bool) {
	switch folded {
	case "and", "or":
		return Logical, true
	case "not":
		return Not, true
	case "eq", "ne", "gt", "ge", "lt", "le":
		return Operator, true
	case "contains", "startswith", "endswith":
		return StringFn, true
	}
	return 0, false
}

