package lexer

import "fmt"

// EOF is the token type of the end-of-input sentinel appended by the parser
const EOF = "EOF"

// Token represents a lexical token.
//
// Type is the grammar terminal the token matches. Text is the raw lexeme
// and Value an optional decoded form (the unquoted body of a string, for
// example). Token identity is its Type alone: two tokens of the same type
// are interchangeable to the parser regardless of their text.
type Token struct {
	Type  string
	Text  string
	Value interface{}
	Line  int // 1-based line number
}

// Key returns the value used for hashing a token (its type)
func (t Token) Key() string {
	return t.Type
}

// Equal reports whether two tokens have the same type
func (t Token) Equal(other Token) bool {
	return t.Type == other.Type
}

// String returns a debugging representation of the token
func (t Token) String() string {
	if t.Text == "" || t.Text == t.Type {
		return t.Type
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Text)
}
