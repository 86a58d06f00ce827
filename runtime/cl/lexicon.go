package cl

import (
	"strings"
	"sync"

	"github.com/opal-lang/clc/runtime/lexer"
)

var keywords = map[string]string{
	"procedure": PROCEDURE,
	"begin":     BEGIN,
	"end":       END,
	"if":        IF,
	"else":      ELSE,
	"while":     WHILE,
	"for":       FOR,
	"switch":    SWITCH,
	"case":      CASE,
	"default":   DEFAULT,
	"break":     BREAK,
	"next":      NEXT,
	"return":    RETURN,
	"goto":      GOTO,
	"yes":       BOOL,
	"no":        BOOL,
	"INDEF":     INDEF,
}

// TypeNames are the CL declaration types, lexed as TYPE tokens
var TypeNames = []string{
	"int", "real", "double", "char", "string", "bool",
	"file", "struct", "gcur", "imcur", "ukey", "pset",
}

var typeNames = func() map[string]bool {
	m := make(map[string]bool, len(TypeNames))
	for _, t := range TypeNames {
		m[t] = true
	}
	return m
}()

// scanState tracks nesting so newlines inside () and [] are ignored
type scanState struct {
	depth int
}

// newlineEnds reports whether a newline after a token of type typ ends
// a statement. Newlines are insignificant after tokens that cannot end
// one.
func newlineEnds(typ string) bool {
	switch typ {
	case NEWLINE, SEMI, LBRACE, COMMA, PIPE, ELSE, BEGIN:
		return false
	}
	return true
}

func emit(typ string) lexer.HandlerFunc {
	return func(s *lexer.State, text string) {
		s.Emit(typ, text, nil)
	}
}

func open(typ string) lexer.HandlerFunc {
	return func(s *lexer.State, text string) {
		s.Data.(*scanState).depth++
		s.Emit(typ, text, nil)
	}
}

func closer(typ string) lexer.HandlerFunc {
	return func(s *lexer.State, text string) {
		if st := s.Data.(*scanState); st.depth > 0 {
			st.depth--
		}
		s.Emit(typ, text, nil)
	}
}

func name(s *lexer.State, text string) {
	if kw, ok := keywords[text]; ok {
		s.Emit(kw, text, nil)
		return
	}
	if typeNames[text] {
		s.Emit(TYPE, text, text)
		return
	}
	s.Emit(IDENT, text, nil)
}

func newline(s *lexer.State, text string) {
	if s.Data.(*scanState).depth > 0 {
		return
	}
	last, ok := s.Last()
	if !ok || !newlineEnds(last.Type) {
		return
	}
	s.Emit(NEWLINE, text, nil)
}

func quoted(s *lexer.State, text string) {
	s.Emit(STRING, text, Unquote(text))
}

// Unquote strips the delimiters of a CL string literal and resolves its
// backslash escapes
func Unquote(text string) string {
	if len(text) < 2 {
		return text
	}
	body := text[1 : len(text)-1]
	if !strings.Contains(body, `\`) {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'f':
			b.WriteByte('\f')
		case '\n':
			// escaped newline continues the string
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String()
}

const identRE = `[A-Za-z_$][A-Za-z0-9_$]*`

// Lexicon returns the CL pattern table and its whitespace fallback.
// Patterns are ordered so longer operators are tried before their
// prefixes.
func Lexicon() ([]lexer.Pattern, lexer.Pattern) {
	patterns := []lexer.Pattern{
		{Name: "comment", Regexp: `#[^\n]*`},
		{Name: "continuation", Regexp: `\\\r?\n`},
		{Name: "newline", Regexp: `\r?\n`, Handler: newline},
		{Name: "dstring", Regexp: `"(?:[^"\\\n]|\\(?:.|\n))*"`, Handler: quoted},
		{Name: "sstring", Regexp: `'(?:[^'\\\n]|\\(?:.|\n))*'`, Handler: quoted},
		{Name: "sexagesimal", Regexp: `[0-9]+:[0-9]+(?::[0-9]+(?:\.[0-9]*)?)?`, Handler: emit(SEXAGESIMAL)},
		{Name: "float", Regexp: `(?:[0-9]+\.[0-9]*|\.[0-9]+)(?:[eEdD][+-]?[0-9]+)?|[0-9]+[eEdD][+-]?[0-9]+`, Handler: emit(FLOAT)},
		{Name: "octal", Regexp: `[0-7]+b\b`, Handler: emit(OCTAL)},
		{Name: "hex", Regexp: `[0-9][0-9a-fA-F]*[xX]\b`, Handler: emit(HEX)},
		{Name: "integer", Regexp: `[0-9]+`, Handler: emit(INTEGER)},
		{Name: "name", Regexp: identRE + `(?:\.` + identRE + `)*`, Handler: name},

		{Name: "eqeq", Regexp: `==`, Handler: emit(EQEQ)},
		{Name: "ne", Regexp: `!=`, Handler: emit(NE)},
		{Name: "le", Regexp: `<=`, Handler: emit(LE)},
		{Name: "ge", Regexp: `>=`, Handler: emit(GE)},
		{Name: "redir", Regexp: `>>&|>&|>>[GIP]\b|>[GIP]\b|>>`, Handler: emit(REDIR)},
		{Name: "lt", Regexp: `<`, Handler: emit(LT)},
		{Name: "gt", Regexp: `>`, Handler: emit(GT)},
		{Name: "andand", Regexp: `&&`, Handler: emit(ANDAND)},
		{Name: "oror", Regexp: `\|\|`, Handler: emit(OROR)},
		{Name: "not", Regexp: `!`, Handler: emit(NOT)},
		{Name: "assignop", Regexp: `\+=|-=|\*=|//=|/=`, Handler: emit(ASSIGNOP)},
		{Name: "concat", Regexp: `//`, Handler: emit(CONCAT)},
		{Name: "pow", Regexp: `\*\*`, Handler: emit(POW)},
		{Name: "plus", Regexp: `\+`, Handler: emit(PLUS)},
		{Name: "minus", Regexp: `-`, Handler: emit(MINUS)},
		{Name: "star", Regexp: `\*`, Handler: emit(STAR)},
		{Name: "slash", Regexp: `/`, Handler: emit(SLASH)},
		{Name: "percent", Regexp: `%`, Handler: emit(PERCENT)},
		{Name: "lparen", Regexp: `\(`, Handler: open(LPAREN)},
		{Name: "rparen", Regexp: `\)`, Handler: closer(RPAREN)},
		{Name: "lbracket", Regexp: `\[`, Handler: open(LBRACKET)},
		{Name: "rbracket", Regexp: `\]`, Handler: closer(RBRACKET)},
		{Name: "lbrace", Regexp: `\{`, Handler: emit(LBRACE)},
		{Name: "rbrace", Regexp: `\}`, Handler: emit(RBRACE)},
		{Name: "comma", Regexp: `,`, Handler: emit(COMMA)},
		{Name: "semi", Regexp: `;`, Handler: emit(SEMI)},
		{Name: "colon", Regexp: `:`, Handler: emit(COLON)},
		{Name: "equals", Regexp: `=`, Handler: emit(EQUALS)},
		{Name: "pipe", Regexp: `\|`, Handler: emit(PIPE)},
	}
	return patterns, lexer.Pattern{Name: "whitespace", Regexp: `[ \t\r\f]+`}
}

// NewScanner builds a scanner for the CL lexicon
func NewScanner(opts ...lexer.Option) (*lexer.Scanner, error) {
	patterns, fallback := Lexicon()
	opts = append([]lexer.Option{lexer.WithState(func() interface{} { return &scanState{} })}, opts...)
	return lexer.NewScanner(patterns, fallback, opts...)
}

var (
	sharedOnce    sync.Once
	sharedScanner *lexer.Scanner
	sharedErr     error
)

// Tokenize scans CL source with a shared scanner. A final NEWLINE is
// appended when the source does not end a statement itself.
func Tokenize(src string) ([]lexer.Token, error) {
	sharedOnce.Do(func() {
		sharedScanner, sharedErr = NewScanner()
	})
	if sharedErr != nil {
		return nil, sharedErr
	}
	return Terminate(sharedScanner.Tokenize(src))
}

// Terminate appends the closing NEWLINE to a token stream when needed.
// It passes errors through so it can wrap Scanner.Tokenize directly.
func Terminate(tokens []lexer.Token, err error) ([]lexer.Token, error) {
	if err != nil {
		return nil, err
	}
	if n := len(tokens); n > 0 && newlineEnds(tokens[n-1].Type) {
		tokens = append(tokens, lexer.Token{Type: NEWLINE, Text: "\n", Line: tokens[n-1].Line})
	}
	return tokens, nil
}
