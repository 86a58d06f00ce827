package lexer

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	clerrors "github.com/opal-lang/clc/core/errors"
)

func emit(typ string) HandlerFunc {
	return func(s *State, text string) {
		s.Emit(typ, text, nil)
	}
}

var whitespace = Pattern{Name: "ws", Regexp: `[ \t\n]+`}

func testScanner(t *testing.T, opts ...Option) *Scanner {
	t.Helper()
	s, err := NewScanner([]Pattern{
		{Name: "number", Regexp: `[0-9]+`, Handler: emit("NUM")},
		{Name: "name", Regexp: `[a-z]+`, Handler: emit("IDENT")},
		{Name: "plus", Regexp: `\+`, Handler: emit("PLUS")},
		{Name: "comment", Regexp: `#[^\n]*`},
	}, whitespace, opts...)
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	return s
}

func TestTokenize(t *testing.T) {
	s := testScanner(t)

	got, err := s.Tokenize("abc + 12 # trailing\n  x+3\n")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []Token{
		{Type: "IDENT", Text: "abc", Line: 1},
		{Type: "PLUS", Text: "+", Line: 1},
		{Type: "NUM", Text: "12", Line: 1},
		{Type: "IDENT", Text: "x", Line: 2},
		{Type: "PLUS", Text: "+", Line: 2},
		{Type: "NUM", Text: "3", Line: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeEmpty(t *testing.T) {
	s := testScanner(t)
	got, err := s.Tokenize("")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no tokens, got %v", got)
	}
}

func TestTokenizeNoMatch(t *testing.T) {
	s := testScanner(t)

	_, err := s.Tokenize("ab\n  12 @x")
	if err == nil {
		t.Fatal("expected error")
	}
	if !clerrors.Is(err, clerrors.KindLexical) {
		t.Errorf("expected LexicalError, got %v", err)
	}
	want := `no lexeme matches at offset 8 near "@x" (line 2)`
	if diff := cmp.Diff(want, err.Error()); diff != "" {
		t.Errorf("error mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeEmptyMatch(t *testing.T) {
	s, err := NewScanner([]Pattern{
		{Name: "maybe", Regexp: `a*`, Handler: emit("A")},
	}, Pattern{Name: "ws", Regexp: ` +`})
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	_, err = s.Tokenize("aab")
	if !clerrors.Is(err, clerrors.KindLexical) {
		t.Fatalf("expected LexicalError for empty match, got %v", err)
	}
}

func TestPatternOrder(t *testing.T) {
	s, err := NewScanner([]Pattern{
		{Name: "power", Regexp: `\*\*`, Handler: emit("POW")},
		{Name: "star", Regexp: `\*`, Handler: emit("STAR")},
	}, whitespace)
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	got, err := s.Tokenize("** *")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	var types []string
	for _, tok := range got {
		types = append(types, tok.Type)
	}
	if diff := cmp.Diff([]string{"POW", "STAR"}, types); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}
}

func TestStateAndFail(t *testing.T) {
	type depth struct{ n int }

	s, err := NewScanner([]Pattern{
		{Name: "open", Regexp: `\(`, Handler: func(s *State, text string) {
			s.Data.(*depth).n++
			s.Emit("LPAREN", text, s.Data.(*depth).n)
		}},
		{Name: "close", Regexp: `\)`, Handler: func(s *State, text string) {
			d := s.Data.(*depth)
			if d.n == 0 {
				s.Fail("unbalanced %q at offset %d", text, s.Offset())
				return
			}
			d.n--
			s.Emit("RPAREN", text, d.n)
		}},
	}, whitespace, WithState(func() interface{} { return &depth{} }))
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}

	got, err := s.Tokenize("(( ))")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	var values []interface{}
	for _, tok := range got {
		values = append(values, tok.Value)
	}
	if diff := cmp.Diff([]interface{}{1, 2, 1, 0}, values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	// Each Tokenize call gets fresh state.
	_, err = s.Tokenize("\n)")
	if err == nil {
		t.Fatal("expected error")
	}
	if diff := cmp.Diff(`unbalanced ")" at offset 1 (line 2)`, err.Error()); diff != "" {
		t.Errorf("error mismatch (-want +got):\n%s", diff)
	}
}

func TestNewScannerErrors(t *testing.T) {
	tests := []struct {
		name     string
		patterns []Pattern
		want     string
	}{
		{"bad name", []Pattern{{Name: "has-dash", Regexp: `x`}}, `invalid pattern name "has-dash"`},
		{"duplicate", []Pattern{{Name: "a", Regexp: `x`}, {Name: "a", Regexp: `y`}}, `duplicate pattern name "a"`},
		{"fallback clash", []Pattern{{Name: "ws", Regexp: `x`}}, `duplicate pattern name "ws"`},
		{"bad regexp", []Pattern{{Name: "a", Regexp: `(`}}, "pattern a:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScanner(tt.patterns, whitespace)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.HasPrefix(err.Error(), tt.want) {
				t.Errorf("error %q does not start with %q", err.Error(), tt.want)
			}
		})
	}
}

func TestTokenIdentity(t *testing.T) {
	a := Token{Type: "IDENT", Text: "x", Line: 1}
	b := Token{Type: "IDENT", Text: "y", Line: 9}
	c := Token{Type: "NUM", Text: "x", Line: 1}

	if !a.Equal(b) || a.Key() != b.Key() {
		t.Error("tokens of the same type must be equal")
	}
	if a.Equal(c) {
		t.Error("tokens of different types must differ")
	}
	if diff := cmp.Diff(`IDENT("x")`, a.String()); diff != "" {
		t.Errorf("String mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("EOF", Token{Type: EOF}.String()); diff != "" {
		t.Errorf("String mismatch (-want +got):\n%s", diff)
	}
}
