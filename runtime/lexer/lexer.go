// Package lexer implements a pattern-table driven scanner.
//
// A lexicon is an explicit, ordered table of named regular-expression
// fragments, each with a handler that decides what (if anything) to emit
// for the matched text. All fragments are compiled once into a single
// alternation of named groups; scanning always matches at the current
// offset and never skips ahead looking for a match.
package lexer

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	clerrors "github.com/opal-lang/clc/core/errors"
	"github.com/opal-lang/clc/core/invariant"
)

// HandlerFunc receives the text matched by its pattern and may emit
// at most one token through the scan state.
type HandlerFunc func(s *State, text string)

// Pattern binds a regular-expression fragment to a symbolic name and a handler
type Pattern struct {
	Name    string // group name; letters, digits and underscores only
	Regexp  string // fragment without anchors
	Handler HandlerFunc
}

// Option configures a Scanner
type Option func(*Scanner)

// WithLogger sets the debug logger used while scanning
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithState installs a factory for per-scan user state, available to
// handlers as State.Data. The factory runs once per Tokenize call.
func WithState(factory func() interface{}) Option {
	return func(s *Scanner) {
		s.newData = factory
	}
}

// Scanner tokenizes text with a fixed lexicon.
// A Scanner is immutable after construction and safe for concurrent use.
type Scanner struct {
	re       *regexp.Regexp
	patterns []Pattern
	groups   []int // group index per pattern, parallel to patterns
	newData  func() interface{}
	logger   *slog.Logger
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var groupName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NewScanner compiles the lexicon. Patterns are tried in table order and
// fallback last; the fallback is the distinguished default pattern.
func NewScanner(patterns []Pattern, fallback Pattern, opts ...Option) (*Scanner, error) {
	invariant.Precondition(fallback.Regexp != "", "fallback pattern must have a regexp")

	s := &Scanner{logger: discardLogger}
	for _, opt := range opts {
		opt(s)
	}

	all := make([]Pattern, 0, len(patterns)+1)
	all = append(all, patterns...)
	all = append(all, fallback)

	seen := make(map[string]bool, len(all))
	parts := make([]string, len(all))
	for i, p := range all {
		if !groupName.MatchString(p.Name) {
			return nil, fmt.Errorf("invalid pattern name %q", p.Name)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate pattern name %q", p.Name)
		}
		seen[p.Name] = true
		if _, err := regexp.Compile(p.Regexp); err != nil {
			return nil, fmt.Errorf("pattern %s: %w", p.Name, err)
		}
		parts[i] = fmt.Sprintf("(?P<%s>%s)", p.Name, p.Regexp)
	}

	re, err := regexp.Compile(`\A(?:` + strings.Join(parts, "|") + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile lexicon: %w", err)
	}

	s.re = re
	s.patterns = all
	s.groups = make([]int, len(all))
	for i, p := range all {
		s.groups[i] = re.SubexpIndex(p.Name)
		invariant.Postcondition(s.groups[i] > 0, "group %s must exist", p.Name)
	}
	return s, nil
}

// Tokenize scans text into tokens. It fails with a LexicalError when no
// pattern matches at the current offset.
func (s *Scanner) Tokenize(text string) ([]Token, error) {
	st := &State{line: 1}
	if s.newData != nil {
		st.Data = s.newData()
	}

	pos := 0
	for pos < len(text) {
		m := s.re.FindStringSubmatchIndex(text[pos:])
		if m == nil || m[1] == 0 {
			return nil, clerrors.New(clerrors.KindLexical, st.line,
				"no lexeme matches at offset %d near %q", pos, excerpt(text[pos:]))
		}

		p := s.matched(m)
		lexeme := text[pos : pos+m[1]]
		st.offset = pos
		if p.Handler != nil {
			p.Handler(st, lexeme)
		}
		if st.err != nil {
			return nil, st.err
		}

		s.logger.Debug("lexeme", "pattern", p.Name, "text", lexeme, "line", st.line)

		st.line += strings.Count(lexeme, "\n")
		prev := pos
		pos += m[1]
		invariant.Invariant(pos > prev, "scanner must advance (stuck at offset %d)", prev)
	}

	return st.tokens, nil
}

// matched returns the pattern whose group participated in the match
func (s *Scanner) matched(m []int) Pattern {
	for i, g := range s.groups {
		if m[2*g] >= 0 {
			return s.patterns[i]
		}
	}
	invariant.Invariant(false, "a match must belong to some pattern")
	return Pattern{}
}

func excerpt(s string) string {
	if len(s) > 10 {
		s = s[:10]
	}
	return s
}

// State is the mutable scan state handed to handlers
type State struct {
	tokens []Token
	line   int
	offset int
	err    error

	// Data holds lexicon-specific state created by WithState
	Data interface{}
}

// Emit appends a token at the current line
func (s *State) Emit(typ, text string, value interface{}) {
	s.tokens = append(s.tokens, Token{Type: typ, Text: text, Value: value, Line: s.line})
}

// Fail aborts the scan with a LexicalError at the current position
func (s *State) Fail(format string, args ...interface{}) {
	if s.err == nil {
		s.err = clerrors.New(clerrors.KindLexical, s.line, format, args...)
	}
}

// Last returns the most recently emitted token
func (s *State) Last() (Token, bool) {
	if len(s.tokens) == 0 {
		return Token{}, false
	}
	return s.tokens[len(s.tokens)-1], true
}

// Line returns the line of the current match
func (s *State) Line() int {
	return s.line
}

// Offset returns the byte offset of the current match
func (s *State) Offset() int {
	return s.offset
}
