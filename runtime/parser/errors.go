package parser

import (
	clerrors "github.com/opal-lang/clc/core/errors"
	"github.com/opal-lang/clc/runtime/lexer"
)

// syntaxError reports the token at which the chart could not continue
func syntaxError(tok lexer.Token) error {
	if tok.Type == lexer.EOF {
		return clerrors.New(clerrors.KindSyntax, tok.Line, "syntax error: unexpected end of input")
	}
	text := tok.Text
	if text == "" || text == "\n" {
		text = tok.Type
	}
	return clerrors.New(clerrors.KindSyntax, tok.Line, "syntax error at or near %q", text)
}

// ambiguityError reports that the resolver could not choose a parse
func ambiguityError(cands []Candidate, cause error) error {
	line := 0
	names := ""
	for i, c := range cands {
		if i > 0 {
			names += " | "
		}
		names += c.Production.String()
	}
	if cause == nil {
		return clerrors.New(clerrors.KindAmbiguity, line, "ambiguous parse between %s", names)
	}
	return clerrors.Wrap(clerrors.KindAmbiguity, line, cause, "ambiguous parse between %s: %v", names, cause)
}
