package cl

import (
	"sync"

	"github.com/opal-lang/clc/core/ast"
	"github.com/opal-lang/clc/runtime/parser"
)

// Start is the grammar's start symbol
const Start = Program

// Rules is the CL grammar. Reductions are left nil: trees are built by
// ast.Builder, which supplies its own.
var Rules = []parser.Rule{
	{Name: "program", Spec: `
		program ::= proc_stmt param_decls body_block
		program ::= local_decls stmt_list`},
	{Name: "procedure", Spec: `
		proc_stmt ::= PROCEDURE IDENT term
		proc_stmt ::= PROCEDURE IDENT LPAREN RPAREN term
		proc_stmt ::= PROCEDURE IDENT LPAREN proc_args RPAREN term
		proc_args ::= IDENT
		proc_args ::= proc_args COMMA IDENT`},
	{Name: "declarations", Spec: `
		param_decls ::=
		param_decls ::= param_decls decl_stmt
		local_decls ::=
		local_decls ::= local_decls decl_stmt
		decl_stmt ::= TYPE decl_list term
		decl_list ::= decl_spec
		decl_list ::= decl_list COMMA decl_spec
		decl_spec ::= decl_var
		decl_spec ::= decl_var decl_opts
		decl_var ::= var_name
		decl_var ::= var_name EQUALS init_list
		var_name ::= IDENT
		var_name ::= STAR IDENT
		var_name ::= IDENT LBRACKET INTEGER RBRACKET
		init_list ::= init_value
		init_list ::= init_list COMMA init_value
		init_value ::= constant
		init_value ::= MINUS constant
		init_value ::= PLUS constant`},
	{Name: "options", Spec: `
		decl_opts ::= LBRACE opt_nl RBRACE
		decl_opts ::= LBRACE opt_list opt_nl RBRACE
		opt_list ::= opt_item
		opt_list ::= opt_list COMMA opt_item
		opt_item ::= IDENT EQUALS init_value
		opt_item ::= init_value`},
	{Name: "constant", Spec: `
		constant ::= INTEGER
		constant ::= FLOAT
		constant ::= OCTAL
		constant ::= HEX
		constant ::= SEXAGESIMAL
		constant ::= STRING
		constant ::= BOOL
		constant ::= INDEF`},
	{Name: "body", Spec: `
		body_block ::= BEGIN opt_nl local_decls stmt_list END opt_nl
		stmt_list ::=
		stmt_list ::= stmt_list statement
		term ::= NEWLINE
		term ::= SEMI
		opt_nl ::=
		opt_nl ::= NEWLINE`},
	{Name: "statement", Spec: `
		statement ::= simple_stmt term
		statement ::= block
		statement ::= if_stmt
		statement ::= while_stmt
		statement ::= for_stmt
		statement ::= switch_stmt
		statement ::= SEMI
		statement ::= IDENT COLON opt_nl statement
		simple_stmt ::= assignment
		simple_stmt ::= pipeline
		simple_stmt ::= BREAK
		simple_stmt ::= NEXT
		simple_stmt ::= RETURN
		simple_stmt ::= GOTO IDENT
		block ::= LBRACE stmt_list RBRACE opt_nl
		block ::= LBRACE stmt_list simple_stmt RBRACE opt_nl`},
	{Name: "control", Spec: `
		if_stmt ::= IF LPAREN expr RPAREN opt_nl statement
		if_stmt ::= IF LPAREN expr RPAREN opt_nl statement ELSE opt_nl statement
		while_stmt ::= WHILE LPAREN expr RPAREN opt_nl statement
		for_stmt ::= FOR LPAREN opt_assign SEMI opt_expr SEMI opt_assign RPAREN opt_nl statement
		opt_assign ::=
		opt_assign ::= assignment
		opt_expr ::=
		opt_expr ::= expr
		switch_stmt ::= SWITCH LPAREN expr RPAREN opt_nl LBRACE case_list RBRACE opt_nl
		case_list ::= case_clause
		case_list ::= case_list case_clause
		case_clause ::= CASE const_list COLON opt_nl statement
		case_clause ::= DEFAULT COLON opt_nl statement
		const_list ::= init_value
		const_list ::= const_list COMMA init_value`},
	{Name: "assignment", Spec: `
		assignment ::= lvalue EQUALS expr
		assignment ::= lvalue ASSIGNOP expr
		lvalue ::= IDENT
		lvalue ::= IDENT LBRACKET expr_list RBRACKET`},
	{Name: "task", Spec: `
		pipeline ::= task_call
		pipeline ::= pipeline PIPE task_call
		task_call ::= IDENT LPAREN RPAREN redirs
		task_call ::= IDENT LPAREN call_args RPAREN redirs
		task_call ::= IDENT cmd_args redirs
		cmd_args ::=
		cmd_args ::= cmd_args cmd_arg
		cmd_arg ::= constant
		cmd_arg ::= cmd_word
		cmd_arg ::= IDENT EQUALS constant
		cmd_arg ::= IDENT EQUALS cmd_word
		cmd_arg ::= IDENT PLUS
		cmd_arg ::= IDENT MINUS
		cmd_word ::= IDENT
		call_args ::= call_arg
		call_args ::= call_args COMMA call_arg
		call_arg ::= expr
		call_arg ::= IDENT EQUALS expr
		call_arg ::= IDENT PLUS
		call_arg ::= IDENT MINUS
		redirs ::=
		redirs ::= redirs redir
		redir ::= GT redir_target
		redir ::= LT redir_target
		redir ::= REDIR redir_target
		redir_target ::= STRING
		redir_target ::= IDENT
		redir_target ::= LPAREN expr RPAREN`},
	{Name: "expression", Spec: `
		expr ::= or_expr
		or_expr ::= or_expr OROR and_expr
		or_expr ::= and_expr
		and_expr ::= and_expr ANDAND cmp_expr
		and_expr ::= cmp_expr
		cmp_expr ::= concat_expr EQEQ concat_expr
		cmp_expr ::= concat_expr NE concat_expr
		cmp_expr ::= concat_expr LT concat_expr
		cmp_expr ::= concat_expr LE concat_expr
		cmp_expr ::= concat_expr GT concat_expr
		cmp_expr ::= concat_expr GE concat_expr
		cmp_expr ::= concat_expr
		concat_expr ::= concat_expr CONCAT add_expr
		concat_expr ::= add_expr
		add_expr ::= add_expr PLUS mul_expr
		add_expr ::= add_expr MINUS mul_expr
		add_expr ::= mul_expr
		mul_expr ::= mul_expr STAR unary
		mul_expr ::= mul_expr SLASH unary
		mul_expr ::= mul_expr PERCENT unary
		mul_expr ::= unary
		unary ::= MINUS unary
		unary ::= PLUS unary
		unary ::= NOT unary
		unary ::= pow_expr
		pow_expr ::= primary POW unary
		pow_expr ::= primary`},
	{Name: "primary", Spec: `
		primary ::= constant
		primary ::= ident_ref
		primary ::= array_ref
		primary ::= func_call
		primary ::= paren_expr
		ident_ref ::= IDENT
		array_ref ::= IDENT LBRACKET expr_list RBRACKET
		expr_list ::= expr
		expr_list ::= expr_list COMMA expr
		func_call ::= IDENT LPAREN RPAREN
		func_call ::= IDENT LPAREN call_args RPAREN
		func_call ::= TYPE LPAREN call_args RPAREN
		paren_expr ::= LPAREN expr RPAREN`},
}

var (
	builderOnce sync.Once
	builder     *ast.Builder
	builderErr  error
)

// NewBuilder builds a tree builder for the CL grammar
func NewBuilder(opts ...parser.ParserOpt) (*ast.Builder, error) {
	return ast.NewBuilder(Start, Rules, opts...)
}

// Parse tokenizes and parses CL source with a shared builder
func Parse(src string) (*ast.Node, error) {
	builderOnce.Do(func() {
		builder, builderErr = NewBuilder()
	})
	if builderErr != nil {
		return nil, builderErr
	}
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return builder.Build(tokens)
}
