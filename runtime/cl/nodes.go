// Package cl holds the CL lexicon and grammar: the data that turns CL
// source text into token streams and syntax trees.
package cl

// Node types. Each is the left-hand side of one or more productions in
// Rules and appears as ast.Node.Type in trees built from them.
const (
	Program    = "program"
	ProcStmt   = "proc_stmt"
	ProcArgs   = "proc_args"
	ParamDecls = "param_decls"
	LocalDecls = "local_decls"
	BodyBlock  = "body_block"

	DeclStmt  = "decl_stmt"
	DeclList  = "decl_list"
	DeclSpec  = "decl_spec"
	DeclVar   = "decl_var"
	VarName   = "var_name"
	InitList  = "init_list"
	InitValue = "init_value"
	Constant  = "constant"
	DeclOpts  = "decl_opts"
	OptList   = "opt_list"
	OptItem   = "opt_item"

	StmtList   = "stmt_list"
	Statement  = "statement"
	SimpleStmt = "simple_stmt"
	Term       = "term"
	OptNL      = "opt_nl"
	Block      = "block"
	IfStmt     = "if_stmt"
	WhileStmt  = "while_stmt"
	ForStmt    = "for_stmt"
	OptAssign  = "opt_assign"
	OptExpr    = "opt_expr"
	SwitchStmt = "switch_stmt"
	CaseList   = "case_list"
	CaseClause = "case_clause"
	ConstList  = "const_list"
	Assignment = "assignment"
	Lvalue     = "lvalue"

	Pipeline    = "pipeline"
	TaskCall    = "task_call"
	CmdArgs     = "cmd_args"
	CmdArg      = "cmd_arg"
	CmdWord     = "cmd_word"
	CallArgs    = "call_args"
	CallArg     = "call_arg"
	Redirs      = "redirs"
	Redir       = "redir"
	RedirTarget = "redir_target"

	Expr       = "expr"
	OrExpr     = "or_expr"
	AndExpr    = "and_expr"
	CmpExpr    = "cmp_expr"
	ConcatExpr = "concat_expr"
	AddExpr    = "add_expr"
	MulExpr    = "mul_expr"
	Unary      = "unary"
	PowExpr    = "pow_expr"
	Primary    = "primary"
	IdentRef   = "ident_ref"
	ArrayRef   = "array_ref"
	ExprList   = "expr_list"
	FuncCall   = "func_call"
	ParenExpr  = "paren_expr"
)

// Terminal token types
const (
	IDENT       = "IDENT"
	TYPE        = "TYPE"
	INTEGER     = "INTEGER"
	FLOAT       = "FLOAT"
	OCTAL       = "OCTAL"
	HEX         = "HEX"
	SEXAGESIMAL = "SEXAGESIMAL"
	STRING      = "STRING"
	BOOL        = "BOOL"
	INDEF       = "INDEF"
	NEWLINE     = "NEWLINE"

	PROCEDURE = "PROCEDURE"
	BEGIN     = "BEGIN"
	END       = "END"
	IF        = "IF"
	ELSE      = "ELSE"
	WHILE     = "WHILE"
	FOR       = "FOR"
	SWITCH    = "SWITCH"
	CASE      = "CASE"
	DEFAULT   = "DEFAULT"
	BREAK     = "BREAK"
	NEXT      = "NEXT"
	RETURN    = "RETURN"
	GOTO      = "GOTO"

	EQEQ     = "EQEQ"
	NE       = "NE"
	LE       = "LE"
	GE       = "GE"
	LT       = "LT"
	GT       = "GT"
	ANDAND   = "ANDAND"
	OROR     = "OROR"
	NOT      = "NOT"
	ASSIGNOP = "ASSIGNOP"
	CONCAT   = "CONCAT"
	POW      = "POW"
	PLUS     = "PLUS"
	MINUS    = "MINUS"
	STAR     = "STAR"
	SLASH    = "SLASH"
	PERCENT  = "PERCENT"
	LPAREN   = "LPAREN"
	RPAREN   = "RPAREN"
	LBRACKET = "LBRACKET"
	RBRACKET = "RBRACKET"
	LBRACE   = "LBRACE"
	RBRACE   = "RBRACE"
	COMMA    = "COMMA"
	SEMI     = "SEMI"
	COLON    = "COLON"
	EQUALS   = "EQUALS"
	PIPE     = "PIPE"
	REDIR    = "REDIR"
)
