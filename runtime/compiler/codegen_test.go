package compiler

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clerrors "github.com/opal-lang/clc/core/errors"
)

const demo = `procedure demo (infile, nlines)

string infile {prompt="Input file"}
int nlines = 10 {min=1, max=100}
bool verbose = no

begin
	int i
	string line

	if (verbose)
		print ("starting ", infile)
	else if (nlines > 50)
		print "many"
	else
		;
	for (i = 1; i <= nlines; i += 1) {
		line = "n" // i
	}
	switch (i) {
	case 1, 2:
		line = "low"
	default:
		line = "high"
	}
end
`

func TestGenerateProcedure(t *testing.T) {
	unit, err := Compile(demo, WithFilename("demo.cl"))
	require.NoError(t, err)

	want := strings.Join([]string{
		"from pyraf import iraf",
		"from pyraf.irafpar import makeIrafPar, IrafParList",
		"from stsci.tools.irafglobals import *",
		"from pyraf.pyrafglobals import *",
		"",
		"def demo(infile=None, nlines=10, verbose=no, mode='al', DOLLARnargs=0, taskObj=None):",
		"",
		"\tVars = IrafParList(taskObj, 'demo', 'demo.cl')",
		"\tVars.addParam(makeIrafPar(infile, datatype='string', name='infile', mode='a', prompt='Input file'))",
		"\tVars.addParam(makeIrafPar(nlines, datatype='int', name='nlines', mode='a', min=1, max=100))",
		"\tVars.addParam(makeIrafPar(verbose, datatype='bool', name='verbose', mode='h'))",
		"\tVars.addParam(makeIrafPar(mode, datatype='string', name='mode', mode='h'))",
		"\tVars.addParam(makeIrafPar(DOLLARnargs, datatype='int', name='$nargs', mode='h'))",
		"\tVars.addParam(makeIrafPar(None, datatype='int', name='i', mode='u'))",
		"\tVars.addParam(makeIrafPar(None, datatype='string', name='line', mode='u'))",
		"",
		"\tif Vars.verbose:",
		"\t\tiraf.clPrint('starting ', Vars.infile)",
		"\telif Vars.nlines > 50:",
		"\t\tiraf.clPrint('many')",
		"\telse:",
		"\t\tpass",
		"\tVars.i = 1",
		"\twhile Vars.i <= Vars.nlines:",
		"\t\tVars.line = 'n' + str(Vars.i)",
		"\t\tVars.i += 1",
		"\tSwitchVal1 = Vars.i",
		"\tif SwitchVal1 in (1, 2,):",
		"\t\tVars.line = 'low'",
		"\telse:",
		"\t\tVars.line = 'high'",
		"",
	}, "\n")
	if diff := cmp.Diff(want, unit.Code); diff != "" {
		t.Errorf("generated code mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "demo", unit.ProcName)
	assert.True(t, unit.HasProc)
	assert.Equal(t, "demo.cl", unit.Filename)
	assert.Equal(t, []string{"infile", "nlines", "verbose", "mode", "$nargs"}, unit.Params.Names())
	require.Len(t, unit.Locals, 2)
	assert.Empty(t, unit.Warnings)
}

// body compiles src and returns the generated statements after the
// parameter setup
func body(t *testing.T, src string, opts ...Option) string {
	t.Helper()
	unit, err := Compile(src, opts...)
	require.NoError(t, err)
	lines := strings.Split(unit.Code, "\n")
	start := 0
	for i, l := range lines {
		if strings.HasPrefix(l, "\tVars.addParam(") || strings.HasPrefix(l, "\tVars = ") ||
			strings.HasPrefix(l, "\tPkgName = ") {
			start = i + 1
		}
	}
	return strings.TrimLeft(strings.Join(lines[start:], "\n"), "\n")
}

func TestGenerateStatements(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "empty for loop",
			src:  "int i\nfor (; i < 3; ) {\n\tprint (i)\n}\n",
			want: "\twhile Vars.i < 3:\n\t\tiraf.clPrint(Vars.i)\n",
		},
		{
			name: "for without test",
			src:  "int i\nfor (i = 0; ; i += 1)\n\tbreak\n",
			want: "\tVars.i = 0\n\twhile 1:\n\t\tbreak\n\t\tVars.i += 1\n",
		},
		{
			name: "while with next",
			src:  "int i\nwhile (i < 3) {\n\ti += 1\n\tnext\n}\n",
			want: "\twhile Vars.i < 3:\n\t\tVars.i += 1\n\t\tcontinue\n",
		},
		{
			name: "empty block",
			src:  "int i\nwhile (i < 3) {\n}\n",
			want: "\twhile Vars.i < 3:\n\t\tpass\n",
		},
		{
			name: "default only switch",
			src:  "int i\nswitch (i) {\ndefault:\n\ti = 1\n}\n",
			want: "\tSwitchVal1 = Vars.i\n\tif 1:\n\t\tVars.i = 1\n",
		},
		{
			name: "pipe",
			src:  "head data nlines=1 | tail\n",
			want: "\tPipe1 = iraf.head('data', nlines=1, Stdout=1)\n\tiraf.tail(Stdin=Pipe1)\n\tdel Pipe1\n",
		},
		{
			name: "three stage pipe",
			src:  "a | b | c\n",
			want: "\tPipe1 = iraf.a(Stdout=1)\n\tPipe2 = iraf.b(Stdin=Pipe1, Stdout=1)\n\tdel Pipe1\n" +
				"\tiraf.c(Stdin=Pipe2)\n\tdel Pipe2\n",
		},
		{
			name: "command mode",
			src:  "imhead infile long+ > dev$null\n",
			want: "\tiraf.imhead('infile', long=yes, Stdout='dev$null')\n",
		},
		{
			name: "redirections",
			src:  "print (\"x\") >> log >& \"e\" < (f)\n",
			want: "\tiraf.clPrint('x', StdoutAppend='log', Stderr='e', Stdin=taskObj.f)\n",
		},
		{
			name: "nested call arguments",
			src:  "print (substr (s, 1, 2), \"x\", verbose-)\n",
			want: "\tiraf.clPrint(iraf.substr(taskObj.s, 1, 2), 'x', verbose=no)\n",
		},
		{
			name: "redundant parentheses",
			src:  "print ((1 + 2))\n",
			want: "\tiraf.clPrint(1 + 2)\n",
		},
		{
			name: "package",
			src:  "package mypkg\n",
			want: "\tPkgName, PkgBinary = iraf.package('mypkg', PkgName=PkgName,\n\t\tPkgBinary=PkgBinary)\n",
		},
		{
			name: "task",
			src:  "task foo = \"foo.cl\"\n",
			want: "\tiraf.task(foo='foo.cl', PkgName=PkgName, PkgBinary=PkgBinary)\n",
		},
		{
			name: "renamed tasks",
			src:  "cd home$\nerror (1, \"bad\")\nprintf (\"%d\\n\", 3)\n",
			want: "\tiraf.clChdir('home$')\n\tiraf.clError(1, 'bad')\n\tiraf.clPrintf('%d\\n', 3)\n",
		},
		{
			name: "wrapping",
			src:  `print ("aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc", "dddddddddd", "eeeeeeeeee", "ffffffffff")` + "\n",
			want: "\tiraf.clPrint('aaaaaaaaaa', 'bbbbbbbbbb', 'cccccccccc', 'dddddddddd',\n" +
				"\t\t'eeeeeeeeee', 'ffffffffff')\n",
		},
		{
			name: "scan arguments by name",
			src:  "struct *list\nstring line\nwhile (fscan (list, line) != EOF)\n\tprint (line)\n",
			want: "\twhile iraf.fscan(locals(), 'Vars.list', 'Vars.line') != EOF:\n\t\tiraf.clPrint(Vars.line)\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, body(t, tt.src)); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGenerateExpressions(t *testing.T) {
	tests := []struct {
		name string
		decl string
		stmt string
		want string
	}{
		{"float to int", "int n", "n = 2.5", "Vars.n = iraf.integer(2.5)"},
		{"int to float", "int n\nreal r", "r = n", "Vars.r = float(Vars.n)"},
		{"string to bool", "bool b", "b = \"yes\"", "Vars.b = iraf.boolean('yes')"},
		{"int to string", "string s", "s = 3", "Vars.s = str(3)"},
		{"bool to string", "string s", "s = yes", "Vars.s = iraf.bool2str(yes)"},
		{"indef passes", "int n", "n = INDEF", "Vars.n = INDEF"},
		{"string plus int", "string s", "s = \"a\" + 3", "Vars.s = 'a' + str(3)"},
		{"integer division", "int a, b", "a = a / b", "Vars.a = Vars.a // Vars.b"},
		{"float division", "real r", "r = r / 2", "Vars.r = Vars.r / 2"},
		{"divide assign", "int a", "a /= 2", "Vars.a //= 2"},
		{"concat assign", "string s", "s //= \"x\"", "Vars.s = Vars.s + 'x'"},
		{"logical", "int a\nbool b", "b = a && !b", "Vars.b = iraf.boolean(Vars.a) and (not Vars.b)"},
		{"or", "bool b", "b = b || no", "Vars.b = Vars.b or no"},
		{"power", "real r", "r = r ** 2", "Vars.r = Vars.r ** 2"},
		{"modulo", "int a", "a = a % 3", "Vars.a = Vars.a % 3"},
		{"negation", "int a", "a = -a + 1", "Vars.a = -Vars.a + 1"},
		{"parentheses", "int a", "a = (a + 1) * 2", "Vars.a = (Vars.a + 1) * 2"},
		{"literals", "real r", "r = 1.5D2 + 017", "Vars.r = 1.5E2 + 17"},
		{"sexagesimal", "real r", "r = 12:30", "Vars.r = iraf.clSexagesimal(12, 30)"},
		{"array literal index", "real c[3]", "c[2] = c[1]", "Vars.c[1] = Vars.c[0]"},
		{"array expression index", "real c[3]\nint i", "c[i] = c[i + 1]", "Vars.c[Vars.i-1] = Vars.c[(Vars.i + 1)-1]"},
		{"parameter field", "int n\nint m", "m = n.p_max", "Vars.m = Vars.getParObject('n').p_max"},
		{"unbound name", "int n", "n = other", "Vars.n = taskObj.other"},
		{"task parameter", "string s", "s = imhead.long", "Vars.s = iraf.imhead.long"},
		{"task parameter field", "string s", "s = imhead.long.p_prompt", "Vars.s = iraf.imhead.getParObject('long').p_prompt"},
		{"python keyword", "int in", "in = 1", "Vars.PYin = 1"},
		{"nargs", "int n", "n = $nargs", "Vars.n = Vars.DOLLARnargs"},
		{"type function", "int n\nreal r", "r = real (n) + int (r)", "Vars.r = iraf.real(Vars.n) + iraf.integer(Vars.r)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := body(t, tt.decl+"\n"+tt.stmt+"\n")
			assert.Equal(t, "\t"+tt.want+"\n", got)
		})
	}
}

func TestGenerateSingleMode(t *testing.T) {
	assert.Equal(t, "\tiraf.x = iraf.y\n", body(t, "x = y\n", WithMode(ModeSingle)))
	assert.Equal(t, "\ttaskObj.x = taskObj.y\n", body(t, "x = y\n", WithMode(ModeProcedure)))
}

func TestGeneratePackageHeader(t *testing.T) {
	unit, err := Compile("package mypkg\n")
	require.NoError(t, err)
	assert.Contains(t, unit.Code, "\tPkgName = iraf.curpack(); PkgBinary = iraf.curPkgbinary()\n")

	unit, err = Compile("print 1\n")
	require.NoError(t, err)
	assert.NotContains(t, unit.Code, "PkgName")
}

func TestGenerateHeaderMetadata(t *testing.T) {
	src := `procedure p
real c[2] = 1., 2.
struct *list
string color = "red" {enum="red|green", length=8}
begin
	int k = 4
end
`
	unit, err := Compile(src)
	require.NoError(t, err)
	for _, want := range []string{
		"def p(c=[1.0, 2.0], list=None, color='red', mode='al', DOLLARnargs=0, taskObj=None):",
		"\tVars = IrafParList(taskObj, 'p', 'p')",
		"\tVars.addParam(makeIrafPar(c, datatype='real', name='c', array_size=(2,), mode='h'))",
		"\tVars.addParam(makeIrafPar(list, datatype='struct', name='list', list_flag=1, mode='h'))",
		"\tVars.addParam(makeIrafPar(color, datatype='string', name='color', mode='h', enum='red|green', length=8))",
		"\tVars.addParam(makeIrafPar(4, datatype='int', name='k', mode='u'))",
	} {
		assert.Contains(t, unit.Code, want+"\n")
	}
}

func TestGenerateWarnings(t *testing.T) {
	unit, err := Compile("procedure p\nint n = 0 {min=1}\nbegin\ndone: return\nend\n")
	require.NoError(t, err)
	require.Len(t, unit.Warnings, 2)
	assert.Contains(t, unit.Warnings[0], "default value 0 of 'n' is invalid")
	assert.Equal(t, "label 'done' ignored (line 4)", unit.Warnings[1])
	assert.Contains(t, unit.Code, "\treturn\n")
	assert.True(t, strings.HasSuffix(unit.Code, "# Warning: label 'done' ignored (line 4)\n"))
}

func TestGenerateGoto(t *testing.T) {
	_, err := Compile("procedure p\nbegin\ngoto done\nx = 1\ngoto again\nend\n")
	require.Error(t, err)
	assert.True(t, clerrors.Is(err, clerrors.KindGeneration))
	assert.True(t, clerrors.Is(err, clerrors.KindSyntax))
	assert.Equal(t, "GOTO is not supported (line 3)\nGOTO is not supported (line 5)", err.Error())
}

func TestWithTranslation(t *testing.T) {
	g := &generator{translate: map[string]string{"COMMA": ", "}}
	g.withTranslation("COMMA", argSep, func() {
		assert.Equal(t, argSep, g.translate["COMMA"])
		g.withTranslation("COMMA", "; ", func() {
			assert.Equal(t, "; ", g.translate["COMMA"])
		})
		assert.Equal(t, argSep, g.translate["COMMA"])
	})
	assert.Equal(t, ", ", g.translate["COMMA"])

	assert.Panics(t, func() {
		g.withTranslation("COMMA", "x", func() { panic("boom") })
	})
	assert.Equal(t, ", ", g.translate["COMMA"])

	g.withTranslation("SEMI", ";", func() {})
	_, ok := g.translate["SEMI"]
	assert.False(t, ok)
}

func TestStripParens(t *testing.T) {
	tests := map[string]string{
		"(a)":       "a",
		"((a + b))": "a + b",
		"(a) + (b)": "(a) + (b)",
		"f(x)":      "f(x)",
		"(')')":     "')'",
		"('(' + x)": "'(' + x",
		"":          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, stripParens(in), "stripParens(%q)", in)
	}
}
