package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opal-lang/clc/runtime/cache"
	"github.com/opal-lang/clc/runtime/compiler"
)

const script = "procedure p\nbegin\n\tprint 1\nend\n"

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "p.cl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestCompileCommand(t *testing.T) {
	path := writeScript(t, script)

	out, _, err := execute(t, "", "compile", path)
	require.NoError(t, err)
	assert.Contains(t, out, "def p(mode='al', DOLLARnargs=0, taskObj=None):\n")
	assert.Contains(t, out, "\tiraf.clPrint(1)\n")

	dest := filepath.Join(t.TempDir(), "p.py")
	quiet, _, err := execute(t, "", "compile", path, "-o", dest)
	require.NoError(t, err)
	assert.Empty(t, quiet)
	written, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, out, string(written))
}

func TestCompileStdin(t *testing.T) {
	out, _, err := execute(t, "x = y\n", "compile", "--mode", "single", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "def clscript(")
	assert.Contains(t, out, "\tiraf.x = iraf.y\n")
}

func TestCompileCommandErrors(t *testing.T) {
	path := writeScript(t, script)

	_, _, err := execute(t, "", "compile", "--mode", "batch", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported mode "batch"`)

	_, _, err = execute(t, "", "compile", filepath.Join(t.TempDir(), "missing.cl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading file")

	bad := writeScript(t, "procedure p\nbegin\ngoto out\nend\n")
	_, _, err = execute(t, "", "compile", bad)
	require.Error(t, err)
	assert.Equal(t, "GOTO is not supported (line 3)", err.Error())

	_, _, err = execute(t, "", "compile")
	require.Error(t, err)
}

func TestCompileWarningsAndDebug(t *testing.T) {
	path := writeScript(t, "procedure p\nbegin\ndone: return\nend\n")

	_, stderr, err := execute(t, "", "compile", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=WARN")
	assert.Contains(t, stderr, "label 'done' ignored (line 3)")
	assert.NotContains(t, stderr, "level=DEBUG")
	assert.NotContains(t, stderr, "time=")

	_, stderr, err = execute(t, "", "compile", "--debug", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=DEBUG")

	t.Setenv("CLC_DEBUG", "1")
	_, stderr, err = execute(t, "", "compile", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=DEBUG")
}

func TestTokensCommand(t *testing.T) {
	out, _, err := execute(t, "x = 1\n", "tokens", "-")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, `1	IDENT("x")`, lines[0])
	assert.Equal(t, `1	INTEGER("1")`, lines[2])

	_, _, err = execute(t, "x = @\n", "tokens", "-")
	require.Error(t, err)
}

func TestTreeCommand(t *testing.T) {
	src := "int n\nn = 1\n"
	plain, _, err := execute(t, src, "tree", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(plain, "program\n"))
	assert.NotContains(t, plain, "[")

	typed, _, err := execute(t, src, "tree", "--types", "-")
	require.NoError(t, err)
	assert.Contains(t, typed, "[int->int]")
}

func TestParseMode(t *testing.T) {
	m, err := parseMode("single")
	require.NoError(t, err)
	assert.Equal(t, compiler.ModeSingle, m)

	_, err = parseMode("")
	assert.Error(t, err)
}

func TestWatcherBuild(t *testing.T) {
	path := writeScript(t, script)
	var out, logs bytes.Buffer
	w := &watcher{
		path:   path,
		mode:   compiler.ModeProcedure,
		out:    &out,
		logger: newLogger(&logs, slog.LevelDebug),
		cache:  cache.NewMemory(0),
	}

	w.build()
	w.build()
	assert.Equal(t, 2, strings.Count(out.String(), "def p("))
	assert.Equal(t, 1, w.cache.Len())
	assert.Contains(t, logs.String(), "cache hit")
	assert.Contains(t, logs.String(), "msg=compiled")

	require.NoError(t, os.WriteFile(path, []byte("procedure q\nbegin\ngoto x\nend\n"), 0o644))
	w.build()
	assert.Contains(t, logs.String(), "compile failed")
	assert.Equal(t, 2, strings.Count(out.String(), "def p("))
}

func TestWatcherRunStops(t *testing.T) {
	path := writeScript(t, script)
	var out bytes.Buffer
	w := &watcher{
		path:   path,
		mode:   compiler.ModeProcedure,
		out:    &out,
		logger: newLogger(&bytes.Buffer{}, slog.LevelInfo),
		cache:  cache.NewMemory(0),
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.run(ctx))
	assert.Contains(t, out.String(), "def p(")
}
