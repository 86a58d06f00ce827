package compiler

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clerrors "github.com/opal-lang/clc/core/errors"
	"github.com/opal-lang/clc/core/params"
	"github.com/opal-lang/clc/runtime/cache"
)

const small = "procedure p (n)\nint n = 1\nbegin\n\tprint (n)\nend\n"

func TestCompileCache(t *testing.T) {
	mem := cache.NewMemory(0)

	first, err := Compile(small, WithCache(mem), WithFilename("p.cl"))
	require.NoError(t, err)
	assert.Equal(t, 1, mem.Len())

	second, err := Compile(small, WithCache(mem), WithFilename("p.cl"))
	require.NoError(t, err)
	assert.Equal(t, 1, mem.Len())
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.ProcName, second.ProcName)
	assert.Equal(t, first.Params.Names(), second.Params.Names())
	assert.NotSame(t, first, second)

	_, err = Compile(small, WithCache(mem), WithFilename("p.cl"), WithMode(ModeSingle))
	require.NoError(t, err)
	assert.Equal(t, 2, mem.Len(), "mode is part of the key")
}

func TestCompileCacheHit(t *testing.T) {
	mem := cache.NewMemory(0)
	key := cache.Key(cache.Digest(small), "p.cl", string(ModeProcedure))
	require.NoError(t, mem.Put(key, &cache.Entry{
		Code:     "cached",
		ProcName: "p",
		Params:   []*params.Variable{{Name: "n", Type: "int", Init: []params.Value{params.Int(1)}}},
	}))

	unit, err := Compile(small, WithCache(mem), WithFilename("p.cl"))
	require.NoError(t, err)
	assert.Equal(t, "cached", unit.Code)
	assert.Equal(t, []string{"n"}, unit.Params.Names())
}

func TestCompileCacheBypass(t *testing.T) {
	mem := cache.NewMemory(0)
	ext := params.NewParameterList(&params.Variable{Name: "n", Type: "int", Mode: "h", Init: []params.Value{params.Int(4)}})

	unit, err := Compile(small, WithCache(mem), WithParameterList(ext, false))
	require.NoError(t, err)
	assert.Equal(t, 0, mem.Len())
	assert.Contains(t, unit.Code, "def p(n=4,")
}

func TestCompileFileStat(t *testing.T) {
	mem := cache.NewMemory(0)
	st := cache.StatKey{Path: "/tmp/p.cl", Size: int64(len(small)), ModTime: 42}

	first, err := Compile(small, WithCache(mem), WithFilename("p.cl"), WithFileStat(st))
	require.NoError(t, err)
	digest, ok := mem.Lookup(st)
	require.True(t, ok)
	assert.Equal(t, cache.Digest(small), digest)

	// an unchanged revision is not hashed again
	again, err := Compile("procedure q\nbegin\nend\n", WithCache(mem), WithFilename("p.cl"), WithFileStat(st))
	require.NoError(t, err)
	assert.Equal(t, first.Code, again.Code)

	st.ModTime++
	changed, err := Compile("procedure q\nbegin\nend\n", WithCache(mem), WithFilename("p.cl"), WithFileStat(st))
	require.NoError(t, err)
	assert.Equal(t, "q", changed.ProcName)
}

type brokenCache struct{ puts int }

func (b *brokenCache) Get(string) (*cache.Entry, bool) { return nil, false }

func (b *brokenCache) Put(string, *cache.Entry) error {
	b.puts++
	return errors.New("disk full")
}

func TestCompileCacheStoreFailure(t *testing.T) {
	var logs bytes.Buffer
	broken := &brokenCache{}
	unit, err := Compile(small, WithCache(broken), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.NoError(t, err)
	assert.Equal(t, "p", unit.ProcName)
	assert.Equal(t, 1, broken.puts)
	assert.Contains(t, logs.String(), "cache store failed")
	assert.Contains(t, logs.String(), "disk full")
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind clerrors.Kind
	}{
		{"lexical", "x = @\n", clerrors.KindLexical},
		{"syntax", "if (x\n", clerrors.KindSyntax},
		{"declaration", "procedure p (a)\nbegin\nend\n", clerrors.KindSyntax},
		{"conversion", "int n = \"many\"\n", clerrors.KindConversion},
		{"generation", "goto done\n", clerrors.KindGeneration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := Compile(tt.src)
			require.Error(t, err)
			assert.Nil(t, unit)
			assert.True(t, clerrors.Is(err, tt.kind), "kind of %v", err)
		})
	}
}

func TestCompileLogsWarnings(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	unit, err := Compile("procedure p\nbegin\ndone: return\nend\n", WithLogger(logger))
	require.NoError(t, err)
	assert.Equal(t, []string{"label 'done' ignored (line 3)"}, unit.Warnings)
	assert.Contains(t, logs.String(), "label 'done' ignored")
	assert.Contains(t, logs.String(), "level=WARN")
}
