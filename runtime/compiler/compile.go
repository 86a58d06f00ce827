// Package compiler translates CL procedures into Python source in three
// passes over the syntax tree: declaration collection, type annotation,
// and code generation.
package compiler

import (
	"github.com/opal-lang/clc/runtime/cache"
	"github.com/opal-lang/clc/runtime/cl"
)

// Compile translates CL source into a CompiledUnit.
//
// Lexical and syntax errors abort immediately. Code generation problems
// are gathered over the whole tree and returned together. Mismatches
// against an external parameter list are reported as warnings.
func Compile(source string, opts ...Option) (*CompiledUnit, error) {
	cfg := newConfig(opts)
	logger := cfg.logger.With("file", cfg.filename, "mode", string(cfg.mode))

	useCache := cfg.cache != nil && cfg.external == nil
	var key string
	if useCache {
		key = cfg.cacheKey(source)
		if e, ok := cfg.cache.Get(key); ok {
			logger.Debug("cache hit", "key", key)
			return unitFromEntry(e), nil
		}
		logger.Debug("cache miss", "key", key)
	}

	tree, err := cl.Parse(source)
	if err != nil {
		return nil, err
	}
	logger.Debug("parsed", "statements", len(tree.Children))

	vars, err := collectVariables(tree, cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("collected variables",
		"procedure", vars.ProcName,
		"params", vars.Params.Len(),
		"locals", len(vars.Locals))

	CheckTypes(tree, vars)

	code, warnings, err := generate(tree, vars, cfg)
	if err != nil {
		return nil, err
	}

	unit := &CompiledUnit{
		Code:     code,
		Filename: cfg.filename,
		ProcName: vars.ProcName,
		HasProc:  vars.HasProc,
		Locals:   vars.Locals,
		Params:   vars.Params,
		Warnings: warnings,
	}
	if useCache {
		if err := cfg.cache.Put(key, unit.entry()); err != nil {
			logger.Warn("cache store failed", "key", key, "error", err)
		}
	}
	return unit, nil
}

// cacheKey derives the cache key, reusing the digest remembered for the
// file revision when the cache tracks revisions
func (c *config) cacheKey(source string) string {
	sc, tracks := c.cache.(cache.StatCache)
	tracks = tracks && c.stat != nil

	var digest string
	hit := false
	if tracks {
		digest, hit = sc.Lookup(*c.stat)
	}
	if !hit {
		digest = cache.Digest(source)
		if tracks {
			sc.Remember(*c.stat, digest)
		}
	}
	return cache.Key(digest, c.filename, string(c.mode))
}
