package compiler

import (
	"io"
	"log/slog"

	"github.com/opal-lang/clc/core/params"
	"github.com/opal-lang/clc/runtime/cache"
)

// Mode selects how unbound names are resolved in generated code
type Mode string

const (
	// ModeProcedure resolves unbound names through the running task object
	ModeProcedure Mode = "proc"
	// ModeSingle resolves unbound names through the global task registry
	ModeSingle Mode = "single"
)

// Option configures a compilation
type Option func(*config)

type config struct {
	filename      string
	external      *params.ParameterList
	authoritative bool
	mode          Mode
	cache         cache.Cache
	stat          *cache.StatKey
	logger        *slog.Logger
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newConfig(opts []Option) *config {
	cfg := &config{mode: ModeProcedure, logger: discardLogger}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithFilename sets the source identity, used for the procedure name of
// scripts without a signature and recorded in the unit
func WithFilename(name string) Option {
	return func(c *config) {
		c.filename = name
	}
}

// WithParameterList supplies an external parameter list (for example from
// a .par file). Its definitions take precedence over the script's; when
// authoritative is set they replace the script's parameters entirely.
func WithParameterList(list *params.ParameterList, authoritative bool) Option {
	return func(c *config) {
		c.external = list
		c.authoritative = authoritative
	}
}

// WithMode sets the translation mode
func WithMode(m Mode) Option {
	return func(c *config) {
		if m != "" {
			c.mode = m
		}
	}
}

// WithCache installs a compiled-unit cache. It is bypassed when an
// external parameter list is supplied.
func WithCache(c cache.Cache) Option {
	return func(cfg *config) {
		cfg.cache = c
	}
}

// WithFileStat identifies the revision of the file the source was read
// from. Caches that remember file revisions then skip hashing it.
func WithFileStat(st cache.StatKey) Option {
	return func(c *config) {
		c.stat = &st
	}
}

// WithLogger sets the logger for compilation tracing and warnings
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
