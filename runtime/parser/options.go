package parser

import "log/slog"

// ParserOpt represents a parser configuration option
type ParserOpt func(*ParserConfig)

// ParserConfig holds parser configuration
type ParserConfig struct {
	resolver Resolver
	logger   *slog.Logger
}

// WithResolver replaces the default ambiguity resolution policy
func WithResolver(r Resolver) ParserOpt {
	return func(c *ParserConfig) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithLogger sets the logger used for chart tracing at debug level
func WithLogger(logger *slog.Logger) ParserOpt {
	return func(c *ParserConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}
