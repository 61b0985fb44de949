// ABOUTME: Functional options for New
// ABOUTME: Logger and session ID injection
package streamenc

import "go.uber.org/zap"

// Option configures an Encoder
type Option func(*Encoder)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Encoder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSessionID overrides the generated session ID used in logs
func WithSessionID(id string) Option {
	return func(e *Encoder) {
		if id != "" {
			e.id = id
		}
	}
}
