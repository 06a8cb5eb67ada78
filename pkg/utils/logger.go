// Package utils holds helpers shared by the kensaku binary.
package utils

import "go.uber.org/zap"

// NewLogger returns a zap logger tagged with service=kensaku. When debug is true it uses
// the development config (human-readable, debug level); otherwise the production config
// (JSON, info level, stack traces only on errors).
func NewLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", "kensaku")), nil
}
