/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package logging

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options are the options for creating a new logger.
type Options struct {
	// Name is the name given to the root logger.
	Name string

	// Level is the minimum level logged, one of debug, info, warn or error.
	// Defaults to info.
	Level string

	// Development switches to human readable console output.
	Development bool
}

// New returns a logr.Logger backed by zap.
func New(opts Options) (logr.Logger, error) {
	level := zap.InfoLevel
	if len(opts.Level) > 0 {
		var err error
		level, err = zapcore.ParseLevel(opts.Level)
		if err != nil {
			return logr.Logger{}, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	cfg := zap.NewProductionConfig()
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	zl, err := cfg.Build()
	if err != nil {
		return logr.Logger{}, fmt.Errorf("failed to build zap logger: %w", err)
	}

	log := zapr.NewLogger(zl)
	if len(opts.Name) > 0 {
		log = log.WithName(opts.Name)
	}

	return log, nil
}
