// Package logging builds the zap logger shared by the store, the manager and
// the command line front ends.
package logging

import (
	"fmt"
	"io"
	"os"

	"book-catalog/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New initializes the logger. Development output goes to stderr through the
// console encoder; production output is JSON. When a log file is configured
// every entry is also written there as JSON. It only adds stacktraces to
// fatal level logs.
func New(cfg config.Log) (*zap.Logger, func() error, error) {
	return build(cfg, os.Stderr)
}

func build(cfg config.Log, console io.Writer) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var encCfg zapcore.EncoderConfig
	if cfg.Production {
		encCfg = zap.NewProductionEncoderConfig()
	} else {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.LevelKey = "lvl"
	encCfg.NameKey = "name"
	encCfg.MessageKey = "msg"
	encCfg.CallerKey = "caller"
	encCfg.StacktraceKey = "skt"

	var consoleEncoder zapcore.Encoder
	if cfg.Production {
		consoleEncoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		consoleEncoder = zapcore.NewConsoleEncoder(encCfg)
	}
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(console)), level),
	}

	var file *os.File
	if cfg.File != "" {
		file, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.FatalLevel))

	flusher := func() error {
		// Sync on a terminal stderr fails on some platforms; only the file matters.
		_ = logger.Sync()
		if file != nil {
			if err := file.Close(); err != nil {
				return fmt.Errorf("[flush logs]: %w", err)
			}
		}
		return nil
	}
	return logger, flusher, nil
}
