package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/AATruttse/fundoubler/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger builds the run logger: JSON lines into a rotating log file and,
// when verbose, a colored console core on stderr. An empty log file name
// disables the file sink.
func newLogger(cfg *config.Config, verbose int, runID string, console io.Writer) (*zap.Logger, func(), error) {
	var (
		cores   []zapcore.Core
		closers []func()
	)

	fileLevel := zapcore.InfoLevel
	if verbose > 0 {
		fileLevel = zapcore.DebugLevel
	}

	if cfg.LogFile != "" {
		name := config.ExpandDate(cfg.LogFile, time.Now())
		if err := checkLogFile(name); err != nil {
			return nil, nil, err
		}

		sink := &lumberjack.Logger{
			Filename:   name,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
		}
		closers = append(closers, func() { _ = sink.Close() })

		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(sink),
			fileLevel,
		))
	}

	if verbose > 0 {
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

		consoleLevel := zapcore.InfoLevel
		if verbose > 1 {
			consoleLevel = zapcore.DebugLevel
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.AddSync(console),
			consoleLevel,
		))
	}

	if len(cores) == 0 {
		return zap.NewNop(), func() {}, nil
	}

	logger := zap.New(zapcore.NewTee(cores...)).With(zap.String("run", runID))
	return logger, func() {
		_ = logger.Sync()
		for _, c := range closers {
			c()
		}
	}, nil
}

// checkLogFile fails early when the log file can't be opened for append
func checkLogFile(name string) error {
	if dir := filepath.Dir(name); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("can't create log directory %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("can't open log file %s: %w", name, err)
	}
	return f.Close()
}
