package app

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFileName is the file under the configured log directory that receives
// every log line at or above the configured level.
const LogFileName = "shelf.log"

// parseLevel maps a config level name to a zap level. Unknown names log at info.
func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

// newCore tees console-encoded output into file at level and into stderr at
// warn or above.
func newCore(file, stderr zapcore.WriteSyncer, level zapcore.Level) zapcore.Core {
	enc := zapcore.NewConsoleEncoder(encoderConfig())
	stderrLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.WarnLevel && l >= level
	})
	return zapcore.NewTee(
		zapcore.NewCore(enc, file, level),
		zapcore.NewCore(enc.Clone(), stderr, stderrLevel),
	)
}

// newLogger creates a logger that writes to logDir/shelf.log and stderr, with
// every entry tagged by opID. It returns the logger and a function that
// flushes and closes the log file.
func newLogger(logDir, level, opID string) (*zap.Logger, func() error, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(logDir, LogFileName)
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	core := newCore(zapcore.AddSync(f), zapcore.Lock(os.Stderr), parseLevel(level))
	logger := zap.New(core).With(zap.String("op", opID))

	closeFn := func() error {
		_ = logger.Sync()
		return f.Close()
	}
	return logger, closeFn, nil
}

// zapAdapter wraps a zap SugaredLogger to satisfy shelf.Logger. Arguments
// are alternating key/value pairs, as the Sugared *w methods expect.
type zapAdapter struct {
	l *zap.SugaredLogger
}

func newZapAdapter(l *zap.Logger) *zapAdapter {
	return &zapAdapter{l: l.Sugar()}
}

func (a *zapAdapter) Debug(msg string, args ...any) { a.l.Debugw(msg, args...) }
func (a *zapAdapter) Info(msg string, args ...any)  { a.l.Infow(msg, args...) }
func (a *zapAdapter) Warn(msg string, args ...any)  { a.l.Warnw(msg, args...) }
func (a *zapAdapter) Error(msg string, args ...any) { a.l.Errorw(msg, args...) }
