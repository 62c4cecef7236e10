// Package logger wraps zap for the CLI and importer.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects level, destination and encoding.
type Options struct {
	Level  string // TRACE, DEBUG, INFO, WARN, ERROR or OFF
	File   string // empty means stdout
	Format string // console or json
}

type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// ParseLevel maps a level name to a zap level. off is true for OFF or an
// empty name.
func ParseLevel(name string) (level zapcore.Level, off bool, err error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "OFF":
		return zapcore.InfoLevel, true, nil
	case "TRACE", "DEBUG":
		return zapcore.DebugLevel, false, nil
	case "INFO":
		return zapcore.InfoLevel, false, nil
	case "WARN", "WARNING":
		return zapcore.WarnLevel, false, nil
	case "ERROR":
		return zapcore.ErrorLevel, false, nil
	default:
		return zapcore.InfoLevel, false, fmt.Errorf("unknown log level %q", name)
	}
}

func New(opts Options) (*Logger, error) {
	level, off, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if off {
		return Nop(), nil
	}

	var cfg zap.Config
	switch strings.ToLower(opts.Format) {
	case "json":
		cfg = zap.NewProductionConfig()
	case "", "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stdout"}
	if opts.File != "" {
		cfg.OutputPaths = []string{opts.File}
	}

	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// NewWithCore builds a logger over an existing core, such as a test observer.
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{SugaredLogger: zap.New(core).Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, keysAndValues...)
}
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, keysAndValues...)
}
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, keysAndValues...)
}
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, keysAndValues...)
}
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(keysAndValues...)}
}
