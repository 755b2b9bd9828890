package logger

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a thin wrapper around zap.Logger for structured logging.
type Logger struct {
	logger *zap.Logger
}

// Field holds a key-value pair written with a log entry.
type Field struct {
	Key   string
	Value any
}

// Options holds configuration options for the logger.
type Options struct {
	level       Level
	outputPaths []string
	development bool
}

// Level represents the severity level of the log.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"

	messageKey = "message"
)

func (level Level) zapLevel() zapcore.Level {
	switch Level(strings.ToLower(string(level))) {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewLogger builds a production (JSON) logger, adjusted by opts.
func NewLogger(opts ...Options) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	for _, opt := range opts {
		if opt.development {
			cfg = zap.NewDevelopmentConfig()
		}
	}
	for _, opt := range opts {
		if opt.level != "" {
			cfg.Level = zap.NewAtomicLevelAt(opt.level.zapLevel())
		}
		if opt.outputPaths != nil {
			cfg.OutputPaths = opt.outputPaths
		}
	}
	cfg.EncoderConfig.MessageKey = messageKey

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{logger: l}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{logger: zap.NewNop()}
}

// New wraps an existing zap logger.
func New(l *zap.Logger) *Logger {
	return &Logger{logger: l}
}

// WithLoggingLevel sets the minimum level written. Defaults to info.
func WithLoggingLevel(level Level) Options {
	return Options{level: level}
}

// WithOutputPaths sets where logs go. "stdout" and "stderr" are special.
func WithOutputPaths(paths []string) Options {
	return Options{outputPaths: paths}
}

// WithDevelopment switches to zap's human-readable console encoder.
func WithDevelopment() Options {
	return Options{development: true}
}

func NewField(key string, value any) Field {
	return Field{Key: key, Value: value}
}

func (l *Logger) Zap() *zap.Logger { return l.logger }

func (l *Logger) Sync() error { return l.logger.Sync() }

func (l *Logger) Debug(message string, fields ...Field) {
	l.logger.Debug(message, convertFields(fields...)...)
}

func (l *Logger) Info(message string, fields ...Field) {
	l.logger.Info(message, convertFields(fields...)...)
}

func (l *Logger) Warn(message string, fields ...Field) {
	l.logger.Warn(message, convertFields(fields...)...)
}

// Error writes err at error level. When err carries a pkg/errors stack trace
// that trace replaces zap's own.
func (l *Logger) Error(err error, fields ...Field) {
	var st interface{ StackTrace() errors.StackTrace }
	stack := ""
	if errors.As(err, &st) {
		stack = strings.TrimSpace(fmt.Sprintf("%+v", st.StackTrace()))
	}

	if ce := l.logger.Check(zapcore.ErrorLevel, err.Error()); ce != nil {
		if stack != "" {
			ce.Stack = stack
		}
		ce.Write(convertFields(fields...)...)
	}
}

// WithFields returns a child logger carrying fields on every entry.
func (l *Logger) WithFields(fields ...Field) *Logger {
	return &Logger{logger: l.logger.With(convertFields(fields...)...)}
}

func convertFields(fields ...Field) []zapcore.Field {
	zapFields := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		zapFields = append(zapFields, zap.Any(f.Key, f.Value))
	}
	return zapFields
}
