// Package logger provides the key/value structured logger used across the SDK.
package logger

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrInvalidEncoding is returned when an unknown log encoding is configured.
var ErrInvalidEncoding = errors.New("invalid log encoding format")

// Interface is the logging surface every package depends on.
// Fields are alternating key/value pairs or zap.Field values.
type Interface interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
	With(fields ...any) Interface
	Sync() error
}

// Config controls how New builds the logger.
type Config struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string `mapstructure:"level"`
	// Encoding is json or console. Defaults to json.
	Encoding string `mapstructure:"encoding"`
	// Development enables colored levels and disables sampling.
	Development bool `mapstructure:"development"`
}

var levels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

type zapLogger struct {
	z *zap.Logger
}

// New builds a zap-backed logger writing to stdout.
func New(cfg Config) (Interface, error) {
	level, ok := levels[strings.ToLower(cfg.Level)]
	if !ok {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeDuration = zapcore.StringDurationEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder
	if cfg.Development {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var enc zapcore.Encoder
	switch cfg.Encoding {
	case "", "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "console":
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidEncoding, cfg.Encoding)
	}

	opts := []zap.Option{
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), level)
	return &zapLogger{z: zap.New(core, opts...)}, nil
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger) Interface {
	return &zapLogger{z: z}
}

func (l *zapLogger) Debug(msg string, fields ...any) { l.z.Debug(msg, toZapFields(fields)...) }
func (l *zapLogger) Info(msg string, fields ...any)  { l.z.Info(msg, toZapFields(fields)...) }
func (l *zapLogger) Warn(msg string, fields ...any)  { l.z.Warn(msg, toZapFields(fields)...) }
func (l *zapLogger) Error(msg string, fields ...any) { l.z.Error(msg, toZapFields(fields)...) }

func (l *zapLogger) With(fields ...any) Interface {
	return &zapLogger{z: l.z.With(toZapFields(fields)...)}
}

func (l *zapLogger) Sync() error { return l.z.Sync() }

func toZapFields(fields []any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	out := make([]zap.Field, 0, len(fields)/2+1)
	for i := 0; i < len(fields); i++ {
		switch f := fields[i].(type) {
		case zap.Field:
			out = append(out, f)
		case string:
			if i+1 >= len(fields) {
				out = append(out, zap.String("!BADKEY", f))
				continue
			}
			if err, ok := fields[i+1].(error); ok {
				out = append(out, zap.NamedError(f, err))
			} else {
				out = append(out, zap.Any(f, fields[i+1]))
			}
			i++
		default:
			out = append(out, zap.Any("!BADKEY", f))
		}
	}
	return out
}
