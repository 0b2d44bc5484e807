// Package logger wraps zap behind a small context-aware interface so call
// sites never import zapcore directly.
package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the interface every package in this module logs through.
type Logger interface {
	Log(ctx context.Context, level zapcore.Level, msg string, fields ...zap.Field)
	Debug(ctx context.Context, msg string, fields ...zap.Field)
	Info(ctx context.Context, msg string, fields ...zap.Field)
	Warn(ctx context.Context, msg string, fields ...zap.Field)
	Error(ctx context.Context, msg string, fields ...zap.Field)
	Fatal(ctx context.Context, msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	Sync() error
}

type zapLogger struct {
	z *zap.Logger
}

// Config controls how the base zap.Logger is constructed.
type Config struct {
	ServiceName string
	Debug       bool
}

// New builds a Logger. In debug mode it uses zap's human-readable console
// encoder; otherwise JSON, suitable for log aggregation.
func New(cfg Config) (Logger, error) {
	var zcfg zap.Config
	if cfg.Debug {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	z, err := zcfg.Build(zap.Fields(zap.String("service", cfg.ServiceName)))
	if err != nil {
		return nil, err
	}

	return &zapLogger{z: z}, nil
}

func (l *zapLogger) Log(_ context.Context, level zapcore.Level, msg string, fields ...zap.Field) {
	if ce := l.z.Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

func (l *zapLogger) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	l.Log(ctx, zapcore.DebugLevel, msg, fields...)
}

func (l *zapLogger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	l.Log(ctx, zapcore.InfoLevel, msg, fields...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	l.Log(ctx, zapcore.WarnLevel, msg, fields...)
}

func (l *zapLogger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	l.Log(ctx, zapcore.ErrorLevel, msg, fields...)
}

func (l *zapLogger) Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	l.Log(ctx, zapcore.FatalLevel, msg, fields...)
	l.z.Sync() //nolint:errcheck
	panic(msg)
}

func (l *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{z: l.z.With(fields...)}
}

func (l *zapLogger) Sync() error {
	return l.z.Sync()
}

// WithUserID returns a zap field tagging a log line with the acting user.
func WithUserID(id string) zap.Field { return zap.String("user_id", id) }

// WithExerciseID tags a log line with the exercise under grading.
func WithExerciseID(id string) zap.Field { return zap.String("exercise_id", id) }

// WithSubmissionID tags a log line with a unique per-grade identifier.
func WithSubmissionID(id string) zap.Field { return zap.String("submission_id", id) }
