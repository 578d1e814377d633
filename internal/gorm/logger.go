package gorm

import (
	"context"
	"errors"
	"time"

	ilogger "github.com/tjper/suihei/internal/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewLogger creates a Logger writing to zl. Statements slower than slow are
// logged as warnings.
func NewLogger(zl *zap.Logger, slow time.Duration) *Logger {
	return &Logger{
		zl:    zl.WithOptions(zap.AddCallerSkip(3)),
		slow:  slow,
		level: logger.Warn,
	}
}

// Logger implements gorm's logger.Interface on top of zap.
type Logger struct {
	zl    *zap.Logger
	slow  time.Duration
	level logger.LogLevel
}

func (l *Logger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l Logger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level < logger.Info {
		return
	}
	l.zl.Sugar().With(fields(ctx)...).Infof(msg, args...)
}

func (l Logger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level < logger.Warn {
		return
	}
	l.zl.Sugar().With(fields(ctx)...).Warnf(msg, args...)
}

func (l Logger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level < logger.Error {
		return
	}
	l.zl.Sugar().With(fields(ctx)...).Errorf(msg, args...)
}

func (l Logger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	zfields := append(
		ilogger.ContextFields(ctx),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		l.zl.Error("[SQL]", append(zfields, zap.Error(err))...)
	case l.slow != 0 && elapsed > l.slow && l.level >= logger.Warn:
		l.zl.Warn("[SQL] slow statement", zfields...)
	case l.level >= logger.Info:
		l.zl.Debug("[SQL]", zfields...)
	}
}

func fields(ctx context.Context) []interface{} {
	var out []interface{}
	for _, f := range ilogger.ContextFields(ctx) {
		out = append(out, f)
	}
	return out
}
