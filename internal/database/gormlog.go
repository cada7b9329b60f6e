package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slowQuery is the latency above which a statement is logged at warn level.
const slowQuery = 200 * time.Millisecond

// gormLogger forwards gorm's log calls to slog so queries carry the request's
// context fields.
type gormLogger struct {
	log   *slog.Logger
	level logger.LogLevel
	slow  time.Duration
}

func newGormLogger(l *slog.Logger) *gormLogger {
	return &gormLogger{log: l, level: logger.Warn, slow: slowQuery}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	c := *l
	c.level = level
	return &c
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.printf(ctx, logger.Info, slog.LevelInfo, msg, args...)
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.printf(ctx, logger.Warn, slog.LevelWarn, msg, args...)
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.printf(ctx, logger.Error, slog.LevelError, msg, args...)
}

func (l *gormLogger) printf(ctx context.Context, threshold logger.LogLevel, level slog.Level, msg string, args ...interface{}) {
	if l.level >= threshold {
		l.log.Log(ctx, level, fmt.Sprintf(msg, args...))
	}
}

// Trace logs failed statements, slow statements, and at Info level every statement.
// A missing record is an expected outcome, not a failure.
func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var level slog.Level
	var msg string
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		level, msg = slog.LevelError, "query failed"
	case l.slow > 0 && elapsed > l.slow && l.level >= logger.Warn:
		level, msg = slog.LevelWarn, "slow query"
	case l.level >= logger.Info:
		level, msg = slog.LevelInfo, "query"
	default:
		return
	}

	sql, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}
	if level == slog.LevelError {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.log.LogAttrs(ctx, level, msg, attrs...)
}
