package logger

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger sends gorm's SQL log through the global logger.
type GormLogger struct {
	SlowThreshold time.Duration
	Level         gormlogger.LogLevel
}

// NewGormLogger logs warnings, errors and slow queries.
func NewGormLogger() *GormLogger {
	return &GormLogger{SlowThreshold: time.Second, Level: gormlogger.Warn}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.Level = level
	return &clone
}

func (l *GormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.Level >= gormlogger.Info {
		Info(msg, "args", args)
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.Level >= gormlogger.Warn {
		Warn(msg, "args", args)
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.Level >= gormlogger.Error {
		Error(msg, "args", args)
	}
}

func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.Level >= gormlogger.Error:
		sql, rows := fc()
		Error("sql failed", "err", err, "elapsed", elapsed, "rows", rows, "sql", sql)
	case l.SlowThreshold > 0 && elapsed > l.SlowThreshold && l.Level >= gormlogger.Warn:
		sql, rows := fc()
		Warn("slow sql", "elapsed", elapsed, "rows", rows, "sql", sql)
	case l.Level >= gormlogger.Info:
		sql, rows := fc()
		Debug("sql", "elapsed", elapsed, "rows", rows, "sql", sql)
	}
}
