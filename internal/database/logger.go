package database

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger sends gorm's output through logrus. Slow queries are warnings,
// failed ones errors, the rest debug.
type gormLogger struct {
	log   logrus.FieldLogger
	level logger.LogLevel
	slow  time.Duration
}

// NewGormLogger returns a gorm logger at Warn level.
func NewGormLogger(log logrus.FieldLogger, slow time.Duration) logger.Interface {
	return &gormLogger{log: log.WithField("component", "gorm"), level: logger.Warn, slow: slow}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.log.Infof(msg, args...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.log.Warnf(msg, args...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.log.Errorf(msg, args...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		query, rows := fc()
		l.log.WithError(err).WithFields(logrus.Fields{
			"elapsed": elapsed, "rows": rows, "sql": query,
		}).Error("query failed")
	case l.slow > 0 && elapsed > l.slow && l.level >= logger.Warn:
		query, rows := fc()
		l.log.WithFields(logrus.Fields{
			"elapsed": elapsed, "rows": rows, "sql": query,
		}).Warn("slow query")
	case l.level >= logger.Info:
		query, rows := fc()
		l.log.WithFields(logrus.Fields{
			"elapsed": elapsed, "rows": rows, "sql": query,
		}).Debug("query")
	}
}
