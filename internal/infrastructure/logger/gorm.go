package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// GormLogger routes gorm's statement log into zap under the "gorm" name.
// At Warn it reports slow statements, at Error failed ones and at Info every
// statement at debug level.
type GormLogger struct {
	zl          *zap.Logger
	level       gormlogger.LogLevel
	slow        time.Duration
	logNotFound bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration above which a statement is slow. Zero
// disables slow statement logging.
func WithSlowThreshold(d time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slow = d }
}

// WithIgnoreRecordNotFoundError keeps gorm.ErrRecordNotFound out of the
// error log. On by default.
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(l *GormLogger) { l.logNotFound = !ignore }
}

func NewGormLogger(zl *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{zl: zl.Named("gorm"), level: level, slow: defaultSlowQuery}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.zl.Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.zl.Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.zl.Sugar().Errorf(msg, data...)
	}
}

// Trace is called by gorm after every statement
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && (l.logNotFound || !errors.Is(err, gormlogger.ErrRecordNotFound))
	slow := l.slow > 0 && elapsed > l.slow

	var msg string
	switch {
	case failed && l.level >= gormlogger.Error:
		msg = "SQL Error"
	case slow && l.level >= gormlogger.Warn:
		msg = "Slow SQL"
	case l.level >= gormlogger.Info:
		msg = "SQL Query"
	default:
		return
	}

	stmt, rows := fc()
	fields := []zap.Field{
		zap.String("sql", stmt),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}

	zl := WithTraceContext(ctx, l.zl)
	switch msg {
	case "SQL Error":
		zl.Error(msg, append(fields, zap.Error(err))...)
	case "Slow SQL":
		zl.Warn(msg, append(fields, zap.Duration("threshold", l.slow))...)
	default:
		zl.Debug(msg, fields...)
	}
}

// MapGormLogLevel converts the application log level to gorm's. Debug and
// info log every statement, anything unknown only slow and failed ones.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
