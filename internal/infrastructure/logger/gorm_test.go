package logger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

var _ gormlogger.Interface = (*GormLogger)(nil)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func statement(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Defaults(t *testing.T) {
	l := NewGormLogger(nil, gormlogger.Warn)
	assert.Equal(t, defaultSlowThreshold, l.slowThreshold)
	assert.Equal(t, defaultMaxSQLLength, l.maxSQLLength)
	assert.False(t, l.logNotFound)

	l = NewGormLogger(nil, gormlogger.Warn, WithSlowThreshold(time.Second), WithMaxSQLLength(0), WithRecordNotFound(true))
	assert.Equal(t, time.Second, l.slowThreshold)
	assert.Zero(t, l.maxSQLLength)
	assert.True(t, l.logNotFound)
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	l, _ := newObservedGormLogger(gormlogger.Info)
	quiet, ok := l.LogMode(gormlogger.Silent).(*GormLogger)
	require.True(t, ok)

	assert.Equal(t, gormlogger.Info, l.level)
	assert.Equal(t, gormlogger.Silent, quiet.level)
}

func TestGormLogger_Messages(t *testing.T) {
	l, recorded := newObservedGormLogger(gormlogger.Warn)
	ctx := context.Background()

	l.Info(ctx, "migrating %s", "recebimentos")
	l.Warn(ctx, "retrying %d", 2)
	l.Error(ctx, "failed")

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "retrying 2", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestGormLogger_Trace(t *testing.T) {
	slowBegin := time.Now().Add(-time.Second)

	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		opts    []GormLoggerOption
		begin   time.Time
		err     error
		wantMsg string
		wantLvl zapcore.Level
	}{
		{name: "silent", level: gormlogger.Silent, begin: time.Now(), err: errors.New("boom")},
		{name: "failure", level: gormlogger.Error, begin: time.Now(), err: errors.New("boom"), wantMsg: "SQL failed", wantLvl: zapcore.ErrorLevel},
		{name: "not found skipped", level: gormlogger.Error, begin: time.Now(), err: gormlogger.ErrRecordNotFound},
		{name: "not found logged", level: gormlogger.Error, opts: []GormLoggerOption{WithRecordNotFound(true)},
			begin: time.Now(), err: gormlogger.ErrRecordNotFound, wantMsg: "SQL failed", wantLvl: zapcore.ErrorLevel},
		{name: "slow", level: gormlogger.Warn, begin: slowBegin, wantMsg: "Slow SQL", wantLvl: zapcore.WarnLevel},
		{name: "slow warnings disabled", level: gormlogger.Warn, opts: []GormLoggerOption{WithSlowThreshold(0)}, begin: slowBegin},
		{name: "fast at warn", level: gormlogger.Warn, begin: time.Now()},
		{name: "fast at info", level: gormlogger.Info, begin: time.Now(), wantMsg: "SQL", wantLvl: zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, recorded := newObservedGormLogger(tt.level, tt.opts...)
			l.Trace(context.Background(), tt.begin, statement("SELECT * FROM recebimentos WHERE status = 'pendente'", 3), tt.err)

			if tt.wantMsg == "" {
				assert.Empty(t, recorded.All())
				return
			}
			entries := recorded.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantMsg, entries[0].Message)
			assert.Equal(t, tt.wantLvl, entries[0].Level)
			fields := entries[0].ContextMap()
			assert.Equal(t, "select", fields["statement"])
			assert.Equal(t, int64(3), fields["rows"])
		})
	}
}

func TestGormLogger_TraceTruncatesSQL(t *testing.T) {
	l, recorded := newObservedGormLogger(gormlogger.Info, WithMaxSQLLength(20))
	l.Trace(context.Background(), time.Now(), statement("INSERT INTO movimentacoes_diarias "+strings.Repeat("x", 100), 1), nil)

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "INSERT INTO moviment...", entries[0].ContextMap()["sql"])
	assert.Equal(t, "insert", entries[0].ContextMap()["statement"])
}

func TestGormLogger_TraceCarriesRequestAndTraceIDs(t *testing.T) {
	l, recorded := newObservedGormLogger(gormlogger.Info)

	_, span := sdktrace.NewTracerProvider().Tracer("test").Start(context.Background(), "listing.load")
	defer span.End()
	ctx := trace.ContextWithSpan(context.Background(), span)
	ctx = context.WithValue(ctx, RequestIDKey, "req-42")

	l.Trace(ctx, time.Now(), statement("SELECT count(*) FROM pagamentos", 1), nil)

	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
}

func TestStatementKind(t *testing.T) {
	assert.Equal(t, "select", statementKind("  SELECT 1"))
	assert.Equal(t, "update", statementKind("UPDATE \"pagamentos\" SET"))
	assert.Equal(t, "with", statementKind("WITH(x)"))
	assert.Equal(t, "", statementKind(""))
}

func TestMapGormLogLevel(t *testing.T) {
	tests := map[string]gormlogger.LogLevel{
		"silent":  gormlogger.Silent,
		"off":     gormlogger.Silent,
		"error":   gormlogger.Error,
		"warn":    gormlogger.Warn,
		"info":    gormlogger.Info,
		"debug":   gormlogger.Info,
		"WARN":    gormlogger.Warn,
		"Silent":  gormlogger.Silent,
		"unknown": gormlogger.Warn,
		"":        gormlogger.Warn,
	}
	for in, want := range tests {
		assert.Equal(t, want, MapGormLogLevel(in), in)
	}
}
