package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedCategory struct {
	ID   string `gorm:"primaryKey"`
	Nome string
}

func (tracedCategory) TableName() string { return "categorias" }

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&tracedCategory{}))
	return db
}

func TestNewDBTracingPlugin_Defaults(t *testing.T) {
	p := NewDBTracingPlugin(DBTracingConfig{}, nil)
	assert.Equal(t, 200*time.Millisecond, p.config.SlowQueryThresh)
	assert.Equal(t, "postgresql", p.config.DBSystem)
	assert.NotNil(t, p.logger)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	recorder := useRecorder(t)
	db := openSQLite(t)

	require.NoError(t, NewDBTracingPlugin(DBTracingConfig{Enabled: false}, zap.NewNop()).Register(db))
	require.NoError(t, db.Create(&tracedCategory{ID: "c1", Nome: "Aluguel"}).Error)
	assert.Empty(t, recorder.Ended())
}

func TestDBTracingPlugin_RecordsQuerySpans(t *testing.T) {
	recorder := useRecorder(t)
	db := openSQLite(t)

	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zap.NewNop())
	require.NoError(t, p.Register(db))

	ctx, span := StartSpan(context.Background(), "catalog.create")
	require.NoError(t, db.WithContext(ctx).Create(&tracedCategory{ID: "c1", Nome: "Aluguel"}).Error)
	var out []tracedCategory
	require.NoError(t, db.WithContext(ctx).Find(&out).Error)
	span.End()

	require.Len(t, out, 1)
	spans := recorder.Ended()
	require.GreaterOrEqual(t, len(spans), 3, "insert, select and the parent span")
	parent := span.SpanContext().TraceID()
	for _, s := range spans {
		assert.Equal(t, parent, s.SpanContext().TraceID())
	}
}

func TestDBTracingPlugin_SlowQueryAnnotation(t *testing.T) {
	recorder := useRecorder(t)
	db := openSQLite(t)
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Nanosecond}, zap.NewNop())

	ctx, span := StartSpan(context.Background(), "db.query")
	ctx = context.WithValue(ctx, queryStartKey{}, time.Now().Add(-time.Second))
	tx := db.WithContext(ctx)
	tx.Statement.Table = "categorias"
	tx.Statement.RowsAffected = 2
	p.afterQuery(tx)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "categorias", attrs["db.sql.table"].AsString())
	assert.Equal(t, int64(2), attrs["db.rows_affected"].AsInt64())
	assert.True(t, attrs["db.slow_query"].AsBool())
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "slow_query_warning", spans[0].Events()[0].Name)
}
