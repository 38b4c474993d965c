package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTracedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := setupTracedDB(t)
	p := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())

	require.NoError(t, p.RegisterOtelGorm(db))
	assert.Nil(t, db.Callback().Query().Get("otel_slow_query:query"))
}

func TestDBTracingPlugin_Enabled(t *testing.T) {
	db := setupTracedDB(t)
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true

	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).RegisterOtelGorm(db))
	assert.NotNil(t, db.Callback().Query().Get("otel_slow_query:query"))
	assert.NotNil(t, db.Callback().Create().Get("otel_timing:before_create"))

	require.NoError(t, db.Create(&tracedRow{Name: "a"}).Error)
	var rows []tracedRow
	require.NoError(t, db.Find(&rows).Error)
	assert.Len(t, rows, 1)
}

func recordedSpan(t *testing.T, fn func(ctx context.Context)) sdktrace.ReadOnlySpan {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "query")
	fn(ctx)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	return spans[0]
}

func TestAfterQuery_SlowQuery(t *testing.T) {
	db := setupTracedDB(t)
	p := NewDBTracingPlugin(DBTracingConfig{SlowQueryThresh: time.Millisecond}, zap.NewNop())

	span := recordedSpan(t, func(ctx context.Context) {
		stmt := db.WithContext(ctx).Table("traced_rows")
		stmt.Statement.Context = context.WithValue(ctx, queryStartTimeKey, time.Now().Add(-time.Second))
		stmt.Statement.RowsAffected = 3
		p.afterQuery(stmt)
	})

	attrs := map[string]any{}
	for _, kv := range span.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, true, attrs["db.slow_query"])
	assert.Equal(t, "traced_rows", attrs["db.sql.table"])
	assert.Equal(t, int64(3), attrs["db.rows_affected"])
	require.Len(t, span.Events(), 1)
	assert.Equal(t, "slow_query_warning", span.Events()[0].Name)
}

func TestAfterQuery_ErrorMarksSpan(t *testing.T) {
	db := setupTracedDB(t)
	p := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())

	span := recordedSpan(t, func(ctx context.Context) {
		stmt := db.WithContext(ctx).Table("traced_rows")
		_ = stmt.AddError(assert.AnError)
		p.afterQuery(stmt)
	})

	assert.Equal(t, codes.Error, span.Status().Code)
}

func TestAfterQuery_RecordNotFoundIsNotAnError(t *testing.T) {
	db := setupTracedDB(t)
	p := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())

	span := recordedSpan(t, func(ctx context.Context) {
		stmt := db.WithContext(ctx).Table("traced_rows")
		_ = stmt.AddError(gorm.ErrRecordNotFound)
		p.afterQuery(stmt)
	})

	assert.NotEqual(t, codes.Error, span.Status().Code)
}
