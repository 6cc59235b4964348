package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := setupTestDB(t)
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{Provider: tp}, zap.NewNop()))
	require.NoError(t, db.Create(&tracedRow{Name: "a"}).Error)

	assert.Empty(t, sr.Ended())
}

func TestRegisterDBTracing_Enabled(t *testing.T) {
	db := setupTestDB(t)
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{Enabled: true, Provider: tp}, zap.NewNop()))

	ctx, parent := tp.Tracer("test").Start(context.Background(), "parent")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "a"}).Error)
	var rows []tracedRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	parent.End()

	var dbSpans int
	for _, s := range sr.Ended() {
		if s.Name() == "parent" {
			continue
		}
		dbSpans++
		assert.Equal(t, parent.SpanContext().TraceID(), s.SpanContext().TraceID())
	}
	assert.GreaterOrEqual(t, dbSpans, 2)
}
