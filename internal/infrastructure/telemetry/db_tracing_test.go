package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRecipe struct {
	ID   string `gorm:"primaryKey"`
	Name string
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRecipe{}))
	return db
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, RegisterDBTracing(db, DBTracingConfig{}, zap.NewNop()))
	assert.Nil(t, db.Callback().Query().Get("kitchen_timing:before_query"))
}

func TestRegisterDBTracing_RecordsSpans(t *testing.T) {
	db := setupTestDB(t)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{
		Enabled:        true,
		DBSystem:       "sqlite",
		TracerProvider: tp,
	}, zap.NewNop()))
	assert.NotNil(t, db.Callback().Query().Get("kitchen_timing:before_query"))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&tracedRecipe{ID: "r-soup", Name: "Soup"}).Error)

	var got []tracedRecipe
	require.NoError(t, db.WithContext(ctx).Find(&got).Error)
	require.Len(t, got, 1)

	err := db.WithContext(ctx).Table("missing_table").Find(&got).Error
	require.Error(t, err)

	spans := recorder.Ended()
	require.GreaterOrEqual(t, len(spans), 3)

	var errored int
	for _, s := range spans {
		if s.Status().Code == codes.Error {
			errored++
		}
	}
	assert.Equal(t, 1, errored)
}
