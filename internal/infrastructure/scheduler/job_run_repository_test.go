package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newJobRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&JobRunRecord{}))
	return db
}

func TestJobRunRepository(t *testing.T) {
	repo := NewJobRunRepository(newJobRunDB(t))
	ctx := context.Background()

	t.Run("no runs yet", func(t *testing.T) {
		got, err := repo.GetLatest(ctx, JobTypeRecipeCosting, "o1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("start then fail is recorded per attempt", func(t *testing.T) {
		job := NewJob(JobTypeMenuEngineeringSnapshot, "o1", "2024-01-01", "2024-01-31", 1)
		job.Start()
		require.NoError(t, repo.RecordJobStart(ctx, job))

		running, err := repo.GetLatest(ctx, JobTypeMenuEngineeringSnapshot, "o1")
		require.NoError(t, err)
		require.NotNil(t, running)
		assert.Equal(t, job.ID, running.JobID)
		assert.Equal(t, string(JobStatusRunning), running.Status)
		assert.Equal(t, "2024-01-01", running.PeriodStart)
		assert.Nil(t, running.CompletedAt)

		job.Fail("catalog unavailable")
		require.NoError(t, repo.RecordJobComplete(ctx, job))

		failed, err := repo.GetLatest(ctx, JobTypeMenuEngineeringSnapshot, "o1")
		require.NoError(t, err)
		require.NotNil(t, failed)
		assert.Equal(t, running.ID, failed.ID)
		assert.Equal(t, string(JobStatusFailed), failed.Status)
		assert.Equal(t, "catalog unavailable", failed.Error)
		assert.NotNil(t, failed.CompletedAt)
		assert.Equal(t, 0, failed.Attempt)
	})

	t.Run("other outlets are separate", func(t *testing.T) {
		got, err := repo.GetLatest(ctx, JobTypeMenuEngineeringSnapshot, "")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
