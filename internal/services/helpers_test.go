package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/huangang/geoconfig/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// setupTestDB creates an isolated in-memory SQLite database per test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	counter := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:servicesdb%d?mode=memory&cache=shared", counter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func addParam(t *testing.T, svc *ParamService, key string, value models.Value) string {
	t.Helper()
	id, err := svc.Add(context.Background(), &AddParamRequest{Key: key, Value: value})
	require.NoError(t, err)
	return id
}

func int64Ptr(v int64) *int64 { return &v }

func stringPtr(s string) *string { return &s }
