package persistence

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/storelink/backend/internal/domain/catalog"
	"github.com/storelink/backend/internal/domain/distribution"
	"github.com/storelink/backend/internal/domain/notification"
)

// setupTestDB opens an isolated in-memory SQLite database and migrates the
// full schema. Each test gets its own database keyed by the test name.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&catalog.Product{},
		&catalog.Variant{},
		&catalog.Option{},
		&distribution.Destination{},
		&distribution.VariantOverride{},
		&distribution.InventoryAssignment{},
		&distribution.SyncRecord{},
		&notification.Notification{},
	))

	return db
}
