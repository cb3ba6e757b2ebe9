package persistence

import (
	"testing"
	"time"

	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/comufarm/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with the marketplace schema.
// One connection keeps every query on the same in-memory database and
// serializes transactions.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func juneProduct(t *testing.T, farmerID, name string, stock int) *marketplace.Product {
	t.Helper()
	window, err := marketplace.NewSupplyWindow(
		marketplace.NewDate(2024, time.June, 1),
		marketplace.NewDate(2024, time.June, 30),
	)
	require.NoError(t, err)
	p, err := marketplace.NewProduct(farmerID, name, stock, window, decimal.RequireFromString("1500.50"))
	require.NoError(t, err)
	return p
}
