package service

import (
	"testing"

	"github.com/RichardCTT/Portfolio-Management/internal/database"
	"github.com/RichardCTT/Portfolio-Management/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 建一个带种子数据的内存库，每个测试用例独立
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.Seed(db))
	return db
}

// settlementAsset 返回种子创建的现金结算账户
func settlementAsset(t *testing.T, db *gorm.DB) *models.Asset {
	t.Helper()

	var cash models.Asset
	require.NoError(t, db.Where("is_settlement = ?", true).First(&cash).Error)
	return &cash
}

// createStock 建一个股票类资产用于测试
func createStock(t *testing.T, db *gorm.DB, code string, quantity float64) *models.Asset {
	t.Helper()

	var stockType models.AssetType
	require.NoError(t, db.Where("name = ?", "Stock").First(&stockType).Error)

	asset := models.Asset{
		Name:        "Test Stock " + code,
		Code:        code,
		AssetTypeID: stockType.ID,
		Quantity:    quantity,
	}
	require.NoError(t, db.Create(&asset).Error)
	return &asset
}

// setPrice 写入某资产某日的价格
func setPrice(t *testing.T, db *gorm.DB, assetID uint, date string, price float64) {
	t.Helper()
	require.NoError(t, db.Create(&models.PriceDaily{
		AssetID: assetID,
		Date:    date,
		Price:   price,
	}).Error)
}

// setCash 直接设置现金余额（绕过交易引擎，仅用于准备测试数据）
func setCash(t *testing.T, db *gorm.DB, balance float64) *models.Asset {
	t.Helper()

	cash := settlementAsset(t, db)
	require.NoError(t, db.Model(&models.Asset{}).
		Where("id = ?", cash.ID).
		Update("quantity", balance).Error)
	cash.Quantity = balance
	return cash
}

// assetQuantity 读取资产当前数量
func assetQuantity(t *testing.T, db *gorm.DB, assetID uint) float64 {
	t.Helper()

	var asset models.Asset
	require.NoError(t, db.First(&asset, assetID).Error)
	return asset.Quantity
}

// transactionCount 某资产的交易记录数
func transactionCount(t *testing.T, db *gorm.DB, assetID uint) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).
		Where("asset_id = ?", assetID).
		Count(&count).Error)
	return count
}
