package database

import (
	"fmt"

	"github.com/RichardCTT/Portfolio-Management/internal/models"

	"gorm.io/gorm"
)

// Seed 在空库上写入基础数据：六种资产类型和现金结算账户
// 已有数据时不做任何修改
func Seed(db *gorm.DB) error {
	var typeCount int64
	if err := db.Model(&models.AssetType{}).Count(&typeCount).Error; err != nil {
		return fmt.Errorf("count asset types: %w", err)
	}

	if typeCount == 0 {
		assetTypes := []models.AssetType{
			{Name: "Cash", Unit: "USD", Description: "Cash and cash equivalents"},
			{Name: "Stock", Unit: "shares", Description: "Listed company shares"},
			{Name: "Bond", Unit: "units", Description: "Government and corporate bonds"},
			{Name: "Cryptocurrency", Unit: "coins", Description: "Digital currencies"},
			{Name: "Foreign Currency", Unit: "units", Description: "Non-USD currency holdings"},
			{Name: "Futures", Unit: "contracts", Description: "Futures contracts"},
		}
		if err := db.Create(&assetTypes).Error; err != nil {
			return fmt.Errorf("seed asset types: %w", err)
		}
	}

	// 现金结算账户：买卖交易的对手方账户，必须存在且唯一
	var settlementCount int64
	if err := db.Model(&models.Asset{}).
		Where("is_settlement = ?", true).
		Count(&settlementCount).Error; err != nil {
		return fmt.Errorf("count settlement assets: %w", err)
	}

	if settlementCount == 0 {
		var cashType models.AssetType
		if err := db.Where("name = ?", "Cash").First(&cashType).Error; err != nil {
			return fmt.Errorf("find cash asset type: %w", err)
		}
		cash := models.Asset{
			Name:         "USD Cash",
			Code:         "CASH001",
			AssetTypeID:  cashType.ID,
			Quantity:     0,
			IsSettlement: true,
			Description:  "Settlement account for buy/sell trades",
		}
		if err := db.Create(&cash).Error; err != nil {
			return fmt.Errorf("seed settlement asset: %w", err)
		}
	}

	return nil
}
