package models

import "time"

// PriceDaily 表示某资产某一天的收盘价
// (asset_id, date) 唯一，重复写入按更新处理
type PriceDaily struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AssetID    uint      `gorm:"not null;uniqueIndex:idx_price_asset_date" json:"asset_id"`
	Date       string    `gorm:"size:10;not null;uniqueIndex:idx_price_asset_date" json:"date"` // YYYY-MM-DD
	Price      float64   `gorm:"not null" json:"price"`
	CreateDate time.Time `gorm:"autoCreateTime" json:"create_date"`
}
