package models

import "time"

// Asset 表示一项资产
// Quantity 是当前持仓的权威缓存，只能由交易引擎在事务内更新，
// 必须始终等于该资产时间上最新一条交易记录的 Holding
type Asset struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:64;not null" json:"name"`
	Code         string    `gorm:"size:32;uniqueIndex;not null" json:"code"`
	AssetTypeID  uint      `gorm:"index;not null" json:"asset_type_id"`
	Quantity     float64   `gorm:"not null;default:0" json:"quantity"`
	IsSettlement bool      `gorm:"not null;default:false" json:"is_settlement"` // 现金结算账户标记
	Description  string    `gorm:"size:255" json:"description"`
	CreateDate   time.Time `gorm:"autoCreateTime" json:"create_date"`
}
