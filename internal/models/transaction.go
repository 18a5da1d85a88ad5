package models

import "time"

// 交易类型：IN=买入/入账, OUT=卖出/出账
const (
	TransactionIn  = "IN"
	TransactionOut = "OUT"
)

// Transaction 表示账本中一条不可变的交易记录
// Holding 在插入时固定为交易后的资产余额，是历史持仓重放的数据来源
// 排序规则：(transaction_date, id) 升序，id 用于同日交易的先后
type Transaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	AssetID         uint      `gorm:"index;not null" json:"asset_id"`
	TransactionType string    `gorm:"size:8;not null" json:"transaction_type"`
	Quantity        float64   `gorm:"not null" json:"quantity"`
	Price           float64   `gorm:"not null" json:"price"`
	TransactionDate string    `gorm:"size:10;index;not null" json:"transaction_date"` // YYYY-MM-DD
	Holding         float64   `gorm:"not null" json:"holding"`
	Description     string    `gorm:"size:255" json:"description"`
	CreateDate      time.Time `gorm:"autoCreateTime" json:"create_date"`
}
