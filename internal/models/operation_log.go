package models

import "time"

// OperationLog 记录对账本有写入影响的 API 调用
type OperationLog struct {
	ID        uint      `gorm:"primaryKey"`
	RequestID string    `gorm:"size:36;index"`
	Method    string    `gorm:"size:8;not null"`
	Path      string    `gorm:"size:255;not null"`
	Status    int       `gorm:"not null"`
	LatencyMs int64     `gorm:"not null"`
	ClientIP  string    `gorm:"size:64"`
	CreatedAt time.Time
}
