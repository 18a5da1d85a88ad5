package models

// AssetType represents a category of assets (cash / stock / bond / ...).
type AssetType struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:64;not null" json:"name"`
	Unit        string `gorm:"size:32" json:"unit"`
	Description string `gorm:"size:255" json:"description"`
}
