package model

import (
	"time"
)

type Product struct {
	Id          string `gorm:"type:varchar(64);primaryKey"`
	Name        string `gorm:"type:varchar(255);not null"`
	Category    string `gorm:"type:varchar(128);index"`
	Stock       int    `gorm:"not null;default:0;check:stock >= 0"`
	Description string `gorm:"type:text"`
	Season      string `gorm:"type:varchar(32)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Product) TableName() string {
	return "products"
}
