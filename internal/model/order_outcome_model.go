package model

import (
	"time"

	"github.com/google/uuid"
)

type OrderOutcome struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmailId   string    `gorm:"type:varchar(64);not null;index"`
	ProductId string    `gorm:"type:varchar(64);not null;index"`
	Quantity  int       `gorm:"not null"`
	Status    string    `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (OrderOutcome) TableName() string {
	return "order_outcomes"
}
