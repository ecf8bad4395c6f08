package model

import (
	"time"

	"github.com/google/uuid"
)

type EmailClassification struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmailId   string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	Category  string    `gorm:"type:varchar(32);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (EmailClassification) TableName() string {
	return "email_classifications"
}
