package entity

import (
	"time"

	"github.com/google/uuid"
)

// Email is an incoming customer email as handed over by the mailbox importer.
type Email struct {
	Id      string
	From    string // sender address; empty when the importer stripped it
	Subject string
	Message string
}

type EmailCategory string

const (
	CategoryProductInquiry EmailCategory = "product inquiry"
	CategoryOrderRequest   EmailCategory = "order request"
	CategoryUnclassified   EmailCategory = "unclassified"
)

type EmailClassification struct {
	Id        uuid.UUID
	EmailId   string
	Category  EmailCategory
	CreatedAt time.Time
}
