package entity

import (
	"time"

	"github.com/google/uuid"
)

// OrderLine is one (product, quantity) request parsed from an order email.
type OrderLine struct {
	EmailId   string
	ProductId string
	Quantity  int
}

type OutcomeStatus string

const (
	OutcomeCreated    OutcomeStatus = "created"
	OutcomeOutOfStock OutcomeStatus = "out_of_stock"
)

// OrderOutcome records the result of exactly one OrderLine. Append-only.
type OrderOutcome struct {
	Id        uuid.UUID
	EmailId   string
	ProductId string
	Quantity  int
	Status    OutcomeStatus
	CreatedAt time.Time
}
