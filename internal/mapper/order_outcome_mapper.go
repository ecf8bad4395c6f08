package mapper

import (
	"ai-mailroom-be/internal/entity"
	"ai-mailroom-be/internal/model"
)

type OrderOutcomeMapper struct{}

func NewOrderOutcomeMapper() *OrderOutcomeMapper {
	return &OrderOutcomeMapper{}
}

func (m *OrderOutcomeMapper) ToEntity(o *model.OrderOutcome) *entity.OrderOutcome {
	if o == nil {
		return nil
	}
	return &entity.OrderOutcome{
		Id:        o.Id,
		EmailId:   o.EmailId,
		ProductId: o.ProductId,
		Quantity:  o.Quantity,
		Status:    entity.OutcomeStatus(o.Status),
		CreatedAt: o.CreatedAt,
	}
}

func (m *OrderOutcomeMapper) ToModel(o *entity.OrderOutcome) *model.OrderOutcome {
	if o == nil {
		return nil
	}
	return &model.OrderOutcome{
		Id:        o.Id,
		EmailId:   o.EmailId,
		ProductId: o.ProductId,
		Quantity:  o.Quantity,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
}
