package mapper

import (
	"ai-mailroom-be/internal/entity"
	"ai-mailroom-be/internal/model"
)

type ProductMapper struct{}

func NewProductMapper() *ProductMapper {
	return &ProductMapper{}
}

func (m *ProductMapper) ToEntity(p *model.Product) *entity.Product {
	if p == nil {
		return nil
	}
	return &entity.Product{
		Id:          p.Id,
		Name:        p.Name,
		Category:    p.Category,
		Stock:       p.Stock,
		Description: p.Description,
		Season:      p.Season,
	}
}

func (m *ProductMapper) ToModel(p *entity.Product) *model.Product {
	if p == nil {
		return nil
	}
	return &model.Product{
		Id:          p.Id,
		Name:        p.Name,
		Category:    p.Category,
		Stock:       p.Stock,
		Description: p.Description,
		Season:      p.Season,
	}
}
