package mapper

import (
	"ai-mailroom-be/internal/entity"
	"ai-mailroom-be/internal/model"
)

type EmailClassificationMapper struct{}

func NewEmailClassificationMapper() *EmailClassificationMapper {
	return &EmailClassificationMapper{}
}

func (m *EmailClassificationMapper) ToEntity(c *model.EmailClassification) *entity.EmailClassification {
	if c == nil {
		return nil
	}
	return &entity.EmailClassification{
		Id:        c.Id,
		EmailId:   c.EmailId,
		Category:  entity.EmailCategory(c.Category),
		CreatedAt: c.CreatedAt,
	}
}

func (m *EmailClassificationMapper) ToModel(c *entity.EmailClassification) *model.EmailClassification {
	if c == nil {
		return nil
	}
	return &model.EmailClassification{
		Id:        c.Id,
		EmailId:   c.EmailId,
		Category:  string(c.Category),
		CreatedAt: c.CreatedAt,
	}
}
