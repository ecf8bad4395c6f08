package implementation

import (
	"context"

	"ai-mailroom-be/internal/entity"
	"ai-mailroom-be/internal/mapper"
	"ai-mailroom-be/internal/model"
	"ai-mailroom-be/internal/repository/contract"
	"ai-mailroom-be/internal/repository/specification"

	"gorm.io/gorm"
)

type OrderOutcomeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.OrderOutcomeMapper
}

func NewOrderOutcomeRepository(db *gorm.DB) contract.OrderOutcomeRepository {
	return &OrderOutcomeRepositoryImpl{
		db:     db,
		mapper: mapper.NewOrderOutcomeMapper(),
	}
}

func (r *OrderOutcomeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *OrderOutcomeRepositoryImpl) Create(ctx context.Context, outcome *entity.OrderOutcome) error {
	m := r.mapper.ToModel(outcome)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*outcome = *r.mapper.ToEntity(m)
	return nil
}

func (r *OrderOutcomeRepositoryImpl) CreateBulk(ctx context.Context, outcomes []*entity.OrderOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	models := make([]*model.OrderOutcome, len(outcomes))
	for i, o := range outcomes {
		models[i] = r.mapper.ToModel(o)
	}
	return r.db.WithContext(ctx).CreateInBatches(models, 500).Error
}

func (r *OrderOutcomeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.OrderOutcome, error) {
	var models []*model.OrderOutcome
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.OrderOutcome, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *OrderOutcomeRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.OrderOutcome{}).Count(&count).Error
	return count, err
}
