package implementation

import (
	"context"
	"errors"

	"ai-mailroom-be/internal/entity"
	"ai-mailroom-be/internal/mapper"
	"ai-mailroom-be/internal/model"
	"ai-mailroom-be/internal/repository/contract"
	"ai-mailroom-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmailClassificationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EmailClassificationMapper
}

func NewEmailClassificationRepository(db *gorm.DB) contract.EmailClassificationRepository {
	return &EmailClassificationRepositoryImpl{
		db:     db,
		mapper: mapper.NewEmailClassificationMapper(),
	}
}

func (r *EmailClassificationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *EmailClassificationRepositoryImpl) Upsert(ctx context.Context, classification *entity.EmailClassification) error {
	m := r.mapper.ToModel(classification)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"category"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*classification = *r.mapper.ToEntity(m)
	return nil
}

func (r *EmailClassificationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.EmailClassification, error) {
	var m model.EmailClassification
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *EmailClassificationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EmailClassification, error) {
	var models []*model.EmailClassification
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.EmailClassification, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
