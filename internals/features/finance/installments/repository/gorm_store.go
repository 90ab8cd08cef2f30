package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/finance/installments/model"
	"schoolfee_backend/internals/helpers/dberr"
)

type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Create(ctx context.Context, m *model.InstallmentPlan) error {
	return dberr.Map(s.db.WithContext(ctx).Create(m).Error)
}

func (s *gormStore) Save(ctx context.Context, m *model.InstallmentPlan) error {
	return dberr.Map(s.db.WithContext(ctx).Save(m).Error)
}

func (s *gormStore) Get(ctx context.Context, id uuid.UUID) (model.InstallmentPlan, error) {
	var m model.InstallmentPlan
	err := s.db.WithContext(ctx).First(&m, "installment_plan_id = ?", id).Error
	return m, dberr.Map(err)
}

func (s *gormStore) List(ctx context.Context, f PlanFilter) ([]model.InstallmentPlan, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.InstallmentPlan{})
	if f.OnlyActive {
		q = q.Where("installment_plan_is_active = ?", true)
	}
	if kw := strings.TrimSpace(f.Search); kw != "" {
		q = q.Where("installment_plan_name ILIKE ?", "%"+kw+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Order != "" {
		q = q.Order(f.Order)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var rows []model.InstallmentPlan
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *gormStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&model.InstallmentPlan{}, "installment_plan_id = ?", id)
	if res.Error != nil {
		return dberr.Map(res.Error)
	}
	if res.RowsAffected == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
