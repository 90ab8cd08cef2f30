package repository

import (
	"context"

	"github.com/google/uuid"

	"schoolfee_backend/internals/features/finance/installments/model"
)

type PlanFilter struct {
	OnlyActive bool
	Search     string
	Order      string
	Limit      int
	Offset     int
}

type Store interface {
	Create(ctx context.Context, m *model.InstallmentPlan) error
	Save(ctx context.Context, m *model.InstallmentPlan) error
	Get(ctx context.Context, id uuid.UUID) (model.InstallmentPlan, error)
	List(ctx context.Context, f PlanFilter) ([]model.InstallmentPlan, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
