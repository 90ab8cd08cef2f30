package repository

import (
	"context"

	"github.com/google/uuid"

	"schoolfee_backend/internals/features/school/academics/model"
)

type TermFilter struct {
	Year       *int
	OnlyActive bool
	Limit      int
	Offset     int
}

type Store interface {
	CreateClass(ctx context.Context, m *model.Class) error
	GetClass(ctx context.Context, id uuid.UUID) (model.Class, error)
	ListClasses(ctx context.Context, onlyActive bool) ([]model.Class, error)

	CreateSection(ctx context.Context, m *model.Section) error
	GetSection(ctx context.Context, id uuid.UUID) (model.Section, error)
	ListSections(ctx context.Context, classID uuid.UUID) ([]model.Section, error)

	CreateTerm(ctx context.Context, m *model.AcademicTerm) error
	SaveTerm(ctx context.Context, m *model.AcademicTerm) error
	GetTerm(ctx context.Context, id uuid.UUID) (model.AcademicTerm, error)
	ListTerms(ctx context.Context, f TermFilter) ([]model.AcademicTerm, int64, error)
}
