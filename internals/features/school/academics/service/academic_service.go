package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"schoolfee_backend/internals/features/school/academics/model"
	"schoolfee_backend/internals/features/school/academics/repository"
	"schoolfee_backend/internals/helpers/dberr"
)

var (
	ErrClassNotFound    = errors.New("class not found")
	ErrSectionNotFound  = errors.New("section not found")
	ErrTermNotFound     = errors.New("academic term not found")
	ErrDuplicateClass   = errors.New("class name already exists")
	ErrDuplicateSection = errors.New("section name already exists in this class")
	ErrDuplicateTerm    = errors.New("term name already exists for this year")
	ErrSectionClass     = errors.New("section does not belong to the class")
)

type Service struct {
	store repository.Store
}

func NewService(store repository.Store) *Service {
	return &Service{store: store}
}

func mapErr(err, notFound, dup error) error {
	switch {
	case errors.Is(err, dberr.ErrNotFound):
		return notFound
	case errors.Is(err, dberr.ErrDuplicate):
		return dup
	}
	return err
}

func (s *Service) CreateClass(ctx context.Context, m *model.Class) error {
	m.ClassName = strings.TrimSpace(m.ClassName)
	return mapErr(s.store.CreateClass(ctx, m), ErrClassNotFound, ErrDuplicateClass)
}

func (s *Service) ListClasses(ctx context.Context, onlyActive bool) ([]model.Class, error) {
	return s.store.ListClasses(ctx, onlyActive)
}

func (s *Service) GetClass(ctx context.Context, id uuid.UUID) (model.Class, error) {
	m, err := s.store.GetClass(ctx, id)
	return m, mapErr(err, ErrClassNotFound, ErrDuplicateClass)
}

func (s *Service) CreateSection(ctx context.Context, m *model.Section) error {
	if _, err := s.GetClass(ctx, m.SectionClassID); err != nil {
		return err
	}
	m.SectionName = strings.TrimSpace(m.SectionName)
	return mapErr(s.store.CreateSection(ctx, m), ErrSectionNotFound, ErrDuplicateSection)
}

func (s *Service) ListSections(ctx context.Context, classID uuid.UUID) ([]model.Section, error) {
	if _, err := s.GetClass(ctx, classID); err != nil {
		return nil, err
	}
	return s.store.ListSections(ctx, classID)
}

// SectionOf checks a section exists and sits under classID.
func (s *Service) SectionOf(ctx context.Context, classID, sectionID uuid.UUID) (model.Section, error) {
	sec, err := s.store.GetSection(ctx, sectionID)
	if err != nil {
		return sec, mapErr(err, ErrSectionNotFound, ErrDuplicateSection)
	}
	if sec.SectionClassID != classID {
		return sec, ErrSectionClass
	}
	return sec, nil
}

func (s *Service) CreateTerm(ctx context.Context, m *model.AcademicTerm) error {
	if err := m.Normalize(); err != nil {
		return err
	}
	return mapErr(s.store.CreateTerm(ctx, m), ErrTermNotFound, ErrDuplicateTerm)
}

func (s *Service) UpdateTerm(ctx context.Context, id uuid.UUID, apply func(*model.AcademicTerm)) (model.AcademicTerm, error) {
	m, err := s.GetTerm(ctx, id)
	if err != nil {
		return m, err
	}
	apply(&m)
	if err := m.Normalize(); err != nil {
		return m, err
	}
	return m, mapErr(s.store.SaveTerm(ctx, &m), ErrTermNotFound, ErrDuplicateTerm)
}

func (s *Service) GetTerm(ctx context.Context, id uuid.UUID) (model.AcademicTerm, error) {
	m, err := s.store.GetTerm(ctx, id)
	return m, mapErr(err, ErrTermNotFound, ErrDuplicateTerm)
}

func (s *Service) ListTerms(ctx context.Context, f repository.TermFilter) ([]model.AcademicTerm, int64, error) {
	return s.store.ListTerms(ctx, f)
}

/* ============ lookups for other features ============ */

func (s *Service) ClassExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.exists(s.GetClass(ctx, id))
}

func (s *Service) TermExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.exists(s.GetTerm(ctx, id))
}

func (s *Service) exists(_ any, err error) (bool, error) {
	if errors.Is(err, ErrClassNotFound) || errors.Is(err, ErrTermNotFound) {
		return false, nil
	}
	return err == nil, err
}
