package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"schoolfee_backend/internals/features/school/academics/model"
	"schoolfee_backend/internals/features/school/academics/repository"
	"schoolfee_backend/internals/helpers/dberr"
)

type academicStore struct{ view }

func NewAcademicStore(db *DB) repository.Store {
	return &academicStore{view{db: db}}
}

func (s *academicStore) CreateClass(ctx context.Context, m *model.Class) error {
	defer s.lock()()
	for _, c := range s.db.t.classes {
		if strings.EqualFold(c.ClassName, m.ClassName) {
			return dberr.ErrDuplicate
		}
	}
	m.ClassID = newID(m.ClassID)
	now := s.db.now()
	m.ClassCreatedAt, m.ClassUpdatedAt = now, now
	s.db.t.classes[m.ClassID] = *m
	return nil
}

func (s *academicStore) GetClass(ctx context.Context, id uuid.UUID) (model.Class, error) {
	defer s.rlock()()
	c, ok := s.db.t.classes[id]
	if !ok {
		return model.Class{}, dberr.ErrNotFound
	}
	return c, nil
}

func (s *academicStore) ListClasses(ctx context.Context, onlyActive bool) ([]model.Class, error) {
	defer s.rlock()()
	out := make([]model.Class, 0)
	for _, c := range s.db.t.classes {
		if onlyActive && !c.ClassIsActive {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ClassLevel != out[j].ClassLevel {
			return out[i].ClassLevel < out[j].ClassLevel
		}
		return out[i].ClassName < out[j].ClassName
	})
	return out, nil
}

func (s *academicStore) CreateSection(ctx context.Context, m *model.Section) error {
	defer s.lock()()
	for _, sec := range s.db.t.sections {
		if sec.SectionClassID == m.SectionClassID && strings.EqualFold(sec.SectionName, m.SectionName) {
			return dberr.ErrDuplicate
		}
	}
	m.SectionID = newID(m.SectionID)
	now := s.db.now()
	m.SectionCreatedAt, m.SectionUpdatedAt = now, now
	s.db.t.sections[m.SectionID] = *m
	return nil
}

func (s *academicStore) GetSection(ctx context.Context, id uuid.UUID) (model.Section, error) {
	defer s.rlock()()
	sec, ok := s.db.t.sections[id]
	if !ok {
		return model.Section{}, dberr.ErrNotFound
	}
	return sec, nil
}

func (s *academicStore) ListSections(ctx context.Context, classID uuid.UUID) ([]model.Section, error) {
	defer s.rlock()()
	out := make([]model.Section, 0)
	for _, sec := range s.db.t.sections {
		if sec.SectionClassID == classID {
			out = append(out, sec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SectionName < out[j].SectionName })
	return out, nil
}

func (s *academicStore) termTaken(m *model.AcademicTerm) bool {
	for _, t := range s.db.t.terms {
		if t.AcademicTermID != m.AcademicTermID && t.AcademicTermYear == m.AcademicTermYear &&
			strings.EqualFold(t.AcademicTermName, m.AcademicTermName) {
			return true
		}
	}
	return false
}

func (s *academicStore) CreateTerm(ctx context.Context, m *model.AcademicTerm) error {
	defer s.lock()()
	if s.termTaken(m) {
		return dberr.ErrDuplicate
	}
	m.AcademicTermID = newID(m.AcademicTermID)
	now := s.db.now()
	m.AcademicTermCreatedAt, m.AcademicTermUpdatedAt = now, now
	s.db.t.terms[m.AcademicTermID] = *m
	return nil
}

func (s *academicStore) SaveTerm(ctx context.Context, m *model.AcademicTerm) error {
	defer s.lock()()
	if _, ok := s.db.t.terms[m.AcademicTermID]; !ok {
		return dberr.ErrNotFound
	}
	if s.termTaken(m) {
		return dberr.ErrDuplicate
	}
	m.AcademicTermUpdatedAt = s.db.now()
	s.db.t.terms[m.AcademicTermID] = *m
	return nil
}

func (s *academicStore) GetTerm(ctx context.Context, id uuid.UUID) (model.AcademicTerm, error) {
	defer s.rlock()()
	t, ok := s.db.t.terms[id]
	if !ok {
		return model.AcademicTerm{}, dberr.ErrNotFound
	}
	return t, nil
}

func (s *academicStore) ListTerms(ctx context.Context, f repository.TermFilter) ([]model.AcademicTerm, int64, error) {
	defer s.rlock()()
	rows := make([]model.AcademicTerm, 0)
	for _, t := range s.db.t.terms {
		if f.Year != nil && t.AcademicTermYear != *f.Year {
			continue
		}
		if f.OnlyActive && !t.AcademicTermIsActive {
			continue
		}
		rows = append(rows, t)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AcademicTermStartDate.After(rows[j].AcademicTermStartDate) })
	return window(rows, f.Limit, f.Offset), int64(len(rows)), nil
}
