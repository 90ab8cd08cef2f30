package inmem

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolfee_backend/internals/features/school/admissions/model"
	"schoolfee_backend/internals/features/school/admissions/repository"
	"schoolfee_backend/internals/helpers/dberr"
)

type admissionStore struct{ view }

func NewAdmissionStore(db *DB) repository.Store {
	return &admissionStore{view{db: db}}
}

func (s *admissionStore) Transaction(ctx context.Context, fn func(repository.Store) error) error {
	return s.tx(func(v view) error { return fn(&admissionStore{v}) })
}

func (s *admissionStore) CreateChild(ctx context.Context, m *model.Child) error {
	defer s.lock()()
	m.ChildID = newID(m.ChildID)
	m.ChildCreatedAt = s.db.now()
	s.db.t.children[m.ChildID] = *m
	return nil
}

func (s *admissionStore) GetChild(ctx context.Context, id uuid.UUID) (model.Child, error) {
	defer s.rlock()()
	c, ok := s.db.t.children[id]
	if !ok {
		return c, dberr.ErrNotFound
	}
	return c, nil
}

func (s *admissionStore) CreateAdmission(ctx context.Context, m *model.Admission) error {
	defer s.lock()()
	if _, ok := s.db.t.children[m.AdmissionChildID]; !ok {
		return dberr.ErrNotFound
	}
	m.AdmissionID = newID(m.AdmissionID)
	if m.AdmissionStatus == "" {
		m.AdmissionStatus = model.AdmissionPending
	}
	now := s.db.now()
	m.AdmissionCreatedAt, m.AdmissionUpdatedAt = now, now
	row := *m
	row.Child = nil
	s.db.t.admissions[m.AdmissionID] = row
	return nil
}

func (s *admissionStore) withChild(a model.Admission) model.Admission {
	if c, ok := s.db.t.children[a.AdmissionChildID]; ok {
		a.Child = &c
	}
	return a
}

func (s *admissionStore) GetAdmission(ctx context.Context, id uuid.UUID) (model.Admission, error) {
	defer s.rlock()()
	a, ok := s.db.t.admissions[id]
	if !ok {
		return a, dberr.ErrNotFound
	}
	return s.withChild(a), nil
}

func (s *admissionStore) ListAdmissions(ctx context.Context, f repository.AdmissionFilter) ([]model.Admission, int64, error) {
	defer s.rlock()()
	kw := strings.ToLower(strings.TrimSpace(f.Search))
	rows := make([]model.Admission, 0)
	for _, a := range s.db.t.admissions {
		if f.Status != nil && a.AdmissionStatus != *f.Status {
			continue
		}
		a = s.withChild(a)
		if kw != "" && (a.Child == nil || !strings.Contains(strings.ToLower(a.Child.ChildFullName), kw)) {
			continue
		}
		rows = append(rows, a)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AdmissionCreatedAt.After(rows[j].AdmissionCreatedAt) })
	return window(rows, f.Limit, f.Offset), int64(len(rows)), nil
}

func (s *admissionStore) setStatus(a *model.Admission, to model.AdmissionStatus, remarks *string, by string, at time.Time) {
	a.AdmissionStatus = to
	a.AdmissionRemarks = remarks
	a.AdmissionProcessedBy = &by
	a.AdmissionProcessedAt = &at
	a.AdmissionUpdatedAt = s.db.now()
}

func (s *admissionStore) UpdateStatus(ctx context.Context, id uuid.UUID, to model.AdmissionStatus, remarks *string, by string, at time.Time) error {
	defer s.lock()()
	a, ok := s.db.t.admissions[id]
	if !ok {
		return dberr.ErrNotFound
	}
	s.setStatus(&a, to, remarks, by, at)
	s.db.t.admissions[id] = a
	return nil
}

func (s *admissionStore) Decide(ctx context.Context, id uuid.UUID, to model.AdmissionStatus, remarks *string, by string, at time.Time) (bool, error) {
	defer s.lock()()
	a, ok := s.db.t.admissions[id]
	if !ok || a.AdmissionStatus != model.AdmissionPending {
		return false, nil
	}
	s.setStatus(&a, to, remarks, by, at)
	s.db.t.admissions[id] = a
	return true, nil
}

func (s *admissionStore) Reopen(ctx context.Context, id uuid.UUID) (bool, error) {
	defer s.lock()()
	a, ok := s.db.t.admissions[id]
	if !ok || a.AdmissionStatus != model.AdmissionApproved {
		return false, nil
	}
	a.AdmissionStatus = model.AdmissionPending
	a.AdmissionRemarks, a.AdmissionProcessedBy, a.AdmissionProcessedAt, a.AdmissionStudentID = nil, nil, nil, nil
	a.AdmissionUpdatedAt = s.db.now()
	s.db.t.admissions[id] = a
	return true, nil
}

func (s *admissionStore) DeleteStudent(ctx context.Context, id uuid.UUID) error {
	defer s.lock()()
	if _, ok := s.db.t.students[id]; !ok {
		return dberr.ErrNotFound
	}
	for eid, e := range s.db.t.enrollments {
		if e.TermEnrollmentStudentID == id {
			delete(s.db.t.enrollments, eid)
		}
	}
	delete(s.db.t.students, id)
	return nil
}

func (s *admissionStore) LinkStudent(ctx context.Context, admissionID, studentID uuid.UUID) error {
	defer s.lock()()
	a, ok := s.db.t.admissions[admissionID]
	if !ok {
		return dberr.ErrNotFound
	}
	a.AdmissionStudentID = &studentID
	s.db.t.admissions[admissionID] = a
	return nil
}

func (s *admissionStore) NextStudentSeq(ctx context.Context, year int) (int, error) {
	defer s.lock()()
	s.db.t.studentSeq[year]++
	return s.db.t.studentSeq[year], nil
}

func (s *admissionStore) CreateStudent(ctx context.Context, m *model.Student) error {
	defer s.lock()()
	for _, st := range s.db.t.students {
		if st.StudentNo == m.StudentNo || st.StudentAdmissionID == m.StudentAdmissionID {
			return dberr.ErrDuplicate
		}
	}
	m.StudentID = newID(m.StudentID)
	m.StudentCreatedAt = s.db.now()
	s.db.t.students[m.StudentID] = *m
	return nil
}

func (s *admissionStore) GetStudent(ctx context.Context, id uuid.UUID) (model.Student, error) {
	defer s.rlock()()
	st, ok := s.db.t.students[id]
	if !ok {
		return st, dberr.ErrNotFound
	}
	return st, nil
}

func (s *admissionStore) CreateEnrollment(ctx context.Context, m *model.TermEnrollment) error {
	defer s.lock()()
	for _, e := range s.db.t.enrollments {
		if e.TermEnrollmentStudentID == m.TermEnrollmentStudentID && e.TermEnrollmentTermID == m.TermEnrollmentTermID {
			return dberr.ErrDuplicate
		}
	}
	m.TermEnrollmentID = newID(m.TermEnrollmentID)
	if m.TermEnrollmentStatus == "" {
		m.TermEnrollmentStatus = model.EnrollmentPending
	}
	now := s.db.now()
	m.TermEnrollmentCreatedAt, m.TermEnrollmentUpdatedAt = now, now
	s.db.t.enrollments[m.TermEnrollmentID] = *m
	return nil
}

func (s *admissionStore) GetEnrollmentByInvoice(ctx context.Context, invoiceID uuid.UUID) (model.TermEnrollment, error) {
	defer s.rlock()()
	for _, e := range s.db.t.enrollments {
		if e.TermEnrollmentInvoiceID != nil && *e.TermEnrollmentInvoiceID == invoiceID {
			return e, nil
		}
	}
	return model.TermEnrollment{}, dberr.ErrNotFound
}

func (s *admissionStore) ListEnrollments(ctx context.Context, studentID uuid.UUID) ([]model.TermEnrollment, error) {
	defer s.rlock()()
	rows := make([]model.TermEnrollment, 0)
	for _, e := range s.db.t.enrollments {
		if e.TermEnrollmentStudentID == studentID {
			rows = append(rows, e)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TermEnrollmentCreatedAt.Before(rows[j].TermEnrollmentCreatedAt) })
	return rows, nil
}

func (s *admissionStore) SetEnrollmentInvoice(ctx context.Context, id, invoiceID uuid.UUID) error {
	defer s.lock()()
	e, ok := s.db.t.enrollments[id]
	if !ok {
		return dberr.ErrNotFound
	}
	e.TermEnrollmentInvoiceID = &invoiceID
	e.TermEnrollmentUpdatedAt = s.db.now()
	s.db.t.enrollments[id] = e
	return nil
}

func (s *admissionStore) SetEnrollmentStatus(ctx context.Context, id uuid.UUID, to model.EnrollmentStatus) error {
	defer s.lock()()
	e, ok := s.db.t.enrollments[id]
	if !ok {
		return dberr.ErrNotFound
	}
	e.TermEnrollmentStatus = to
	e.TermEnrollmentUpdatedAt = s.db.now()
	s.db.t.enrollments[id] = e
	return nil
}
