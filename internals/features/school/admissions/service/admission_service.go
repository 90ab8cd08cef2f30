package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	invoiceModel "schoolfee_backend/internals/features/finance/invoices/model"
	invoiceService "schoolfee_backend/internals/features/finance/invoices/service"
	academicModel "schoolfee_backend/internals/features/school/academics/model"
	"schoolfee_backend/internals/features/school/admissions/model"
	"schoolfee_backend/internals/features/school/admissions/repository"
	"schoolfee_backend/internals/helpers/dberr"
	"schoolfee_backend/internals/notifications"
	"schoolfee_backend/internals/reporting"
)

var (
	ErrAdmissionNotFound = errors.New("admission not found")
	ErrStudentNotFound   = errors.New("student not found")
	ErrInvalidTransition = errors.New("admission has already been processed")
	ErrRemarksRequired   = errors.New("remarks are required when rejecting an admission")
	ErrClassNotFound     = errors.New("class not found")
	ErrTermNotFound      = errors.New("academic term not found")
	ErrInvoicingDisabled = errors.New("enrollment invoicing is not configured")
)

// Placement checks the class/section/term an approval points at. Optional.
type Placement interface {
	ClassExists(ctx context.Context, id uuid.UUID) (bool, error)
	TermExists(ctx context.Context, id uuid.UUID) (bool, error)
	SectionOf(ctx context.Context, classID, sectionID uuid.UUID) (academicModel.Section, error)
}

// InvoiceComposer is the part of the invoices service approval needs.
type InvoiceComposer interface {
	ComposeLines(ctx context.Context, classID, termID uuid.UUID, optionalIDs []uuid.UUID) ([]invoiceModel.InvoiceItem, error)
	Compose(ctx context.Context, in invoiceService.ComposeInput) (invoiceModel.Invoice, error)
}

type SubmitInput struct {
	Child            model.Child
	PreferredClassID *uuid.UUID
}

type ApproveInput struct {
	ClassID       uuid.UUID
	SectionID     *uuid.UUID
	TermID        uuid.UUID
	Remarks       *string
	Processor     string
	WithInvoice   bool
	OptionalItems []uuid.UUID
	DueDate       *time.Time
}

type Approval struct {
	Admission  model.Admission
	Student    model.Student
	Enrollment model.TermEnrollment
	Invoice    *invoiceModel.Invoice
}

type Service struct {
	store     repository.Store
	placement Placement
	invoices  InvoiceComposer
	notifier  notifications.Notifier
	Now       func() time.Time
}

func NewService(store repository.Store, placement Placement, invoices InvoiceComposer, notifier notifications.Notifier) *Service {
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	return &Service{store: store, placement: placement, invoices: invoices, notifier: notifier, Now: time.Now}
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (model.Admission, error) {
	child := in.Child
	child.ChildFullName = strings.TrimSpace(child.ChildFullName)
	child.ChildGuardianName = strings.TrimSpace(child.ChildGuardianName)
	child.ChildGuardianEmail = strings.ToLower(strings.TrimSpace(child.ChildGuardianEmail))

	var out model.Admission
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.CreateChild(ctx, &child); err != nil {
			return err
		}
		out = model.Admission{
			AdmissionChildID:          child.ChildID,
			AdmissionPreferredClassID: in.PreferredClassID,
			AdmissionStatus:           model.AdmissionPending,
		}
		return tx.CreateAdmission(ctx, &out)
	})
	if err != nil {
		return model.Admission{}, err
	}
	out.Child = &child
	log.Printf("[INFO] admission %s submitted for %s", out.AdmissionID, child.ChildFullName)
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (model.Admission, error) {
	m, err := s.store.GetAdmission(ctx, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return m, ErrAdmissionNotFound
	}
	return m, err
}

func (s *Service) List(ctx context.Context, f repository.AdmissionFilter) ([]model.Admission, int64, error) {
	return s.store.ListAdmissions(ctx, f)
}

func (s *Service) GetStudent(ctx context.Context, id uuid.UUID) (model.Student, []model.TermEnrollment, error) {
	st, err := s.store.GetStudent(ctx, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return st, nil, ErrStudentNotFound
	}
	if err != nil {
		return st, nil, err
	}
	enr, err := s.store.ListEnrollments(ctx, id)
	return st, enr, err
}

func (s *Service) checkPlacement(ctx context.Context, in ApproveInput) error {
	if s.placement == nil {
		return nil
	}
	ok, err := s.placement.ClassExists(ctx, in.ClassID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrClassNotFound
	}
	if ok, err = s.placement.TermExists(ctx, in.TermID); err != nil {
		return err
	} else if !ok {
		return ErrTermNotFound
	}
	if in.SectionID != nil {
		if _, err := s.placement.SectionOf(ctx, in.ClassID, *in.SectionID); err != nil {
			return err
		}
	}
	return nil
}

// Approve turns a pending admission into a student with an enrollment for the term.
// With WithInvoice the enrollment stays pending until its invoice is approved.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, in ApproveInput) (Approval, error) {
	var out Approval
	if in.WithInvoice && s.invoices == nil {
		return out, ErrInvoicingDisabled
	}
	cur, err := s.Get(ctx, id)
	if err != nil {
		return out, err
	}
	if cur.AdmissionStatus != model.AdmissionPending {
		return out, ErrInvalidTransition
	}
	if err := s.checkPlacement(ctx, in); err != nil {
		return out, err
	}
	if in.WithInvoice {
		// fail on bad optional items before anything is written
		if _, err := s.invoices.ComposeLines(ctx, in.ClassID, in.TermID, in.OptionalItems); err != nil {
			return out, err
		}
	}

	now := s.Now()
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		ok, err := tx.Decide(ctx, id, model.AdmissionApproved, in.Remarks, in.Processor, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}
		seq, err := tx.NextStudentSeq(ctx, now.Year())
		if err != nil {
			return fmt.Errorf("student sequence: %w", err)
		}
		out.Student = model.Student{
			StudentNo:          model.StudentNo(now.Year(), seq),
			StudentChildID:     cur.AdmissionChildID,
			StudentClassID:     in.ClassID,
			StudentSectionID:   in.SectionID,
			StudentAdmissionID: id,
		}
		if err := tx.CreateStudent(ctx, &out.Student); err != nil {
			return err
		}
		status := model.EnrollmentEnrolled
		if in.WithInvoice {
			status = model.EnrollmentPending
		}
		out.Enrollment = model.TermEnrollment{
			TermEnrollmentStudentID: out.Student.StudentID,
			TermEnrollmentTermID:    in.TermID,
			TermEnrollmentStatus:    status,
		}
		if err := tx.CreateEnrollment(ctx, &out.Enrollment); err != nil {
			return err
		}
		return tx.LinkStudent(ctx, id, out.Student.StudentID)
	})
	if err != nil {
		return out, err
	}
	log.Printf("[INFO] admission %s approved by %s: student %s", id, in.Processor, out.Student.StudentNo)

	if in.WithInvoice {
		inv, err := s.invoices.Compose(ctx, invoiceService.ComposeInput{
			StudentID:          out.Student.StudentID,
			ClassID:            in.ClassID,
			TermID:             in.TermID,
			OptionalFeeItemIDs: in.OptionalItems,
			Kind:               invoiceModel.InvoiceKindEnrollment,
			DueDate:            in.DueDate,
		})
		if err == nil {
			err = s.store.SetEnrollmentInvoice(ctx, out.Enrollment.TermEnrollmentID, inv.InvoiceID)
			if err != nil {
				log.Printf("[WARN] enrollment invoice %s left unlinked", inv.InvoiceNo)
			}
		}
		if err != nil {
			return Approval{}, s.undoApproval(ctx, id, out.Student, err)
		}
		out.Enrollment.TermEnrollmentInvoiceID = &inv.InvoiceID
		out.Invoice = &inv
	}

	if out.Admission, err = s.Get(ctx, id); err != nil {
		return out, err
	}
	s.notifyDecision(ctx, out.Admission, out.Student.StudentNo)
	return out, nil
}

// undoApproval reverts an approval whose enrollment invoice could not be issued, so the
// admission is pending again and can be retried.
func (s *Service) undoApproval(ctx context.Context, id uuid.UUID, st model.Student, cause error) error {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.DeleteStudent(ctx, st.StudentID); err != nil {
			return err
		}
		ok, err := tx.Reopen(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		reporting.Error(ctx, err, map[string]interface{}{"admission_id": id.String(), "student_no": st.StudentNo})
		return fmt.Errorf("enrollment invoice not issued (%w), approval could not be undone: %v", cause, err)
	}
	log.Printf("[WARN] admission %s back to pending, enrollment invoice failed: %v", id, cause)
	return fmt.Errorf("enrollment invoice not issued, approval undone: %w", cause)
}

func (s *Service) Reject(ctx context.Context, id uuid.UUID, remarks, processor string) (model.Admission, error) {
	remarks = strings.TrimSpace(remarks)
	if remarks == "" {
		return model.Admission{}, ErrRemarksRequired
	}
	if _, err := s.Get(ctx, id); err != nil {
		return model.Admission{}, err
	}
	ok, err := s.store.Decide(ctx, id, model.AdmissionRejected, &remarks, processor, s.Now())
	if err != nil {
		return model.Admission{}, err
	}
	if !ok {
		return model.Admission{}, ErrInvalidTransition
	}
	m, err := s.Get(ctx, id)
	if err != nil {
		return m, err
	}
	log.Printf("[INFO] admission %s rejected by %s", id, processor)
	s.notifyDecision(ctx, m, "")
	return m, nil
}

func (s *Service) notifyDecision(ctx context.Context, m model.Admission, studentNo string) {
	if m.Child == nil {
		return
	}
	n := notifications.AdmissionDecided{
		AdmissionID: m.AdmissionID,
		ChildName:   m.Child.ChildFullName,
		Guardian:    notifications.Recipient{Name: m.Child.ChildGuardianName, Email: m.Child.ChildGuardianEmail},
		Approved:    m.AdmissionStatus == model.AdmissionApproved,
		StudentNo:   studentNo,
	}
	if m.AdmissionRemarks != nil {
		n.Remarks = *m.AdmissionRemarks
	}
	s.notifier.AdmissionDecided(ctx, n)
}

// InvoiceApproved marks the enrollment linked to an approved enrollment invoice as enrolled.
func (s *Service) InvoiceApproved(ctx context.Context, inv invoiceModel.Invoice) error {
	if inv.InvoiceKind != invoiceModel.InvoiceKindEnrollment {
		return nil
	}
	e, err := s.store.GetEnrollmentByInvoice(ctx, inv.InvoiceID)
	if errors.Is(err, dberr.ErrNotFound) {
		log.Printf("[WARN] enrollment invoice %s has no term enrollment", inv.InvoiceNo)
		return nil
	}
	if err != nil {
		return err
	}
	if e.TermEnrollmentStatus == model.EnrollmentEnrolled {
		return nil
	}
	if err := s.store.SetEnrollmentStatus(ctx, e.TermEnrollmentID, model.EnrollmentEnrolled); err != nil {
		return err
	}
	log.Printf("[INFO] student %s enrolled for term %s", e.TermEnrollmentStudentID, e.TermEnrollmentTermID)
	return nil
}

// GuardianOf resolves a student's guardian for billing mail.
func (s *Service) GuardianOf(ctx context.Context, studentID uuid.UUID) (notifications.Recipient, error) {
	st, err := s.store.GetStudent(ctx, studentID)
	if err != nil {
		return notifications.Recipient{}, fmt.Errorf("student %s: %w", studentID, err)
	}
	c, err := s.store.GetChild(ctx, st.StudentChildID)
	if err != nil {
		return notifications.Recipient{}, fmt.Errorf("child of student %s: %w", studentID, err)
	}
	if c.ChildGuardianEmail == "" {
		return notifications.Recipient{}, notifications.ErrNoRecipient
	}
	return notifications.Recipient{Name: c.ChildGuardianName, Email: c.ChildGuardianEmail}, nil
}
