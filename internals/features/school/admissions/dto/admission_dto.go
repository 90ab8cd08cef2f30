package dto

import (
	"time"

	"github.com/google/uuid"

	invoiceDTO "schoolfee_backend/internals/features/finance/invoices/dto"
	"schoolfee_backend/internals/features/school/admissions/model"
	"schoolfee_backend/internals/features/school/admissions/service"
)

const dateLayout = "2006-01-02"

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type SubmitAdmissionDTO struct {
	ChildFullName    string     `json:"child_full_name" validate:"required,max=160"`
	ChildDateOfBirth *string    `json:"child_date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	GuardianName     string     `json:"guardian_name" validate:"required,max=160"`
	GuardianEmail    string     `json:"guardian_email" validate:"required,email,max=160"`
	GuardianPhone    *string    `json:"guardian_phone,omitempty" validate:"omitempty,max=30"`
	PreferredClassID *uuid.UUID `json:"preferred_class_id,omitempty"`
}

func (d SubmitAdmissionDTO) ToInput() (service.SubmitInput, error) {
	dob, err := parseDate(d.ChildDateOfBirth)
	if err != nil {
		return service.SubmitInput{}, err
	}
	return service.SubmitInput{
		Child: model.Child{
			ChildFullName:      d.ChildFullName,
			ChildDateOfBirth:   dob,
			ChildGuardianName:  d.GuardianName,
			ChildGuardianEmail: d.GuardianEmail,
			ChildGuardianPhone: d.GuardianPhone,
		},
		PreferredClassID: d.PreferredClassID,
	}, nil
}

type ApproveAdmissionDTO struct {
	ClassID       uuid.UUID   `json:"class_id" validate:"required"`
	SectionID     *uuid.UUID  `json:"section_id,omitempty"`
	TermID        uuid.UUID   `json:"term_id" validate:"required"`
	Remarks       *string     `json:"remarks,omitempty" validate:"omitempty,max=1000"`
	WithInvoice   bool        `json:"with_invoice"`
	OptionalItems []uuid.UUID `json:"optional_fee_item_ids,omitempty" validate:"omitempty,max=50"`
	DueDate       *string     `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (d ApproveAdmissionDTO) ToInput(processor string) (service.ApproveInput, error) {
	due, err := parseDate(d.DueDate)
	if err != nil {
		return service.ApproveInput{}, err
	}
	return service.ApproveInput{
		ClassID:       d.ClassID,
		SectionID:     d.SectionID,
		TermID:        d.TermID,
		Remarks:       d.Remarks,
		Processor:     processor,
		WithInvoice:   d.WithInvoice,
		OptionalItems: d.OptionalItems,
		DueDate:       due,
	}, nil
}

type RejectAdmissionDTO struct {
	Remarks string `json:"remarks" validate:"max=1000"`
}

type ApprovalResponse struct {
	Admission  model.Admission             `json:"admission"`
	Student    model.Student               `json:"student"`
	Enrollment model.TermEnrollment        `json:"enrollment"`
	Invoice    *invoiceDTO.InvoiceResponse `json:"invoice,omitempty"`
}

func ToApprovalResponse(a service.Approval) ApprovalResponse {
	out := ApprovalResponse{Admission: a.Admission, Student: a.Student, Enrollment: a.Enrollment}
	if a.Invoice != nil {
		inv := invoiceDTO.ToInvoiceResponse(*a.Invoice)
		out.Invoice = &inv
	}
	return out
}

type StudentResponse struct {
	Student     model.Student          `json:"student"`
	Enrollments []model.TermEnrollment `json:"enrollments"`
}
