// file: internals/features/finance/invoices/dto/invoice_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolfee_backend/internals/features/finance/invoices/model"
	"schoolfee_backend/internals/features/finance/invoices/service"
)

const dateLayout = "2006-01-02"

func parseDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*s))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

////////////////////////////////////////////////////////////////////////////////
// REQUESTS
////////////////////////////////////////////////////////////////////////////////

// ComposeInvoiceDTO builds an invoice from fee rules.
type ComposeInvoiceDTO struct {
	StudentID          uuid.UUID   `json:"student_id" validate:"required"`
	ClassID            uuid.UUID   `json:"class_id" validate:"required"`
	TermID             uuid.UUID   `json:"term_id" validate:"required"`
	OptionalFeeItemIDs []uuid.UUID `json:"optional_fee_item_ids,omitempty"`
	Kind               string      `json:"kind" validate:"omitempty,oneof=regular enrollment"`
	InstallmentPlanID  *uuid.UUID  `json:"installment_plan_id,omitempty"`
	DueDate            *string     `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes              *string     `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

func (in ComposeInvoiceDTO) ToInput() (service.ComposeInput, error) {
	due, err := parseDate(in.DueDate)
	if err != nil {
		return service.ComposeInput{}, err
	}
	return service.ComposeInput{
		StudentID:          in.StudentID,
		ClassID:            in.ClassID,
		TermID:             in.TermID,
		OptionalFeeItemIDs: in.OptionalFeeItemIDs,
		Kind:               model.InvoiceKind(in.Kind),
		InstallmentPlanID:  in.InstallmentPlanID,
		DueDate:            due,
		Notes:              in.Notes,
	}, nil
}

type ManualItemDTO struct {
	FeeItemID  *uuid.UUID      `json:"fee_item_id,omitempty"`
	Label      string          `json:"label" validate:"required,max=160"`
	Amount     decimal.Decimal `json:"amount" validate:"gte=0"`
	IsOptional bool            `json:"is_optional"`
}

// CreateInvoiceDTO is the items[] form: lines come straight from the caller.
type CreateInvoiceDTO struct {
	StudentID         uuid.UUID       `json:"student_id" validate:"required"`
	TermID            uuid.UUID       `json:"term_id" validate:"required"`
	ClassID           *uuid.UUID      `json:"class_id,omitempty"`
	Kind              string          `json:"kind" validate:"omitempty,oneof=regular enrollment"`
	Items             []ManualItemDTO `json:"items" validate:"required,min=1,dive"`
	InstallmentPlanID *uuid.UUID      `json:"installment_plan_id,omitempty"`
	DueDate           *string         `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes             *string         `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

func (in CreateInvoiceDTO) ToInput() (service.ManualInput, error) {
	due, err := parseDate(in.DueDate)
	if err != nil {
		return service.ManualInput{}, err
	}
	items := make([]service.ManualItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, service.ManualItem{
			FeeItemID:  it.FeeItemID,
			Label:      it.Label,
			Amount:     it.Amount,
			IsOptional: it.IsOptional,
		})
	}
	return service.ManualInput{
		StudentID:         in.StudentID,
		TermID:            in.TermID,
		ClassID:           in.ClassID,
		Kind:              model.InvoiceKind(in.Kind),
		Items:             items,
		InstallmentPlanID: in.InstallmentPlanID,
		DueDate:           due,
		Notes:             in.Notes,
	}, nil
}

// PreviewDTO prices lines without storing anything.
type PreviewDTO struct {
	ClassID            uuid.UUID   `json:"class_id" validate:"required"`
	TermID             uuid.UUID   `json:"term_id" validate:"required"`
	OptionalFeeItemIDs []uuid.UUID `json:"optional_fee_item_ids,omitempty"`
}

////////////////////////////////////////////////////////////////////////////////
// RESPONSES
////////////////////////////////////////////////////////////////////////////////

type InvoiceItemResponse struct {
	InvoiceItemID         uuid.UUID       `json:"invoice_item_id"`
	InvoiceItemFeeItemID  *uuid.UUID      `json:"invoice_item_fee_item_id,omitempty"`
	InvoiceItemLabel      string          `json:"invoice_item_label"`
	InvoiceItemAmount     decimal.Decimal `json:"invoice_item_amount"`
	InvoiceItemIsOptional bool            `json:"invoice_item_is_optional"`
	InvoiceItemPosition   int             `json:"invoice_item_position"`
}

type InvoiceResponse struct {
	InvoiceID                uuid.UUID             `json:"invoice_id"`
	InvoiceNo                string                `json:"invoice_no"`
	InvoiceStudentID         uuid.UUID             `json:"invoice_student_id"`
	InvoiceTermID            uuid.UUID             `json:"invoice_term_id"`
	InvoiceClassID           *uuid.UUID            `json:"invoice_class_id,omitempty"`
	InvoiceKind              model.InvoiceKind     `json:"invoice_kind"`
	InvoiceTotalAmount       decimal.Decimal       `json:"invoice_total_amount"`
	InvoicePaidAmount        decimal.Decimal       `json:"invoice_paid_amount"`
	InvoiceBalance           decimal.Decimal       `json:"invoice_balance"`
	InvoiceStatus            model.InvoiceStatus   `json:"invoice_status"`
	InvoiceWorkflowStatus    *model.WorkflowStatus `json:"invoice_workflow_status,omitempty"`
	InvoiceDecidedBy         *string               `json:"invoice_decided_by,omitempty"`
	InvoiceDecidedAt         *time.Time            `json:"invoice_decided_at,omitempty"`
	InvoiceInstallmentPlanID *uuid.UUID            `json:"invoice_installment_plan_id,omitempty"`
	InvoiceDueDate           *string               `json:"invoice_due_date,omitempty"`
	InvoiceNotes             *string               `json:"invoice_notes,omitempty"`
	InvoiceCreatedAt         time.Time             `json:"invoice_created_at"`
	InvoiceUpdatedAt         time.Time             `json:"invoice_updated_at"`
	Items                    []InvoiceItemResponse `json:"items"`
}

func ToItemResponses(items []model.InvoiceItem) []InvoiceItemResponse {
	out := make([]InvoiceItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, InvoiceItemResponse{
			InvoiceItemID:         it.InvoiceItemID,
			InvoiceItemFeeItemID:  it.InvoiceItemFeeItemID,
			InvoiceItemLabel:      it.InvoiceItemLabel,
			InvoiceItemAmount:     it.InvoiceItemAmount,
			InvoiceItemIsOptional: it.InvoiceItemIsOptional,
			InvoiceItemPosition:   it.InvoiceItemPosition,
		})
	}
	return out
}

func ToInvoiceResponse(m model.Invoice) InvoiceResponse {
	var due *string
	if m.InvoiceDueDate != nil {
		s := m.InvoiceDueDate.Format(dateLayout)
		due = &s
	}
	return InvoiceResponse{
		InvoiceID:                m.InvoiceID,
		InvoiceNo:                m.InvoiceNo,
		InvoiceStudentID:         m.InvoiceStudentID,
		InvoiceTermID:            m.InvoiceTermID,
		InvoiceClassID:           m.InvoiceClassID,
		InvoiceKind:              m.InvoiceKind,
		InvoiceTotalAmount:       m.InvoiceTotalAmount,
		InvoicePaidAmount:        m.InvoicePaidAmount,
		InvoiceBalance:           m.InvoiceBalance,
		InvoiceStatus:            m.InvoiceStatus,
		InvoiceWorkflowStatus:    m.InvoiceWorkflowStatus,
		InvoiceDecidedBy:         m.InvoiceDecidedBy,
		InvoiceDecidedAt:         m.InvoiceDecidedAt,
		InvoiceInstallmentPlanID: m.InvoiceInstallmentPlanID,
		InvoiceDueDate:           due,
		InvoiceNotes:             m.InvoiceNotes,
		InvoiceCreatedAt:         m.InvoiceCreatedAt,
		InvoiceUpdatedAt:         m.InvoiceUpdatedAt,
		Items:                    ToItemResponses(m.Items),
	}
}

func ToInvoiceResponses(rows []model.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToInvoiceResponse(r))
	}
	return out
}
