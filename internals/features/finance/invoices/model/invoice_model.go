// file: internals/features/finance/invoices/model/invoice_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceKind string

const (
	InvoiceKindRegular    InvoiceKind = "regular"
	InvoiceKindEnrollment InvoiceKind = "enrollment"
)

// InvoiceStatus is derived from paid/balance; never set by hand.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "unpaid"
	InvoiceStatusPartial InvoiceStatus = "partial"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// WorkflowStatus only applies to enrollment invoices.
type WorkflowStatus string

const (
	WorkflowPending  WorkflowStatus = "pending"
	WorkflowApproved WorkflowStatus = "approved"
	WorkflowRejected WorkflowStatus = "rejected"
)

type Invoice struct {
	InvoiceID        uuid.UUID   `json:"invoice_id" gorm:"column:invoice_id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceNo        string      `json:"invoice_no" gorm:"column:invoice_no;type:varchar(40);not null;uniqueIndex:uq_invoices_no"`
	InvoiceStudentID uuid.UUID   `json:"invoice_student_id" gorm:"column:invoice_student_id;type:uuid;not null;index:ix_invoices_student_term,priority:1"`
	InvoiceTermID    uuid.UUID   `json:"invoice_term_id" gorm:"column:invoice_term_id;type:uuid;not null;index:ix_invoices_student_term,priority:2"`
	InvoiceClassID   *uuid.UUID  `json:"invoice_class_id,omitempty" gorm:"column:invoice_class_id;type:uuid"`
	InvoiceKind      InvoiceKind `json:"invoice_kind" gorm:"column:invoice_kind;type:varchar(20);not null;default:'regular'"`

	InvoiceTotalAmount decimal.Decimal `json:"invoice_total_amount" gorm:"column:invoice_total_amount;type:numeric(14,2);not null;default:0"`
	InvoicePaidAmount  decimal.Decimal `json:"invoice_paid_amount" gorm:"column:invoice_paid_amount;type:numeric(14,2);not null;default:0"`
	// negative when overpaid
	InvoiceBalance decimal.Decimal `json:"invoice_balance" gorm:"column:invoice_balance;type:numeric(14,2);not null;default:0"`
	InvoiceStatus  InvoiceStatus   `json:"invoice_status" gorm:"column:invoice_status;type:varchar(20);not null;default:'unpaid';index:ix_invoices_status_due,priority:1"`

	InvoiceWorkflowStatus *WorkflowStatus `json:"invoice_workflow_status,omitempty" gorm:"column:invoice_workflow_status;type:varchar(20)"`
	InvoiceDecidedBy      *string         `json:"invoice_decided_by,omitempty" gorm:"column:invoice_decided_by;type:varchar(120)"`
	InvoiceDecidedAt      *time.Time      `json:"invoice_decided_at,omitempty" gorm:"column:invoice_decided_at;type:timestamptz"`

	InvoiceInstallmentPlanID *uuid.UUID `json:"invoice_installment_plan_id,omitempty" gorm:"column:invoice_installment_plan_id;type:uuid"`
	InvoiceDueDate           *time.Time `json:"invoice_due_date,omitempty" gorm:"column:invoice_due_date;type:date;index:ix_invoices_status_due,priority:2"`
	InvoiceNotes             *string    `json:"invoice_notes,omitempty" gorm:"column:invoice_notes;type:text"`
	InvoiceLastRemindedAt    *time.Time `json:"invoice_last_reminded_at,omitempty" gorm:"column:invoice_last_reminded_at;type:timestamptz"`

	InvoiceCreatedAt time.Time      `json:"invoice_created_at" gorm:"column:invoice_created_at;type:timestamptz;not null;autoCreateTime"`
	InvoiceUpdatedAt time.Time      `json:"invoice_updated_at" gorm:"column:invoice_updated_at;type:timestamptz;not null;autoUpdateTime"`
	InvoiceDeletedAt gorm.DeletedAt `json:"-" gorm:"column:invoice_deleted_at;type:timestamptz;index"`

	Items []InvoiceItem `json:"items,omitempty" gorm:"foreignKey:InvoiceItemInvoiceID;references:InvoiceID;constraint:OnDelete:CASCADE"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one priced line. IsOptional marks items the payer opted into.
type InvoiceItem struct {
	InvoiceItemID         uuid.UUID       `json:"invoice_item_id" gorm:"column:invoice_item_id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceItemInvoiceID  uuid.UUID       `json:"invoice_item_invoice_id" gorm:"column:invoice_item_invoice_id;type:uuid;not null;index"`
	InvoiceItemFeeItemID  *uuid.UUID      `json:"invoice_item_fee_item_id,omitempty" gorm:"column:invoice_item_fee_item_id;type:uuid"`
	InvoiceItemLabel      string          `json:"invoice_item_label" gorm:"column:invoice_item_label;type:varchar(160);not null"`
	InvoiceItemAmount     decimal.Decimal `json:"invoice_item_amount" gorm:"column:invoice_item_amount;type:numeric(14,2);not null"`
	InvoiceItemIsOptional bool            `json:"invoice_item_is_optional" gorm:"column:invoice_item_is_optional;not null;default:false"`
	InvoiceItemPosition   int             `json:"invoice_item_position" gorm:"column:invoice_item_position;not null;default:0"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

// DeriveStatus: paid when nothing is owed, partial once money came in, else unpaid.
func DeriveStatus(paid, balance decimal.Decimal) InvoiceStatus {
	switch {
	case !balance.IsPositive():
		return InvoiceStatusPaid
	case paid.IsPositive():
		return InvoiceStatusPartial
	default:
		return InvoiceStatusUnpaid
	}
}

// ApplyPaid sets paid, balance and status from a payments total.
func (inv *Invoice) ApplyPaid(paid decimal.Decimal) {
	inv.InvoicePaidAmount = paid
	inv.InvoiceBalance = inv.InvoiceTotalAmount.Sub(paid)
	inv.InvoiceStatus = DeriveStatus(paid, inv.InvoiceBalance)
}

func (inv Invoice) IsPending() bool {
	return inv.InvoiceWorkflowStatus != nil && *inv.InvoiceWorkflowStatus == WorkflowPending
}

// ItemsTotal sums the line amounts.
func ItemsTotal(items []InvoiceItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.InvoiceItemAmount)
	}
	return sum
}
