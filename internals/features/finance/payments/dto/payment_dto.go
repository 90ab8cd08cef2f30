package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	invoiceModel "schoolfee_backend/internals/features/finance/invoices/model"
	"schoolfee_backend/internals/features/finance/payments/model"
	"schoolfee_backend/internals/features/finance/payments/service"
)

// RecordPaymentDTO: POST /invoices/:id/payments
type RecordPaymentDTO struct {
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Method      string          `json:"method" validate:"omitempty,oneof=cash bank_transfer mobile_money card gateway other"`
	ReferenceNo *string         `json:"reference_no,omitempty" validate:"omitempty,max=120"`
	ReceivedAt  *time.Time      `json:"received_at,omitempty"`
}

func (d RecordPaymentDTO) ToInput(invoiceID uuid.UUID, receiver string) service.RecordInput {
	return service.RecordInput{
		InvoiceID:   invoiceID,
		Amount:      d.Amount,
		Method:      model.PaymentMethod(d.Method),
		ReferenceNo: d.ReferenceNo,
		ReceivedBy:  receiver,
		ReceivedAt:  d.ReceivedAt,
	}
}

// CheckoutDTO: POST /invoices/:id/checkout
type CheckoutDTO struct {
	Name  string `json:"name" validate:"omitempty,max=120"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=30"`
}

func (d CheckoutDTO) Customer() service.Customer {
	return service.Customer{Name: d.Name, Email: d.Email, Phone: d.Phone}
}

type PaymentResponse struct {
	PaymentID             uuid.UUID           `json:"payment_id"`
	PaymentInvoiceID      uuid.UUID           `json:"payment_invoice_id"`
	PaymentAmount         decimal.Decimal     `json:"payment_amount"`
	PaymentMethod         model.PaymentMethod `json:"payment_method"`
	PaymentReferenceNo    *string             `json:"payment_reference_no,omitempty"`
	PaymentReceivedBy     *string             `json:"payment_received_by,omitempty"`
	PaymentReceivedAt     time.Time           `json:"payment_received_at"`
	PaymentGatewayOrderID *string             `json:"payment_gateway_order_id,omitempty"`
	PaymentCreatedAt      time.Time           `json:"payment_created_at"`
}

func ToPaymentResponse(m model.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:             m.PaymentID,
		PaymentInvoiceID:      m.PaymentInvoiceID,
		PaymentAmount:         m.PaymentAmount,
		PaymentMethod:         m.PaymentMethod,
		PaymentReferenceNo:    m.PaymentReferenceNo,
		PaymentReceivedBy:     m.PaymentReceivedBy,
		PaymentReceivedAt:     m.PaymentReceivedAt,
		PaymentGatewayOrderID: m.PaymentGatewayOrderID,
		PaymentCreatedAt:      m.PaymentCreatedAt,
	}
}

func ToPaymentResponses(rows []model.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToPaymentResponse(r))
	}
	return out
}

// InvoiceTotals is the invoice state after a payment landed.
type InvoiceTotals struct {
	InvoiceID     uuid.UUID                  `json:"invoice_id"`
	InvoiceNo     string                     `json:"invoice_no"`
	TotalAmount   decimal.Decimal            `json:"invoice_total_amount"`
	PaidAmount    decimal.Decimal            `json:"invoice_paid_amount"`
	Balance       decimal.Decimal            `json:"invoice_balance"`
	InvoiceStatus invoiceModel.InvoiceStatus `json:"invoice_status"`
}

func ToInvoiceTotals(inv invoiceModel.Invoice) InvoiceTotals {
	return InvoiceTotals{
		InvoiceID:     inv.InvoiceID,
		InvoiceNo:     inv.InvoiceNo,
		TotalAmount:   inv.InvoiceTotalAmount,
		PaidAmount:    inv.InvoicePaidAmount,
		Balance:       inv.InvoiceBalance,
		InvoiceStatus: inv.InvoiceStatus,
	}
}

type RecordPaymentResponse struct {
	Payment PaymentResponse `json:"payment"`
	Invoice InvoiceTotals   `json:"invoice"`
}
