package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	invoiceModel "schoolfee_backend/internals/features/finance/invoices/model"
	"schoolfee_backend/internals/features/finance/payments/model"
	"schoolfee_backend/internals/features/finance/payments/repository"
	"schoolfee_backend/internals/helpers/dberr"
	"schoolfee_backend/internals/notifications"
)

var (
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrInvalidAmount    = errors.New("payment amount must be greater than zero")
	ErrInvalidMethod    = errors.New("unknown payment method")
	ErrDuplicatePayment = errors.New("payment reference already recorded for this invoice")
	ErrOverpayment      = errors.New("payment exceeds the outstanding balance")
	ErrInvoiceRejected  = errors.New("invoice was rejected and takes no payments")
)

type OverpaymentPolicy string

const (
	OverpaymentAllow  OverpaymentPolicy = "allow"
	OverpaymentReject OverpaymentPolicy = "reject"
)

// ParsePolicy falls back to allow for anything it does not recognise.
func ParsePolicy(s string) OverpaymentPolicy {
	if OverpaymentPolicy(strings.ToLower(strings.TrimSpace(s))) == OverpaymentReject {
		return OverpaymentReject
	}
	return OverpaymentAllow
}

type Summary struct {
	Paid    decimal.Decimal           `json:"paid"`
	Balance decimal.Decimal           `json:"balance"`
	Status  invoiceModel.InvoiceStatus `json:"status"`
}

// Summarize derives invoice totals from its payments.
func Summarize(total decimal.Decimal, payments []model.Payment) Summary {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.PaymentAmount)
	}
	balance := total.Sub(paid)
	return Summary{Paid: paid, Balance: balance, Status: invoiceModel.DeriveStatus(paid, balance)}
}

type RecordInput struct {
	InvoiceID      uuid.UUID
	Amount         decimal.Decimal
	Method         model.PaymentMethod
	ReferenceNo    *string
	ReceivedBy     string
	ReceivedAt     *time.Time
	GatewayOrderID *string
	// Settlement marks money the gateway already captured: it is capped at the open
	// balance and never refused by the overpayment policy.
	Settlement bool
}

type Service struct {
	store    repository.Store
	notifier notifications.Notifier
	Policy   OverpaymentPolicy
	gateway  Gateway
	Now      func() time.Time
}

func NewService(store repository.Store, notifier notifications.Notifier, policy OverpaymentPolicy) *Service {
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	if policy == "" {
		policy = OverpaymentAllow
	}
	return &Service{store: store, notifier: notifier, Policy: policy, Now: time.Now}
}

// SetGateway enables online checkout. Without it Checkout returns ErrGatewayDisabled.
func (s *Service) SetGateway(g Gateway) {
	s.gateway = g
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

// RecordPayment stores a receipt and recomputes the invoice totals from the full payment
// history, all under a row lock on the invoice.
func (s *Service) RecordPayment(ctx context.Context, in RecordInput) (model.Payment, invoiceModel.Invoice, error) {
	amount := in.Amount.Round(2)
	if !amount.IsPositive() {
		return model.Payment{}, invoiceModel.Invoice{}, ErrInvalidAmount
	}
	if in.Method == "" {
		in.Method = model.PaymentMethodCash
	}
	if !in.Method.Valid() {
		return model.Payment{}, invoiceModel.Invoice{}, ErrInvalidMethod
	}
	ref := trimmed(in.ReferenceNo)

	now := s.Now()
	received := now
	if in.ReceivedAt != nil {
		received = *in.ReceivedAt
	}
	p := model.Payment{
		PaymentInvoiceID:      in.InvoiceID,
		PaymentAmount:         amount,
		PaymentMethod:         in.Method,
		PaymentReferenceNo:    ref,
		PaymentReceivedBy:     trimmed(&in.ReceivedBy),
		PaymentReceivedAt:     received,
		PaymentGatewayOrderID: in.GatewayOrderID,
	}

	var inv invoiceModel.Invoice
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		inv, err = tx.LockInvoice(ctx, in.InvoiceID)
		if errors.Is(err, dberr.ErrNotFound) {
			return ErrInvoiceNotFound
		}
		if err != nil {
			return err
		}
		if inv.InvoiceWorkflowStatus != nil && *inv.InvoiceWorkflowStatus == invoiceModel.WorkflowRejected {
			return ErrInvoiceRejected
		}

		if ref != nil && p.PaymentMethod.NeedsReference() {
			used, err := tx.ReferenceUsed(ctx, in.InvoiceID, *ref)
			if err != nil {
				return err
			}
			if used {
				return ErrDuplicatePayment
			}
		}

		history, err := tx.ListForInvoice(ctx, in.InvoiceID)
		if err != nil {
			return err
		}
		if in.Settlement {
			open := Summarize(inv.InvoiceTotalAmount, history).Balance
			if open.IsPositive() && p.PaymentAmount.GreaterThan(open) {
				p.PaymentAmount = open
			}
		}
		sum := Summarize(inv.InvoiceTotalAmount, append(history, p))
		if !in.Settlement && s.Policy == OverpaymentReject && sum.Balance.IsNegative() {
			return fmt.Errorf("%w: balance is %s", ErrOverpayment, inv.InvoiceBalance.StringFixed(2))
		}

		if err := tx.Create(ctx, &p); err != nil {
			if errors.Is(err, dberr.ErrDuplicate) {
				return ErrDuplicatePayment
			}
			return err
		}
		inv.ApplyPaid(sum.Paid)
		return tx.SaveInvoiceTotals(ctx, inv)
	})
	if err != nil {
		return model.Payment{}, invoiceModel.Invoice{}, err
	}

	log.Printf("[INFO] payment %s %s on invoice %s: paid=%s balance=%s status=%s",
		p.PaymentMethod, p.PaymentAmount.StringFixed(2), inv.InvoiceNo,
		inv.InvoicePaidAmount.StringFixed(2), inv.InvoiceBalance.StringFixed(2), inv.InvoiceStatus)

	n := notifications.PaymentReceived{
		InvoiceID: inv.InvoiceID,
		InvoiceNo: inv.InvoiceNo,
		StudentID: inv.InvoiceStudentID,
		Amount:    p.PaymentAmount,
		Method:    string(p.PaymentMethod),
		Paid:      inv.InvoicePaidAmount,
		Balance:   inv.InvoiceBalance,
		Status:    string(inv.InvoiceStatus),
	}
	if ref != nil {
		n.Reference = *ref
	}
	s.notifier.PaymentReceived(ctx, n)
	return p, inv, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (model.Payment, error) {
	p, err := s.store.Get(ctx, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return p, ErrPaymentNotFound
	}
	return p, err
}

func (s *Service) ListForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.Payment, error) {
	return s.store.ListForInvoice(ctx, invoiceID)
}

func (s *Service) List(ctx context.Context, f repository.PaymentFilter) ([]model.Payment, int64, error) {
	return s.store.List(ctx, f)
}
