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

	feeModel "schoolfee_backend/internals/features/finance/fees/model"
	feeService "schoolfee_backend/internals/features/finance/fees/service"
	installService "schoolfee_backend/internals/features/finance/installments/service"
	"schoolfee_backend/internals/features/finance/invoices/model"
	"schoolfee_backend/internals/features/finance/invoices/repository"
	"schoolfee_backend/internals/helpers/dberr"
	"schoolfee_backend/internals/notifications"
)

var (
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrInvalidOptionalItem  = errors.New("optional fee item must exist, be active and be optional")
	ErrNoItems              = errors.New("invoice needs at least one item")
	ErrNegativeItemAmount   = errors.New("invoice item amount must not be negative")
	ErrInvalidKind          = errors.New("invoice kind must be regular or enrollment")
	ErrNotEnrollmentInvoice = errors.New("only enrollment invoices go through approval")
	ErrInvalidTransition    = errors.New("invoice is not pending approval")
	ErrNoInstallmentPlan    = errors.New("invoice has no installment plan")
)

// FeeCatalog is the slice of the fees service the composer reads.
type FeeCatalog interface {
	ActiveItems(ctx context.Context, optional bool) ([]feeModel.FeeItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (feeModel.FeeItem, error)
	Resolve(ctx context.Context, feeItemID, classID uuid.UUID, termID *uuid.UUID) (feeService.Resolution, error)
}

// PlanScheduler computes installment schedules; optional.
type PlanScheduler interface {
	ComputeScheduleAt(ctx context.Context, planID uuid.UUID, total decimal.Decimal, anchor *time.Time) ([]installService.ScheduleEntry, error)
}

// EnrollmentHook is told when an enrollment invoice is approved.
type EnrollmentHook interface {
	InvoiceApproved(ctx context.Context, inv model.Invoice) error
}

type ComposeInput struct {
	StudentID          uuid.UUID
	ClassID            uuid.UUID
	TermID             uuid.UUID
	OptionalFeeItemIDs []uuid.UUID
	Kind               model.InvoiceKind
	InstallmentPlanID  *uuid.UUID
	DueDate            *time.Time
	Notes              *string
}

type ManualItem struct {
	FeeItemID  *uuid.UUID
	Label      string
	Amount     decimal.Decimal
	IsOptional bool
}

type ManualInput struct {
	StudentID         uuid.UUID
	TermID            uuid.UUID
	ClassID           *uuid.UUID
	Kind              model.InvoiceKind
	Items             []ManualItem
	InstallmentPlanID *uuid.UUID
	DueDate           *time.Time
	Notes             *string
}

type Service struct {
	store    repository.Store
	fees     FeeCatalog
	plans    PlanScheduler
	notifier notifications.Notifier
	hook     EnrollmentHook
	Now      func() time.Time
}

func NewService(store repository.Store, fees FeeCatalog, plans PlanScheduler, notifier notifications.Notifier) *Service {
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	return &Service{store: store, fees: fees, plans: plans, notifier: notifier, Now: time.Now}
}

func (s *Service) SetEnrollmentHook(h EnrollmentHook) {
	s.hook = h
}

/* =======================================================
   Composition
======================================================= */

// ComposeLines prices mandatory items that have a rule for the class/term and every
// selected optional item. Nothing is persisted.
func (s *Service) ComposeLines(ctx context.Context, classID, termID uuid.UUID, optionalIDs []uuid.UUID) ([]model.InvoiceItem, error) {
	mandatory, err := s.fees.ActiveItems(ctx, false)
	if err != nil {
		return nil, err
	}

	lines := make([]model.InvoiceItem, 0, len(mandatory)+len(optionalIDs))
	for _, it := range mandatory {
		res, err := s.fees.Resolve(ctx, it.FeeItemID, classID, &termID)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", it.FeeItemName, err)
		}
		if !res.Found {
			continue
		}
		id := it.FeeItemID
		lines = append(lines, model.InvoiceItem{
			InvoiceItemFeeItemID: &id,
			InvoiceItemLabel:     it.FeeItemName,
			InvoiceItemAmount:    res.Amount,
		})
	}

	seen := make(map[uuid.UUID]bool, len(optionalIDs))
	for _, optID := range optionalIDs {
		if seen[optID] {
			continue
		}
		seen[optID] = true

		it, err := s.fees.GetItem(ctx, optID)
		if errors.Is(err, feeService.ErrItemNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidOptionalItem, optID)
		}
		if err != nil {
			return nil, err
		}
		if !it.FeeItemIsActive || !it.FeeItemIsOptional {
			return nil, fmt.Errorf("%w: %s", ErrInvalidOptionalItem, optID)
		}
		res, err := s.fees.Resolve(ctx, it.FeeItemID, classID, &termID)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", it.FeeItemName, err)
		}
		if !res.Found {
			log.Printf("[WARN] optional fee item %q has no rule for class %s; billed at 0", it.FeeItemName, classID)
		}
		id := it.FeeItemID
		lines = append(lines, model.InvoiceItem{
			InvoiceItemFeeItemID:  &id,
			InvoiceItemLabel:      it.FeeItemName,
			InvoiceItemAmount:     res.Amount,
			InvoiceItemIsOptional: true,
		})
	}
	return lines, nil
}

// Compose builds and stores an invoice from the fee catalogue. A class without any
// mandatory rule yields a zero total.
func (s *Service) Compose(ctx context.Context, in ComposeInput) (model.Invoice, error) {
	lines, err := s.ComposeLines(ctx, in.ClassID, in.TermID, in.OptionalFeeItemIDs)
	if err != nil {
		return model.Invoice{}, err
	}
	classID := in.ClassID
	inv := model.Invoice{
		InvoiceStudentID:         in.StudentID,
		InvoiceTermID:            in.TermID,
		InvoiceClassID:           &classID,
		InvoiceKind:              in.Kind,
		InvoiceInstallmentPlanID: in.InstallmentPlanID,
		InvoiceDueDate:           in.DueDate,
		InvoiceNotes:             in.Notes,
		Items:                    lines,
	}
	if err := s.create(ctx, &inv); err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

// CreateManual stores an invoice from caller-supplied lines.
func (s *Service) CreateManual(ctx context.Context, in ManualInput) (model.Invoice, error) {
	if len(in.Items) == 0 {
		return model.Invoice{}, ErrNoItems
	}
	lines := make([]model.InvoiceItem, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Amount.IsNegative() {
			return model.Invoice{}, ErrNegativeItemAmount
		}
		lines = append(lines, model.InvoiceItem{
			InvoiceItemFeeItemID:  it.FeeItemID,
			InvoiceItemLabel:      strings.TrimSpace(it.Label),
			InvoiceItemAmount:     it.Amount.Round(2),
			InvoiceItemIsOptional: it.IsOptional,
		})
	}
	inv := model.Invoice{
		InvoiceStudentID:         in.StudentID,
		InvoiceTermID:            in.TermID,
		InvoiceClassID:           in.ClassID,
		InvoiceKind:              in.Kind,
		InvoiceInstallmentPlanID: in.InstallmentPlanID,
		InvoiceDueDate:           in.DueDate,
		InvoiceNotes:             in.Notes,
		Items:                    lines,
	}
	if err := s.create(ctx, &inv); err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

func invoiceNo(id uuid.UUID, at time.Time) string {
	return "INV-" + at.Format("20060102") + "-" + strings.ToUpper(id.String()[:8])
}

func (s *Service) create(ctx context.Context, inv *model.Invoice) error {
	if inv.InvoiceKind == "" {
		inv.InvoiceKind = model.InvoiceKindRegular
	}
	switch inv.InvoiceKind {
	case model.InvoiceKindRegular:
		inv.InvoiceWorkflowStatus = nil
	case model.InvoiceKindEnrollment:
		ws := model.WorkflowPending
		inv.InvoiceWorkflowStatus = &ws
	default:
		return ErrInvalidKind
	}

	now := s.Now()
	inv.InvoiceID = uuid.New()
	inv.InvoiceNo = invoiceNo(inv.InvoiceID, now)
	for i := range inv.Items {
		inv.Items[i].InvoiceItemInvoiceID = inv.InvoiceID
		inv.Items[i].InvoiceItemPosition = i + 1
	}
	inv.InvoiceTotalAmount = model.ItemsTotal(inv.Items)
	inv.ApplyPaid(decimal.Zero)

	if inv.InvoiceDueDate == nil && inv.InvoiceInstallmentPlanID != nil && s.plans != nil {
		entries, err := s.plans.ComputeScheduleAt(ctx, *inv.InvoiceInstallmentPlanID, inv.InvoiceTotalAmount, &now)
		if err != nil {
			return fmt.Errorf("installment plan: %w", err)
		}
		if len(entries) > 0 {
			due := entries[0].DueDate
			inv.InvoiceDueDate = &due
		}
	}

	if err := s.store.Create(ctx, inv); err != nil {
		return err
	}
	log.Printf("[INFO] invoice %s created for student %s total=%s items=%d",
		inv.InvoiceNo, inv.InvoiceStudentID, inv.InvoiceTotalAmount.StringFixed(2), len(inv.Items))
	s.notifier.InvoiceIssued(ctx, IssuedNotice(*inv))
	return nil
}

func IssuedNotice(inv model.Invoice) notifications.InvoiceIssued {
	lines := make([]notifications.Line, 0, len(inv.Items))
	for _, it := range inv.Items {
		lines = append(lines, notifications.Line{Label: it.InvoiceItemLabel, Amount: it.InvoiceItemAmount, IsOptional: it.InvoiceItemIsOptional})
	}
	return notifications.InvoiceIssued{
		InvoiceID: inv.InvoiceID,
		InvoiceNo: inv.InvoiceNo,
		StudentID: inv.InvoiceStudentID,
		Total:     inv.InvoiceTotalAmount,
		DueDate:   inv.InvoiceDueDate,
		Items:     lines,
	}
}

/* =======================================================
   Enrollment workflow
======================================================= */

func (s *Service) decide(ctx context.Context, id uuid.UUID, to model.WorkflowStatus, by string) (model.Invoice, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return inv, err
	}
	if inv.InvoiceKind != model.InvoiceKindEnrollment {
		return inv, ErrNotEnrollmentInvoice
	}
	ok, err := s.store.Decide(ctx, id, to, by, s.Now())
	if err != nil {
		return inv, err
	}
	if !ok {
		return inv, ErrInvalidTransition
	}
	return s.Get(ctx, id)
}

// Approve accepts a pending enrollment invoice and lets the enrollment side react.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, by string) (model.Invoice, error) {
	inv, err := s.decide(ctx, id, model.WorkflowApproved, by)
	if err != nil {
		return inv, err
	}
	log.Printf("[INFO] enrollment invoice %s approved by %s", inv.InvoiceNo, by)
	if s.hook != nil {
		if err := s.hook.InvoiceApproved(ctx, inv); err != nil {
			return inv, fmt.Errorf("invoice %s approved, enrollment not updated: %w", inv.InvoiceNo, err)
		}
	}
	return inv, nil
}

func (s *Service) Reject(ctx context.Context, id uuid.UUID, by string) (model.Invoice, error) {
	inv, err := s.decide(ctx, id, model.WorkflowRejected, by)
	if err == nil {
		log.Printf("[INFO] enrollment invoice %s rejected by %s", inv.InvoiceNo, by)
	}
	return inv, err
}

/* =======================================================
   Reads
======================================================= */

func (s *Service) Get(ctx context.Context, id uuid.UUID) (model.Invoice, error) {
	inv, err := s.store.Get(ctx, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return inv, ErrInvoiceNotFound
	}
	return inv, err
}

func (s *Service) List(ctx context.Context, f repository.InvoiceFilter) ([]model.Invoice, int64, error) {
	return s.store.List(ctx, f)
}

// Schedule splits the invoice total by its installment plan, dated from invoice creation.
func (s *Service) Schedule(ctx context.Context, id uuid.UUID) ([]installService.ScheduleEntry, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.InvoiceInstallmentPlanID == nil || s.plans == nil {
		return nil, ErrNoInstallmentPlan
	}
	anchor := inv.InvoiceCreatedAt
	return s.plans.ComputeScheduleAt(ctx, *inv.InvoiceInstallmentPlanID, inv.InvoiceTotalAmount, &anchor)
}

/* =======================================================
   Reminders
======================================================= */

// RemindOverdue notifies guardians of unsettled invoices past their due date, at most
// once per interval per invoice. Returns how many reminders went out.
func (s *Service) RemindOverdue(ctx context.Context, asOf time.Time, interval time.Duration, batch int) (int, error) {
	rows, err := s.store.Overdue(ctx, asOf, asOf.Add(-interval), batch)
	if err != nil {
		return 0, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, inv := range rows {
		s.notifier.InvoiceOverdue(ctx, notifications.InvoiceOverdue{
			InvoiceID: inv.InvoiceID,
			InvoiceNo: inv.InvoiceNo,
			StudentID: inv.InvoiceStudentID,
			Balance:   inv.InvoiceBalance,
			DueDate:   *inv.InvoiceDueDate,
		})
		ids = append(ids, inv.InvoiceID)
	}
	if err := s.store.MarkReminded(ctx, ids, asOf); err != nil {
		return len(ids), err
	}
	return len(ids), nil
}
