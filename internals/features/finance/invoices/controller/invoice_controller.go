// file: internals/features/finance/invoices/controller/invoice_controller.go
package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	feeService "schoolfee_backend/internals/features/finance/fees/service"
	installService "schoolfee_backend/internals/features/finance/installments/service"
	"schoolfee_backend/internals/features/finance/invoices/dto"
	"schoolfee_backend/internals/features/finance/invoices/model"
	"schoolfee_backend/internals/features/finance/invoices/repository"
	"schoolfee_backend/internals/features/finance/invoices/service"
	payModel "schoolfee_backend/internals/features/finance/payments/model"
	helper "schoolfee_backend/internals/helpers"
	helperAuth "schoolfee_backend/internals/helpers/auth"
)

// PaymentLister lets the detail endpoint show the invoice's receipts.
type PaymentLister interface {
	ListForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]payModel.Payment, error)
}

type Handler struct {
	Svc      *service.Service
	Payments PaymentLister
}

func NewHandler(svc *service.Service, payments PaymentLister) *Handler {
	return &Handler{Svc: svc, Payments: payments}
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvoiceNotFound),
		errors.Is(err, installService.ErrPlanNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidOptionalItem),
		errors.Is(err, service.ErrNoItems),
		errors.Is(err, service.ErrNegativeItemAmount),
		errors.Is(err, service.ErrInvalidKind),
		errors.Is(err, service.ErrNotEnrollmentInvoice),
		errors.Is(err, service.ErrNoInstallmentPlan),
		errors.Is(err, installService.ErrPlanInactive),
		errors.Is(err, feeService.ErrItemNotFound):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	return helper.FromFiberError(c, err)
}

var invoiceSort = map[string]string{
	"created_at": "invoice_created_at",
	"due_date":   "invoice_due_date",
	"total":      "invoice_total_amount",
	"balance":    "invoice_balance",
	"invoice_no": "invoice_no",
}

// POST /invoices/compose
func (h *Handler) Compose(c *fiber.Ctx) error {
	var in dto.ComposeInvoiceDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	input, err := in.ToInput()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid due_date")
	}
	inv, err := h.Svc.Compose(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonCreated(c, "invoice created", dto.ToInvoiceResponse(inv))
}

// POST /invoices/preview
func (h *Handler) Preview(c *fiber.Ctx) error {
	var in dto.PreviewDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	lines, err := h.Svc.ComposeLines(c.Context(), in.ClassID, in.TermID, in.OptionalFeeItemIDs)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", fiber.Map{
		"items": dto.ToItemResponses(lines),
		"total": model.ItemsTotal(lines),
	})
}

// POST /invoices {student_id, term_id, items[]}
func (h *Handler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	input, err := in.ToInput()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid due_date")
	}
	inv, err := h.Svc.CreateManual(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonCreated(c, "invoice created", dto.ToInvoiceResponse(inv))
}

// GET /invoices/:id
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	inv, err := h.Svc.Get(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	payments := []payModel.Payment{}
	if h.Payments != nil {
		if payments, err = h.Payments.ListForInvoice(c.Context(), id); err != nil {
			return fail(c, err)
		}
	}
	return helper.JsonOK(c, "ok", fiber.Map{
		"invoice":  dto.ToInvoiceResponse(inv),
		"payments": payments,
	})
}

// GET /invoices?student_id=&term_id=&status=&kind=&workflow_status=&q=
func (h *Handler) List(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)
	order, err := p.SafeOrderClause(invoiceSort, "created_at")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	f := repository.InvoiceFilter{
		Search: strings.TrimSpace(c.Query("q")),
		Order:  order,
		Limit:  p.Limit(),
		Offset: p.Offset(),
	}
	if f.StudentID, err = helper.QueryUUID(c, "student_id"); err != nil {
		return helper.FromFiberError(c, err)
	}
	if f.TermID, err = helper.QueryUUID(c, "term_id"); err != nil {
		return helper.FromFiberError(c, err)
	}
	if v := strings.ToLower(strings.TrimSpace(c.Query("status"))); v != "" {
		st := model.InvoiceStatus(v)
		if st != model.InvoiceStatusUnpaid && st != model.InvoiceStatusPartial && st != model.InvoiceStatusPaid {
			return helper.JsonError(c, fiber.StatusBadRequest, "status must be unpaid, partial or paid")
		}
		f.Status = &st
	}
	if v := strings.ToLower(strings.TrimSpace(c.Query("kind"))); v != "" {
		k := model.InvoiceKind(v)
		if k != model.InvoiceKindRegular && k != model.InvoiceKindEnrollment {
			return helper.JsonError(c, fiber.StatusBadRequest, "kind must be regular or enrollment")
		}
		f.Kind = &k
	}
	if v := strings.ToLower(strings.TrimSpace(c.Query("workflow_status"))); v != "" {
		ws := model.WorkflowStatus(v)
		f.WorkflowStatus = &ws
	}

	rows, total, err := h.Svc.List(c.Context(), f)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToInvoiceResponses(rows), helper.BuildMeta(total, p))
}

// POST /invoices/:id/approve
func (h *Handler) Approve(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	inv, err := h.Svc.Approve(c.Context(), id, helperAuth.Actor(c))
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonUpdated(c, "invoice approved", dto.ToInvoiceResponse(inv))
}

// POST /invoices/:id/reject
func (h *Handler) Reject(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	inv, err := h.Svc.Reject(c.Context(), id, helperAuth.Actor(c))
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonUpdated(c, "invoice rejected", dto.ToInvoiceResponse(inv))
}

// GET /invoices/:id/schedule
func (h *Handler) Schedule(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	entries, err := h.Svc.Schedule(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", fiber.Map{
		"entries":         entries,
		"scheduled_total": installService.ScheduleTotal(entries),
	})
}
