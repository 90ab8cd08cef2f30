// file: internals/features/finance/payments/controller/payment_controller.go
package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"schoolfee_backend/internals/features/finance/payments/dto"
	"schoolfee_backend/internals/features/finance/payments/model"
	"schoolfee_backend/internals/features/finance/payments/repository"
	"schoolfee_backend/internals/features/finance/payments/service"
	helper "schoolfee_backend/internals/helpers"
	helperAuth "schoolfee_backend/internals/helpers/auth"
)

type Handler struct {
	Svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{Svc: svc}
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvoiceNotFound),
		errors.Is(err, service.ErrPaymentNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicatePayment):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidMethod),
		errors.Is(err, service.ErrOverpayment),
		errors.Is(err, service.ErrInvoiceRejected),
		errors.Is(err, service.ErrNothingDue):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrGatewayDisabled):
		return helper.JsonError(c, fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrInvalidSignature):
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	return helper.FromFiberError(c, err)
}

var paymentSort = map[string]string{
	"received_at": "payment_received_at",
	"amount":      "payment_amount",
	"created_at":  "payment_created_at",
}

// POST /invoices/:id/payments
func (h *Handler) Record(c *fiber.Ctx) error {
	invoiceID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.RecordPaymentDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	p, inv, err := h.Svc.RecordPayment(c.Context(), in.ToInput(invoiceID, helperAuth.Actor(c)))
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonCreated(c, "payment recorded", dto.RecordPaymentResponse{
		Payment: dto.ToPaymentResponse(p),
		Invoice: dto.ToInvoiceTotals(inv),
	})
}

// GET /invoices/:id/payments
func (h *Handler) ListForInvoice(c *fiber.Ctx) error {
	invoiceID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rows, err := h.Svc.ListForInvoice(c.Context(), invoiceID)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToPaymentResponses(rows))
}

// GET /payments?invoice_id=&method=&from=&to=
func (h *Handler) List(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "received_at", "desc", helper.AdminOpts)
	order, err := p.SafeOrderClause(paymentSort, "received_at")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	f := repository.PaymentFilter{Order: order, Limit: p.Limit(), Offset: p.Offset()}
	if f.InvoiceID, err = helper.QueryUUID(c, "invoice_id"); err != nil {
		return helper.FromFiberError(c, err)
	}
	if v := strings.ToLower(strings.TrimSpace(c.Query("method"))); v != "" {
		m := model.PaymentMethod(v)
		if !m.Valid() {
			return helper.JsonError(c, fiber.StatusBadRequest, "unknown method")
		}
		f.Method = &m
	}
	for key, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		if v := strings.TrimSpace(c.Query(key)); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return helper.JsonError(c, fiber.StatusBadRequest, key+" must be YYYY-MM-DD")
			}
			*dst = &t
		}
	}

	rows, total, err := h.Svc.List(c.Context(), f)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToPaymentResponses(rows), helper.BuildMeta(total, p))
}

// GET /payments/:id
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	row, err := h.Svc.Get(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToPaymentResponse(row))
}

// POST /invoices/:id/checkout
func (h *Handler) Checkout(c *fiber.Ctx) error {
	invoiceID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.CheckoutDTO
	if len(c.Body()) > 0 {
		if err := helper.BindAndValidate(c, &in); err != nil {
			return helper.FromFiberError(c, err)
		}
	}
	res, err := h.Svc.Checkout(c.Context(), invoiceID, in.Customer())
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonCreated(c, "checkout created", res)
}

// POST /webhooks/midtrans
// Only a bad signature or a storage failure gets a non-2xx; anything else is acknowledged
// so the gateway stops retrying.
func (h *Handler) MidtransWebhook(c *fiber.Ctx) error {
	var n service.Notification
	if err := c.BodyParser(&n); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid payload")
	}
	out, err := h.Svc.HandleNotification(c.Context(), n, append([]byte(nil), c.Body()...))
	switch {
	case err == nil:
		return helper.JsonOK(c, "webhook processed", out)
	case errors.Is(err, service.ErrInvalidSignature), errors.Is(err, service.ErrGatewayDisabled):
		return fail(c, err)
	case errors.Is(err, service.ErrOverpayment), errors.Is(err, service.ErrInvoiceRejected),
		errors.Is(err, service.ErrInvalidAmount):
		log.Printf("[WARN] midtrans order %s not booked: %v", n.OrderID, err)
		return helper.JsonOK(c, "webhook not booked", out)
	}
	return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
}
