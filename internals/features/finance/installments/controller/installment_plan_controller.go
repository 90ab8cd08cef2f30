// file: internals/features/finance/installments/controller/installment_plan_controller.go
package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"schoolfee_backend/internals/features/finance/installments/dto"
	"schoolfee_backend/internals/features/finance/installments/repository"
	"schoolfee_backend/internals/features/finance/installments/service"
	helper "schoolfee_backend/internals/helpers"
)

type Handler struct {
	Svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{Svc: svc}
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanInactive),
		errors.Is(err, service.ErrNoSteps),
		errors.Is(err, service.ErrPercentageRange),
		errors.Is(err, service.ErrNegativeTotal):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	return helper.FromFiberError(c, err)
}

var planSort = map[string]string{
	"name":       "installment_plan_name",
	"created_at": "installment_plan_created_at",
}

// POST /installment-plans
func (h *Handler) Create(c *fiber.Ctx) error {
	var in dto.InstallmentPlanCreateDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	m := in.ToModel()
	if err := h.Svc.Create(c.Context(), &m); err != nil {
		return fail(c, err)
	}
	return helper.JsonCreated(c, "installment plan created", dto.ToInstallmentPlanResponse(m))
}

// PATCH /installment-plans/:id
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.InstallmentPlanUpdateDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := h.Svc.Update(c.Context(), id, in.Apply)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonUpdated(c, "installment plan updated", dto.ToInstallmentPlanResponse(m))
}

// GET /installment-plans/:id
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := h.Svc.Get(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToInstallmentPlanResponse(m))
}

// GET /installment-plans?q=&active=
func (h *Handler) List(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "name", "asc", helper.DefaultOpts)
	order, err := p.SafeOrderClause(planSort, "name")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	f := repository.PlanFilter{
		Search: strings.TrimSpace(c.Query("q")),
		Order:  order,
		Limit:  p.Limit(),
		Offset: p.Offset(),
	}
	if v := helper.QueryBool(c, "active"); v != nil && *v {
		f.OnlyActive = true
	}
	rows, total, err := h.Svc.List(c.Context(), f)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToInstallmentPlanResponses(rows), helper.BuildMeta(total, p))
}

// DELETE /installment-plans/:id
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := h.Svc.Delete(c.Context(), id); err != nil {
		return fail(c, err)
	}
	return helper.JsonDeleted(c, "installment plan deleted", fiber.Map{"installment_plan_id": id})
}

// POST /installment-plans/:id/schedule {total, anchor_date?}
func (h *Handler) Schedule(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.ScheduleRequestDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	anchor, err := in.Anchor()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid anchor_date")
	}
	entries, err := h.Svc.ComputeScheduleAt(c.Context(), id, in.Total, anchor)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ScheduleResponse{
		InstallmentPlanID: id,
		Total:             in.Total,
		ScheduledTotal:    service.ScheduleTotal(entries),
		Entries:           entries,
	})
}
