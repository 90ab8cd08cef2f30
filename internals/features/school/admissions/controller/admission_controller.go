package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	invoiceService "schoolfee_backend/internals/features/finance/invoices/service"
	academicService "schoolfee_backend/internals/features/school/academics/service"
	"schoolfee_backend/internals/features/school/admissions/dto"
	"schoolfee_backend/internals/features/school/admissions/model"
	"schoolfee_backend/internals/features/school/admissions/repository"
	"schoolfee_backend/internals/features/school/admissions/service"
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
	case errors.Is(err, service.ErrAdmissionNotFound),
		errors.Is(err, service.ErrStudentNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrRemarksRequired),
		errors.Is(err, service.ErrClassNotFound),
		errors.Is(err, service.ErrTermNotFound),
		errors.Is(err, academicService.ErrSectionNotFound),
		errors.Is(err, academicService.ErrSectionClass),
		errors.Is(err, invoiceService.ErrInvalidOptionalItem):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrInvoicingDisabled):
		return helper.JsonError(c, fiber.StatusServiceUnavailable, err.Error())
	}
	return helper.FromFiberError(c, err)
}

// POST /admissions
func (h *Handler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitAdmissionDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	input, err := in.ToInput()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "dates must be YYYY-MM-DD")
	}
	m, err := h.Svc.Submit(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonCreated(c, "admission submitted", m)
}

// GET /admissions?status=&q=
func (h *Handler) List(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)
	f := repository.AdmissionFilter{
		Search: strings.TrimSpace(c.Query("q")),
		Limit:  p.Limit(),
		Offset: p.Offset(),
	}
	if v := strings.ToLower(strings.TrimSpace(c.Query("status"))); v != "" {
		st := model.AdmissionStatus(v)
		if st != model.AdmissionPending && st != model.AdmissionApproved && st != model.AdmissionRejected {
			return helper.JsonError(c, fiber.StatusBadRequest, "status must be pending, approved or rejected")
		}
		f.Status = &st
	}
	rows, total, err := h.Svc.List(c.Context(), f)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildMeta(total, p))
}

// GET /admissions/:id
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := h.Svc.Get(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", m)
}

// POST /admissions/:id/approve
func (h *Handler) Approve(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.ApproveAdmissionDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	input, err := in.ToInput(helperAuth.Actor(c))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "dates must be YYYY-MM-DD")
	}
	res, err := h.Svc.Approve(c.Context(), id, input)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonUpdated(c, "admission approved", dto.ToApprovalResponse(res))
}

// POST /admissions/:id/reject
func (h *Handler) Reject(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.RejectAdmissionDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := h.Svc.Reject(c.Context(), id, in.Remarks, helperAuth.Actor(c))
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonUpdated(c, "admission rejected", m)
}

// GET /students/:id
func (h *Handler) GetStudent(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	st, enr, err := h.Svc.GetStudent(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", dto.StudentResponse{Student: st, Enrollments: enr})
}
