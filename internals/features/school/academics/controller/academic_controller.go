package controller

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"schoolfee_backend/internals/features/school/academics/dto"
	"schoolfee_backend/internals/features/school/academics/model"
	"schoolfee_backend/internals/features/school/academics/repository"
	"schoolfee_backend/internals/features/school/academics/service"
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
	case errors.Is(err, service.ErrClassNotFound),
		errors.Is(err, service.ErrSectionNotFound),
		errors.Is(err, service.ErrTermNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicateClass),
		errors.Is(err, service.ErrDuplicateSection),
		errors.Is(err, service.ErrDuplicateTerm):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, model.ErrTermDates):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	return helper.FromFiberError(c, err)
}

// POST /classes
func (h *Handler) CreateClass(c *fiber.Ctx) error {
	var in dto.CreateClassDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	m := in.ToModel()
	if err := h.Svc.CreateClass(c.Context(), &m); err != nil {
		return fail(c, err)
	}
	return helper.JsonCreated(c, "class created", m)
}

// GET /classes?active=true
func (h *Handler) ListClasses(c *fiber.Ctx) error {
	onlyActive := helper.QueryBool(c, "active")
	rows, err := h.Svc.ListClasses(c.Context(), onlyActive != nil && *onlyActive)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// POST /classes/:id/sections
func (h *Handler) CreateSection(c *fiber.Ctx) error {
	classID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.CreateSectionDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	m := in.ToModel(classID)
	if err := h.Svc.CreateSection(c.Context(), &m); err != nil {
		return fail(c, err)
	}
	return helper.JsonCreated(c, "section created", m)
}

// GET /classes/:id/sections
func (h *Handler) ListSections(c *fiber.Ctx) error {
	classID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rows, err := h.Svc.ListSections(c.Context(), classID)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// POST /academic-terms
func (h *Handler) CreateTerm(c *fiber.Ctx) error {
	var in dto.CreateTermDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := in.ToModel()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "dates must be YYYY-MM-DD")
	}
	if err := h.Svc.CreateTerm(c.Context(), &m); err != nil {
		return fail(c, err)
	}
	return helper.JsonCreated(c, "academic term created", dto.ToTermResponse(m))
}

// PATCH /academic-terms/:id
func (h *Handler) UpdateTerm(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.UpdateTermDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := h.Svc.UpdateTerm(c.Context(), id, in.Apply)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonUpdated(c, "academic term updated", dto.ToTermResponse(m))
}

// GET /academic-terms?year=&active=
func (h *Handler) ListTerms(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "start_date", "desc", helper.DefaultOpts)
	f := repository.TermFilter{Limit: p.Limit(), Offset: p.Offset()}
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "year must be a number")
		}
		f.Year = &y
	}
	active := helper.QueryBool(c, "active")
	f.OnlyActive = active != nil && *active

	rows, total, err := h.Svc.ListTerms(c.Context(), f)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToTermResponses(rows), helper.BuildMeta(total, p))
}

// GET /academic-terms/:id
func (h *Handler) GetTerm(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := h.Svc.GetTerm(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToTermResponse(m))
}
