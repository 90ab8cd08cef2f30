// file: internals/features/finance/fees/controller/fee_controller.go
package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"schoolfee_backend/internals/features/finance/fees/dto"
	"schoolfee_backend/internals/features/finance/fees/model"
	"schoolfee_backend/internals/features/finance/fees/repository"
	"schoolfee_backend/internals/features/finance/fees/service"
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
	case errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrRuleNotFound),
		errors.Is(err, service.ErrClassNotFound),
		errors.Is(err, service.ErrTermNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicateRule),
		errors.Is(err, service.ErrDuplicateGroup):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNegativeAmount),
		errors.Is(err, service.ErrInvalidFrequency):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	return helper.FromFiberError(c, err)
}

var (
	groupSort = map[string]string{
		"name":          "fee_group_name",
		"display_order": "fee_group_display_order",
		"created_at":    "fee_group_created_at",
	}
	itemSort = map[string]string{
		"name":       "fee_item_name",
		"created_at": "fee_item_created_at",
	}
	ruleSort = map[string]string{
		"amount":     "fee_item_rule_amount",
		"created_at": "fee_item_rule_created_at",
		"updated_at": "fee_item_rule_updated_at",
	}
)

/* =======================================================
   GROUPS
======================================================= */

// POST /fee-groups
func (h *Handler) CreateGroup(c *fiber.Ctx) error {
	var in dto.FeeGroupCreateDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	m := in.ToModel()
	if err := h.Svc.CreateGroup(c.Context(), &m); err != nil {
		return fail(c, err)
	}
	return helper.JsonCreated(c, "fee group created", dto.ToFeeGroupResponse(m))
}

// PATCH /fee-groups/:id
func (h *Handler) UpdateGroup(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.FeeGroupUpdateDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := h.Svc.UpdateGroup(c.Context(), id, in.Apply)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonUpdated(c, "fee group updated", dto.ToFeeGroupResponse(m))
}

// GET /fee-groups/:id
func (h *Handler) GetGroup(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := h.Svc.GetGroup(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToFeeGroupResponse(m))
}

// GET /fee-groups?q=&active=&page=&per_page=&sort_by=&order=
func (h *Handler) ListGroups(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "display_order", "asc", helper.DefaultOpts)
	order, err := p.SafeOrderClause(groupSort, "display_order")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	f := repository.GroupFilter{
		Search: strings.TrimSpace(c.Query("q")),
		Order:  order,
		Limit:  p.Limit(),
		Offset: p.Offset(),
	}
	if v := helper.QueryBool(c, "active"); v != nil && *v {
		f.OnlyActive = true
	}
	rows, total, err := h.Svc.ListGroups(c.Context(), f)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToFeeGroupResponses(rows), helper.BuildMeta(total, p))
}

/* =======================================================
   ITEMS
======================================================= */

// POST /fee-items
func (h *Handler) CreateItem(c *fiber.Ctx) error {
	var in dto.FeeItemCreateDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	m := in.ToModel()
	if err := h.Svc.CreateItem(c.Context(), &m); err != nil {
		return fail(c, err)
	}
	return helper.JsonCreated(c, "fee item created", dto.ToFeeItemResponse(m))
}

// PATCH /fee-items/:id
func (h *Handler) UpdateItem(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.FeeItemUpdateDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := h.Svc.UpdateItem(c.Context(), id, in.Apply)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonUpdated(c, "fee item updated", dto.ToFeeItemResponse(m))
}

// DELETE /fee-items/:id (deactivate; items stay referenced by invoices)
func (h *Handler) DeactivateItem(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := h.Svc.UpdateItem(c.Context(), id, func(m *model.FeeItem) { m.FeeItemIsActive = false })
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonDeleted(c, "fee item deactivated", dto.ToFeeItemResponse(m))
}

// GET /fee-items/:id
func (h *Handler) GetItem(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := h.Svc.GetItem(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToFeeItemResponse(m))
}

// GET /fee-items?group_id=&optional=&active=&q=
func (h *Handler) ListItems(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "name", "asc", helper.DefaultOpts)
	order, err := p.SafeOrderClause(itemSort, "name")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	groupID, err := helper.QueryUUID(c, "group_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	f := repository.ItemFilter{
		GroupID:    groupID,
		IsOptional: helper.QueryBool(c, "optional"),
		Search:     strings.TrimSpace(c.Query("q")),
		Order:      order,
		Limit:      p.Limit(),
		Offset:     p.Offset(),
	}
	if v := helper.QueryBool(c, "active"); v != nil && *v {
		f.OnlyActive = true
	}
	rows, total, err := h.Svc.ListItems(c.Context(), f)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToFeeItemResponses(rows), helper.BuildMeta(total, p))
}

/* =======================================================
   RULES
======================================================= */

// POST /fee-rules
func (h *Handler) CreateRule(c *fiber.Ctx) error {
	var in dto.FeeItemRuleCreateDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	m := in.ToModel()
	if err := h.Svc.CreateRule(c.Context(), &m); err != nil {
		return fail(c, err)
	}
	return helper.JsonCreated(c, "fee rule created", dto.ToFeeItemRuleResponse(m))
}

// PATCH /fee-rules/:id
func (h *Handler) UpdateRule(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.FeeItemRuleUpdateDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := h.Svc.UpdateRule(c.Context(), id, in.Apply)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonUpdated(c, "fee rule updated", dto.ToFeeItemRuleResponse(m))
}

// POST /fee-rules/:id/deactivate
func (h *Handler) DeactivateRule(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := h.Svc.DeactivateRule(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonUpdated(c, "fee rule deactivated", dto.ToFeeItemRuleResponse(m))
}

// DELETE /fee-rules/:id (soft delete)
func (h *Handler) DeleteRule(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := h.Svc.DeleteRule(c.Context(), id); err != nil {
		return fail(c, err)
	}
	return helper.JsonDeleted(c, "fee rule deleted", fiber.Map{"fee_item_rule_id": id})
}

// GET /fee-rules/:id
func (h *Handler) GetRule(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := h.Svc.GetRule(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToFeeItemRuleResponse(m))
}

// GET /fee-rules?fee_item_id=&class_id=&term_id=&active=
func (h *Handler) ListRules(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "updated_at", "desc", helper.DefaultOpts)
	order, err := p.SafeOrderClause(ruleSort, "updated_at")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	f := repository.RuleFilter{Order: order, Limit: p.Limit(), Offset: p.Offset()}
	if f.FeeItemID, err = helper.QueryUUID(c, "fee_item_id"); err != nil {
		return helper.FromFiberError(c, err)
	}
	if f.ClassID, err = helper.QueryUUID(c, "class_id"); err != nil {
		return helper.FromFiberError(c, err)
	}
	if f.TermID, err = helper.QueryUUID(c, "term_id"); err != nil {
		return helper.FromFiberError(c, err)
	}
	if v := helper.QueryBool(c, "active"); v != nil && *v {
		f.OnlyActive = true
	}
	rows, total, err := h.Svc.ListRules(c.Context(), f)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToFeeItemRuleResponses(rows), helper.BuildMeta(total, p))
}

// GET /fee-rules/resolve?fee_item_id=&class_id=&term_id=
func (h *Handler) Resolve(c *fiber.Ctx) error {
	itemID, err := helper.QueryUUID(c, "fee_item_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	classID, err := helper.QueryUUID(c, "class_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if itemID == nil || classID == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "fee_item_id and class_id are required")
	}
	termID, err := helper.QueryUUID(c, "term_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	res, err := h.Svc.Resolver.Resolve(c.Context(), *itemID, *classID, termID)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", res)
}

// GET /fee-rules/exists?fee_item_id=&class_id=&term_id=
func (h *Handler) RuleExists(c *fiber.Ctx) error {
	itemID, err := helper.QueryUUID(c, "fee_item_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	classID, err := helper.QueryUUID(c, "class_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if itemID == nil || classID == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "fee_item_id and class_id are required")
	}
	termID, err := helper.QueryUUID(c, "term_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	exists, err := h.Svc.Resolver.RuleExists(c.Context(), *itemID, *classID, termID)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", fiber.Map{"exists": exists})
}
