// file: internals/features/finance/fees/dto/fee_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolfee_backend/internals/features/finance/fees/model"
)

////////////////////////////////////////////////////////////////////////////////
// FEE GROUPS
////////////////////////////////////////////////////////////////////////////////

type FeeGroupCreateDTO struct {
	FeeGroupName         string  `json:"fee_group_name" validate:"required,min=2,max=120"`
	FeeGroupDescription  *string `json:"fee_group_description,omitempty"`
	FeeGroupDisplayOrder int     `json:"fee_group_display_order" validate:"gte=0"`
	FeeGroupIsActive     *bool   `json:"fee_group_is_active,omitempty"`
}

type FeeGroupUpdateDTO struct {
	FeeGroupName         *string `json:"fee_group_name,omitempty" validate:"omitempty,min=2,max=120"`
	FeeGroupDescription  *string `json:"fee_group_description,omitempty"`
	FeeGroupDisplayOrder *int    `json:"fee_group_display_order,omitempty" validate:"omitempty,gte=0"`
	FeeGroupIsActive     *bool   `json:"fee_group_is_active,omitempty"`
}

type FeeGroupResponse struct {
	FeeGroupID           uuid.UUID `json:"fee_group_id"`
	FeeGroupName         string    `json:"fee_group_name"`
	FeeGroupDescription  *string   `json:"fee_group_description,omitempty"`
	FeeGroupDisplayOrder int       `json:"fee_group_display_order"`
	FeeGroupIsActive     bool      `json:"fee_group_is_active"`
	FeeGroupCreatedAt    time.Time `json:"fee_group_created_at"`
	FeeGroupUpdatedAt    time.Time `json:"fee_group_updated_at"`
}

func (in FeeGroupCreateDTO) ToModel() model.FeeGroup {
	active := true
	if in.FeeGroupIsActive != nil {
		active = *in.FeeGroupIsActive
	}
	return model.FeeGroup{
		FeeGroupName:         strings.TrimSpace(in.FeeGroupName),
		FeeGroupDescription:  in.FeeGroupDescription,
		FeeGroupDisplayOrder: in.FeeGroupDisplayOrder,
		FeeGroupIsActive:     active,
	}
}

func (in FeeGroupUpdateDTO) Apply(m *model.FeeGroup) {
	if in.FeeGroupName != nil {
		m.FeeGroupName = strings.TrimSpace(*in.FeeGroupName)
	}
	if in.FeeGroupDescription != nil {
		m.FeeGroupDescription = in.FeeGroupDescription
	}
	if in.FeeGroupDisplayOrder != nil {
		m.FeeGroupDisplayOrder = *in.FeeGroupDisplayOrder
	}
	if in.FeeGroupIsActive != nil {
		m.FeeGroupIsActive = *in.FeeGroupIsActive
	}
}

func ToFeeGroupResponse(m model.FeeGroup) FeeGroupResponse {
	return FeeGroupResponse{
		FeeGroupID:           m.FeeGroupID,
		FeeGroupName:         m.FeeGroupName,
		FeeGroupDescription:  m.FeeGroupDescription,
		FeeGroupDisplayOrder: m.FeeGroupDisplayOrder,
		FeeGroupIsActive:     m.FeeGroupIsActive,
		FeeGroupCreatedAt:    m.FeeGroupCreatedAt,
		FeeGroupUpdatedAt:    m.FeeGroupUpdatedAt,
	}
}

func ToFeeGroupResponses(rows []model.FeeGroup) []FeeGroupResponse {
	out := make([]FeeGroupResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToFeeGroupResponse(r))
	}
	return out
}

////////////////////////////////////////////////////////////////////////////////
// FEE ITEMS
////////////////////////////////////////////////////////////////////////////////

type FeeItemCreateDTO struct {
	FeeItemGroupID    uuid.UUID `json:"fee_item_group_id" validate:"required"`
	FeeItemName       string    `json:"fee_item_name" validate:"required,min=2,max=160"`
	FeeItemFrequency  string    `json:"fee_item_frequency" validate:"omitempty,oneof=termly annual monthly once"`
	FeeItemIsOptional bool      `json:"fee_item_is_optional"`
	FeeItemIsActive   *bool     `json:"fee_item_is_active,omitempty"`
}

type FeeItemUpdateDTO struct {
	FeeItemGroupID    *uuid.UUID `json:"fee_item_group_id,omitempty"`
	FeeItemName       *string    `json:"fee_item_name,omitempty" validate:"omitempty,min=2,max=160"`
	FeeItemFrequency  *string    `json:"fee_item_frequency,omitempty" validate:"omitempty,oneof=termly annual monthly once"`
	FeeItemIsOptional *bool      `json:"fee_item_is_optional,omitempty"`
	FeeItemIsActive   *bool      `json:"fee_item_is_active,omitempty"`
}

type FeeItemResponse struct {
	FeeItemID         uuid.UUID          `json:"fee_item_id"`
	FeeItemGroupID    uuid.UUID          `json:"fee_item_group_id"`
	FeeItemName       string             `json:"fee_item_name"`
	FeeItemFrequency  model.FeeFrequency `json:"fee_item_frequency"`
	FeeItemIsOptional bool               `json:"fee_item_is_optional"`
	FeeItemIsActive   bool               `json:"fee_item_is_active"`
	FeeItemCreatedAt  time.Time          `json:"fee_item_created_at"`
	FeeItemUpdatedAt  time.Time          `json:"fee_item_updated_at"`

	Group *FeeGroupResponse `json:"group,omitempty"`
}

func (in FeeItemCreateDTO) ToModel() model.FeeItem {
	active := true
	if in.FeeItemIsActive != nil {
		active = *in.FeeItemIsActive
	}
	return model.FeeItem{
		FeeItemGroupID:    in.FeeItemGroupID,
		FeeItemName:       strings.TrimSpace(in.FeeItemName),
		FeeItemFrequency:  model.FeeFrequency(strings.ToLower(in.FeeItemFrequency)),
		FeeItemIsOptional: in.FeeItemIsOptional,
		FeeItemIsActive:   active,
	}
}

func (in FeeItemUpdateDTO) Apply(m *model.FeeItem) {
	if in.FeeItemGroupID != nil {
		m.FeeItemGroupID = *in.FeeItemGroupID
	}
	if in.FeeItemName != nil {
		m.FeeItemName = strings.TrimSpace(*in.FeeItemName)
	}
	if in.FeeItemFrequency != nil {
		m.FeeItemFrequency = model.FeeFrequency(strings.ToLower(*in.FeeItemFrequency))
	}
	if in.FeeItemIsOptional != nil {
		m.FeeItemIsOptional = *in.FeeItemIsOptional
	}
	if in.FeeItemIsActive != nil {
		m.FeeItemIsActive = *in.FeeItemIsActive
	}
}

func ToFeeItemResponse(m model.FeeItem) FeeItemResponse {
	out := FeeItemResponse{
		FeeItemID:         m.FeeItemID,
		FeeItemGroupID:    m.FeeItemGroupID,
		FeeItemName:       m.FeeItemName,
		FeeItemFrequency:  m.FeeItemFrequency,
		FeeItemIsOptional: m.FeeItemIsOptional,
		FeeItemIsActive:   m.FeeItemIsActive,
		FeeItemCreatedAt:  m.FeeItemCreatedAt,
		FeeItemUpdatedAt:  m.FeeItemUpdatedAt,
	}
	if m.Group != nil {
		g := ToFeeGroupResponse(*m.Group)
		out.Group = &g
	}
	return out
}

func ToFeeItemResponses(rows []model.FeeItem) []FeeItemResponse {
	out := make([]FeeItemResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToFeeItemResponse(r))
	}
	return out
}

////////////////////////////////////////////////////////////////////////////////
// FEE ITEM RULES
////////////////////////////////////////////////////////////////////////////////

type FeeItemRuleCreateDTO struct {
	FeeItemRuleFeeItemID uuid.UUID       `json:"fee_item_rule_fee_item_id" validate:"required"`
	FeeItemRuleClassID   uuid.UUID       `json:"fee_item_rule_class_id" validate:"required"`
	FeeItemRuleTermID    *uuid.UUID      `json:"fee_item_rule_term_id,omitempty"`
	FeeItemRuleAmount    decimal.Decimal `json:"fee_item_rule_amount" validate:"gte=0"`
	FeeItemRuleIsActive  *bool           `json:"fee_item_rule_is_active,omitempty"`
}

// Update (partial). ClearTerm turns a term-specific rule into a class-wide one.
type FeeItemRuleUpdateDTO struct {
	FeeItemRuleClassID  *uuid.UUID       `json:"fee_item_rule_class_id,omitempty"`
	FeeItemRuleTermID   *uuid.UUID       `json:"fee_item_rule_term_id,omitempty"`
	ClearTerm           bool             `json:"clear_term,omitempty"`
	FeeItemRuleAmount   *decimal.Decimal `json:"fee_item_rule_amount,omitempty" validate:"omitempty,gte=0"`
	FeeItemRuleIsActive *bool            `json:"fee_item_rule_is_active,omitempty"`
}

type FeeItemRuleResponse struct {
	FeeItemRuleID        uuid.UUID       `json:"fee_item_rule_id"`
	FeeItemRuleFeeItemID uuid.UUID       `json:"fee_item_rule_fee_item_id"`
	FeeItemRuleClassID   uuid.UUID       `json:"fee_item_rule_class_id"`
	FeeItemRuleTermID    *uuid.UUID      `json:"fee_item_rule_term_id,omitempty"`
	FeeItemRuleAmount    decimal.Decimal `json:"fee_item_rule_amount"`
	FeeItemRuleIsActive  bool            `json:"fee_item_rule_is_active"`
	FeeItemRuleCreatedAt time.Time       `json:"fee_item_rule_created_at"`
	FeeItemRuleUpdatedAt time.Time       `json:"fee_item_rule_updated_at"`
}

func (in FeeItemRuleCreateDTO) ToModel() model.FeeItemRule {
	active := true
	if in.FeeItemRuleIsActive != nil {
		active = *in.FeeItemRuleIsActive
	}
	return model.FeeItemRule{
		FeeItemRuleFeeItemID: in.FeeItemRuleFeeItemID,
		FeeItemRuleClassID:   in.FeeItemRuleClassID,
		FeeItemRuleTermID:    in.FeeItemRuleTermID,
		FeeItemRuleAmount:    in.FeeItemRuleAmount.Round(2),
		FeeItemRuleIsActive:  active,
	}
}

func (in FeeItemRuleUpdateDTO) Apply(m *model.FeeItemRule) {
	if in.FeeItemRuleClassID != nil {
		m.FeeItemRuleClassID = *in.FeeItemRuleClassID
	}
	if in.ClearTerm {
		m.FeeItemRuleTermID = nil
	} else if in.FeeItemRuleTermID != nil {
		m.FeeItemRuleTermID = in.FeeItemRuleTermID
	}
	if in.FeeItemRuleAmount != nil {
		m.FeeItemRuleAmount = in.FeeItemRuleAmount.Round(2)
	}
	if in.FeeItemRuleIsActive != nil {
		m.FeeItemRuleIsActive = *in.FeeItemRuleIsActive
	}
}

func ToFeeItemRuleResponse(m model.FeeItemRule) FeeItemRuleResponse {
	return FeeItemRuleResponse{
		FeeItemRuleID:        m.FeeItemRuleID,
		FeeItemRuleFeeItemID: m.FeeItemRuleFeeItemID,
		FeeItemRuleClassID:   m.FeeItemRuleClassID,
		FeeItemRuleTermID:    m.FeeItemRuleTermID,
		FeeItemRuleAmount:    m.FeeItemRuleAmount,
		FeeItemRuleIsActive:  m.FeeItemRuleIsActive,
		FeeItemRuleCreatedAt: m.FeeItemRuleCreatedAt,
		FeeItemRuleUpdatedAt: m.FeeItemRuleUpdatedAt,
	}
}

func ToFeeItemRuleResponses(rows []model.FeeItemRule) []FeeItemRuleResponse {
	out := make([]FeeItemRuleResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToFeeItemRuleResponse(r))
	}
	return out
}
