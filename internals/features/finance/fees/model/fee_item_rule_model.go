// file: internals/features/finance/fees/model/fee_item_rule_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FeeItemRule prices a FeeItem for one class, optionally scoped to one term.
// TermID == nil applies to every term without a term-specific rule.
type FeeItemRule struct {
	FeeItemRuleID        uuid.UUID       `json:"fee_item_rule_id" gorm:"column:fee_item_rule_id;type:uuid;default:gen_random_uuid();primaryKey"`
	FeeItemRuleFeeItemID uuid.UUID       `json:"fee_item_rule_fee_item_id" gorm:"column:fee_item_rule_fee_item_id;type:uuid;not null;index:ix_fee_item_rules_lookup,priority:1"`
	FeeItemRuleClassID   uuid.UUID       `json:"fee_item_rule_class_id" gorm:"column:fee_item_rule_class_id;type:uuid;not null;index:ix_fee_item_rules_lookup,priority:2"`
	FeeItemRuleTermID    *uuid.UUID      `json:"fee_item_rule_term_id,omitempty" gorm:"column:fee_item_rule_term_id;type:uuid;index:ix_fee_item_rules_lookup,priority:3"`
	FeeItemRuleAmount    decimal.Decimal `json:"fee_item_rule_amount" gorm:"column:fee_item_rule_amount;type:numeric(14,2);not null"`
	FeeItemRuleIsActive  bool            `json:"fee_item_rule_is_active" gorm:"column:fee_item_rule_is_active;not null;default:true"`

	FeeItemRuleCreatedAt time.Time      `json:"fee_item_rule_created_at" gorm:"column:fee_item_rule_created_at;type:timestamptz;not null;autoCreateTime"`
	FeeItemRuleUpdatedAt time.Time      `json:"fee_item_rule_updated_at" gorm:"column:fee_item_rule_updated_at;type:timestamptz;not null;autoUpdateTime"`
	FeeItemRuleDeletedAt gorm.DeletedAt `json:"fee_item_rule_deleted_at,omitempty" gorm:"column:fee_item_rule_deleted_at;type:timestamptz;index"`

	// The partial unique index over (fee_item, class, COALESCE(term)) WHERE active
	// lives in databases/migrations; GORM tags cannot express it.
}

func (FeeItemRule) TableName() string { return "fee_item_rules" }

// SameScope reports whether two rules target the same (item, class, term) tuple.
func (r FeeItemRule) SameScope(o FeeItemRule) bool {
	if r.FeeItemRuleFeeItemID != o.FeeItemRuleFeeItemID || r.FeeItemRuleClassID != o.FeeItemRuleClassID {
		return false
	}
	if r.FeeItemRuleTermID == nil || o.FeeItemRuleTermID == nil {
		return r.FeeItemRuleTermID == nil && o.FeeItemRuleTermID == nil
	}
	return *r.FeeItemRuleTermID == *o.FeeItemRuleTermID
}
