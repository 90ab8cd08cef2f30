// file: internals/features/finance/fees/model/fee_item_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FeeFrequency string

const (
	FeeFrequencyTermly  FeeFrequency = "termly"
	FeeFrequencyAnnual  FeeFrequency = "annual"
	FeeFrequencyMonthly FeeFrequency = "monthly"
	FeeFrequencyOnce    FeeFrequency = "once"
)

func (f FeeFrequency) Valid() bool {
	switch f {
	case FeeFrequencyTermly, FeeFrequencyAnnual, FeeFrequencyMonthly, FeeFrequencyOnce:
		return true
	}
	return false
}

// FeeItem is a billable concept ("Grade 1 Tuition"). Belongs to exactly one FeeGroup.
type FeeItem struct {
	FeeItemID         uuid.UUID    `json:"fee_item_id" gorm:"column:fee_item_id;type:uuid;default:gen_random_uuid();primaryKey"`
	FeeItemGroupID    uuid.UUID    `json:"fee_item_group_id" gorm:"column:fee_item_group_id;type:uuid;not null;index:ix_fee_items_group"`
	FeeItemName       string       `json:"fee_item_name" gorm:"column:fee_item_name;type:varchar(160);not null"`
	FeeItemFrequency  FeeFrequency `json:"fee_item_frequency" gorm:"column:fee_item_frequency;type:varchar(20);not null;default:'termly'"`
	FeeItemIsOptional bool         `json:"fee_item_is_optional" gorm:"column:fee_item_is_optional;not null;default:false;index:ix_fee_items_optional_active,priority:1"`
	FeeItemIsActive   bool         `json:"fee_item_is_active" gorm:"column:fee_item_is_active;not null;default:true;index:ix_fee_items_optional_active,priority:2"`

	FeeItemCreatedAt time.Time      `json:"fee_item_created_at" gorm:"column:fee_item_created_at;type:timestamptz;not null;autoCreateTime"`
	FeeItemUpdatedAt time.Time      `json:"fee_item_updated_at" gorm:"column:fee_item_updated_at;type:timestamptz;not null;autoUpdateTime"`
	FeeItemDeletedAt gorm.DeletedAt `json:"fee_item_deleted_at,omitempty" gorm:"column:fee_item_deleted_at;type:timestamptz;index"`

	Group *FeeGroup `json:"group,omitempty" gorm:"foreignKey:FeeItemGroupID;references:FeeGroupID"`
}

func (FeeItem) TableName() string { return "fee_items" }
