// file: internals/features/finance/fees/model/fee_group_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeeGroup is a category bucket for fee items (Tuition, PTA, Transport, ...).
type FeeGroup struct {
	FeeGroupID           uuid.UUID `json:"fee_group_id" gorm:"column:fee_group_id;type:uuid;default:gen_random_uuid();primaryKey"`
	FeeGroupName         string    `json:"fee_group_name" gorm:"column:fee_group_name;type:varchar(120);not null;uniqueIndex:uq_fee_groups_name"`
	FeeGroupDescription  *string   `json:"fee_group_description,omitempty" gorm:"column:fee_group_description;type:text"`
	FeeGroupDisplayOrder int       `json:"fee_group_display_order" gorm:"column:fee_group_display_order;not null;default:0"`
	FeeGroupIsActive     bool      `json:"fee_group_is_active" gorm:"column:fee_group_is_active;not null;default:true"`

	FeeGroupCreatedAt time.Time      `json:"fee_group_created_at" gorm:"column:fee_group_created_at;type:timestamptz;not null;autoCreateTime"`
	FeeGroupUpdatedAt time.Time      `json:"fee_group_updated_at" gorm:"column:fee_group_updated_at;type:timestamptz;not null;autoUpdateTime"`
	FeeGroupDeletedAt gorm.DeletedAt `json:"fee_group_deleted_at,omitempty" gorm:"column:fee_group_deleted_at;type:timestamptz;index"`
}

func (FeeGroup) TableName() string { return "fee_groups" }
