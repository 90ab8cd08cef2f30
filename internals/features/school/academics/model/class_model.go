package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Class struct {
	ClassID        uuid.UUID      `json:"class_id" gorm:"column:class_id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClassName      string         `json:"class_name" gorm:"column:class_name;type:varchar(80);not null;uniqueIndex:uq_classes_name"`
	ClassLevel     int            `json:"class_level" gorm:"column:class_level;not null;default:0"`
	ClassIsActive  bool           `json:"class_is_active" gorm:"column:class_is_active;not null;default:true"`
	ClassCreatedAt time.Time      `json:"class_created_at" gorm:"column:class_created_at;type:timestamptz;not null;autoCreateTime"`
	ClassUpdatedAt time.Time      `json:"class_updated_at" gorm:"column:class_updated_at;type:timestamptz;not null;autoUpdateTime"`
	ClassDeletedAt gorm.DeletedAt `json:"-" gorm:"column:class_deleted_at;type:timestamptz;index"`
}

func (Class) TableName() string { return "classes" }

type Section struct {
	SectionID        uuid.UUID `json:"section_id" gorm:"column:section_id;type:uuid;default:gen_random_uuid();primaryKey"`
	SectionClassID   uuid.UUID `json:"section_class_id" gorm:"column:section_class_id;type:uuid;not null;uniqueIndex:uq_sections_class_name,priority:1"`
	SectionName      string    `json:"section_name" gorm:"column:section_name;type:varchar(40);not null;uniqueIndex:uq_sections_class_name,priority:2"`
	SectionCapacity  *int      `json:"section_capacity,omitempty" gorm:"column:section_capacity"`
	SectionCreatedAt time.Time `json:"section_created_at" gorm:"column:section_created_at;type:timestamptz;not null;autoCreateTime"`
	SectionUpdatedAt time.Time `json:"section_updated_at" gorm:"column:section_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (Section) TableName() string { return "class_sections" }
