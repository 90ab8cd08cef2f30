package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GatewayEvent logs every gateway notification, valid or not, for replay and audit.
type GatewayEvent struct {
	GatewayEventID       uuid.UUID       `json:"gateway_event_id" gorm:"column:gateway_event_id;type:uuid;default:gen_random_uuid();primaryKey"`
	GatewayEventProvider GatewayProvider `json:"gateway_event_provider" gorm:"column:gateway_event_provider;type:varchar(20);not null"`
	GatewayEventOrderID  string          `json:"gateway_event_order_id" gorm:"column:gateway_event_order_id;type:varchar(80);not null;index"`
	// capture, settlement, pending, deny, cancel, expire, refund, failure
	GatewayEventType          string     `json:"gateway_event_type" gorm:"column:gateway_event_type;type:varchar(40)"`
	GatewayEventTransactionID *string    `json:"gateway_event_transaction_id,omitempty" gorm:"column:gateway_event_transaction_id;type:varchar(80)"`
	GatewayEventPaymentID     *uuid.UUID `json:"gateway_event_payment_id,omitempty" gorm:"column:gateway_event_payment_id;type:uuid"`

	GatewayEventPayload datatypes.JSON `json:"gateway_event_payload" gorm:"column:gateway_event_payload;type:jsonb"`

	GatewayEventStatus      GatewayEventStatus `json:"gateway_event_status" gorm:"column:gateway_event_status;type:varchar(20);not null;default:'received'"`
	GatewayEventError       *string            `json:"gateway_event_error,omitempty" gorm:"column:gateway_event_error;type:text"`
	GatewayEventReceivedAt  time.Time          `json:"gateway_event_received_at" gorm:"column:gateway_event_received_at;type:timestamptz;not null;autoCreateTime"`
	GatewayEventProcessedAt *time.Time         `json:"gateway_event_processed_at,omitempty" gorm:"column:gateway_event_processed_at;type:timestamptz"`
}

func (GatewayEvent) TableName() string { return "payment_gateway_events" }
