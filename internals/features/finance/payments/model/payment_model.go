// file: internals/features/finance/payments/model/payment_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is an immutable receipt against one invoice.
type Payment struct {
	PaymentID        uuid.UUID       `json:"payment_id" gorm:"column:payment_id;type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentInvoiceID uuid.UUID       `json:"payment_invoice_id" gorm:"column:payment_invoice_id;type:uuid;not null;index"`
	PaymentAmount    decimal.Decimal `json:"payment_amount" gorm:"column:payment_amount;type:numeric(14,2);not null"`
	PaymentMethod    PaymentMethod   `json:"payment_method" gorm:"column:payment_method;type:varchar(20);not null"`

	// unique per invoice for non-cash methods (partial index in migrations)
	PaymentReferenceNo *string   `json:"payment_reference_no,omitempty" gorm:"column:payment_reference_no;type:varchar(120)"`
	PaymentReceivedBy  *string   `json:"payment_received_by,omitempty" gorm:"column:payment_received_by;type:varchar(120)"`
	PaymentReceivedAt  time.Time `json:"payment_received_at" gorm:"column:payment_received_at;type:timestamptz;not null"`

	PaymentGatewayOrderID *string `json:"payment_gateway_order_id,omitempty" gorm:"column:payment_gateway_order_id;type:varchar(80);uniqueIndex:uq_payments_gateway_order"`

	PaymentCreatedAt time.Time `json:"payment_created_at" gorm:"column:payment_created_at;type:timestamptz;not null;autoCreateTime"`
}

func (Payment) TableName() string { return "payments" }

// Checkout is a gateway order opened for an invoice balance.
type Checkout struct {
	CheckoutID          uuid.UUID       `json:"checkout_id" gorm:"column:checkout_id;type:uuid;default:gen_random_uuid();primaryKey"`
	CheckoutInvoiceID   uuid.UUID       `json:"checkout_invoice_id" gorm:"column:checkout_invoice_id;type:uuid;not null;index"`
	CheckoutProvider    GatewayProvider `json:"checkout_provider" gorm:"column:checkout_provider;type:varchar(20);not null"`
	CheckoutOrderID     string          `json:"checkout_order_id" gorm:"column:checkout_order_id;type:varchar(80);not null;uniqueIndex:uq_checkouts_order"`
	CheckoutAmount      decimal.Decimal `json:"checkout_amount" gorm:"column:checkout_amount;type:numeric(14,2);not null"`
	CheckoutToken       string          `json:"checkout_token" gorm:"column:checkout_token;type:text"`
	CheckoutRedirectURL string          `json:"checkout_redirect_url" gorm:"column:checkout_redirect_url;type:text"`
	CheckoutCreatedAt   time.Time       `json:"checkout_created_at" gorm:"column:checkout_created_at;type:timestamptz;not null;autoCreateTime"`
}

func (Checkout) TableName() string { return "payment_checkouts" }
