package model

type PaymentMethod string
type GatewayProvider string
type GatewayEventStatus string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodGateway      PaymentMethod = "gateway"
	PaymentMethodOther        PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodMobileMoney,
		PaymentMethodCard, PaymentMethodGateway, PaymentMethodOther:
		return true
	}
	return false
}

// NeedsReference: cash receipts may repeat a reference (receipt book numbers get reused).
func (m PaymentMethod) NeedsReference() bool {
	return m != PaymentMethodCash
}

const (
	GatewayProviderMidtrans GatewayProvider = "midtrans"
)

const (
	GatewayEventReceived  GatewayEventStatus = "received"
	GatewayEventProcessed GatewayEventStatus = "processed"
	GatewayEventIgnored   GatewayEventStatus = "ignored"
	GatewayEventFailed    GatewayEventStatus = "failed"
)
