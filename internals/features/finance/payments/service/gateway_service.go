package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"schoolfee_backend/internals/features/finance/payments/model"
	"schoolfee_backend/internals/helpers/dberr"
)

var (
	ErrGatewayDisabled  = errors.New("online payments are not configured")
	ErrNothingDue       = errors.New("invoice has no outstanding balance")
	ErrInvalidSignature = errors.New("invalid gateway signature")
)

type CheckoutResult struct {
	OrderID     string          `json:"order_id"`
	Amount      decimal.Decimal `json:"amount"`
	Token       string          `json:"token"`
	RedirectURL string          `json:"redirect_url"`
}

// Notification is the subset of the gateway callback body the ledger acts on.
type Notification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionTime   string `json:"transaction_time"`
	SettlementTime    string `json:"settlement_time"`
}

// Settled: settlement, or a card capture the fraud check accepted.
func (n Notification) Settled() bool {
	switch strings.ToLower(n.TransactionStatus) {
	case "settlement":
		return true
	case "capture":
		return strings.ToLower(n.FraudStatus) == "accept"
	}
	return false
}

type NotificationOutcome struct {
	OrderID   string                   `json:"order_id"`
	Status    model.GatewayEventStatus `json:"status"`
	PaymentID *uuid.UUID               `json:"payment_id,omitempty"`
	Reason    string                   `json:"reason,omitempty"`
}

func orderID(invoiceNo string, at time.Time) string {
	u := strings.ToUpper(uuid.NewString()[:8])
	return invoiceNo + "-" + at.Format("150405") + "-" + u
}

// Checkout opens a gateway order for the current balance of an invoice.
func (s *Service) Checkout(ctx context.Context, invoiceID uuid.UUID, cust Customer) (CheckoutResult, error) {
	if s.gateway == nil {
		return CheckoutResult{}, ErrGatewayDisabled
	}
	inv, err := s.store.GetInvoice(ctx, invoiceID)
	if errors.Is(err, dberr.ErrNotFound) {
		return CheckoutResult{}, ErrInvoiceNotFound
	}
	if err != nil {
		return CheckoutResult{}, err
	}
	if !inv.InvoiceBalance.IsPositive() {
		return CheckoutResult{}, ErrNothingDue
	}

	// gateway amounts are whole currency units; the settlement is capped back to the balance
	amount := inv.InvoiceBalance.Ceil()
	oid := orderID(inv.InvoiceNo, s.Now())
	token, redirect, err := s.gateway.CreateTransaction(ctx, CheckoutRequest{
		OrderID:     oid,
		GrossAmount: amount.IntPart(),
		ItemName:    "Invoice " + inv.InvoiceNo,
		Customer:    cust,
	})
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("gateway checkout: %w", err)
	}
	if err := s.store.CreateCheckout(ctx, &model.Checkout{
		CheckoutInvoiceID:   inv.InvoiceID,
		CheckoutProvider:    s.gateway.Provider(),
		CheckoutOrderID:     oid,
		CheckoutAmount:      amount,
		CheckoutToken:       token,
		CheckoutRedirectURL: redirect,
	}); err != nil {
		return CheckoutResult{}, err
	}
	res := CheckoutResult{OrderID: oid, Amount: amount, Token: token, RedirectURL: redirect}
	log.Printf("[INFO] checkout %s opened for invoice %s amount=%s", res.OrderID, invoiceID, res.Amount.String())
	return res, nil
}

// HandleNotification authenticates a gateway callback, logs it and records a gateway payment
// once per order when the transaction settled. Replays are acknowledged without a new payment.
func (s *Service) HandleNotification(ctx context.Context, n Notification, raw []byte) (NotificationOutcome, error) {
	if s.gateway == nil {
		return NotificationOutcome{}, ErrGatewayDisabled
	}
	out := NotificationOutcome{OrderID: n.OrderID}
	if !s.gateway.VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, n.SignatureKey) {
		return out, ErrInvalidSignature
	}

	if len(raw) == 0 {
		raw, _ = json.Marshal(n)
	}
	ev := model.GatewayEvent{
		GatewayEventProvider: s.gateway.Provider(),
		GatewayEventOrderID:  n.OrderID,
		GatewayEventType:     strings.ToLower(n.TransactionStatus),
		GatewayEventPayload:  datatypes.JSON(raw),
		GatewayEventStatus:   model.GatewayEventReceived,
	}
	if n.TransactionID != "" {
		tid := n.TransactionID
		ev.GatewayEventTransactionID = &tid
	}
	if err := s.store.LogEvent(ctx, &ev); err != nil {
		return out, err
	}

	status, paymentID, reason, err := s.applyNotification(ctx, n)
	out.Status, out.PaymentID, out.Reason = status, paymentID, reason

	var errMsg *string
	if err != nil {
		msg := err.Error()
		errMsg = &msg
	} else if reason != "" {
		errMsg = &reason
	}
	if ferr := s.store.FinishEvent(ctx, ev.GatewayEventID, status, paymentID, errMsg, s.Now()); ferr != nil {
		log.Printf("[WARN] gateway event %s not finalised: %v", ev.GatewayEventID, ferr)
	}
	return out, err
}

func (s *Service) applyNotification(ctx context.Context, n Notification) (model.GatewayEventStatus, *uuid.UUID, string, error) {
	co, err := s.store.GetCheckout(ctx, n.OrderID)
	if errors.Is(err, dberr.ErrNotFound) {
		return model.GatewayEventIgnored, nil, "unknown order", nil
	}
	if err != nil {
		return model.GatewayEventFailed, nil, "", err
	}
	if !n.Settled() {
		return model.GatewayEventIgnored, nil, "transaction " + strings.ToLower(n.TransactionStatus), nil
	}

	if prev, err := s.store.GetByGatewayOrder(ctx, n.OrderID); err == nil {
		return model.GatewayEventIgnored, &prev.PaymentID, "already recorded", nil
	} else if !errors.Is(err, dberr.ErrNotFound) {
		return model.GatewayEventFailed, nil, "", err
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(n.GrossAmount))
	if err != nil {
		return model.GatewayEventFailed, nil, "", fmt.Errorf("gross_amount %q: %w", n.GrossAmount, err)
	}

	oid := n.OrderID
	var ref *string
	if n.TransactionID != "" {
		tid := n.TransactionID
		ref = &tid
	}
	p, _, err := s.RecordPayment(ctx, RecordInput{
		InvoiceID:      co.CheckoutInvoiceID,
		Amount:         amount,
		Method:         model.PaymentMethodGateway,
		ReferenceNo:    ref,
		ReceivedBy:     string(s.gateway.Provider()),
		GatewayOrderID: &oid,
		Settlement:     true,
	})
	if errors.Is(err, ErrDuplicatePayment) {
		return model.GatewayEventIgnored, nil, "already recorded", nil
	}
	if err != nil {
		return model.GatewayEventFailed, nil, "", err
	}
	if surplus := amount.Sub(p.PaymentAmount); surplus.IsPositive() {
		log.Printf("[INFO] order %s: %s above the open balance not applied", n.OrderID, surplus.StringFixed(2))
		return model.GatewayEventProcessed, &p.PaymentID, "surplus " + surplus.StringFixed(2) + " not applied", nil
	}
	return model.GatewayEventProcessed, &p.PaymentID, "", nil
}
