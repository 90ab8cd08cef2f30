package service

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"schoolfee_backend/internals/features/finance/payments/model"
)

/* =========================================================
   Gateway
========================================================= */

type CheckoutRequest struct {
	OrderID     string
	GrossAmount int64
	ItemName    string
	Customer    Customer
}

type Customer struct {
	Name  string
	Email string
	Phone string
}

// Gateway opens hosted payment pages and authenticates their callbacks.
type Gateway interface {
	Provider() model.GatewayProvider
	CreateTransaction(ctx context.Context, req CheckoutRequest) (token, redirectURL string, err error)
	VerifySignature(orderID, statusCode, grossAmount, signature string) bool
}

type MidtransGateway struct {
	client    snap.Client
	serverKey string
}

func NewMidtransGateway(serverKey string, useProduction bool) *MidtransGateway {
	g := &MidtransGateway{serverKey: serverKey}
	env := midtrans.Sandbox
	if useProduction {
		env = midtrans.Production
	}
	g.client.New(serverKey, env)
	return g
}

func (g *MidtransGateway) Provider() model.GatewayProvider { return model.GatewayProviderMidtrans }

func (g *MidtransGateway) CreateTransaction(ctx context.Context, req CheckoutRequest) (string, string, error) {
	if req.GrossAmount <= 0 {
		return "", "", errors.New("gross amount must be positive")
	}
	first, last := splitName(req.Customer.Name)
	sreq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.GrossAmount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: first,
			LName: last,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:       req.OrderID,
			Name:     truncate(req.ItemName, 50),
			Price:    req.GrossAmount,
			Qty:      1,
			Category: "SCHOOL_FEE",
		}},
	}

	// snap returns a typed *midtrans.Error; keep it out of the error interface when nil
	resp, mErr := g.client.CreateTransaction(sreq)
	if mErr != nil {
		return "", "", mErr
	}
	return resp.Token, resp.RedirectURL, nil
}

// VerifySignature checks SHA512(order_id + status_code + gross_amount + server_key).
func (g *MidtransGateway) VerifySignature(orderID, statusCode, grossAmount, signature string) bool {
	return VerifyMidtransSignature(g.serverKey, orderID, statusCode, grossAmount, signature)
}

func MidtransSignature(serverKey, orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func VerifyMidtransSignature(serverKey, orderID, statusCode, grossAmount, signature string) bool {
	if serverKey == "" || signature == "" {
		return false
	}
	want := MidtransSignature(serverKey, orderID, statusCode, grossAmount)
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(signature))) == 1
}

/* =========================================================
   Utils
========================================================= */

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

func splitName(full string) (string, string) {
	full = strings.TrimSpace(full)
	if i := strings.LastIndex(full, " "); i > 0 {
		return full[:i], full[i+1:]
	}
	return full, ""
}
