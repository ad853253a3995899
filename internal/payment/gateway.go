package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CreateRequest describes a payment the buyer still has to approve.
type CreateRequest struct {
	Reference   string
	Amount      decimal.Decimal
	Currency    string
	Description string
	ReturnURL   string
	CancelURL   string
}

type Approval struct {
	PaymentID   string `json:"paymentId"`
	ApprovalURL string `json:"approvalUrl"`
}

// Capture is what the processor reports after executing an approved payment.
// Reference echoes CreateRequest.Reference.
type Capture struct {
	PaymentID string
	State     string
	Reference string
	Amount    decimal.Decimal
	Currency  string
}

type Gateway interface {
	CreatePayment(ctx context.Context, req CreateRequest) (Approval, error)
	ExecutePayment(ctx context.Context, paymentID, payerID string) (Capture, error)
}

const defaultTimeout = 15 * time.Second

// PayPalGateway talks to the PayPal REST payments API with fiber's client.
type PayPalGateway struct {
	baseURL  string
	clientID string
	secret   string
}

func NewPayPalGateway(baseURL, clientID, secret string) *PayPalGateway {
	return &PayPalGateway{baseURL: strings.TrimRight(baseURL, "/"), clientID: clientID, secret: secret}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type amount struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type paymentResponse struct {
	ID           string `json:"id"`
	State        string `json:"state"`
	Links        []link `json:"links"`
	Transactions []struct {
		Amount        amount `json:"amount"`
		InvoiceNumber string `json:"invoice_number"`
	} `json:"transactions"`
}

func timeout(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		return time.Until(dl)
	}
	return defaultTimeout
}

// call sends one request and decodes the JSON response into out.
func call(ctx context.Context, a *fiber.Agent, out any) error {
	code, body, errs := a.Timeout(timeout(ctx)).Struct(out)
	if len(errs) > 0 {
		return errs[0]
	}
	if code >= fiber.StatusBadRequest {
		return fmt.Errorf("paypal: status=%d body=%s", code, body)
	}
	return nil
}

func (g *PayPalGateway) token(ctx context.Context) (string, error) {
	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("grant_type", "client_credentials")

	var tok tokenResponse
	a := fiber.Post(g.baseURL + "/v1/oauth2/token").BasicAuth(g.clientID, g.secret).Form(args)
	if err := call(ctx, a, &tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("paypal: empty access token")
	}
	return tok.AccessToken, nil
}

func (g *PayPalGateway) CreatePayment(ctx context.Context, req CreateRequest) (Approval, error) {
	tok, err := g.token(ctx)
	if err != nil {
		return Approval{}, err
	}
	body := fiber.Map{
		"intent": "sale",
		"payer":  fiber.Map{"payment_method": "paypal"},
		"redirect_urls": fiber.Map{
			"return_url": req.ReturnURL,
			"cancel_url": req.CancelURL,
		},
		"transactions": []fiber.Map{{
			"amount":         amount{Total: req.Amount.StringFixed(2), Currency: req.Currency},
			"description":    req.Description,
			"invoice_number": req.Reference,
		}},
	}

	var res paymentResponse
	a := fiber.Post(g.baseURL+"/v1/payments/payment").Set(fiber.HeaderAuthorization, "Bearer "+tok).JSON(body)
	if err := call(ctx, a, &res); err != nil {
		return Approval{}, err
	}
	for _, l := range res.Links {
		if l.Rel == "approval_url" {
			return Approval{PaymentID: res.ID, ApprovalURL: l.Href}, nil
		}
	}
	return Approval{}, fmt.Errorf("paypal: payment %s has no approval_url", res.ID)
}

func (g *PayPalGateway) ExecutePayment(ctx context.Context, paymentID, payerID string) (Capture, error) {
	tok, err := g.token(ctx)
	if err != nil {
		return Capture{}, err
	}

	var res paymentResponse
	url := fmt.Sprintf("%s/v1/payments/payment/%s/execute", g.baseURL, paymentID)
	a := fiber.Post(url).Set(fiber.HeaderAuthorization, "Bearer "+tok).JSON(fiber.Map{"payer_id": payerID})
	if err := call(ctx, a, &res); err != nil {
		return Capture{}, err
	}
	if len(res.Transactions) == 0 {
		return Capture{}, fmt.Errorf("paypal: payment %s returned no transactions", res.ID)
	}
	tx := res.Transactions[0]
	amt, err := decimal.NewFromString(tx.Amount.Total)
	if err != nil {
		return Capture{}, fmt.Errorf("paypal: bad amount %q: %w", tx.Amount.Total, err)
	}
	return Capture{
		PaymentID: res.ID,
		State:     res.State,
		Reference: tx.InvoiceNumber,
		Amount:    amt,
		Currency:  tx.Amount.Currency,
	}, nil
}
