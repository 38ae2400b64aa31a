// Package payment is a stateless adapter over the YooMoney (YooKassa) REST
// API. It does not persist payments or retry failed calls.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/oggyb/matchbox/internal/config"
	svcErr "github.com/oggyb/matchbox/internal/errors"
	"github.com/oggyb/matchbox/internal/validation"
)

const defaultRefundDescription = "Refund"

// CreatePaymentInput is the body of POST /payments/create.
type CreatePaymentInput struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	Description string  `json:"description" validate:"required"`
	UserID      string  `json:"userId" validate:"required"`
	ReturnURL   string  `json:"returnUrl,omitempty" validate:"omitempty,url"`
}

// PaymentResult is the trimmed gateway answer to a created payment.
type PaymentResult struct {
	PaymentID  string `json:"paymentId"`
	PaymentURL string `json:"paymentUrl"`
	Status     string `json:"status"`
}

type Method struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

type MethodList struct {
	Methods []Method `json:"methods"`
}

var methods = []Method{
	{ID: "bank_card", Name: "Bank card", Enabled: true},
	{ID: "yoo_money", Name: "YooMoney", Enabled: true},
	{ID: "sberbank", Name: "Sberbank Online", Enabled: true},
	{ID: "qiwi", Name: "QIWI Wallet", Enabled: true},
	{ID: "webmoney", Name: "WebMoney", Enabled: true},
	{ID: "alfabank", Name: "Alfa-Click", Enabled: true},
	{ID: "apple_pay", Name: "Apple Pay", Enabled: true},
	{ID: "google_pay", Name: "Google Pay", Enabled: true},
}

// Client talks to the gateway with basic auth (shop id : secret key).
// Every mutating call carries a fresh Idempotence-Key.
type Client struct {
	shopID    string
	secretKey string
	apiURL    string
	currency  string
	returnURL string

	http   *http.Client
	log    *slog.Logger
	newKey func() string
}

func NewClient(cfg *config.Config, log *slog.Logger) *Client {
	return &Client{
		shopID:    cfg.Payment.ShopID,
		secretKey: cfg.Payment.SecretKey,
		apiURL:    strings.TrimRight(cfg.Payment.APIURL, "/"),
		currency:  cfg.Payment.Currency,
		returnURL: cfg.Payment.ReturnURL,
		http:      &http.Client{Timeout: cfg.Payment.Timeout},
		log:       log,
		newKey:    uuid.NewString,
	}
}

// CreatePayment opens a redirect-confirmed, auto-captured payment.
func (c *Client) CreatePayment(ctx context.Context, in CreatePaymentInput) (*PaymentResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	returnURL := in.ReturnURL
	if returnURL == "" {
		returnURL = c.returnURL
	}

	body := map[string]any{
		"amount": c.amount(in.Amount),
		"confirmation": map[string]any{
			"type":       "redirect",
			"return_url": returnURL,
		},
		"capture":     true,
		"description": in.Description,
		"metadata": map[string]any{
			"userId": in.UserID,
		},
	}

	raw, err := c.do(ctx, http.MethodPost, "/payments", body, true)
	if err != nil {
		return nil, svcErr.External("payment creation failed: "+err.Error(), err)
	}

	res := gjson.ParseBytes(raw)
	return &PaymentResult{
		PaymentID:  res.Get("id").String(),
		PaymentURL: res.Get("confirmation.confirmation_url").String(),
		Status:     res.Get("status").String(),
	}, nil
}

// GetStatus returns the gateway's payment object verbatim.
func (c *Client) GetStatus(ctx context.Context, paymentID string) (json.RawMessage, error) {
	if err := requireID(paymentID); err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(paymentID), nil, false)
	if err != nil {
		return nil, svcErr.External("payment status lookup failed: "+err.Error(), err)
	}
	return raw, nil
}

// Capture confirms a held payment. A nil amount captures the full sum.
func (c *Client) Capture(ctx context.Context, paymentID string, amount *float64) (json.RawMessage, error) {
	if err := requireID(paymentID); err != nil {
		return nil, err
	}
	body := map[string]any{}
	if amount != nil {
		if err := validation.Var("amount", *amount, "gt=0"); err != nil {
			return nil, err
		}
		body["amount"] = c.amount(*amount)
	}

	raw, err := c.do(ctx, http.MethodPost, "/payments/"+url.PathEscape(paymentID)+"/capture", body, true)
	if err != nil {
		return nil, svcErr.External("payment capture failed: "+err.Error(), err)
	}
	return raw, nil
}

func (c *Client) Cancel(ctx context.Context, paymentID string) (json.RawMessage, error) {
	if err := requireID(paymentID); err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, http.MethodPost, "/payments/"+url.PathEscape(paymentID)+"/cancel", map[string]any{}, true)
	if err != nil {
		return nil, svcErr.External("payment cancellation failed: "+err.Error(), err)
	}
	return raw, nil
}

// Refund returns amount of a succeeded payment to the payer.
func (c *Client) Refund(ctx context.Context, paymentID string, amount float64, description string) (json.RawMessage, error) {
	if err := requireID(paymentID); err != nil {
		return nil, err
	}
	if err := validation.Var("amount", amount, "gt=0"); err != nil {
		return nil, err
	}
	if description == "" {
		description = defaultRefundDescription
	}

	body := map[string]any{
		"amount":      c.amount(amount),
		"payment_id":  paymentID,
		"description": description,
	}
	raw, err := c.do(ctx, http.MethodPost, "/refunds", body, true)
	if err != nil {
		return nil, svcErr.External("refund failed: "+err.Error(), err)
	}
	return raw, nil
}

// Methods returns the static catalogue of supported payment methods.
func (c *Client) Methods() MethodList {
	out := make([]Method, len(methods))
	copy(out, methods)
	return MethodList{Methods: out}
}

// VerifySignature recomputes HMAC-SHA256 over the raw webhook body with the
// shared secret and compares it to the hex signature in constant time.
// A mismatch is reported as a SignatureError.
func (c *Client) VerifySignature(body []byte, signature string) error {
	if signature == "" {
		return svcErr.Signature("missing signature")
	}
	given, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return svcErr.Signature("malformed signature")
	}
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), given) {
		return svcErr.Signature("signature mismatch")
	}
	return nil
}

// Sign produces the signature VerifySignature accepts for body.
func (c *Client) Sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// HandleEvent records a verified webhook notification. No state changes.
// It returns the event type it saw.
func (c *Client) HandleEvent(body []byte) string {
	event := gjson.GetBytes(body, "event").String()
	objectID := gjson.GetBytes(body, "object.id").String()

	switch event {
	case "payment.succeeded":
		c.log.Info("payment succeeded", "payment", objectID)
	case "payment.canceled":
		c.log.Info("payment canceled", "payment", objectID)
	case "refund.succeeded":
		c.log.Info("refund succeeded", "refund", objectID)
	default:
		c.log.Warn("unknown payment event", "event", event)
	}
	return event
}

func (c *Client) amount(v float64) map[string]any {
	return map[string]any{
		"value":    fmt.Sprintf("%.2f", v),
		"currency": c.currency,
	}
}

// do sends one request and returns the response body. Non-2xx answers turn
// into an error carrying the gateway's "description" when it has one.
func (c *Client) do(ctx context.Context, method, path string, body any, idempotent bool) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.shopID, c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	if idempotent {
		req.Header.Set("Idempotence-Key", c.newKey())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("payment gateway unreachable", "method", method, "path", path, "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("payment gateway rejected request", "method", method, "path", path, "status", resp.StatusCode)
		if desc := gjson.GetBytes(raw, "description"); desc.Exists() {
			return nil, fmt.Errorf("%s", desc.String())
		}
		return nil, fmt.Errorf("gateway responded %s", resp.Status)
	}
	return raw, nil
}

func requireID(paymentID string) error {
	if strings.TrimSpace(paymentID) == "" {
		return svcErr.Validation("paymentId is required")
	}
	return nil
}
