// Package payment exposes the payment gateway proxy over REST under /payments.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	svcErr "github.com/oggyb/matchbox/internal/errors"
	"github.com/oggyb/matchbox/internal/service/payment"
)

// SignatureHeader carries the hex HMAC of the webhook body.
const SignatureHeader = "X-Yoomoney-Signature"

// WebhookRoute names the webhook route so the rate limiter can leave it out.
const WebhookRoute = "payments.webhook"

const maxBodyBytes = 1 << 20

// Gateway is the subset of payment.Client the handlers need.
type Gateway interface {
	CreatePayment(ctx context.Context, in payment.CreatePaymentInput) (*payment.PaymentResult, error)
	GetStatus(ctx context.Context, paymentID string) (json.RawMessage, error)
	Capture(ctx context.Context, paymentID string, amount *float64) (json.RawMessage, error)
	Cancel(ctx context.Context, paymentID string) (json.RawMessage, error)
	Refund(ctx context.Context, paymentID string, amount float64, description string) (json.RawMessage, error)
	Methods() payment.MethodList
	VerifySignature(body []byte, signature string) error
	HandleEvent(body []byte) string
}

type Handler struct {
	gateway Gateway
	log     *slog.Logger
}

func NewHandler(gateway Gateway, log *slog.Logger) *Handler {
	return &Handler{gateway: gateway, log: log}
}

// Register mounts the payment routes on r (expected to be the /payments subrouter).
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/create", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/methods", h.Methods).Methods(http.MethodGet)
	r.HandleFunc("/webhook", h.Webhook).Methods(http.MethodPost).Name(WebhookRoute)
	r.HandleFunc("/{paymentId}/status", h.Status).Methods(http.MethodGet)
	r.HandleFunc("/{paymentId}/capture", h.Capture).Methods(http.MethodPost)
	r.HandleFunc("/{paymentId}/cancel", h.Cancel).Methods(http.MethodPost)
	r.HandleFunc("/{paymentId}/refund", h.Refund).Methods(http.MethodPost)
}

// Create handles POST /payments/create.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in payment.CreatePaymentInput
	if !h.decode(w, r, &in) {
		return
	}
	res, err := h.gateway.CreatePayment(r.Context(), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Status handles GET /payments/{paymentId}/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	raw, err := h.gateway.GetStatus(r.Context(), mux.Vars(r)["paymentId"])
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

type captureBody struct {
	Amount *float64 `json:"amount,omitempty"`
}

// Capture handles POST /payments/{paymentId}/capture with an optional amount.
func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	var body captureBody
	if !h.decodeOptional(w, r, &body) {
		return
	}
	raw, err := h.gateway.Capture(r.Context(), mux.Vars(r)["paymentId"], body.Amount)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, raw)
}

// Cancel handles POST /payments/{paymentId}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	raw, err := h.gateway.Cancel(r.Context(), mux.Vars(r)["paymentId"])
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, raw)
}

type refundBody struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// Refund handles POST /payments/{paymentId}/refund.
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	var body refundBody
	if !h.decode(w, r, &body) {
		return
	}
	raw, err := h.gateway.Refund(r.Context(), mux.Vars(r)["paymentId"], body.Amount, body.Description)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, raw)
}

// Methods handles GET /payments/methods.
func (h *Handler) Methods(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.gateway.Methods())
}

// Webhook handles POST /payments/webhook. It always answers 200 so the
// gateway does not retry; failures are reported in the body only.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.log.Warn("webhook rejected", "reason", "unreadable body", "remote", r.RemoteAddr, "err", err)
		writeJSON(w, http.StatusOK, errorBody{Error: "Unreadable body"})
		return
	}

	if err := h.gateway.VerifySignature(body, r.Header.Get(SignatureHeader)); err != nil {
		h.log.Warn("webhook rejected", "reason", err.Error(), "remote", r.RemoteAddr)
		if errors.Is(err, svcErr.ErrSignature) {
			writeJSON(w, http.StatusOK, errorBody{Error: "Invalid signature"})
			return
		}
		writeJSON(w, http.StatusOK, errorBody{Error: err.Error()})
		return
	}

	event := h.gateway.HandleEvent(body)
	h.log.Debug("webhook accepted", "event", event)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	code := svcErr.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		h.log.Error("payment request failed", "err", err)
	}
	writeJSON(w, code, errorBody{Error: err.Error()})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return false
	}
	return true
}

// decodeOptional accepts an empty body.
func (h *Handler) decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
