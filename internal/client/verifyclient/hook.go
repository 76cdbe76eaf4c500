// Package verifyclient drives the send/verify endpoints on behalf of a
// front end. It keeps the phone being verified, its normalized form and
// detected country, and loading flags for the two calls.
//
// Calls are not serialized: a second SendCode issued before the first
// returns runs concurrently. Callers disable their submit control instead.
package verifyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/shopshap/internal/domain"
	"github.com/shopshap/internal/pkg/phone"
	"github.com/shopshap/internal/pkg/validate"
)

// Data carries the payload of a successful call.
type Data struct {
	FormattedNumber string               `json:"formatted_number,omitempty"`
	Country         string               `json:"country,omitempty"`
	User            *domain.VerifiedUser `json:"user_data,omitempty"`
	Token           string               `json:"token,omitempty"`
}

// Result has the same shape whether a failure came from local checks or the server.
type Result struct {
	Success bool
	Message string
	Data    *Data
}

const (
	msgPhoneRequired = "Veuillez saisir votre numéro de téléphone."
	msgCodeFormat    = "Veuillez saisir le code à 6 chiffres reçu par SMS."
	msgNetwork       = "Impossible de joindre le serveur. Vérifiez votre connexion."
)

type Hook struct {
	baseURL string
	client  *http.Client

	mu        sync.Mutex
	phone     string
	formatted phone.Result
	sending   bool
	verifying bool
}

// New returns a hook calling the endpoints under baseURL. client defaults to http.DefaultClient.
func New(baseURL string, client *http.Client) *Hook {
	if client == nil {
		client = http.DefaultClient
	}
	return &Hook{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// SetPhoneNumber stores raw and recomputes the normalized number and country.
func (h *Hook) SetPhoneNumber(raw string) {
	res := phone.Format(raw)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.phone = raw
	h.formatted = res
}

func (h *Hook) PhoneNumber() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.phone
}

// FormattedNumber is empty while the current input is not a valid number.
func (h *Hook) FormattedNumber() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.formatted.Formatted
}

// Country is nil while the current input is not a valid number.
func (h *Hook) Country() *phone.Country {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.formatted.Country
}

func (h *Hook) IsSending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sending
}

func (h *Hook) IsVerifying() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.verifying
}

type verifyInput struct {
	Code string `validate:"required,otp"`
}

func (h *Hook) SendCode(ctx context.Context) Result {
	raw := h.PhoneNumber()
	if strings.TrimSpace(raw) == "" {
		return Result{Message: msgPhoneRequired}
	}
	h.setFlag(&h.sending, true)
	defer h.setFlag(&h.sending, false)
	return h.post(ctx, "/verification/send", map[string]string{"phoneNumber": raw})
}

func (h *Hook) VerifyCode(ctx context.Context, code string) Result {
	raw := h.PhoneNumber()
	if strings.TrimSpace(raw) == "" {
		return Result{Message: msgPhoneRequired}
	}
	if err := validate.Struct(verifyInput{Code: code}); err != nil {
		return Result{Message: msgCodeFormat}
	}
	h.setFlag(&h.verifying, true)
	defer h.setFlag(&h.verifying, false)
	return h.post(ctx, "/verification/verify", map[string]string{
		"phoneNumber": raw,
		"code":        strings.TrimSpace(code),
	})
}

func (h *Hook) setFlag(flag *bool, v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	*flag = v
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data
}

func (h *Hook) post(ctx context.Context, path string, body interface{}) Result {
	b, err := json.Marshal(body)
	if err != nil {
		return Result{Message: fmt.Sprintf("encode request: %v", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return Result{Message: msgNetwork}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return Result{Message: msgNetwork}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return Result{Message: fmt.Sprintf("Réponse inattendue du serveur (%d).", resp.StatusCode)}
	}
	if !env.Success {
		return Result{Message: env.Message}
	}
	data := env.Data
	return Result{Success: true, Message: env.Message, Data: &data}
}
