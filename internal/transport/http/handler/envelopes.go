package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopshap/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendEnvelope wraps a successful code request.
type SendEnvelope struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	Country         string `json:"country"`
	FormattedNumber string `json:"formatted_number"`
}

// VerifyEnvelope wraps a successful verification.
type VerifyEnvelope struct {
	Success  bool                `json:"success"`
	Message  string              `json:"message"`
	UserData domain.VerifiedUser `json:"user_data"`
	Token    string              `json:"token,omitempty"`
}

const internalErrorMessage = "Une erreur interne est survenue. Veuillez réessayer."

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Success: false, Message: msg})
}

// httpError maps user-facing verification failures to 400 and everything
// else to a generic 500.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.VerificationError
	if errors.As(err, &ve) {
		writeFailure(w, http.StatusBadRequest, ve.Message)
		return
	}
	slog.ErrorContext(r.Context(), "unexpected verification error", "path", r.URL.Path, "err", err)
	writeFailure(w, http.StatusInternalServerError, internalErrorMessage)
}
