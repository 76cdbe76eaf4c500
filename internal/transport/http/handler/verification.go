package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopshap/internal/application/verification"
	"github.com/shopshap/internal/pkg/validate"
)

type SendRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
}

type VerifyRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Code        string `json:"code" validate:"required,otp"`
}

// VerificationHandler serves the send, verify and debug endpoints.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

func (h *VerificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Corps de requête invalide.")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Le numéro de téléphone est requis.")
		return
	}
	res, err := h.svc.SendCode(r.Context(), req.PhoneNumber)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SendEnvelope{
		Success:         true,
		Message:         res.Message,
		Country:         res.Country.Name,
		FormattedNumber: res.Phone,
	})
}

func (h *VerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Corps de requête invalide.")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Le numéro de téléphone et un code à 6 chiffres sont requis.")
		return
	}
	res, err := h.svc.VerifyCode(r.Context(), req.PhoneNumber, req.Code)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyEnvelope{
		Success:  true,
		Message:  res.Message,
		UserData: res.User,
		Token:    res.Token,
	})
}

// Debug dumps the code and rate-limit stores. Only routed in development.
func (h *VerificationHandler) Debug(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Debug(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Options answers plain OPTIONS requests; preflights are handled by the CORS middleware.
func (h *VerificationHandler) Options(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
