package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopshap/internal/application/verification"
	"github.com/shopshap/internal/domain"
	"github.com/shopshap/internal/pkg/phone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockVerificationSvc struct{ mock.Mock }

func (m *mockVerificationSvc) SendCode(ctx context.Context, rawPhone string) (*verification.SendResult, error) {
	args := m.Called(ctx, rawPhone)
	if r, _ := args.Get(0).(*verification.SendResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVerificationSvc) VerifyCode(ctx context.Context, rawPhone, code string) (*verification.VerifyResult, error) {
	args := m.Called(ctx, rawPhone, code)
	if r, _ := args.Get(0).(*verification.VerifyResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVerificationSvc) Debug(ctx context.Context) (*verification.DebugSnapshot, error) {
	args := m.Called(ctx)
	if r, _ := args.Get(0).(*verification.DebugSnapshot); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func postJSON(t *testing.T, target string, body interface{}) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, target, bytes.NewReader(b))
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

// --- Send ---

func TestSend_InvalidBody(t *testing.T) {
	h := NewVerificationHandler(&mockVerificationSvc{})
	rr := httptest.NewRecorder()
	h.Send(rr, httptest.NewRequest(http.MethodPost, "/verification/send", bytes.NewBufferString("not-json")))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, false, decode(t, rr)["success"])
}

func TestSend_MissingPhone(t *testing.T) {
	svc := &mockVerificationSvc{}
	h := NewVerificationHandler(svc)
	rr := httptest.NewRecorder()
	h.Send(rr, postJSON(t, "/verification/send", map[string]string{}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "SendCode", mock.Anything, mock.Anything)
}

func TestSend_Success(t *testing.T) {
	sn, _ := phone.ByCode("SN")
	svc := &mockVerificationSvc{}
	svc.On("SendCode", mock.Anything, "0701234567").Return(&verification.SendResult{
		Phone:   "+221701234567",
		Country: sn,
		Message: "envoyé",
	}, nil)

	h := NewVerificationHandler(svc)
	rr := httptest.NewRecorder()
	h.Send(rr, postJSON(t, "/verification/send", map[string]string{"phoneNumber": "0701234567"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "envoyé", body["message"])
	assert.Equal(t, "Sénégal", body["country"])
	assert.Equal(t, "+221701234567", body["formatted_number"])
}

func TestSend_VerificationErrorIs400(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("SendCode", mock.Anything, mock.Anything).Return(nil, &domain.VerificationError{
		Err: domain.ErrRateLimited, Message: "Trop de demandes.",
	})

	h := NewVerificationHandler(svc)
	rr := httptest.NewRecorder()
	h.Send(rr, postJSON(t, "/verification/send", map[string]string{"phoneNumber": "+221701234567"}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Trop de demandes.", body["message"])
}

func TestSend_UnexpectedErrorIs500(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("SendCode", mock.Anything, mock.Anything).Return(nil, errors.New("redis down"))

	h := NewVerificationHandler(svc)
	rr := httptest.NewRecorder()
	h.Send(rr, postJSON(t, "/verification/send", map[string]string{"phoneNumber": "+221701234567"}))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, internalErrorMessage, decode(t, rr)["message"])
}

// --- Verify ---

func TestVerify_BadCodeFormat(t *testing.T) {
	svc := &mockVerificationSvc{}
	h := NewVerificationHandler(svc)
	rr := httptest.NewRecorder()
	h.Verify(rr, postJSON(t, "/verification/verify", map[string]string{"phoneNumber": "+221701234567", "code": "12"}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "VerifyCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_Success(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &mockVerificationSvc{}
	svc.On("VerifyCode", mock.Anything, "+221701234567", "123456").Return(&verification.VerifyResult{
		Message: "ok",
		User:    domain.VerifiedUser{Phone: "+221701234567", CountryCode: "SN", VerifiedAt: at},
	}, nil)

	h := NewVerificationHandler(svc)
	rr := httptest.NewRecorder()
	h.Verify(rr, postJSON(t, "/verification/verify", map[string]string{"phoneNumber": "+221701234567", "code": "123456"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, true, body["success"])
	_, hasToken := body["token"]
	assert.False(t, hasToken)
	user := body["user_data"].(map[string]interface{})
	assert.Equal(t, "+221701234567", user["phone"])
	assert.Equal(t, "SN", user["country"])
	assert.Equal(t, "2026-03-01T12:00:00Z", user["verified_at"])
}

func TestVerify_IncorrectCodeIs400(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("VerifyCode", mock.Anything, mock.Anything, mock.Anything).Return(nil, &domain.VerificationError{
		Err: domain.ErrIncorrectCode, Message: "Code incorrect. Il vous reste 2 tentative(s).", Remaining: 2,
	})

	h := NewVerificationHandler(svc)
	rr := httptest.NewRecorder()
	h.Verify(rr, postJSON(t, "/verification/verify", map[string]string{"phoneNumber": "+221701234567", "code": "654321"}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode(t, rr)["message"], "2 tentative(s)")
}

// --- Debug ---

func TestDebug_ReturnsSnapshot(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("Debug", mock.Anything).Return(&verification.DebugSnapshot{
		Codes:      map[string]domain.OtpRecord{"+221701234567": {Code: "123456"}},
		RateLimits: map[string]domain.RateLimitRecord{"+221701234567": {Count: 1}},
	}, nil)

	h := NewVerificationHandler(svc)
	rr := httptest.NewRecorder()
	h.Debug(rr, httptest.NewRequest(http.MethodGet, "/verification/debug", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Contains(t, body, "codes")
	assert.Contains(t, body, "rate_limits")
}
