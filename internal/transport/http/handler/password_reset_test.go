package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brainbox-api/internal/application/reset"
	"github.com/brainbox-api/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockResetSvc struct{ mock.Mock }

func (m *mockResetSvc) RequestCode(ctx context.Context, rawIdentity string) (*reset.RequestCodeResult, error) {
	args := m.Called(ctx, rawIdentity)
	if r, _ := args.Get(0).(*reset.RequestCodeResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResetSvc) VerifyCode(ctx context.Context, rawIdentity, code string) (string, error) {
	args := m.Called(ctx, rawIdentity, code)
	return args.String(0), args.Error(1)
}

func (m *mockResetSvc) ConsumeToken(ctx context.Context, rawIdentity, token, newPassword string) error {
	return m.Called(ctx, rawIdentity, token, newPassword).Error(0)
}

func (m *mockResetSvc) TestDelivery(ctx context.Context, rawIdentity string) error {
	return m.Called(ctx, rawIdentity).Error(0)
}

// --- helpers ---

func doAction(t *testing.T, svc reset.Service, action string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/v1/password-reset/{action}", NewPasswordResetHandler(svc).Action)

	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/password-reset/"+action, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

// --- request-code ---

func TestRequestCode_Delivered(t *testing.T) {
	svc := &mockResetSvc{}
	svc.On("RequestCode", mock.Anything, "a@b.com").Return(&reset.RequestCodeResult{Delivered: true}, nil)

	rec := doAction(t, svc, "request-code", map[string]string{"email": "a@b.com"})

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[RequestCodeEnvelope](t, rec)
	assert.True(t, env.OK)
	assert.True(t, env.Delivered)
	assert.Empty(t, env.CodeDisclosed)
}

func TestRequestCode_DisclosureFallback(t *testing.T) {
	svc := &mockResetSvc{}
	svc.On("RequestCode", mock.Anything, "x@y.com").Return(
		&reset.RequestCodeResult{Code: "042042", Reason: "mail delivery failed"}, nil)

	rec := doAction(t, svc, "request-code", map[string]string{"email": "x@y.com"})

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[RequestCodeEnvelope](t, rec)
	assert.True(t, env.OK)
	assert.False(t, env.Delivered)
	assert.Equal(t, "042042", env.CodeDisclosed)
	assert.Equal(t, "mail delivery failed", env.Reason)
}

func TestRequestCode_InvalidIdentity(t *testing.T) {
	svc := &mockResetSvc{}
	svc.On("RequestCode", mock.Anything, "bogus").Return(nil, domain.ErrInvalidIdentity)

	rec := doAction(t, svc, "request-code", map[string]string{"email": "bogus"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode[MessageEnvelope](t, rec)
	assert.False(t, env.OK)
	assert.Equal(t, "InvalidIdentity", env.Error)
}

func TestRequestCode_MissingEmail(t *testing.T) {
	svc := &mockResetSvc{}
	rec := doAction(t, svc, "request-code", map[string]string{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	svc.AssertNotCalled(t, "RequestCode", mock.Anything, mock.Anything)
}

// --- verify-code ---

func TestVerifyCode_Success(t *testing.T) {
	svc := &mockResetSvc{}
	svc.On("VerifyCode", mock.Anything, "a@b.com", "123456").Return("tok123", nil)

	rec := doAction(t, svc, "verify-code", map[string]string{"email": "a@b.com", "code": "123456"})

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[VerifyCodeEnvelope](t, rec)
	assert.True(t, env.OK)
	assert.Equal(t, "tok123", env.Token)
}

func TestVerifyCode_NormalizesSubmission(t *testing.T) {
	svc := &mockResetSvc{}
	svc.On("VerifyCode", mock.Anything, "a@b.com", "123456").Return("tok123", nil)

	rec := doAction(t, svc, "verify-code", map[string]string{"email": "a@b.com", "code": " 123-456 "})

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestVerifyCode_MalformedCode(t *testing.T) {
	svc := &mockResetSvc{}
	rec := doAction(t, svc, "verify-code", map[string]string{"email": "a@b.com", "code": "12ab"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	svc.AssertNotCalled(t, "VerifyCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyCode_ErrorStatuses(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound, "NotFound"},
		{"expired", domain.ErrExpired, http.StatusGone, "Expired"},
		{"too many attempts", domain.ErrTooManyAttempts, http.StatusTooManyRequests, "TooManyAttempts"},
		{"storage down", domain.ErrStorageUnavailable, http.StatusInternalServerError, "StorageUnavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockResetSvc{}
			svc.On("VerifyCode", mock.Anything, "a@b.com", "123456").Return("", tc.err)

			rec := doAction(t, svc, "verify-code", map[string]string{"email": "a@b.com", "code": "123456"})

			require.Equal(t, tc.wantStatus, rec.Code)
			env := decode[MessageEnvelope](t, rec)
			assert.Equal(t, tc.wantKind, env.Error)
		})
	}
}

func TestVerifyCode_InvalidCode_ReportsAttemptsRemaining(t *testing.T) {
	svc := &mockResetSvc{}
	svc.On("VerifyCode", mock.Anything, "a@b.com", "123456").
		Return("", &domain.InvalidCodeError{AttemptsRemaining: 3})

	rec := doAction(t, svc, "verify-code", map[string]string{"email": "a@b.com", "code": "123456"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode[VerifyCodeEnvelope](t, rec)
	assert.False(t, env.OK)
	assert.Equal(t, "InvalidCode", env.Error)
	require.NotNil(t, env.AttemptsRemaining)
	assert.Equal(t, 3, *env.AttemptsRemaining)
}

// --- reset-password ---

func TestResetPassword_Success(t *testing.T) {
	svc := &mockResetSvc{}
	svc.On("ConsumeToken", mock.Anything, "a@b.com", "tok123", "newpassword").Return(nil)

	rec := doAction(t, svc, "reset-password", map[string]string{
		"email": "a@b.com", "reset_token": "tok123", "password": "newpassword",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[MessageEnvelope](t, rec)
	assert.True(t, env.OK)
}

func TestResetPassword_InvalidToken(t *testing.T) {
	svc := &mockResetSvc{}
	svc.On("ConsumeToken", mock.Anything, "a@b.com", "stale", "newpassword").
		Return(domain.ErrInvalidOrExpired)

	rec := doAction(t, svc, "reset-password", map[string]string{
		"email": "a@b.com", "reset_token": "stale", "password": "newpassword",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode[MessageEnvelope](t, rec)
	assert.Equal(t, "InvalidOrExpiredToken", env.Error)
}

func TestResetPassword_ShortPassword_RejectedAtBoundary(t *testing.T) {
	svc := &mockResetSvc{}
	rec := doAction(t, svc, "reset-password", map[string]string{
		"email": "a@b.com", "reset_token": "tok", "password": "123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	svc.AssertNotCalled(t, "ConsumeToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- misc ---

func TestUnknownAction(t *testing.T) {
	svc := &mockResetSvc{}
	rec := doAction(t, svc, "frobnicate", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTestDelivery_ProbesChannel(t *testing.T) {
	svc := &mockResetSvc{}
	svc.On("TestDelivery", mock.Anything, "ops@b.com").Return(nil)

	rec := doAction(t, svc, "test-delivery", map[string]string{"email": "ops@b.com"})

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
