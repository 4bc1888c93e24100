package handler

import (
	"encoding/json"
	"net/http"

	"github.com/brainbox-api/internal/application/reset"
	"github.com/brainbox-api/internal/pkg/otp"
	"github.com/brainbox-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// PasswordResetHandler handles the password-reset flow endpoints.
type PasswordResetHandler struct {
	svc reset.Service
}

func NewPasswordResetHandler(svc reset.Service) *PasswordResetHandler {
	return &PasswordResetHandler{svc: svc}
}

type requestCodeRequest struct {
	Email string `json:"email" validate:"required"`
}

type verifyCodeRequest struct {
	Email string `json:"email" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

type resetPasswordRequest struct {
	Email      string `json:"email" validate:"required"`
	ResetToken string `json:"reset_token" validate:"required"`
	Password   string `json:"password" validate:"required,min=6"`
}

func (h *PasswordResetHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "request-code":
		h.requestCode(w, r)
	case "verify-code":
		h.verifyCode(w, r)
	case "reset-password":
		h.resetPassword(w, r)
	case "test-delivery":
		h.testDelivery(w, r)
	default:
		writeError(w, http.StatusBadRequest, "UnknownAction", "unknown action")
	}
}

func (h *PasswordResetHandler) requestCode(w http.ResponseWriter, r *http.Request) {
	var req requestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "ValidationError", err.Error())
		return
	}
	res, err := h.svc.RequestCode(r.Context(), req.Email)
	if err != nil {
		httpError(w, err)
		return
	}
	env := RequestCodeEnvelope{
		OK:            true,
		Delivered:     res.Delivered,
		CodeDisclosed: res.Code,
		Reason:        res.Reason,
		Message:       "code sent",
	}
	if !res.Delivered {
		env.Message = "code generated"
	}
	writeJSON(w, http.StatusOK, env)
}

func (h *PasswordResetHandler) verifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "ValidationError", err.Error())
		return
	}
	code, err := otp.NormalizeSubmission(req.Code)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "ValidationError", err.Error())
		return
	}
	token, err := h.svc.VerifyCode(r.Context(), req.Email, code)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyCodeEnvelope{OK: true, Token: token, Message: "code verified"})
}

func (h *PasswordResetHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "ValidationError", err.Error())
		return
	}
	if err := h.svc.ConsumeToken(r.Context(), req.Email, req.ResetToken, req.Password); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{OK: true, Message: "password reset successful"})
}

func (h *PasswordResetHandler) testDelivery(w http.ResponseWriter, r *http.Request) {
	var req requestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "invalid request body")
		return
	}
	if err := h.svc.TestDelivery(r.Context(), req.Email); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{OK: true, Message: "test message sent"})
}
