package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-phone-auth/internal/application/auth"
	"github.com/go-phone-auth/internal/pkg/validate"
)

// AuthHandler handles the phone verification endpoints.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	fullName := req.FullName
	msg, err := h.svc.RequestCode(r.Context(), req.PhoneNumber, &fullName)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: msg})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	msg, err := h.svc.RequestLogin(r.Context(), req.PhoneNumber)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: msg})
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	res, err := h.svc.Verify(r.Context(), req.PhoneNumber, string(req.Code))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyEnvelope{Message: res.Message, Token: res.Token, User: res.User})
}

// decodeAndValidate writes a 400 for malformed JSON and a 422 for a body that
// fails validation. It reports whether the handler should continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}
