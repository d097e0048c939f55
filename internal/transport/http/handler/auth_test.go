package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-phone-auth/internal/application/auth"
	"github.com/go-phone-auth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) RequestCode(ctx context.Context, phone string, fullName *string) (string, error) {
	args := m.Called(ctx, phone, fullName)
	return args.String(0), args.Error(1)
}

func (m *mockAuthSvc) RequestLogin(ctx context.Context, phone string) (string, error) {
	args := m.Called(ctx, phone)
	return args.String(0), args.Error(1)
}

func (m *mockAuthSvc) Verify(ctx context.Context, phone, code string) (*auth.VerifyResult, error) {
	args := m.Called(ctx, phone, code)
	if res, _ := args.Get(0).(*auth.VerifyResult); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var env MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env.Message
}

// --- Register ---

func TestRegister_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{})
	rr := httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest(http.MethodPost, "/register", jsonBody("not-json")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegister_ValidationFailure(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{})
	rr := httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest(http.MethodPost, "/register", jsonBody(`{"phone_number":"5550100"}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestRegister_BadPhone(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{})
	rr := httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest(http.MethodPost, "/register",
		jsonBody(`{"full_name":"Ann","phone_number":"call me"}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestRegister_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	msg := fmt.Sprintf(auth.MsgCodeSent, "5550100")
	svc.On("RequestCode", mock.Anything, "5550100", mock.MatchedBy(func(n *string) bool {
		return n != nil && *n == "Ann"
	})).Return(msg, nil)
	h := NewAuthHandler(svc)

	rr := httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest(http.MethodPost, "/register",
		jsonBody(`{"full_name":"Ann","phone_number":"5550100"}`)))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, msg, decodeMessage(t, rr))
	svc.AssertExpectations(t)
}

// --- Login ---

func TestLogin_UserNotFound(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RequestLogin", mock.Anything, "5550100").Return("", domain.ErrUserNotFound)
	h := NewAuthHandler(svc)

	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/login", jsonBody(`{"phone_number":"5550100"}`)))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "user not found", decodeMessage(t, rr))
}

func TestLogin_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RequestLogin", mock.Anything, "5550100").Return("sent", nil)
	h := NewAuthHandler(svc)

	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/login", jsonBody(`{"phone_number":"5550100"}`)))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "sent", decodeMessage(t, rr))
}

func TestLogin_StoreFailure(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RequestLogin", mock.Anything, "5550100").Return("", fmt.Errorf("lookup user: boom"))
	h := NewAuthHandler(svc)

	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/login", jsonBody(`{"phone_number":"5550100"}`)))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal server error", decodeMessage(t, rr))
}

// --- Verify ---

func TestVerify_Mismatch(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Verify", mock.Anything, "5550100", "12345").Return(nil, domain.ErrCodeMismatch)
	h := NewAuthHandler(svc)

	rr := httptest.NewRecorder()
	h.Verify(rr, httptest.NewRequest(http.MethodPost, "/verify",
		jsonBody(`{"phone_number":"5550100","code":"12345"}`)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "verification code does not match", decodeMessage(t, rr))
}

func TestVerify_NotFound(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Verify", mock.Anything, "5550100", "12345").Return(nil, domain.ErrCodeNotFound)
	h := NewAuthHandler(svc)

	rr := httptest.NewRecorder()
	h.Verify(rr, httptest.NewRequest(http.MethodPost, "/verify",
		jsonBody(`{"phone_number":"5550100","code":"12345"}`)))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "verification code not found", decodeMessage(t, rr))
}

func TestVerify_NumericCodeAccepted(t *testing.T) {
	svc := &mockAuthSvc{}
	u := &domain.User{UserID: "u1", PhoneNumber: "5550100", Role: domain.RoleUser, Enable: true}
	svc.On("Verify", mock.Anything, "5550100", "41523").
		Return(&auth.VerifyResult{Message: auth.MsgLoginSuccess, Token: "tok", User: u}, nil)
	h := NewAuthHandler(svc)

	rr := httptest.NewRecorder()
	h.Verify(rr, httptest.NewRequest(http.MethodPost, "/verify",
		jsonBody(`{"phone_number":"5550100","code":41523}`)))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp VerifyEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, auth.MsgLoginSuccess, resp.Message)
	assert.Equal(t, "tok", resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "u1", resp.User.UserID)
	svc.AssertExpectations(t)
}

func TestVerify_MissingCode(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{})
	rr := httptest.NewRecorder()
	h.Verify(rr, httptest.NewRequest(http.MethodPost, "/verify", jsonBody(`{"phone_number":"5550100"}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
