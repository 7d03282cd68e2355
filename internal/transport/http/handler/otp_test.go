package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/domain"
)

type mockOTPService struct{ mock.Mock }

func (m *mockOTPService) Issue(ctx context.Context, phone string, purpose domain.OTPPurpose, userID string) error {
	return m.Called(ctx, phone, purpose, userID).Error(0)
}

func (m *mockOTPService) Verify(ctx context.Context, phone, code string, purpose domain.OTPPurpose) (*domain.VerificationResult, error) {
	args := m.Called(ctx, phone, code, purpose)
	if r, _ := args.Get(0).(*domain.VerificationResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func postVerify(h *OTPHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/otp/verify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Verify(rec, req)
	return rec
}

func TestVerifyHandler_MissingField_NoServiceCall(t *testing.T) {
	svc := &mockOTPService{}
	h := NewOTPHandler(svc)

	bodies := []string{
		`{"otpCode":"482913","purpose":"login"}`,
		`{"phoneNumber":"+15551230000","purpose":"login"}`,
		`{"phoneNumber":"+15551230000","otpCode":"482913"}`,
		`not json`,
	}
	for _, body := range bodies {
		rec := postVerify(h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var env MessageEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		assert.Equal(t, "Phone number, OTP code, and purpose are required", env.Error)
	}
	svc.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyHandler_UnknownPurpose_Rejected(t *testing.T) {
	svc := &mockOTPService{}
	h := NewOTPHandler(svc)

	rec := postVerify(h, `{"phoneNumber":"+15551230000","otpCode":"482913","purpose":"mfa"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyHandler_BusinessFailure_GenericMessage(t *testing.T) {
	svc := &mockOTPService{}
	svc.On("Verify", mock.Anything, "+15551230000", "482913", domain.PurposeLogin).
		Return(nil, domain.ErrInvalidOTP)
	h := NewOTPHandler(svc)

	rec := postVerify(h, `{"phoneNumber":"+15551230000","otpCode":"482913","purpose":"login"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var env VerifyOTPEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid or expired OTP. Please request a new one.", env.Error)
	assert.Empty(t, env.UserID)
}

func TestVerifyHandler_Success_FullEnvelope(t *testing.T) {
	svc := &mockOTPService{}
	svc.On("Verify", mock.Anything, "+15551230000", "482913", domain.PurposePhoneVerification).
		Return(&domain.VerificationResult{
			UserID:      "u1",
			PhoneNumber: "+15551230000",
			Purpose:     domain.PurposePhoneVerification,
		}, nil)
	h := NewOTPHandler(svc)

	rec := postVerify(h, `{"phoneNumber":"+15551230000","otpCode":"482913","purpose":"phone_verification"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var env VerifyOTPEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "OTP verified successfully", env.Message)
	assert.Equal(t, "u1", env.UserID)
	assert.Equal(t, "+15551230000", env.PhoneNumber)
	assert.Equal(t, "phone_verification", env.Purpose)
	assert.Nil(t, env.UserData)
}

func TestVerifyHandler_LoginSuccess_IncludesUserData(t *testing.T) {
	svc := &mockOTPService{}
	svc.On("Verify", mock.Anything, mock.Anything, mock.Anything, domain.PurposeLogin).
		Return(&domain.VerificationResult{
			UserID:      "u1",
			PhoneNumber: "+15551230000",
			Purpose:     domain.PurposeLogin,
			User: &domain.User{
				UserID:        "u1",
				FullName:      "Alice",
				Email:         "alice@example.com",
				Phone:         "+15551230000",
				Role:          domain.RoleUser,
				PhoneVerified: true,
				PasswordHash:  "$2a$10$secret",
			},
		}, nil)
	h := NewOTPHandler(svc)

	rec := postVerify(h, `{"phoneNumber":"+15551230000","otpCode":"482913","purpose":"login"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var env VerifyOTPEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.UserData)
	assert.Equal(t, "Alice", env.UserData.FullName)
	// The hash must never appear anywhere in the body.
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestVerifyHandler_StoreFault_Returns500(t *testing.T) {
	svc := &mockOTPService{}
	svc.On("Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("dynamo down"))
	h := NewOTPHandler(svc)

	rec := postVerify(h, `{"phoneNumber":"+15551230000","otpCode":"482913","purpose":"login"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var env MessageEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "Failed to verify OTP", env.Error)
	assert.NotContains(t, rec.Body.String(), "dynamo")
}
