package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/suvendukungfu/Quick-Court-sub001/internal/application/otp"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/domain"
)

// Wire messages for the verify endpoint. Every ineligibility cause shares one
// generic message so callers cannot probe which precondition failed.
const (
	msgFieldsRequired = "Phone number, OTP code, and purpose are required"
	msgInvalidOTP     = "Invalid or expired OTP. Please request a new one."
	msgVerifyFailed   = "Failed to verify OTP"
	msgVerified       = "OTP verified successfully"
)

// OTPHandler handles OTP verification requests.
type OTPHandler struct {
	svc otp.Service
}

func NewOTPHandler(svc otp.Service) *OTPHandler {
	return &OTPHandler{svc: svc}
}

// VerifyOTPRequest is the verify endpoint's JSON body.
type VerifyOTPRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	OTPCode     string `json:"otpCode"`
	Purpose     string `json:"purpose"`
}

// VerifyOTPEnvelope is the verify endpoint's JSON response.
type VerifyOTPEnvelope struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message,omitempty"`
	Error       string    `json:"error,omitempty"`
	UserID      string    `json:"userId,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Purpose     string    `json:"purpose,omitempty"`
	UserData    *SafeUser `json:"userData,omitempty"`
}

// Verify consumes a one-time code. Missing fields are rejected here, before
// the service or any store is touched.
func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgFieldsRequired)
		return
	}
	if req.PhoneNumber == "" || req.OTPCode == "" || req.Purpose == "" {
		writeError(w, http.StatusBadRequest, msgFieldsRequired)
		return
	}
	purpose := domain.OTPPurpose(req.Purpose)
	if !purpose.Valid() {
		writeError(w, http.StatusBadRequest, msgFieldsRequired)
		return
	}

	result, err := h.svc.Verify(r.Context(), req.PhoneNumber, req.OTPCode, purpose)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidOTP):
			writeJSON(w, http.StatusBadRequest, VerifyOTPEnvelope{Success: false, Error: msgInvalidOTP})
		case errors.Is(err, domain.ErrBadRequest):
			writeError(w, http.StatusBadRequest, msgFieldsRequired)
		default:
			writeError(w, http.StatusInternalServerError, msgVerifyFailed)
		}
		return
	}

	writeJSON(w, http.StatusOK, VerifyOTPEnvelope{
		Success:     true,
		Message:     msgVerified,
		UserID:      result.UserID,
		PhoneNumber: result.PhoneNumber,
		Purpose:     string(result.Purpose),
		UserData:    toSafeUser(result.User),
	})
}
