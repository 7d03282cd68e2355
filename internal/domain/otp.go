package domain

import "time"

// OTPPurpose scopes a one-time code to a single intended use. A code issued
// for one purpose never validates a request for another.
type OTPPurpose string

const (
	PurposeRegistration      OTPPurpose = "registration"
	PurposeLogin             OTPPurpose = "login"
	PurposePhoneVerification OTPPurpose = "phone_verification"
	PurposePasswordReset     OTPPurpose = "password_reset"
)

// Valid reports whether p is one of the four known purposes.
func (p OTPPurpose) Valid() bool {
	switch p {
	case PurposeRegistration, PurposeLogin, PurposePhoneVerification, PurposePasswordReset:
		return true
	}
	return false
}

// MaxOTPAttempts is the failed-match budget per code. At or above this the
// record is permanently excluded from matching; it is never deleted early.
const MaxOTPAttempts = 3

// OTPVerification is one issued code.
// PK: otp_id. GSI: phone_number-index (phone_number, created_at).
// ExpiresAt doubles as the DynamoDB TTL attribute (Unix seconds).
type OTPVerification struct {
	OTPID       string     `json:"id" dynamodbav:"otp_id"`
	PhoneNumber string     `json:"phone_number" dynamodbav:"phone_number"`
	OTPCode     string     `json:"-" dynamodbav:"otp_code"`
	Purpose     OTPPurpose `json:"purpose" dynamodbav:"purpose"`
	IsVerified  bool       `json:"is_verified" dynamodbav:"is_verified"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty" dynamodbav:"verified_at"`
	Attempts    int        `json:"attempts" dynamodbav:"attempts"`
	ExpiresAt   int64      `json:"expires_at" dynamodbav:"expires_at"`
	CreatedAt   time.Time  `json:"created_at" dynamodbav:"created_at"`
	UserID      string     `json:"user_id,omitempty" dynamodbav:"user_id"`
}

// VerificationResult is what a successful consumption yields.
// User is attached only for the login purpose, and only when a user with the
// verified phone number exists.
type VerificationResult struct {
	UserID      string
	PhoneNumber string
	Purpose     OTPPurpose
	User        *User
}
