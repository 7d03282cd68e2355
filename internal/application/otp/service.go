package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/suvendukungfu/Quick-Court-sub001/internal/domain"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/infrastructure/sns"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/pkg/id"
)

// OTPStore is the persistence contract for one-time codes. All exclusivity
// lives behind MarkVerified's conditional write; the service never holds
// in-process locks since multiple instances may run concurrently.
type OTPStore interface {
	Put(ctx context.Context, v *domain.OTPVerification) error
	FindMatching(ctx context.Context, phone, code string, purpose domain.OTPPurpose, now time.Time, maxAttempts int) (*domain.OTPVerification, error)
	IncrementAttempts(ctx context.Context, phone, code string, purpose domain.OTPPurpose) error
	// MarkVerified flips is_verified false→true exactly once. Returns
	// domain.ErrConflict when the record was already consumed.
	MarkVerified(ctx context.Context, otpID string, at time.Time) error
}

// UserStore is the slice of the user store the verification side effects need.
type UserStore interface {
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type Service interface {
	Issue(ctx context.Context, phone string, purpose domain.OTPPurpose, userID string) error
	Verify(ctx context.Context, phone, code string, purpose domain.OTPPurpose) (*domain.VerificationResult, error)
}

type Deps struct {
	OTPRepo     OTPStore
	UserRepo    UserStore
	SMSSender   sns.SMSSender
	Expiry      time.Duration
	MaxAttempts int
}

type service struct {
	otpRepo     OTPStore
	userRepo    UserStore
	smsSender   sns.SMSSender
	expiry      time.Duration
	maxAttempts int
}

func NewService(deps Deps) Service {
	if deps.Expiry <= 0 {
		deps.Expiry = 5 * time.Minute
	}
	if deps.MaxAttempts <= 0 {
		deps.MaxAttempts = domain.MaxOTPAttempts
	}
	return &service{
		otpRepo:     deps.OTPRepo,
		userRepo:    deps.UserRepo,
		smsSender:   deps.SMSSender,
		expiry:      deps.Expiry,
		maxAttempts: deps.MaxAttempts,
	}
}

// Issue creates a fresh 6-digit code for the phone+purpose pair and
// dispatches it over SMS. userID may be empty (registration flows where the
// account does not exist yet).
func (s *service) Issue(ctx context.Context, phone string, purpose domain.OTPPurpose, userID string) error {
	if phone == "" || !purpose.Valid() {
		return fmt.Errorf("phone number and purpose required: %w", domain.ErrBadRequest)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	now := time.Now().UTC()
	v := &domain.OTPVerification{
		OTPID:       id.New(),
		PhoneNumber: phone,
		OTPCode:     code,
		Purpose:     purpose,
		IsVerified:  false,
		Attempts:    0,
		ExpiresAt:   now.Add(s.expiry).Unix(),
		CreatedAt:   now,
		UserID:      userID,
	}
	if err := s.otpRepo.Put(ctx, v); err != nil {
		return err
	}
	return s.smsSender.SendSMS(ctx, phone, "Your QuickCourt verification code: "+code)
}

// Verify runs the consumption protocol: find the newest eligible record,
// consume it with a single conditional write, then apply purpose-specific
// side effects. Every ineligibility cause — wrong code, expired, attempts
// exhausted, already consumed — collapses into ErrInvalidOTP.
func (s *service) Verify(ctx context.Context, phone, code string, purpose domain.OTPPurpose) (*domain.VerificationResult, error) {
	if phone == "" || code == "" || purpose == "" {
		return nil, fmt.Errorf("phone number, OTP code, and purpose are required: %w", domain.ErrBadRequest)
	}
	if !purpose.Valid() {
		return nil, fmt.Errorf("unknown purpose %q: %w", purpose, domain.ErrBadRequest)
	}

	rec, err := s.otpRepo.FindMatching(ctx, phone, code, purpose, time.Now(), s.maxAttempts)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		// Penalize whatever record shares this phone+code+purpose, eligible
		// or not. Best-effort: its failure never changes the outcome.
		if incErr := s.otpRepo.IncrementAttempts(ctx, phone, code, purpose); incErr != nil {
			slog.Warn("failed to increment OTP attempts", "phone", phone, "purpose", purpose, "err", incErr)
		}
		return nil, fmt.Errorf("no eligible record: %w", domain.ErrInvalidOTP)
	}

	now := time.Now().UTC()
	if err := s.otpRepo.MarkVerified(ctx, rec.OTPID, now); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost the consumption race; to the caller this is
			// indistinguishable from any other ineligible code.
			return nil, fmt.Errorf("record consumed concurrently: %w", domain.ErrInvalidOTP)
		}
		return nil, err
	}

	result := &domain.VerificationResult{
		UserID:      rec.UserID,
		PhoneNumber: phone,
		Purpose:     purpose,
	}

	// Side effects run only after the consumption committed. They never roll
	// it back.
	switch purpose {
	case domain.PurposePhoneVerification:
		if rec.UserID != "" {
			if err := s.userRepo.Update(ctx, rec.UserID, map[string]interface{}{"phone_verified": true}); err != nil {
				slog.Warn("failed to mark phone verified", "user_id", rec.UserID, "err", err)
			}
		}
	case domain.PurposeLogin:
		u, err := s.userRepo.GetByPhone(ctx, phone)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			// No account with this phone — the login verification still
			// succeeded, there is just no profile to attach.
		} else {
			result.User = u
		}
	}

	return result, nil
}
