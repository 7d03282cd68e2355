package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/suvendukungfu/Quick-Court-sub001/internal/application/otp"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/domain"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RequestOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Purpose     string `json:"purpose" validate:"required"`
}

// UserStore is the slice of the user store the auth flows need.
type UserStore interface {
	Put(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
}

// TokenSigner issues a bearer token for an authenticated user.
type TokenSigner interface {
	Sign(userID, role string) (string, error)
}

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	Login(ctx context.Context, req LoginRequest) (bearer string, user *domain.User, err error)
	RequestOTP(ctx context.Context, req RequestOTPRequest) error
}

type Deps struct {
	UserRepo UserStore
	OTPSvc   otp.Service
	Signer   TokenSigner
}

type service struct {
	userRepo UserStore
	otpSvc   otp.Service
	signer   TokenSigner
}

func NewService(deps Deps) Service {
	return &service{userRepo: deps.UserRepo, otpSvc: deps.OTPSvc, signer: deps.Signer}
}

// Register creates the account with a hashed password and kicks off phone
// verification by issuing a registration OTP. The account starts with
// phone_verified=false until the code is consumed.
func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         role,
		Enable:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		return nil, err
	}

	if err := s.otpSvc.Issue(ctx, u.Phone, domain.PurposeRegistration, u.UserID); err != nil {
		// Account exists either way; the user can request a fresh code.
		slog.Warn("failed to issue registration OTP", "user_id", u.UserID, "err", err)
	}
	return u, nil
}

// Login authenticates with email+password. Any mismatch — unknown email,
// wrong password, disabled account — yields the same ErrUnauthorized.
func (s *service) Login(ctx context.Context, req LoginRequest) (string, *domain.User, error) {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return "", nil, err
	}
	if !u.Enable {
		return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if s.signer == nil {
		// Degraded mode: the server can run without JWT keys, but then no
		// login can issue a token.
		return "", nil, fmt.Errorf("token signer not configured")
	}
	bearer, err := s.signer.Sign(u.UserID, u.Role)
	if err != nil {
		return "", nil, err
	}
	return bearer, u, nil
}

// RequestOTP issues a code for any of the four purposes. For purposes that
// act on an existing account the user_id is resolved from the phone number so
// the eventual consumption can apply its side effects.
func (s *service) RequestOTP(ctx context.Context, req RequestOTPRequest) error {
	purpose := domain.OTPPurpose(req.Purpose)
	if req.PhoneNumber == "" || !purpose.Valid() {
		return fmt.Errorf("phone number and purpose are required: %w", domain.ErrBadRequest)
	}

	userID := ""
	u, err := s.userRepo.GetByPhone(ctx, req.PhoneNumber)
	switch {
	case err == nil:
		userID = u.UserID
	case errors.Is(err, domain.ErrNotFound):
		if purpose != domain.PurposeRegistration {
			// Don't reveal whether the phone is registered; issue nothing but
			// report success.
			slog.Info("OTP requested for unknown phone", "purpose", purpose)
			return nil
		}
	default:
		return err
	}

	return s.otpSvc.Issue(ctx, req.PhoneNumber, purpose, userID)
}
