package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/domain"
)

// --- mocks ---

type mockOTPStore struct{ mock.Mock }

func (m *mockOTPStore) Put(ctx context.Context, v *domain.OTPVerification) error {
	return m.Called(ctx, v).Error(0)
}
func (m *mockOTPStore) FindMatching(ctx context.Context, phone, code string, purpose domain.OTPPurpose, now time.Time, maxAttempts int) (*domain.OTPVerification, error) {
	args := m.Called(ctx, phone, code, purpose, now, maxAttempts)
	if v, _ := args.Get(0).(*domain.OTPVerification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOTPStore) IncrementAttempts(ctx context.Context, phone, code string, purpose domain.OTPPurpose) error {
	return m.Called(ctx, phone, code, purpose).Error(0)
}
func (m *mockOTPStore) MarkVerified(ctx context.Context, otpID string, at time.Time) error {
	return m.Called(ctx, otpID, at).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	args := m.Called(ctx, phone)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, phone, msg string) error {
	return m.Called(ctx, phone, msg).Error(0)
}

// --- builder ---

func newService(os *mockOTPStore, us *mockUserStore, sms *mockSMSSender) Service {
	return NewService(Deps{
		OTPRepo:     os,
		UserRepo:    us,
		SMSSender:   sms,
		Expiry:      5 * time.Minute,
		MaxAttempts: 3,
	})
}

func eligibleRecord() *domain.OTPVerification {
	return &domain.OTPVerification{
		OTPID:       "otp1",
		PhoneNumber: "+15551230000",
		OTPCode:     "482913",
		Purpose:     domain.PurposePhoneVerification,
		Attempts:    0,
		ExpiresAt:   time.Now().Add(5 * time.Minute).Unix(),
		CreatedAt:   time.Now(),
		UserID:      "u1",
	}
}

// --- Verify: validation ---

func TestVerify_MissingInput_NoStoreAccess(t *testing.T) {
	os := &mockOTPStore{}
	svc := newService(os, &mockUserStore{}, nil)

	cases := []struct{ phone, code string; purpose domain.OTPPurpose }{
		{"", "482913", domain.PurposeLogin},
		{"+15551230000", "", domain.PurposeLogin},
		{"+15551230000", "482913", ""},
	}
	for _, c := range cases {
		_, err := svc.Verify(context.Background(), c.phone, c.code, c.purpose)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrBadRequest))
	}
	os.AssertNotCalled(t, "FindMatching", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	os.AssertNotCalled(t, "IncrementAttempts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_UnknownPurpose_NoStoreAccess(t *testing.T) {
	os := &mockOTPStore{}
	svc := newService(os, &mockUserStore{}, nil)

	_, err := svc.Verify(context.Background(), "+15551230000", "482913", "mfa")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	os.AssertNotCalled(t, "FindMatching", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Verify: business failure ---

func TestVerify_NoEligibleRecord_PenalizesAndFailsGeneric(t *testing.T) {
	os := &mockOTPStore{}
	os.On("FindMatching", mock.Anything, "+15551230000", "000000", domain.PurposeLogin, mock.Anything, 3).
		Return(nil, domain.ErrNotFound)
	os.On("IncrementAttempts", mock.Anything, "+15551230000", "000000", domain.PurposeLogin).Return(nil)

	svc := newService(os, &mockUserStore{}, nil)
	_, err := svc.Verify(context.Background(), "+15551230000", "000000", domain.PurposeLogin)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidOTP))
	os.AssertExpectations(t)
}

func TestVerify_IncrementFailure_Swallowed(t *testing.T) {
	os := &mockOTPStore{}
	os.On("FindMatching", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrNotFound)
	os.On("IncrementAttempts", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("dynamo down"))

	svc := newService(os, &mockUserStore{}, nil)
	_, err := svc.Verify(context.Background(), "+15551230000", "000000", domain.PurposeLogin)

	// Still the generic business failure, not a 500-class error.
	assert.True(t, errors.Is(err, domain.ErrInvalidOTP))
}

func TestVerify_FindStoreFault_SurfacesAsInternal(t *testing.T) {
	os := &mockOTPStore{}
	os.On("FindMatching", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("dynamo down"))

	svc := newService(os, &mockUserStore{}, nil)
	_, err := svc.Verify(context.Background(), "+15551230000", "482913", domain.PurposeLogin)

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrInvalidOTP))
	assert.False(t, errors.Is(err, domain.ErrBadRequest))
	os.AssertNotCalled(t, "IncrementAttempts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Verify: consumption ---

func TestVerify_PhoneVerification_HappyPath(t *testing.T) {
	rec := eligibleRecord()
	os := &mockOTPStore{}
	us := &mockUserStore{}
	os.On("FindMatching", mock.Anything, rec.PhoneNumber, rec.OTPCode, domain.PurposePhoneVerification, mock.Anything, 3).
		Return(rec, nil)
	os.On("MarkVerified", mock.Anything, "otp1", mock.Anything).Return(nil)
	us.On("Update", mock.Anything, "u1", map[string]interface{}{"phone_verified": true}).Return(nil)

	svc := newService(os, us, nil)
	result, err := svc.Verify(context.Background(), rec.PhoneNumber, rec.OTPCode, domain.PurposePhoneVerification)

	require.NoError(t, err)
	assert.Equal(t, "u1", result.UserID)
	assert.Equal(t, rec.PhoneNumber, result.PhoneNumber)
	assert.Equal(t, domain.PurposePhoneVerification, result.Purpose)
	assert.Nil(t, result.User)
	os.AssertExpectations(t)
	us.AssertExpectations(t)
}

func TestVerify_PhoneVerification_NoUserID_SkipsUpdate(t *testing.T) {
	rec := eligibleRecord()
	rec.UserID = ""
	os := &mockOTPStore{}
	us := &mockUserStore{}
	os.On("FindMatching", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(rec, nil)
	os.On("MarkVerified", mock.Anything, "otp1", mock.Anything).Return(nil)

	svc := newService(os, us, nil)
	_, err := svc.Verify(context.Background(), rec.PhoneNumber, rec.OTPCode, domain.PurposePhoneVerification)

	require.NoError(t, err)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_SideEffectFailure_DoesNotRollBackConsumption(t *testing.T) {
	rec := eligibleRecord()
	os := &mockOTPStore{}
	us := &mockUserStore{}
	os.On("FindMatching", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(rec, nil)
	os.On("MarkVerified", mock.Anything, "otp1", mock.Anything).Return(nil)
	us.On("Update", mock.Anything, "u1", mock.Anything).Return(errors.New("users table down"))

	svc := newService(os, us, nil)
	result, err := svc.Verify(context.Background(), rec.PhoneNumber, rec.OTPCode, domain.PurposePhoneVerification)

	require.NoError(t, err)
	assert.Equal(t, "u1", result.UserID)
}

func TestVerify_LostRace_FailsGeneric(t *testing.T) {
	rec := eligibleRecord()
	os := &mockOTPStore{}
	os.On("FindMatching", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(rec, nil)
	os.On("MarkVerified", mock.Anything, "otp1", mock.Anything).Return(domain.ErrConflict)

	svc := newService(os, &mockUserStore{}, nil)
	_, err := svc.Verify(context.Background(), rec.PhoneNumber, rec.OTPCode, domain.PurposePhoneVerification)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidOTP))
}

func TestVerify_ConsumptionStoreFault_SurfacesAsInternal(t *testing.T) {
	rec := eligibleRecord()
	os := &mockOTPStore{}
	os.On("FindMatching", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(rec, nil)
	os.On("MarkVerified", mock.Anything, "otp1", mock.Anything).Return(errors.New("dynamo down"))

	svc := newService(os, &mockUserStore{}, nil)
	_, err := svc.Verify(context.Background(), rec.PhoneNumber, rec.OTPCode, domain.PurposePhoneVerification)

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrInvalidOTP))
}

// --- Verify: login side effects ---

func TestVerify_Login_AttachesUser(t *testing.T) {
	rec := eligibleRecord()
	rec.Purpose = domain.PurposeLogin
	user := &domain.User{UserID: "u1", Phone: rec.PhoneNumber, FullName: "Alice"}

	os := &mockOTPStore{}
	us := &mockUserStore{}
	os.On("FindMatching", mock.Anything, mock.Anything, mock.Anything, domain.PurposeLogin, mock.Anything, mock.Anything).
		Return(rec, nil)
	os.On("MarkVerified", mock.Anything, "otp1", mock.Anything).Return(nil)
	us.On("GetByPhone", mock.Anything, rec.PhoneNumber).Return(user, nil)

	svc := newService(os, us, nil)
	result, err := svc.Verify(context.Background(), rec.PhoneNumber, rec.OTPCode, domain.PurposeLogin)

	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.Equal(t, "Alice", result.User.FullName)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_Login_NoUser_StillSucceeds(t *testing.T) {
	rec := eligibleRecord()
	rec.Purpose = domain.PurposeLogin
	rec.UserID = ""

	os := &mockOTPStore{}
	us := &mockUserStore{}
	os.On("FindMatching", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(rec, nil)
	os.On("MarkVerified", mock.Anything, "otp1", mock.Anything).Return(nil)
	us.On("GetByPhone", mock.Anything, rec.PhoneNumber).Return(nil, domain.ErrNotFound)

	svc := newService(os, us, nil)
	result, err := svc.Verify(context.Background(), rec.PhoneNumber, rec.OTPCode, domain.PurposeLogin)

	require.NoError(t, err)
	assert.Nil(t, result.User)
}

func TestVerify_Login_UserLookupFault_SurfacesAsInternal(t *testing.T) {
	rec := eligibleRecord()
	rec.Purpose = domain.PurposeLogin

	os := &mockOTPStore{}
	us := &mockUserStore{}
	os.On("FindMatching", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(rec, nil)
	os.On("MarkVerified", mock.Anything, "otp1", mock.Anything).Return(nil)
	us.On("GetByPhone", mock.Anything, rec.PhoneNumber).Return(nil, errors.New("users table down"))

	svc := newService(os, us, nil)
	_, err := svc.Verify(context.Background(), rec.PhoneNumber, rec.OTPCode, domain.PurposeLogin)

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrInvalidOTP))
}

// --- Issue ---

func TestIssue_PutsRecordAndSendsSMS(t *testing.T) {
	os := &mockOTPStore{}
	sms := &mockSMSSender{}
	var stored *domain.OTPVerification
	os.On("Put", mock.Anything, mock.AnythingOfType("*domain.OTPVerification")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.OTPVerification) }).
		Return(nil)
	sms.On("SendSMS", mock.Anything, "+15551230000", mock.Anything).Return(nil)

	svc := newService(os, &mockUserStore{}, sms)
	err := svc.Issue(context.Background(), "+15551230000", domain.PurposeRegistration, "u1")

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.OTPCode, 6)
	assert.Equal(t, 0, stored.Attempts)
	assert.False(t, stored.IsVerified)
	assert.Equal(t, "u1", stored.UserID)
	assert.Greater(t, stored.ExpiresAt, time.Now().Unix())
	sms.AssertExpectations(t)
}

func TestIssue_InvalidPurpose_Rejected(t *testing.T) {
	svc := newService(&mockOTPStore{}, &mockUserStore{}, &mockSMSSender{})
	err := svc.Issue(context.Background(), "+15551230000", "whatever", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}
