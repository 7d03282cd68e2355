package otp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/domain"
)

// casStore is an in-memory OTPStore whose MarkVerified has the same
// exactly-once semantics as the conditional write it stands in for.
type casStore struct {
	mu   sync.Mutex
	recs map[string]*domain.OTPVerification
}

func newCASStore() *casStore {
	return &casStore{recs: make(map[string]*domain.OTPVerification)}
}

func (s *casStore) Put(_ context.Context, v *domain.OTPVerification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.recs[v.OTPID] = &cp
	return nil
}

func (s *casStore) FindMatching(_ context.Context, phone, code string, purpose domain.OTPPurpose, now time.Time, maxAttempts int) (*domain.OTPVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var newest *domain.OTPVerification
	for _, r := range s.recs {
		if r.PhoneNumber != phone || r.OTPCode != code || r.Purpose != purpose {
			continue
		}
		if r.IsVerified || r.ExpiresAt <= now.Unix() || r.Attempts >= maxAttempts {
			continue
		}
		if newest == nil || r.CreatedAt.After(newest.CreatedAt) {
			newest = r
		}
	}
	if newest == nil {
		return nil, fmt.Errorf("no matching record: %w", domain.ErrNotFound)
	}
	cp := *newest
	return &cp, nil
}

func (s *casStore) IncrementAttempts(_ context.Context, phone, code string, purpose domain.OTPPurpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var newest *domain.OTPVerification
	for _, r := range s.recs {
		if r.PhoneNumber == phone && r.OTPCode == code && r.Purpose == purpose {
			if newest == nil || r.CreatedAt.After(newest.CreatedAt) {
				newest = r
			}
		}
	}
	if newest != nil {
		newest.Attempts++
	}
	return nil
}

func (s *casStore) MarkVerified(_ context.Context, otpID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recs[otpID]
	if !ok {
		return fmt.Errorf("record %s: %w", otpID, domain.ErrNotFound)
	}
	if r.IsVerified {
		return fmt.Errorf("otp already consumed: %w", domain.ErrConflict)
	}
	r.IsVerified = true
	r.VerifiedAt = &at
	return nil
}

// countingUserStore records how many times phone_verified was flipped.
type countingUserStore struct {
	mu      sync.Mutex
	updates int
}

func (s *countingUserStore) GetByPhone(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func (s *countingUserStore) Update(_ context.Context, _ string, _ map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	return nil
}

func TestVerify_ConcurrentCallers_ExactlyOneWins(t *testing.T) {
	store := newCASStore()
	users := &countingUserStore{}
	require.NoError(t, store.Put(context.Background(), eligibleRecord()))

	svc := NewService(Deps{OTPRepo: store, UserRepo: users})

	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Verify(context.Background(), "+15551230000", "482913", domain.PurposePhoneVerification)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.True(t, errors.Is(err, domain.ErrInvalidOTP))
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, users.updates)
}

func TestVerify_ExhaustedAttempts_LocksOutCorrectCode(t *testing.T) {
	store := newCASStore()
	rec := eligibleRecord()
	rec.Attempts = domain.MaxOTPAttempts
	require.NoError(t, store.Put(context.Background(), rec))

	svc := NewService(Deps{OTPRepo: store, UserRepo: &countingUserStore{}})

	// Exhausted records are excluded from matching even with the right code.
	_, err := svc.Verify(context.Background(), "+15551230000", "482913", domain.PurposePhoneVerification)
	assert.True(t, errors.Is(err, domain.ErrInvalidOTP))
}

func TestVerify_FailedMatch_PenalizesSharedCode(t *testing.T) {
	store := newCASStore()
	rec := eligibleRecord()
	rec.ExpiresAt = time.Now().Add(-time.Second).Unix()
	require.NoError(t, store.Put(context.Background(), rec))

	svc := NewService(Deps{OTPRepo: store, UserRepo: &countingUserStore{}})

	// Expired record never matches, but each miss still bumps its counter.
	for i := 0; i < 2; i++ {
		_, err := svc.Verify(context.Background(), "+15551230000", "482913", domain.PurposePhoneVerification)
		assert.True(t, errors.Is(err, domain.ErrInvalidOTP))
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, 2, store.recs["otp1"].Attempts)
}

func TestVerify_NewestRecordWins(t *testing.T) {
	store := newCASStore()
	old := eligibleRecord()
	old.OTPID = "otp-old"
	old.CreatedAt = time.Now().Add(-time.Minute)
	newer := eligibleRecord()
	newer.OTPID = "otp-new"
	newer.UserID = "u2"
	require.NoError(t, store.Put(context.Background(), old))
	require.NoError(t, store.Put(context.Background(), newer))

	svc := NewService(Deps{OTPRepo: store, UserRepo: &countingUserStore{}})
	result, err := svc.Verify(context.Background(), "+15551230000", "482913", domain.PurposePhoneVerification)

	require.NoError(t, err)
	assert.Equal(t, "u2", result.UserID)

	// The older record is still live and consumable afterwards.
	result, err = svc.Verify(context.Background(), "+15551230000", "482913", domain.PurposePhoneVerification)
	require.NoError(t, err)
	assert.Equal(t, "u1", result.UserID)
}

func TestVerify_PurposeIsolation(t *testing.T) {
	store := newCASStore()
	require.NoError(t, store.Put(context.Background(), eligibleRecord()))

	svc := NewService(Deps{OTPRepo: store, UserRepo: &countingUserStore{}})

	// Same phone and code, different purpose: no match.
	_, err := svc.Verify(context.Background(), "+15551230000", "482913", domain.PurposeLogin)
	assert.True(t, errors.Is(err, domain.ErrInvalidOTP))

	// The record is untouched for its real purpose.
	_, err = svc.Verify(context.Background(), "+15551230000", "482913", domain.PurposePhoneVerification)
	assert.NoError(t, err)
}

func TestVerify_ExpiredRecord_Ineligible(t *testing.T) {
	store := newCASStore()
	rec := eligibleRecord()
	rec.ExpiresAt = time.Now().Add(-time.Second).Unix()
	require.NoError(t, store.Put(context.Background(), rec))

	svc := NewService(Deps{OTPRepo: store, UserRepo: &countingUserStore{}})
	_, err := svc.Verify(context.Background(), "+15551230000", "482913", domain.PurposePhoneVerification)
	assert.True(t, errors.Is(err, domain.ErrInvalidOTP))
}
