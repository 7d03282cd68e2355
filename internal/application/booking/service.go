package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/suvendukungfu/Quick-Court-sub001/internal/domain"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/infrastructure/smtp"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/pkg/id"
)

// BookingStore is the persistence contract for bookings.
type BookingStore interface {
	// PutNew must reject the write with domain.ErrConflict when the slot is taken.
	PutNew(ctx context.Context, b *domain.Booking) error
	Get(ctx context.Context, slotID string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	ListByFacility(ctx context.Context, facilityID string) ([]domain.Booking, error)
	Update(ctx context.Context, slotID string, updates map[string]interface{}) error
}

// CourtStore resolves the court being booked.
type CourtStore interface {
	Get(ctx context.Context, courtID string) (*domain.Court, error)
}

// FacilityStore resolves facility ownership for stats.
type FacilityStore interface {
	Get(ctx context.Context, facilityID string) (*domain.Facility, error)
}

// UserStore resolves the booker's email for the confirmation mail.
type UserStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type Service interface {
	Book(ctx context.Context, userID string, req domain.CreateBookingRequest) (*domain.Booking, error)
	ListMine(ctx context.Context, userID string) ([]domain.Booking, error)
	Cancel(ctx context.Context, userID, slotID string) error
	FacilityStats(ctx context.Context, ownerID, facilityID string) (*domain.FacilityStats, error)
}

type Deps struct {
	BookingRepo  BookingStore
	CourtRepo    CourtStore
	FacilityRepo FacilityStore
	UserRepo     UserStore
	Mailer       smtp.Mailer
}

type service struct {
	bookingRepo  BookingStore
	courtRepo    CourtStore
	facilityRepo FacilityStore
	userRepo     UserStore
	mailer       smtp.Mailer
}

func NewService(deps Deps) Service {
	return &service{
		bookingRepo:  deps.BookingRepo,
		courtRepo:    deps.CourtRepo,
		facilityRepo: deps.FacilityRepo,
		userRepo:     deps.UserRepo,
		mailer:       deps.Mailer,
	}
}

// Book reserves a court slot. Slot exclusivity comes from the store's
// conditional insert on the deterministic slot key — two simultaneous
// requests for the same slot produce exactly one booking.
func (s *service) Book(ctx context.Context, userID string, req domain.CreateBookingRequest) (*domain.Booking, error) {
	if req.EndHour <= req.StartHour {
		return nil, fmt.Errorf("end_hour must be after start_hour: %w", domain.ErrBadRequest)
	}
	court, err := s.courtRepo.Get(ctx, req.CourtID)
	if err != nil {
		return nil, err
	}
	if !court.Enable {
		return nil, fmt.Errorf("court disabled: %w", domain.ErrNotFound)
	}
	if req.StartHour < court.OpenHour || req.EndHour > court.CloseHour {
		return nil, fmt.Errorf("slot outside court hours: %w", domain.ErrBadRequest)
	}

	now := time.Now().UTC()
	b := &domain.Booking{
		SlotID:     domain.SlotID(court.CourtID, req.Date, req.StartHour),
		BookingID:  id.New(),
		UserID:     userID,
		FacilityID: court.FacilityID,
		CourtID:    court.CourtID,
		Date:       req.Date,
		StartHour:  req.StartHour,
		EndHour:    req.EndHour,
		TotalPrice: court.PricePerHour * float64(req.EndHour-req.StartHour),
		Status:     domain.BookingConfirmed,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.bookingRepo.PutNew(ctx, b); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("slot %s already booked: %w", b.SlotID, domain.ErrConflict)
		}
		return nil, err
	}

	s.sendConfirmation(ctx, b)
	return b, nil
}

func (s *service) ListMine(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookingRepo.ListByUser(ctx, userID)
}

// Cancel flips a confirmed booking to cancelled. Only the booker may cancel,
// and only while the booking is still confirmed.
func (s *service) Cancel(ctx context.Context, userID, slotID string) error {
	b, err := s.bookingRepo.Get(ctx, slotID)
	if err != nil {
		return err
	}
	if b.UserID != userID {
		return fmt.Errorf("not your booking: %w", domain.ErrForbidden)
	}
	if b.Status != domain.BookingConfirmed {
		return fmt.Errorf("booking is %s: %w", b.Status, domain.ErrConflict)
	}
	return s.bookingRepo.Update(ctx, slotID, map[string]interface{}{"status": domain.BookingCancelled})
}

// FacilityStats aggregates bookings for one facility the owner controls.
func (s *service) FacilityStats(ctx context.Context, ownerID, facilityID string) (*domain.FacilityStats, error) {
	f, err := s.facilityRepo.Get(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if f.OwnerID != ownerID {
		return nil, fmt.Errorf("not the facility owner: %w", domain.ErrForbidden)
	}
	bookings, err := s.bookingRepo.ListByFacility(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	stats := &domain.FacilityStats{FacilityID: facilityID}
	for _, b := range bookings {
		stats.TotalBookings++
		switch b.Status {
		case domain.BookingCancelled:
			stats.Cancelled++
		default:
			stats.Confirmed++
			stats.Earnings += b.TotalPrice
		}
	}
	return stats, nil
}

// sendConfirmation mails the booker. Best-effort: the booking stands whether
// or not the mail goes out.
func (s *service) sendConfirmation(ctx context.Context, b *domain.Booking) {
	if s.mailer == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.Get(ctx, b.UserID)
	if err != nil {
		slog.Warn("failed to load user for booking confirmation", "user_id", b.UserID, "err", err)
		return
	}
	body := fmt.Sprintf("Your booking for %s %02d:00-%02d:00 is confirmed. Total: %.2f", b.Date, b.StartHour, b.EndHour, b.TotalPrice)
	if err := s.mailer.SendEmail(u.Email, "Booking confirmed", body); err != nil {
		slog.Warn("failed to send booking confirmation", "user_id", b.UserID, "err", err)
	}
}
