package domain

import (
	"fmt"
	"time"
)

// Booking statuses.
const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Booking is one reserved court slot.
// PK: slot_id — deterministic "courtID#date#startHour", so slot uniqueness is
// enforced by a conditional put, never by a read-then-write.
// GSIs: user_id-index, facility_id-index.
type Booking struct {
	SlotID     string    `json:"slot_id" dynamodbav:"slot_id"`
	BookingID  string    `json:"id" dynamodbav:"booking_id"`
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	FacilityID string    `json:"facility_id" dynamodbav:"facility_id"`
	CourtID    string    `json:"court_id" dynamodbav:"court_id"`
	Date       string    `json:"date" dynamodbav:"date"` // YYYY-MM-DD
	StartHour  int       `json:"start_hour" dynamodbav:"start_hour"`
	EndHour    int       `json:"end_hour" dynamodbav:"end_hour"`
	TotalPrice float64   `json:"total_price" dynamodbav:"total_price"`
	Status     string    `json:"status" dynamodbav:"status"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

// SlotID builds the deterministic booking key for a court slot.
func SlotID(courtID, date string, startHour int) string {
	return fmt.Sprintf("%s#%s#%02d", courtID, date, startHour)
}

type CreateBookingRequest struct {
	CourtID   string `json:"court_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartHour int    `json:"start_hour" validate:"min=0,max=23"`
	EndHour   int    `json:"end_hour" validate:"required,min=1,max=24"`
}

// FacilityStats aggregates an owner's bookings for one facility.
type FacilityStats struct {
	FacilityID    string  `json:"facility_id"`
	TotalBookings int     `json:"total_bookings"`
	Confirmed     int     `json:"confirmed"`
	Cancelled     int     `json:"cancelled"`
	Earnings      float64 `json:"earnings"`
}
