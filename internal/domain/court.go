package domain

import "time"

type Court struct {
	CourtID      string    `json:"id" dynamodbav:"court_id"`
	FacilityID   string    `json:"facility_id" dynamodbav:"facility_id"`
	Name         string    `json:"name" dynamodbav:"name"`
	Sport        string    `json:"sport" dynamodbav:"sport"`
	PricePerHour float64   `json:"price_per_hour" dynamodbav:"price_per_hour"`
	OpenHour     int       `json:"open_hour" dynamodbav:"open_hour"`   // 0-23
	CloseHour    int       `json:"close_hour" dynamodbav:"close_hour"` // 1-24
	Enable       bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateCourtRequest struct {
	Name         string  `json:"name" validate:"required"`
	Sport        string  `json:"sport" validate:"required"`
	PricePerHour float64 `json:"price_per_hour" validate:"required,gt=0"`
	OpenHour     int     `json:"open_hour" validate:"min=0,max=23"`
	CloseHour    int     `json:"close_hour" validate:"required,min=1,max=24"`
}
