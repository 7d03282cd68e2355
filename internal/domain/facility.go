package domain

import "time"

// Facility statuses. New facilities start pending until an admin approves them.
const (
	FacilityPending  = "pending"
	FacilityApproved = "approved"
	FacilityRejected = "rejected"
)

type Facility struct {
	FacilityID  string     `json:"id" dynamodbav:"facility_id"`
	OwnerID     string     `json:"owner_id" dynamodbav:"owner_id"`
	Name        string     `json:"name" dynamodbav:"name"`
	Description string     `json:"description" dynamodbav:"description"`
	Address     string     `json:"address" dynamodbav:"address"`
	City        string     `json:"city" dynamodbav:"city"`
	Sports      []string   `json:"sports" dynamodbav:"sports"`
	PhotoKey    string     `json:"-" dynamodbav:"photo_key"`
	PhotoURL    string     `json:"photo_url,omitempty" dynamodbav:"-"`
	Status      string     `json:"status" dynamodbav:"status"`
	Enable      bool       `json:"enable" dynamodbav:"enable"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt   time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateFacilityRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Address     string   `json:"address" validate:"required"`
	City        string   `json:"city" validate:"required"`
	Sports      []string `json:"sports" validate:"required,min=1"`
}

type UpdateFacilityRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Address     *string   `json:"address"`
	City        *string   `json:"city"`
	Sports      *[]string `json:"sports"`
}
