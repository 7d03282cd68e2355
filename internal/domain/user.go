package domain

import "time"

const (
	RoleUser  = "user"
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

type User struct {
	UserID        string     `json:"id" dynamodbav:"user_id"`
	FullName      string     `json:"full_name" dynamodbav:"full_name"`
	Email         string     `json:"email" dynamodbav:"email"`
	Phone         string     `json:"phone" dynamodbav:"phone_number"`
	PasswordHash  string     `json:"-" dynamodbav:"password_hash"`
	Role          string     `json:"role" dynamodbav:"role"`
	PhoneVerified bool       `json:"phone_verified" dynamodbav:"phone_verified"`
	AvatarKey     string     `json:"-" dynamodbav:"avatar_key"`
	Enable        bool       `json:"enable" dynamodbav:"enable"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt     time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,e164"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=user owner"`
}
