package http

import (
	"github.com/suvendukungfu/Quick-Court-sub001/internal/infrastructure/dynamo"
	jwtinfra "github.com/suvendukungfu/Quick-Court-sub001/internal/infrastructure/jwt"
	s3infra "github.com/suvendukungfu/Quick-Court-sub001/internal/infrastructure/s3"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/infrastructure/smtp"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo     *dynamo.UserRepo
	OTPRepo      *dynamo.OTPRepo
	FacilityRepo *dynamo.FacilityRepo
	CourtRepo    *dynamo.CourtRepo
	BookingRepo  *dynamo.BookingRepo
	PhotoStore   *s3infra.Store
	Mailer       smtp.Mailer
	SMSSender    sns.SMSSender
	JWTProvider  *jwtinfra.Provider
}
