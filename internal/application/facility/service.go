package facility

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/suvendukungfu/Quick-Court-sub001/internal/domain"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/pkg/id"
)

// FacilityStore is the persistence contract for facilities.
type FacilityStore interface {
	Put(ctx context.Context, f *domain.Facility) error
	Get(ctx context.Context, facilityID string) (*domain.Facility, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Facility, error)
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Facility, string, error)
	Update(ctx context.Context, facilityID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, facilityID string) error
}

// CourtStore is the persistence contract for courts.
type CourtStore interface {
	Put(ctx context.Context, c *domain.Court) error
	Get(ctx context.Context, courtID string) (*domain.Court, error)
	ListByFacility(ctx context.Context, facilityID string) ([]domain.Court, error)
	Update(ctx context.Context, courtID string, updates map[string]interface{}) error
}

// PhotoStore is the object storage contract for facility photos.
type PhotoStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service interface {
	Create(ctx context.Context, ownerID string, req domain.CreateFacilityRequest) (*domain.Facility, error)
	Get(ctx context.Context, facilityID string) (*domain.Facility, []domain.Court, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.Facility, string, error)
	ListOwned(ctx context.Context, ownerID string) ([]domain.Facility, error)
	Update(ctx context.Context, ownerID, facilityID string, req domain.UpdateFacilityRequest) error
	Delete(ctx context.Context, ownerID, facilityID string) error
	SetStatus(ctx context.Context, facilityID, status string) error
	UploadPhoto(ctx context.Context, ownerID, facilityID, filename string, r io.Reader, contentType string) error
	AddCourt(ctx context.Context, ownerID, facilityID string, req domain.CreateCourtRequest) (*domain.Court, error)
}

type service struct {
	facilityRepo FacilityStore
	courtRepo    CourtStore
	photos       PhotoStore
}

func NewService(facilityRepo FacilityStore, courtRepo CourtStore, photos PhotoStore) Service {
	return &service{facilityRepo: facilityRepo, courtRepo: courtRepo, photos: photos}
}

func (s *service) Create(ctx context.Context, ownerID string, req domain.CreateFacilityRequest) (*domain.Facility, error) {
	now := time.Now().UTC()
	f := &domain.Facility{
		FacilityID:  id.New(),
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		Sports:      req.Sports,
		Status:      domain.FacilityPending,
		Enable:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.facilityRepo.Put(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) Get(ctx context.Context, facilityID string) (*domain.Facility, []domain.Court, error) {
	f, err := s.facilityRepo.Get(ctx, facilityID)
	if err != nil {
		return nil, nil, err
	}
	if !f.Enable {
		return nil, nil, fmt.Errorf("facility disabled: %w", domain.ErrNotFound)
	}
	courts, err := s.courtRepo.ListByFacility(ctx, facilityID)
	if err != nil {
		return nil, nil, err
	}
	if f.PhotoKey != "" && s.photos != nil {
		if url, err := s.photos.PresignedURL(ctx, f.PhotoKey, 15*time.Minute); err == nil {
			f.PhotoURL = url
		}
	}
	return f, courts, nil
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.Facility, string, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.facilityRepo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) ListOwned(ctx context.Context, ownerID string) ([]domain.Facility, error) {
	return s.facilityRepo.ListByOwner(ctx, ownerID)
}

func (s *service) Update(ctx context.Context, ownerID, facilityID string, req domain.UpdateFacilityRequest) error {
	if _, err := s.owned(ctx, ownerID, facilityID); err != nil {
		return err
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Sports != nil {
		updates["sports"] = *req.Sports
	}
	if len(updates) == 0 {
		return fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	return s.facilityRepo.Update(ctx, facilityID, updates)
}

func (s *service) Delete(ctx context.Context, ownerID, facilityID string) error {
	if _, err := s.owned(ctx, ownerID, facilityID); err != nil {
		return err
	}
	return s.facilityRepo.SoftDelete(ctx, facilityID)
}

func (s *service) SetStatus(ctx context.Context, facilityID, status string) error {
	if status != domain.FacilityApproved && status != domain.FacilityRejected {
		return fmt.Errorf("unknown status %q: %w", status, domain.ErrBadRequest)
	}
	return s.facilityRepo.Update(ctx, facilityID, map[string]interface{}{"status": status})
}

func (s *service) UploadPhoto(ctx context.Context, ownerID, facilityID, filename string, r io.Reader, contentType string) error {
	if _, err := s.owned(ctx, ownerID, facilityID); err != nil {
		return err
	}
	key := fmt.Sprintf("facilities/%s/%s", facilityID, filename)
	if _, err := s.photos.Upload(ctx, key, r, contentType); err != nil {
		return err
	}
	return s.facilityRepo.Update(ctx, facilityID, map[string]interface{}{"photo_key": key})
}

func (s *service) AddCourt(ctx context.Context, ownerID, facilityID string, req domain.CreateCourtRequest) (*domain.Court, error) {
	if _, err := s.owned(ctx, ownerID, facilityID); err != nil {
		return nil, err
	}
	if req.CloseHour <= req.OpenHour {
		return nil, fmt.Errorf("close_hour must be after open_hour: %w", domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	c := &domain.Court{
		CourtID:      id.New(),
		FacilityID:   facilityID,
		Name:         req.Name,
		Sport:        req.Sport,
		PricePerHour: req.PricePerHour,
		OpenHour:     req.OpenHour,
		CloseHour:    req.CloseHour,
		Enable:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.courtRepo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// owned fetches the facility and checks it belongs to ownerID.
func (s *service) owned(ctx context.Context, ownerID, facilityID string) (*domain.Facility, error) {
	f, err := s.facilityRepo.Get(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if f.OwnerID != ownerID {
		return nil, fmt.Errorf("not the facility owner: %w", domain.ErrForbidden)
	}
	return f, nil
}
