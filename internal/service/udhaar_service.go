package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bachat_backend/internal/model"
	"bachat_backend/internal/repository"
)

// UdhaarService defines operations for a user's IOU entries
type UdhaarService interface {
	Create(ctx context.Context, userID string, req model.CreateUdhaarRequest) (*model.Udhaar, error)
	List(ctx context.Context, userID string, filters model.UdhaarFilters) ([]model.Udhaar, error)
	Update(ctx context.Context, id, userID string, req model.UpdateUdhaarRequest) (*model.Udhaar, error)
	Delete(ctx context.Context, id, userID string) error
}

type udhaarService struct {
	repo  repository.UdhaarRepository
	clock *Clock
}

func NewUdhaarService(repo repository.UdhaarRepository, clock *Clock) UdhaarService {
	return &udhaarService{repo: repo, clock: clock}
}

func (s *udhaarService) Create(ctx context.Context, userID string, req model.CreateUdhaarRequest) (*model.Udhaar, error) {
	if !req.Type.Valid() {
		return nil, invalid("type", "must be LENE or DENE")
	}
	name := strings.TrimSpace(req.PersonName)
	if name == "" {
		return nil, invalid("personName", "is required")
	}
	if req.Amount <= 0 {
		return nil, invalid("amount", "must be greater than 0")
	}

	date := s.clock.Now()
	if req.Date != nil && !req.Date.IsZero() {
		date = req.Date.Anchor(s.clock.Location())
	}

	entry := &model.Udhaar{
		UserID:     userID,
		Type:       req.Type,
		PersonName: name,
		Amount:     req.Amount,
		Date:       date,
		Notes:      req.Notes,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create udhaar in repo: %w", err)
	}
	return entry, nil
}

func (s *udhaarService) List(ctx context.Context, userID string, filters model.UdhaarFilters) ([]model.Udhaar, error) {
	if filters.Type != nil && !filters.Type.Valid() {
		return nil, invalid("type", "must be LENE or DENE")
	}
	entries, err := s.repo.FindByUser(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get user udhaar from repo: %w", err)
	}
	return entries, nil
}

func (s *udhaarService) Update(ctx context.Context, id, userID string, req model.UpdateUdhaarRequest) (*model.Udhaar, error) {
	existing, err := s.repo.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find udhaar for update: %w", err)
	}
	if existing == nil {
		return nil, ErrUdhaarNotFound
	}

	if req.PersonName != nil {
		name := strings.TrimSpace(*req.PersonName)
		if name == "" {
			return nil, invalid("personName", "must not be empty")
		}
		existing.PersonName = name
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, invalid("amount", "must be greater than 0")
		}
		existing.Amount = *req.Amount
	}
	if req.Date != nil && !req.Date.IsZero() {
		existing.Date = req.Date.Anchor(s.clock.Location())
	}
	if req.Notes != nil {
		existing.Notes = req.Notes
	}
	if req.IsSettled != nil {
		existing.IsSettled = *req.IsSettled
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrUdhaarNotFound) {
			return nil, ErrUdhaarNotFound
		}
		return nil, fmt.Errorf("failed to update udhaar in repo: %w", err)
	}
	return existing, nil
}

func (s *udhaarService) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrUdhaarNotFound) {
			return ErrUdhaarNotFound
		}
		return fmt.Errorf("failed to delete udhaar in repo: %w", err)
	}
	return nil
}
