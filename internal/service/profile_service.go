package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aimarketing/accounts/internal/domain"
	"github.com/aimarketing/accounts/internal/repository"
	"github.com/aimarketing/accounts/pkg/events"
	"github.com/aimarketing/accounts/pkg/logger"
)

type ProfileService interface {
	GetProfile(ctx context.Context, userID int64) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, req *domain.UpdateProfileRequest) (*domain.Profile, error)
	GetDashboard(ctx context.Context, userID int64) (*domain.Dashboard, error)
}

type profileService struct {
	profileRepo  repository.ProfileRepository
	favRepo      repository.FavouriteRepository
	orderRepo    repository.OrderRepository
	resourceRepo repository.ResourceRepository
	eventBus     events.Publisher
}

func NewProfileService(
	profileRepo repository.ProfileRepository,
	favRepo repository.FavouriteRepository,
	orderRepo repository.OrderRepository,
	resourceRepo repository.ResourceRepository,
	eventBus events.Publisher,
) ProfileService {
	return &profileService{
		profileRepo:  profileRepo,
		favRepo:      favRepo,
		orderRepo:    orderRepo,
		resourceRepo: resourceRepo,
		eventBus:     eventBus,
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	// Ensure, not Get: a missing profile row is repaired on read.
	profile, err := s.profileRepo.Ensure(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID int64, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.profileRepo.Ensure(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}

	profile, err := s.profileRepo.Update(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if s.eventBus != nil {
		err := s.eventBus.Publish(ctx, events.ProfileUpdated, events.ProfileUpdatedEvent{
			UserID:    userID,
			UpdatedAt: time.Now(),
		})
		if err != nil {
			logger.WarnContext(ctx, "Failed to publish event", "error", err, "subject", events.ProfileUpdated)
		}
	}

	return profile, nil
}

func (s *profileService) GetDashboard(ctx context.Context, userID int64) (*domain.Dashboard, error) {
	if _, err := s.profileRepo.Ensure(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}

	purchased, err := s.orderRepo.CountDistinctPurchased(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count purchases: %w", err)
	}

	products, err := s.favRepo.Products().List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favourite products: %w", err)
	}
	prompts, err := s.favRepo.Prompts().List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved prompts: %w", err)
	}
	templates, err := s.favRepo.Templates().List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved templates: %w", err)
	}

	resources, err := s.resourceRepo.ListActive(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list member resources: %w", err)
	}

	return &domain.Dashboard{
		PurchasedCount:    purchased,
		FavouriteProducts: products,
		SavedPrompts:      prompts,
		SavedTemplates:    templates,
		MemberResources:   resources,
	}, nil
}
