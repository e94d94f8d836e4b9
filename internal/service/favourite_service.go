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

type FavouriteService interface {
	// Toggle flips the item's membership in the profile's collection for
	// kind and reports the resulting state. The result depends on prior
	// membership; concurrent toggles on the same pair are last-write-wins.
	Toggle(ctx context.Context, userID int64, kind domain.CatalogKind, ref string) (*domain.ToggleResult, error)
}

type favouriteService struct {
	favRepo     repository.FavouriteRepository
	profileRepo repository.ProfileRepository
	eventBus    events.Publisher
}

func NewFavouriteService(
	favRepo repository.FavouriteRepository,
	profileRepo repository.ProfileRepository,
	eventBus events.Publisher,
) FavouriteService {
	return &favouriteService{
		favRepo:     favRepo,
		profileRepo: profileRepo,
		eventBus:    eventBus,
	}
}

func (s *favouriteService) Toggle(ctx context.Context, userID int64, kind domain.CatalogKind, ref string) (*domain.ToggleResult, error) {
	col := s.favRepo.Collection(kind)
	if col == nil {
		return nil, fmt.Errorf("unknown catalog kind: %s", kind)
	}

	// Membership rows reference the profile, which must exist even for
	// accounts whose profile row went missing.
	if _, err := s.profileRepo.Ensure(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}

	item, err := col.Resolve(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", kind, err)
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	member, err := col.Contains(ctx, userID, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	result := &domain.ToggleResult{Item: item}
	if member {
		if err := col.Remove(ctx, userID, item.ID); err != nil {
			return nil, fmt.Errorf("failed to remove %s: %w", kind, err)
		}
		result.Status = domain.StatusRemoved
		result.IsMember = false
	} else {
		if err := col.Add(ctx, userID, item.ID); err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", kind, err)
		}
		result.Status = kind.AddedStatus()
		result.IsMember = true
	}

	s.publishToggled(ctx, userID, item, result.Status)

	return result, nil
}

func (s *favouriteService) publishToggled(ctx context.Context, userID int64, item *domain.CatalogItem, status string) {
	if s.eventBus == nil {
		return
	}
	err := s.eventBus.Publish(ctx, events.FavouriteToggled, events.FavouriteToggledEvent{
		UserID:    userID,
		Kind:      string(item.Kind),
		ItemID:    item.ID,
		Status:    status,
		ToggledAt: time.Now(),
	})
	if err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "error", err, "subject", events.FavouriteToggled)
	}
}
