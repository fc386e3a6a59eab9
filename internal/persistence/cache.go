package persistence

import (
	"context"
	"log/slog"
	"time"

	"github.com/vitohq/docintel/internal/cache"
	"github.com/vitohq/docintel/internal/models"
)

const profileCacheTTL = 5 * time.Minute

// CachedStore decorates a Store with a short-lived redis cache for
// document profiles. Profiles are read-only to the pipeline and change
// rarely, so a few minutes of staleness is acceptable; everything else
// passes straight through.
type CachedStore struct {
	Store
	cache *cache.Cache
}

func NewCachedStore(store Store, c *cache.Cache) *CachedStore {
	return &CachedStore{Store: store, cache: c}
}

func (s *CachedStore) GetDocumentProfile(ctx context.Context, profileID, tenantID string) (*models.DocumentProfile, error) {
	key := "profile:" + tenantID + ":" + profileID

	var cached models.DocumentProfile
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	profile, err := s.Store.GetDocumentProfile(ctx, profileID, tenantID)
	if err != nil || profile == nil {
		// Absent profiles are not cached: a profile created moments
		// after a failed lookup should be visible on retry.
		return profile, err
	}

	if err := s.cache.Set(ctx, key, profile, profileCacheTTL); err != nil {
		slog.Warn("profile cache write failed", "error", err)
	}
	return profile, nil
}
