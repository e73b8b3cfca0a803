package profilesvc

import (
	"context"
	"fmt"
	"strings"

	"github.com/GooseXRL8/flowerlove/internal/activity"
	"github.com/GooseXRL8/flowerlove/internal/services"
	"github.com/GooseXRL8/flowerlove/internal/store"
	"github.com/GooseXRL8/flowerlove/pkg/id"
)

// AddPhoto appends a gallery photo, up to the configured per-profile limit.
func (s *Service) AddPhoto(ctx context.Context, actor store.User, profileID, rawURL string) (store.Photo, error) {
	p, err := s.Get(ctx, actor, profileID)
	if err != nil {
		return store.Photo{}, err
	}
	rawURL = strings.TrimSpace(rawURL)
	if err := ValidateImageURL(rawURL); err != nil {
		return store.Photo{}, err
	}
	existing, err := s.rt.Store().ListPhotos(p.ID)
	if err != nil {
		return store.Photo{}, err
	}
	if limit := s.rt.Config().Profiles.MaxPhotosPerProfile; len(existing) >= limit {
		return store.Photo{}, fmt.Errorf("profiles: at most %d photos: %w", limit, services.ErrPhotoLimit)
	}
	ph := store.Photo{ID: id.NewString(), ProfileID: p.ID, URL: rawURL, CreatedAt: s.rt.Clock().Now()}
	if err := s.rt.Store().PutPhoto(ctx, ph); err != nil {
		return store.Photo{}, err
	}
	if err := s.record(ctx, p.ID, actor, activity.KindPhotoAdded, map[string]string{"photoId": ph.ID}); err != nil {
		return store.Photo{}, err
	}
	return ph, nil
}

func (s *Service) ListPhotos(ctx context.Context, actor store.User, profileID string) ([]store.Photo, error) {
	p, err := s.Get(ctx, actor, profileID)
	if err != nil {
		return nil, err
	}
	photos, err := s.rt.Store().ListPhotos(p.ID)
	if err != nil {
		return nil, err
	}
	if photos == nil {
		photos = []store.Photo{}
	}
	return photos, nil
}

func (s *Service) DeletePhoto(ctx context.Context, actor store.User, profileID, photoID string) error {
	p, err := s.Get(ctx, actor, profileID)
	if err != nil {
		return err
	}
	if err := s.rt.Store().DeletePhoto(ctx, p.ID, photoID); err != nil {
		return fmt.Errorf("profiles: photo %s: %w", photoID, services.FromStore(err))
	}
	return s.record(ctx, p.ID, actor, activity.KindPhotoRemoved, map[string]string{"photoId": photoID})
}
