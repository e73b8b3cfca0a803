package memorysvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GooseXRL8/flowerlove/internal/activity"
	"github.com/GooseXRL8/flowerlove/internal/runtime"
	"github.com/GooseXRL8/flowerlove/internal/services"
	profilesvc "github.com/GooseXRL8/flowerlove/internal/services/profiles"
	"github.com/GooseXRL8/flowerlove/internal/store"
	"github.com/GooseXRL8/flowerlove/pkg/id"
	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

// Service implements memory operations. Access follows the owning profile.
type Service struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
}

// New returns a Service using the runtime's logger.
func New(rt *runtime.Runtime) *Service { return NewWithLogger(rt, rt.Logger()) }

// NewWithLogger returns a Service using the provided logger.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &Service{rt: rt, logger: logger.WithComponent("memories")}
}

// Input is the editable part of a memory.
type Input struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	IsFavorite  bool      `json:"isFavorite"`
}

// ListOptions narrows List. Filter is a CEL expression over `memory`.
type ListOptions struct {
	Filter        string
	FavoritesOnly bool
}

func (s *Service) profile(actor store.User, profileID string) (store.Profile, error) {
	p, err := s.rt.Store().GetProfile(profileID)
	if err != nil {
		return store.Profile{}, fmt.Errorf("memories: profile %s: %w", profileID, services.FromStore(err))
	}
	if !profilesvc.CanAccess(actor, p) {
		return store.Profile{}, fmt.Errorf("memories: profile %s: %w", profileID, services.ErrForbidden)
	}
	return p, nil
}

// List returns the profile's memories newest first.
func (s *Service) List(ctx context.Context, actor store.User, profileID string, opts ListOptions) ([]store.Memory, error) {
	if _, err := s.profile(actor, profileID); err != nil {
		return nil, err
	}
	filter, err := newCELFilter(opts.Filter)
	if err != nil {
		return nil, err
	}
	all, err := s.rt.Store().ListMemories(profileID)
	if err != nil {
		return nil, err
	}
	now := s.rt.Clock().Now()
	out := make([]store.Memory, 0, len(all))
	for _, m := range all {
		if opts.FavoritesOnly && !m.IsFavorite {
			continue
		}
		if !filter.Match(m, now) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// Get returns one memory.
func (s *Service) Get(ctx context.Context, actor store.User, profileID, memoryID string) (store.Memory, error) {
	if _, err := s.profile(actor, profileID); err != nil {
		return store.Memory{}, err
	}
	m, err := s.rt.Store().GetMemory(profileID, memoryID)
	if err != nil {
		return store.Memory{}, fmt.Errorf("memories: %s: %w", memoryID, services.FromStore(err))
	}
	return m, nil
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("memories: title required: %w", services.ErrInvalidArgument)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("memories: date required: %w", services.ErrInvalidArgument)
	}
	if u := strings.TrimSpace(in.ImageURL); u != "" {
		if err := profilesvc.ValidateImageURL(u); err != nil {
			return err
		}
	}
	return nil
}

func (in Input) apply(m *store.Memory) {
	m.Title = strings.TrimSpace(in.Title)
	m.Description = strings.TrimSpace(in.Description)
	m.Date = in.Date
	m.Location = optional(in.Location)
	m.ImageURL = optional(in.ImageURL)
	m.Tags = normalizeTags(in.Tags)
	m.IsFavorite = in.IsFavorite
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

// normalizeTags trims, lower-cases and de-duplicates, keeping first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Create adds a memory to the profile.
func (s *Service) Create(ctx context.Context, actor store.User, profileID string, in Input) (store.Memory, error) {
	if _, err := s.profile(actor, profileID); err != nil {
		return store.Memory{}, err
	}
	if err := in.validate(); err != nil {
		return store.Memory{}, err
	}
	now := s.rt.Clock().Now()
	m := store.Memory{ID: id.NewString(), ProfileID: profileID, CreatedAt: now, UpdatedAt: now}
	in.apply(&m)
	if err := s.rt.Store().PutMemory(ctx, m); err != nil {
		return store.Memory{}, err
	}
	return m, s.record(ctx, actor, m, activity.KindMemoryCreated)
}

// Update replaces the editable fields of an existing memory.
func (s *Service) Update(ctx context.Context, actor store.User, profileID, memoryID string, in Input) (store.Memory, error) {
	m, err := s.Get(ctx, actor, profileID, memoryID)
	if err != nil {
		return store.Memory{}, err
	}
	if err := in.validate(); err != nil {
		return store.Memory{}, err
	}
	in.apply(&m)
	m.UpdatedAt = s.rt.Clock().Now()
	if err := s.rt.Store().PutMemory(ctx, m); err != nil {
		return store.Memory{}, err
	}
	return m, s.record(ctx, actor, m, activity.KindMemoryUpdated)
}

func (s *Service) Delete(ctx context.Context, actor store.User, profileID, memoryID string) error {
	m, err := s.Get(ctx, actor, profileID, memoryID)
	if err != nil {
		return err
	}
	if err := s.rt.Store().DeleteMemory(ctx, profileID, memoryID); err != nil {
		return services.FromStore(err)
	}
	return s.record(ctx, actor, m, activity.KindMemoryDeleted)
}

// ToggleFavorite flips IsFavorite and returns the updated memory.
func (s *Service) ToggleFavorite(ctx context.Context, actor store.User, profileID, memoryID string) (store.Memory, error) {
	m, err := s.Get(ctx, actor, profileID, memoryID)
	if err != nil {
		return store.Memory{}, err
	}
	m.IsFavorite = !m.IsFavorite
	m.UpdatedAt = s.rt.Clock().Now()
	if err := s.rt.Store().PutMemory(ctx, m); err != nil {
		return store.Memory{}, err
	}
	return m, s.record(ctx, actor, m, activity.KindMemoryFavorited)
}

func (s *Service) record(ctx context.Context, actor store.User, m store.Memory, kind string) error {
	detail := map[string]string{"memoryId": m.ID, "title": m.Title}
	if kind == activity.KindMemoryFavorited {
		detail["favorite"] = fmt.Sprint(m.IsFavorite)
	}
	_, err := s.rt.Activity().Append(ctx, m.ProfileID, activity.Entry{
		Kind:   kind,
		At:     s.rt.Clock().Now(),
		Actor:  actor.Username,
		Detail: detail,
	})
	return err
}
