package profilesvc

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/GooseXRL8/flowerlove/internal/activity"
	"github.com/GooseXRL8/flowerlove/internal/elapsed"
	"github.com/GooseXRL8/flowerlove/internal/runtime"
	"github.com/GooseXRL8/flowerlove/internal/services"
	"github.com/GooseXRL8/flowerlove/internal/store"
	"github.com/GooseXRL8/flowerlove/pkg/id"
	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

// Service implements profile operations.
type Service struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
}

func New(rt *runtime.Runtime) *Service { return NewWithLogger(rt, rt.Logger()) }

func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &Service{rt: rt, logger: logger.WithComponent("profiles")}
}

// SettingsPatch carries the fields a settings update may change. Nil fields
// are left alone; an empty string clears an optional field.
type SettingsPatch struct {
	Name      *string    `json:"name,omitempty"`
	Title     *string    `json:"customTitle,omitempty"`
	Theme     *string    `json:"theme,omitempty"`
	ImageURL  *string    `json:"imageUrl,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
}

// CanAccess reports whether actor may read and edit profile p.
func CanAccess(actor store.User, p store.Profile) bool {
	return actor.IsAdmin || (actor.ID != "" && store.Deref(p.AssignedUserID) == actor.ID)
}

// Create makes a new profile starting now; admin only.
func (s *Service) Create(ctx context.Context, actor store.User, name string) (store.Profile, error) {
	if !actor.IsAdmin {
		return store.Profile{}, fmt.Errorf("profiles: admin required: %w", services.ErrForbidden)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return store.Profile{}, fmt.Errorf("profiles: name required: %w", services.ErrInvalidArgument)
	}
	now := s.rt.Clock().Now()
	p := store.Profile{
		ID:        id.NewString(),
		Name:      name,
		CreatedBy: actor.ID,
		StartDate: now,
		Theme:     s.rt.Config().Profiles.DefaultTheme,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !ValidTheme(p.Theme) {
		p.Theme = Themes[0].ID
	}
	if err := s.rt.Store().PutProfile(ctx, p); err != nil {
		return store.Profile{}, err
	}
	if err := s.record(ctx, p.ID, actor, activity.KindProfileCreated, map[string]string{"name": name}); err != nil {
		return store.Profile{}, err
	}
	s.logger.Info("profile created", logpkg.Str(logpkg.ProfileIDKey, p.ID))
	return p, nil
}

// Get returns the profile if actor may see it.
func (s *Service) Get(ctx context.Context, actor store.User, profileID string) (store.Profile, error) {
	p, err := s.rt.Store().GetProfile(profileID)
	if err != nil {
		return store.Profile{}, fmt.Errorf("profiles: %s: %w", profileID, services.FromStore(err))
	}
	if !CanAccess(actor, p) {
		return store.Profile{}, fmt.Errorf("profiles: %s: %w", profileID, services.ErrForbidden)
	}
	return p, nil
}

// List returns every profile for admins and the assigned profile otherwise.
func (s *Service) List(ctx context.Context, actor store.User) ([]store.Profile, error) {
	if actor.IsAdmin {
		return s.rt.Store().ListProfiles()
	}
	if actor.AssignedProfileID == nil {
		return []store.Profile{}, nil
	}
	p, err := s.rt.Store().GetProfile(*actor.AssignedProfileID)
	if errors.Is(err, store.ErrNotFound) {
		return []store.Profile{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []store.Profile{p}, nil
}

// Delete removes the profile with its memories, photos and activity, and
// clears the assignment of any user pointing at it; admin only.
func (s *Service) Delete(ctx context.Context, actor store.User, profileID string) error {
	if !actor.IsAdmin {
		return fmt.Errorf("profiles: admin required: %w", services.ErrForbidden)
	}
	st := s.rt.Store()
	if _, err := st.GetProfile(profileID); err != nil {
		return fmt.Errorf("profiles: %s: %w", profileID, services.FromStore(err))
	}
	users, err := st.ListUsers()
	if err != nil {
		return err
	}
	for _, u := range users {
		if store.Deref(u.AssignedProfileID) == profileID {
			u.AssignedProfileID = nil
			if err := st.PutUser(ctx, u); err != nil {
				return err
			}
		}
	}
	if err := st.DeleteProfile(ctx, profileID); err != nil {
		return err
	}
	if err := s.rt.Activity().Purge(ctx, profileID); err != nil {
		return err
	}
	s.logger.Info("profile deleted", logpkg.Str(logpkg.ProfileIDKey, profileID))
	return nil
}

// UpdateSettings applies patch. Image URLs must be absolute http(s) URLs.
// Future start dates are accepted and yield an all-zero counter.
func (s *Service) UpdateSettings(ctx context.Context, actor store.User, profileID string, patch SettingsPatch) (store.Profile, error) {
	p, err := s.Get(ctx, actor, profileID)
	if err != nil {
		return store.Profile{}, err
	}
	changed := map[string]string{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return store.Profile{}, fmt.Errorf("profiles: name required: %w", services.ErrInvalidArgument)
		}
		p.Name = name
		changed["name"] = name
	}
	if patch.Title != nil {
		p.CustomTitle = store.StringPtr(strings.TrimSpace(*patch.Title))
		changed["customTitle"] = store.Deref(p.CustomTitle)
	}
	if patch.Theme != nil {
		if !ValidTheme(*patch.Theme) {
			return store.Profile{}, fmt.Errorf("profiles: unknown theme %q: %w", *patch.Theme, services.ErrInvalidArgument)
		}
		p.Theme = *patch.Theme
		changed["theme"] = p.Theme
	}
	if patch.ImageURL != nil {
		u := strings.TrimSpace(*patch.ImageURL)
		if u != "" {
			if err := ValidateImageURL(u); err != nil {
				return store.Profile{}, err
			}
		}
		p.ImageURL = store.StringPtr(u)
		changed["imageUrl"] = u
	}
	if patch.StartDate != nil {
		if patch.StartDate.IsZero() {
			return store.Profile{}, fmt.Errorf("profiles: start date required: %w", services.ErrInvalidArgument)
		}
		p.StartDate = *patch.StartDate
		changed["startDate"] = p.StartDate.Format(time.RFC3339)
	}
	if len(changed) == 0 {
		return p, nil
	}
	p.UpdatedAt = s.rt.Clock().Now()
	if err := s.rt.Store().PutProfile(ctx, p); err != nil {
		return store.Profile{}, err
	}
	if err := s.record(ctx, p.ID, actor, activity.KindSettingsChanged, changed); err != nil {
		return store.Profile{}, err
	}
	return p, nil
}

// ValidateImageURL accepts absolute http and https URLs.
func ValidateImageURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("profiles: image url must be an absolute http(s) url: %w", services.ErrInvalidArgument)
	}
	return nil
}

// Counter computes the engine snapshot for the profile at the clock's now.
func (s *Service) Counter(ctx context.Context, actor store.User, profileID string) (elapsed.Snapshot, error) {
	p, err := s.Get(ctx, actor, profileID)
	if err != nil {
		return elapsed.Snapshot{}, err
	}
	return elapsed.Compute(p.StartDate, s.rt.Clock().Now(), s.rt.Config().Scheme()), nil
}

// Watch publishes the profile's snapshot every tick interval until the
// subscription is cancelled or ctx ends.
func (s *Service) Watch(ctx context.Context, actor store.User, profileID string, fn func(elapsed.Snapshot), opts ...elapsed.Option) (*elapsed.Subscription, error) {
	p, err := s.Get(ctx, actor, profileID)
	if err != nil {
		return nil, err
	}
	cfg := s.rt.Config()
	opts = append([]elapsed.Option{elapsed.WithLogger(s.logger), elapsed.WithScheme(cfg.Scheme())}, opts...)
	return elapsed.Watch(ctx, s.rt.Clock(), p.StartDate, cfg.Counter.TickInterval.Duration, fn, opts...), nil
}

func (s *Service) record(ctx context.Context, profileID string, actor store.User, kind string, detail map[string]string) error {
	_, err := s.rt.Activity().Append(ctx, profileID, activity.Entry{
		Kind:   kind,
		At:     s.rt.Clock().Now(),
		Actor:  actor.Username,
		Detail: detail,
	})
	return err
}
