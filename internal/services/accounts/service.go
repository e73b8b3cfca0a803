package accountsvc

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/GooseXRL8/flowerlove/internal/activity"
	"github.com/GooseXRL8/flowerlove/internal/runtime"
	"github.com/GooseXRL8/flowerlove/internal/services"
	"github.com/GooseXRL8/flowerlove/internal/store"
	"github.com/GooseXRL8/flowerlove/pkg/id"
	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

var usernameRE = regexp.MustCompile(`^[A-Za-z0-9._-]{3,32}$`)

// MinPasswordLength applies to passwords chosen by users.
const MinPasswordLength = 6

// Service manages users and sessions.
type Service struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
	params HashParams
	// OnLogin observes login outcomes; used for metrics.
	OnLogin func(ok bool)
}

// New returns a Service using the runtime's logger.
func New(rt *runtime.Runtime) *Service {
	return NewWithLogger(rt, rt.Logger())
}

// NewWithLogger returns a Service using the provided logger.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &Service{rt: rt, logger: logger.WithComponent("accounts"), params: DefaultHashParams}
}

// SetHashParams overrides the argon2id cost; tests use cheap parameters.
func (s *Service) SetHashParams(p HashParams) { s.params = p }

// CreateUserInput describes a new account. An empty Password is replaced by
// a generated one.
type CreateUserInput struct {
	Username  string `json:"username"`
	Password  string `json:"password,omitempty"`
	IsAdmin   bool   `json:"isAdmin"`
	ProfileID string `json:"profileId,omitempty"`
}

func (s *Service) loginResult(ok bool) {
	if s.OnLogin != nil {
		s.OnLogin(ok)
	}
}

// Login verifies credentials and issues a session.
func (s *Service) Login(ctx context.Context, username, password string) (store.Session, store.User, error) {
	u, err := s.rt.Store().GetUserByName(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.loginResult(false)
			return store.Session{}, store.User{}, fmt.Errorf("accounts: invalid credentials: %w", services.ErrUnauthorized)
		}
		return store.Session{}, store.User{}, err
	}
	if !VerifyPassword(u.PasswordHash, password) {
		s.loginResult(false)
		s.logger.Info("login rejected", logpkg.Str(logpkg.UserIDKey, u.ID))
		return store.Session{}, store.User{}, fmt.Errorf("accounts: invalid credentials: %w", services.ErrUnauthorized)
	}
	now := s.rt.Clock().Now()
	sess := store.Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.rt.Config().Auth.SessionTTL.Duration),
	}
	if err := s.rt.Store().PutSession(ctx, sess); err != nil {
		return store.Session{}, store.User{}, err
	}
	s.loginResult(true)
	s.logger.Info("login", logpkg.Str(logpkg.UserIDKey, u.ID))
	return sess, u, nil
}

// Logout deletes the session. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.rt.Store().DeleteSession(ctx, token)
}

// Authenticate resolves a bearer token to its user. Expired sessions are
// removed.
func (s *Service) Authenticate(ctx context.Context, token string) (store.User, error) {
	if token == "" {
		return store.User{}, fmt.Errorf("accounts: missing token: %w", services.ErrUnauthorized)
	}
	if _, err := uuid.Parse(token); err != nil {
		return store.User{}, fmt.Errorf("accounts: malformed token: %w", services.ErrUnauthorized)
	}
	sess, err := s.rt.Store().GetSession(token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.User{}, fmt.Errorf("accounts: unknown session: %w", services.ErrUnauthorized)
		}
		return store.User{}, err
	}
	if sess.Expired(s.rt.Clock().Now()) {
		_ = s.rt.Store().DeleteSession(ctx, token)
		return store.User{}, fmt.Errorf("accounts: session expired: %w", services.ErrUnauthorized)
	}
	u, err := s.rt.Store().GetUser(sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = s.rt.Store().DeleteSession(ctx, token)
			return store.User{}, fmt.Errorf("accounts: user gone: %w", services.ErrUnauthorized)
		}
		return store.User{}, err
	}
	return u, nil
}

func requireAdmin(actor store.User) error {
	if !actor.IsAdmin {
		return fmt.Errorf("accounts: admin required: %w", services.ErrForbidden)
	}
	return nil
}

// CreateUser creates an account and returns it with its plain-text password,
// which is not retrievable later.
func (s *Service) CreateUser(ctx context.Context, actor store.User, in CreateUserInput) (store.User, string, error) {
	if err := requireAdmin(actor); err != nil {
		return store.User{}, "", err
	}
	username := strings.TrimSpace(in.Username)
	if !usernameRE.MatchString(username) {
		return store.User{}, "", fmt.Errorf("accounts: username must be 3-32 letters, digits, '.', '_' or '-': %w", services.ErrInvalidArgument)
	}
	password := in.Password
	if password == "" {
		var err error
		if password, err = GeneratePassword(); err != nil {
			return store.User{}, "", err
		}
	} else if len(password) < MinPasswordLength {
		return store.User{}, "", fmt.Errorf("accounts: password too short: %w", services.ErrInvalidArgument)
	}
	hash, err := HashPassword(password, s.params)
	if err != nil {
		return store.User{}, "", err
	}
	u := store.User{
		ID:           id.NewString(),
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      in.IsAdmin,
		CreatedAt:    s.rt.Clock().Now(),
	}
	if err := s.rt.Store().CreateUser(ctx, u); err != nil {
		return store.User{}, "", services.FromStore(err)
	}
	s.logger.Info("user created", logpkg.Str(logpkg.UserIDKey, u.ID), logpkg.Bool("admin", u.IsAdmin))
	if in.ProfileID != "" {
		if u, err = s.AssignUserToProfile(ctx, actor, u.ID, in.ProfileID); err != nil {
			return store.User{}, "", err
		}
	}
	return u, password, nil
}

// DeleteUser removes the account and clears its profile's assignment.
func (s *Service) DeleteUser(ctx context.Context, actor store.User, userID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if actor.ID == userID {
		return fmt.Errorf("accounts: cannot delete yourself: %w", services.ErrInvalidArgument)
	}
	u, err := s.rt.Store().GetUser(userID)
	if err != nil {
		return fmt.Errorf("accounts: user %s: %w", userID, services.FromStore(err))
	}
	if u.AssignedProfileID != nil {
		if err := s.clearProfileAssignment(ctx, actor, *u.AssignedProfileID, u.ID); err != nil {
			return err
		}
	}
	if err := s.rt.Store().DeleteUser(ctx, u); err != nil {
		return err
	}
	s.logger.Info("user deleted", logpkg.Str(logpkg.UserIDKey, u.ID))
	return nil
}

// clearProfileAssignment unsets the profile's assignedUserId if it still
// points at userID.
func (s *Service) clearProfileAssignment(ctx context.Context, actor store.User, profileID, userID string) error {
	p, err := s.rt.Store().GetProfile(profileID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if store.Deref(p.AssignedUserID) != userID {
		return nil
	}
	p.AssignedUserID = nil
	p.UpdatedAt = s.rt.Clock().Now()
	if err := s.rt.Store().PutProfile(ctx, p); err != nil {
		return err
	}
	return s.record(ctx, p.ID, actor, activity.KindUserUnassigned, map[string]string{"userId": userID})
}

// AssignUserToProfile links a user and a profile on both sides, undoing any
// previous link either of them had. An empty profileID unassigns the user.
func (s *Service) AssignUserToProfile(ctx context.Context, actor store.User, userID, profileID string) (store.User, error) {
	if err := requireAdmin(actor); err != nil {
		return store.User{}, err
	}
	st := s.rt.Store()
	u, err := st.GetUser(userID)
	if err != nil {
		return store.User{}, fmt.Errorf("accounts: user %s: %w", userID, services.FromStore(err))
	}
	var p store.Profile
	if profileID != "" {
		if p, err = st.GetProfile(profileID); err != nil {
			return store.User{}, fmt.Errorf("accounts: profile %s: %w", profileID, services.FromStore(err))
		}
	}

	now := s.rt.Clock().Now()
	var (
		users          []store.User
		profiles       []store.Profile
		unassignedFrom string
	)
	if prev := store.Deref(u.AssignedProfileID); prev != "" && prev != profileID {
		old, err := st.GetProfile(prev)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return store.User{}, err
		case store.Deref(old.AssignedUserID) == u.ID:
			old.AssignedUserID = nil
			old.UpdatedAt = now
			profiles = append(profiles, old)
			unassignedFrom = old.ID
		}
	}
	if profileID == "" {
		u.AssignedProfileID = nil
	} else {
		if prevUser := store.Deref(p.AssignedUserID); prevUser != "" && prevUser != u.ID {
			if other, err := st.GetUser(prevUser); err == nil && store.Deref(other.AssignedProfileID) == p.ID {
				other.AssignedProfileID = nil
				users = append(users, other)
			}
		}
		u.AssignedProfileID = store.StringPtr(p.ID)
		p.AssignedUserID = store.StringPtr(u.ID)
		p.UpdatedAt = now
		profiles = append(profiles, p)
	}
	users = append(users, u)
	if err := st.SaveLinks(ctx, users, profiles); err != nil {
		return store.User{}, fmt.Errorf("accounts: assign %s: %w", u.ID, err)
	}

	if unassignedFrom != "" {
		if err := s.record(ctx, unassignedFrom, actor, activity.KindUserUnassigned, map[string]string{"userId": u.ID}); err != nil {
			return store.User{}, err
		}
	}
	if profileID == "" {
		return u, nil
	}
	if err := s.record(ctx, p.ID, actor, activity.KindUserAssigned, map[string]string{"userId": u.ID, "username": u.Username}); err != nil {
		return store.User{}, err
	}
	s.logger.Info("user assigned", logpkg.Str(logpkg.UserIDKey, u.ID), logpkg.Str(logpkg.ProfileIDKey, p.ID))
	return u, nil
}

// ListUsers returns every account; admin only.
func (s *Service) ListUsers(ctx context.Context, actor store.User) ([]store.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.rt.Store().ListUsers()
}

// ChangePassword replaces the user's password after checking the old one.
func (s *Service) ChangePassword(ctx context.Context, user store.User, oldPassword, newPassword string) error {
	current, err := s.rt.Store().GetUser(user.ID)
	if err != nil {
		return services.FromStore(err)
	}
	if !VerifyPassword(current.PasswordHash, oldPassword) {
		return fmt.Errorf("accounts: wrong password: %w", services.ErrUnauthorized)
	}
	if len(newPassword) < MinPasswordLength {
		return fmt.Errorf("accounts: password too short: %w", services.ErrInvalidArgument)
	}
	hash, err := HashPassword(newPassword, s.params)
	if err != nil {
		return err
	}
	current.PasswordHash = hash
	return s.rt.Store().PutUser(ctx, current)
}

// EnsureBootstrapAdmin creates an admin named username when no admin exists.
// An empty password is generated and returned so it can be shown once.
func (s *Service) EnsureBootstrapAdmin(ctx context.Context, username, password string) (created bool, generated string, err error) {
	users, err := s.rt.Store().ListUsers()
	if err != nil {
		return false, "", err
	}
	for _, u := range users {
		if u.IsAdmin {
			return false, "", nil
		}
	}
	if username == "" {
		username = "admin"
	}
	system := store.User{ID: "system", IsAdmin: true}
	u, pw, err := s.CreateUser(ctx, system, CreateUserInput{Username: username, Password: password, IsAdmin: true})
	if err != nil {
		return false, "", err
	}
	s.logger.Warn("bootstrap admin created", logpkg.Str("username", u.Username))
	if password == "" {
		return true, pw, nil
	}
	return true, "", nil
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
