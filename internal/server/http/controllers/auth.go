package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	accountsvc "github.com/GooseXRL8/flowerlove/internal/services/accounts"
	"github.com/GooseXRL8/flowerlove/internal/store"
	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

type userCtxKey struct{}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Authenticator resolves bearer tokens to users.
type Authenticator struct {
	accounts *accountsvc.Service
	logger   logpkg.Logger
}

func NewAuthenticator(accounts *accountsvc.Service, logger logpkg.Logger) *Authenticator {
	return &Authenticator{accounts: accounts, logger: logger}
}

// Require wraps h so it only runs for an authenticated user, which is then
// available through currentUser.
func (a *Authenticator) Require(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := a.accounts.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			writeServiceError(w, a.logger, err)
			return
		}
		ctx := context.WithValue(r.Context(), userCtxKey{}, u)
		ctx = logpkg.ContextWithValue(ctx, logpkg.UserIDKey, u.ID)
		h(w, r.WithContext(ctx))
	}
}

// currentUser returns the user stored by Require.
func currentUser(r *http.Request) store.User {
	u, _ := r.Context().Value(userCtxKey{}).(store.User)
	return u
}

// userView is the public shape of a user; the password hash never leaves
// the server.
type userView struct {
	ID                string  `json:"id"`
	Username          string  `json:"username"`
	IsAdmin           bool    `json:"isAdmin"`
	AssignedProfileID *string `json:"assignedProfileId,omitempty"`
	CreatedAt         string  `json:"createdAt"`
}

func viewUser(u store.User) userView {
	return userView{
		ID:                u.ID,
		Username:          u.Username,
		IsAdmin:           u.IsAdmin,
		AssignedProfileID: u.AssignedProfileID,
		CreatedAt:         u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
