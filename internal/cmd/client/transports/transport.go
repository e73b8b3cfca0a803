// Package transports provides the network transports used by the CLI.
package transports

import (
	"context"
	"encoding/json"
	"time"
)

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Profile is the subset of profile fields the CLI prints.
type Profile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	StartDate   time.Time `json:"startDate"`
	CustomTitle *string   `json:"customTitle,omitempty"`
	Theme       string    `json:"theme"`
}

// MemoryQuery selects memories of a profile.
type MemoryQuery struct {
	ProfileID     string
	Filter        string
	FavoritesOnly bool
}

// API abstracts the authenticated REST surface used by the CLI. Payloads the
// CLI only echoes are kept as raw JSON.
type API interface {
	Login(ctx context.Context, username, password string) (Session, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
	Counter(ctx context.Context, profileID string) (json.RawMessage, error)
	// WatchCounter calls onSnapshot for every pushed snapshot until ctx ends,
	// the stream closes or onSnapshot returns an error.
	WatchCounter(ctx context.Context, profileID string, onSnapshot func(json.RawMessage) error) error
	ListMemories(ctx context.Context, q MemoryQuery) ([]json.RawMessage, error)
	Activity(ctx context.Context, profileID string, limit int) ([]json.RawMessage, error)
}

// Health reports serving status of the server.
type Health interface {
	Check(ctx context.Context, service string) (string, error)
}
