package store

import "time"

// SchemaVersion is written into every record. Records with V == 0 predate
// versioning and are read as version 1.
const SchemaVersion = 1

// User is an account. AssignedProfileID is nil until an admin assigns one.
type User struct {
	V                 int       `json:"v"`
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	PasswordHash      string    `json:"passwordHash"`
	IsAdmin           bool      `json:"isAdmin"`
	AssignedProfileID *string   `json:"assignedProfileId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Session is a bearer token issued at login.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }

// Profile is a couple profile. StartDate feeds the elapsed-duration engine.
type Profile struct {
	V              int       `json:"v"`
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CreatedBy      string    `json:"createdBy"`
	StartDate      time.Time `json:"startDate"`
	CustomTitle    *string   `json:"customTitle,omitempty"`
	AssignedUserID *string   `json:"assignedUserId,omitempty"`
	ImageURL       *string   `json:"imageUrl,omitempty"`
	Theme          string    `json:"theme"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Memory is a dated event kept on a profile.
type Memory struct {
	V           int       `json:"v"`
	ID          string    `json:"id"`
	ProfileID   string    `json:"profileId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    *string   `json:"location,omitempty"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	Tags        []string  `json:"tags"`
	IsFavorite  bool      `json:"isFavorite"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Photo is a gallery image referenced by URL.
type Photo struct {
	V         int       `json:"v"`
	ID        string    `json:"id"`
	ProfileID string    `json:"profileId"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// Mark is the last stage and milestone the watcher saw for a profile.
type Mark struct {
	ProfileID string    `json:"profileId"`
	Stage     int       `json:"stage"`
	Milestone string    `json:"milestone"`
	StartDate time.Time `json:"startDate"`
	SeenAt    time.Time `json:"seenAt"`
}

// StringPtr returns a pointer to s, or nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns *p or "" for nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
