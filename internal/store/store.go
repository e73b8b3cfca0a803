// Package store persists flowerlove's records as versioned JSON documents in
// Pebble.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	pebblestore "github.com/GooseXRL8/flowerlove/internal/storage/pebble"
)

var (
	ErrNotFound           = errors.New("store: not found")
	ErrDuplicateUsername  = errors.New("store: username already taken")
	ErrUnsupportedVersion = errors.New("store: unsupported record version")
)

// Store is the repository over a Pebble DB.
type Store struct {
	db *pebblestore.DB
}

func New(db *pebblestore.DB) *Store { return &Store{db: db} }

// DB exposes the underlying database for packages that keep their own keyspace.
func (s *Store) DB() *pebblestore.DB { return s.db }

type versioned struct {
	V int `json:"v"`
}

func decode(b []byte, out interface{}) error {
	var hdr versioned
	if err := json.Unmarshal(b, &hdr); err != nil {
		return err
	}
	if hdr.V > SchemaVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, hdr.V)
	}
	return json.Unmarshal(b, out)
}

func (s *Store) get(key []byte, out interface{}) error {
	b, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return decode(b, out)
}

func scan[T any](s *Store, prefix []byte) ([]T, error) {
	var out []T
	var decErr error
	err := s.db.ScanPrefix(prefix, func(_, v []byte) bool {
		var rec T
		if err := decode(v, &rec); err != nil {
			decErr = err
			return false
		}
		out = append(out, rec)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, decErr
}

func putJSON(ctx context.Context, s *Store, key []byte, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(key, b, nil); err != nil {
		return err
	}
	return s.db.CommitBatch(ctx, batch)
}

func (s *Store) exists(key []byte) (bool, error) {
	_, err := s.db.Get(key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, pebblestore.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Users

func (s *Store) GetUser(id string) (User, error) {
	var u User
	err := s.get(keyUser(id), &u)
	return u, err
}

// GetUserByName looks a user up case-insensitively.
func (s *Store) GetUserByName(name string) (User, error) {
	b, err := s.db.Get(keyUserName(name))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return s.GetUser(string(b))
}

// CreateUser stores u and its username index. The username must be unused.
func (s *Store) CreateUser(ctx context.Context, u User) error {
	taken, err := s.exists(keyUserName(u.Username))
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateUsername
	}
	return s.PutUser(ctx, u)
}

// PutUser writes u and its username index atomically.
func (s *Store) PutUser(ctx context.Context, u User) error {
	return s.SaveLinks(ctx, []User{u}, nil)
}

// SaveLinks writes users and profiles in one batch, so a user-profile
// assignment is never stored one-sided.
func (s *Store) SaveLinks(ctx context.Context, users []User, profiles []Profile) error {
	batch := s.db.NewBatch()
	defer batch.Close()
	for _, u := range users {
		u.V = SchemaVersion
		b, err := json.Marshal(u)
		if err != nil {
			return err
		}
		if err := batch.Set(keyUser(u.ID), b, nil); err != nil {
			return err
		}
		if err := batch.Set(keyUserName(u.Username), []byte(u.ID), nil); err != nil {
			return err
		}
	}
	for _, p := range profiles {
		p.V = SchemaVersion
		b, err := json.Marshal(p)
		if err != nil {
			return err
		}
		if err := batch.Set(keyProfile(p.ID), b, nil); err != nil {
			return err
		}
	}
	return s.db.CommitBatch(ctx, batch)
}

func (s *Store) ListUsers() ([]User, error) { return scan[User](s, userPrefix) }

func (s *Store) DeleteUser(ctx context.Context, u User) error {
	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(keyUser(u.ID), nil); err != nil {
		return err
	}
	if err := batch.Delete(keyUserName(u.Username), nil); err != nil {
		return err
	}
	return s.db.CommitBatch(ctx, batch)
}

// Sessions

func (s *Store) PutSession(ctx context.Context, sess Session) error {
	return putJSON(ctx, s, keySession(sess.Token), sess)
}

func (s *Store) GetSession(token string) (Session, error) {
	var sess Session
	err := s.get(keySession(token), &sess)
	return sess, err
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(keySession(token), nil); err != nil {
		return err
	}
	return s.db.CommitBatch(ctx, batch)
}

// Profiles

func (s *Store) PutProfile(ctx context.Context, p Profile) error {
	p.V = SchemaVersion
	return putJSON(ctx, s, keyProfile(p.ID), p)
}

func (s *Store) GetProfile(id string) (Profile, error) {
	var p Profile
	err := s.get(keyProfile(id), &p)
	return p, err
}

func (s *Store) ListProfiles() ([]Profile, error) { return scan[Profile](s, profilePrefix) }

// DeleteProfile removes the profile and everything stored under it.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(keyProfile(id), nil); err != nil {
		return err
	}
	data := keyProfileData(id)
	if err := batch.DeleteRange(data, pebblestore.PrefixEnd(data), nil); err != nil {
		return err
	}
	return s.db.CommitBatch(ctx, batch)
}

// Memories

func (s *Store) PutMemory(ctx context.Context, m Memory) error {
	m.V = SchemaVersion
	return putJSON(ctx, s, keyMemory(m.ProfileID, m.ID), m)
}

func (s *Store) GetMemory(profileID, id string) (Memory, error) {
	var m Memory
	err := s.get(keyMemory(profileID, id), &m)
	return m, err
}

// ListMemories returns the profile's memories, newest date first.
func (s *Store) ListMemories(profileID string) ([]Memory, error) {
	out, err := scan[Memory](s, keyMemoryPrefix(profileID))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *Store) DeleteMemory(ctx context.Context, profileID, id string) error {
	if ok, err := s.exists(keyMemory(profileID, id)); err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}
	return s.db.Delete(keyMemory(profileID, id))
}

// Photos

func (s *Store) PutPhoto(ctx context.Context, p Photo) error {
	p.V = SchemaVersion
	return putJSON(ctx, s, keyPhoto(p.ProfileID, p.ID), p)
}

// ListPhotos returns photos in upload order.
func (s *Store) ListPhotos(profileID string) ([]Photo, error) {
	return scan[Photo](s, keyPhotoPrefix(profileID))
}

func (s *Store) DeletePhoto(ctx context.Context, profileID, id string) error {
	if ok, err := s.exists(keyPhoto(profileID, id)); err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}
	return s.db.Delete(keyPhoto(profileID, id))
}

// Watcher marks

func (s *Store) GetMark(profileID string) (Mark, error) {
	var m Mark
	err := s.get(keyMark(profileID), &m)
	return m, err
}

func (s *Store) PutMark(ctx context.Context, m Mark) error {
	return putJSON(ctx, s, keyMark(m.ProfileID), m)
}
