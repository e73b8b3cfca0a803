package store

import "strings"

// Keyspace (all segments are plain strings; IDs are sortable hex):
//   users/u/{id}
//   users/name/{lower(username)}        -> id
//   sessions/{token}
//   profiles/p/{id}
//   profiles/x/{profile}/mem/{id}
//   profiles/x/{profile}/photo/{id}
//   profiles/x/{profile}/mark

var (
	userPrefix     = []byte("users/u/")
	userNamePrefix = []byte("users/name/")
	sessionPrefix  = []byte("sessions/")
	profilePrefix  = []byte("profiles/p/")
	profileXPrefix = []byte("profiles/x/")
)

func join(prefix []byte, parts ...string) []byte {
	n := len(prefix)
	for _, p := range parts {
		n += len(p) + 1
	}
	k := make([]byte, 0, n)
	k = append(k, prefix...)
	for i, p := range parts {
		if i > 0 {
			k = append(k, '/')
		}
		k = append(k, p...)
	}
	return k
}

func keyUser(id string) []byte        { return join(userPrefix, id) }
func keyUserName(name string) []byte  { return join(userNamePrefix, strings.ToLower(name)) }
func keySession(token string) []byte  { return join(sessionPrefix, token) }
func keyProfile(id string) []byte     { return join(profilePrefix, id) }
func keyProfileData(id string) []byte { return join(profileXPrefix, id, "") }

func keyMemory(profileID, id string) []byte { return join(profileXPrefix, profileID, "mem", id) }
func keyMemoryPrefix(profileID string) []byte {
	return join(profileXPrefix, profileID, "mem", "")
}

func keyPhoto(profileID, id string) []byte { return join(profileXPrefix, profileID, "photo", id) }
func keyPhotoPrefix(profileID string) []byte {
	return join(profileXPrefix, profileID, "photo", "")
}

func keyMark(profileID string) []byte { return join(profileXPrefix, profileID, "mark") }
