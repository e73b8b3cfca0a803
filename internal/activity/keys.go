package activity

import "encoding/binary"

var (
	nsPrefix    = []byte("ns/")
	activitySeg = []byte("/activity/")
	metaSuffix  = []byte("m")
	entrySeg    = []byte("e/")
)

func keyPrefix(profileID string) []byte {
	k := make([]byte, 0, len(nsPrefix)+len(profileID)+len(activitySeg)+12)
	k = append(k, nsPrefix...)
	k = append(k, profileID...)
	k = append(k, activitySeg...)
	return k
}

func keyMeta(profileID string) []byte {
	return append(keyPrefix(profileID), metaSuffix...)
}

func keyEntry(profileID string, seq uint64) []byte {
	k := append(keyPrefix(profileID), entrySeg...)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return append(k, b[:]...)
}
