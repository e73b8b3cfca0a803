package activity

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/GooseXRL8/flowerlove/internal/storage/pebble"
)

// Kinds of entries appended by the services.
const (
	KindProfileCreated   = "profile_created"
	KindSettingsChanged  = "settings_changed"
	KindUserAssigned     = "user_assigned"
	KindUserUnassigned   = "user_unassigned"
	KindMemoryCreated    = "memory_created"
	KindMemoryUpdated    = "memory_updated"
	KindMemoryDeleted    = "memory_deleted"
	KindMemoryFavorited  = "memory_favorited"
	KindPhotoAdded       = "photo_added"
	KindPhotoRemoved     = "photo_removed"
	KindStageChanged     = "stage_changed"
	KindMilestoneReached = "milestone_reached"
)

// Entry is one activity record.
type Entry struct {
	Kind   string            `json:"kind"`
	At     time.Time         `json:"at"`
	Actor  string            `json:"actor,omitempty"`
	Detail map[string]string `json:"detail,omitempty"`
}

// Item is an Entry with its position in the feed.
type Item struct {
	Seq uint64 `json:"seq"`
	Entry
}

// ReadOptions selects a window of the feed. Start is inclusive; zero means
// the first entry (or the last when Reverse is set).
type ReadOptions struct {
	Start   uint64
	Limit   int
	Reverse bool
}

// Feed appends to and reads from per-profile activity logs.
type Feed struct {
	db *pebblestore.DB

	mu   sync.Mutex
	logs map[string]*profileLog
	// OnAppend observes every appended kind; used for metrics.
	OnAppend func(kind string)
}

type profileLog struct {
	lastSeq  uint64
	notifyCh chan struct{}
}

func NewFeed(db *pebblestore.DB) *Feed {
	return &Feed{db: db, logs: make(map[string]*profileLog)}
}

// logLocked returns the profile's log, loading lastSeq from meta on first use.
func (f *Feed) logLocked(profileID string) *profileLog {
	if l, ok := f.logs[profileID]; ok {
		return l
	}
	l := &profileLog{notifyCh: make(chan struct{})}
	if meta, err := f.db.Get(keyMeta(profileID)); err == nil && len(meta) >= 8 {
		l.lastSeq = binary.BigEndian.Uint64(meta[:8])
	}
	f.logs[profileID] = l
	return l
}

// Append writes entries atomically and returns their sequence numbers.
func (f *Feed) Append(ctx context.Context, profileID string, entries ...Entry) ([]uint64, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	if profileID == "" {
		return nil, errors.New("activity: empty profile id")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.logLocked(profileID)

	b := f.db.NewBatch()
	defer b.Close()

	seqs := make([]uint64, len(entries))
	seq := l.lastSeq
	for i, e := range entries {
		payload, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		seq++
		if err := b.Set(keyEntry(profileID, seq), encodeRecord([]byte(e.Kind), payload), nil); err != nil {
			return nil, err
		}
		seqs[i] = seq
	}
	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], seq)
	if err := b.Set(keyMeta(profileID), meta[:], nil); err != nil {
		return nil, err
	}
	if err := f.db.CommitBatch(ctx, b); err != nil {
		return nil, err
	}
	l.lastSeq = seq

	close(l.notifyCh)
	l.notifyCh = make(chan struct{})
	if f.OnAppend != nil {
		for _, e := range entries {
			f.OnAppend(e.Kind)
		}
	}
	return seqs, nil
}

// Read returns up to Limit items and the sequence to pass as Start for the
// next page (0 when the feed is exhausted).
func (f *Feed) Read(profileID string, opts ReadOptions) ([]Item, uint64, error) {
	low := keyEntry(profileID, 0)
	hi := keyEntry(profileID, ^uint64(0))
	iter, err := f.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: append(hi, 0x00)})
	if err != nil {
		return nil, 0, err
	}
	defer iter.Close()

	var valid bool
	switch {
	case opts.Reverse && opts.Start == 0:
		valid = iter.Last()
	case opts.Reverse:
		valid = iter.SeekLT(keyEntry(profileID, opts.Start+1))
	case opts.Start == 0:
		valid = iter.First()
	default:
		valid = iter.SeekGE(keyEntry(profileID, opts.Start))
	}

	seqOf := func(k []byte) uint64 { return binary.BigEndian.Uint64(k[len(k)-8:]) }
	var items []Item
	for ; valid && (opts.Limit <= 0 || len(items) < opts.Limit); valid = step(iter, opts.Reverse) {
		_, payload, ok := decodeRecord(iter.Value())
		if !ok {
			continue
		}
		var e Entry
		if err := json.Unmarshal(payload, &e); err != nil {
			continue
		}
		items = append(items, Item{Seq: seqOf(iter.Key()), Entry: e})
	}
	var next uint64
	if valid {
		next = seqOf(iter.Key())
	}
	return items, next, iter.Error()
}

func step(iter *pebble.Iterator, reverse bool) bool {
	if reverse {
		return iter.Prev()
	}
	return iter.Next()
}

// LastSeq returns the profile's most recent sequence, 0 when empty.
func (f *Feed) LastSeq(profileID string) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logLocked(profileID).lastSeq
}

// WaitForAppend blocks until the profile's feed grows past after, or ctx ends.
func (f *Feed) WaitForAppend(ctx context.Context, profileID string, after uint64) error {
	for {
		f.mu.Lock()
		l := f.logLocked(profileID)
		if l.lastSeq > after {
			f.mu.Unlock()
			return nil
		}
		ch := l.notifyCh
		f.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Purge removes the profile's whole feed.
func (f *Feed) Purge(ctx context.Context, profileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.db.DeletePrefix(ctx, keyPrefix(profileID)); err != nil {
		return err
	}
	if l, ok := f.logs[profileID]; ok {
		close(l.notifyCh)
		delete(f.logs, profileID)
	}
	return nil
}
