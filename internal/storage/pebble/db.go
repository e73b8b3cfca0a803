package pebblestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

// ErrNotFound is returned by Get for missing keys.
var ErrNotFound = pebble.ErrNotFound

// FsyncMode selects how hard writes push to disk.
type FsyncMode int

const (
	// FsyncModeUnspecified groups WAL syncs every 5ms.
	FsyncModeUnspecified FsyncMode = iota
	// FsyncModeAlways syncs the WAL on every commit.
	FsyncModeAlways
	// FsyncModeInterval groups WAL syncs within Options.FsyncInterval.
	FsyncModeInterval
	// FsyncModeNever leaves syncing to pebble and the OS.
	FsyncModeNever
)

var fsyncNames = map[FsyncMode]string{
	FsyncModeUnspecified: "",
	FsyncModeAlways:      "always",
	FsyncModeInterval:    "interval",
	FsyncModeNever:       "never",
}

func (m FsyncMode) String() string {
	if m == FsyncModeUnspecified {
		return "default"
	}
	if name, ok := fsyncNames[m]; ok {
		return name
	}
	return fmt.Sprintf("FsyncMode(%d)", int(m))
}

// ParseFsyncMode accepts "always", "interval", "never" or "" (default).
func ParseFsyncMode(s string) (FsyncMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for mode, name := range fsyncNames {
		if name == s {
			return mode, nil
		}
	}
	return FsyncModeUnspecified, fmt.Errorf("pebble: unknown fsync mode %q", s)
}

const defaultSyncInterval = 5 * time.Millisecond

// Options configures Open.
type Options struct {
	DataDir       string
	Fsync         FsyncMode
	FsyncInterval time.Duration
	// PebbleOptions overrides pebble's defaults when set.
	PebbleOptions *pebble.Options
	Metrics       MetricsHook
	// Logger receives pebble's own log lines at debug level.
	Logger logpkg.Logger
}

// MetricsHook observes storage latency; see observability.StorageMetrics.
type MetricsHook interface {
	ObserveRead(elapsed time.Duration, bytes int)
	ObserveBatchCommit(elapsed time.Duration, numOps int, bytes int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveRead(time.Duration, int)             {}
func (noopMetrics) ObserveBatchCommit(time.Duration, int, int) {}

// DB is the single pebble instance behind the store and the activity feed.
type DB struct {
	inner   *pebble.DB
	sync    pebble.WriteOptions
	metrics MetricsHook
	closed  atomic.Bool
}

// Open creates or opens the database under opts.DataDir.
func Open(opts Options) (*DB, error) {
	if opts.DataDir == "" {
		return nil, errors.New("pebble: data dir is required")
	}
	po := opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}
	if opts.Logger != nil {
		po.Logger = pebbleLogger{l: opts.Logger.WithComponent("pebble")}
	}
	if d := walSyncInterval(opts); d > 0 {
		po.WALMinSyncInterval = func() time.Duration { return d }
	}

	inner, err := pebble.Open(opts.DataDir, po)
	if err != nil {
		return nil, fmt.Errorf("pebble: open %s: %w", opts.DataDir, err)
	}
	db := &DB{inner: inner, sync: *pebble.NoSync, metrics: opts.Metrics}
	if opts.Fsync == FsyncModeAlways {
		db.sync = *pebble.Sync
	}
	if db.metrics == nil {
		db.metrics = noopMetrics{}
	}
	return db, nil
}

func walSyncInterval(opts Options) time.Duration {
	switch opts.Fsync {
	case FsyncModeInterval:
		if opts.FsyncInterval > 0 {
			return opts.FsyncInterval
		}
		return defaultSyncInterval
	case FsyncModeUnspecified:
		return defaultSyncInterval
	default:
		return 0
	}
}

// Close is safe to call more than once.
func (db *DB) Close() error {
	if db == nil || db.inner == nil || !db.closed.CompareAndSwap(false, true) {
		return nil
	}
	return db.inner.Close()
}

// Healthy reports whether the database is open and answers a point read.
func (db *DB) Healthy() bool {
	if db == nil || db.inner == nil || db.closed.Load() {
		return false
	}
	_, closer, err := db.inner.Get([]byte{0})
	if err != nil {
		return errors.Is(err, pebble.ErrNotFound)
	}
	_ = closer.Close()
	return true
}

// NewBatch creates a new batch for atomic multi-key updates.
func (db *DB) NewBatch() *pebble.Batch {
	return db.inner.NewBatch()
}

// CommitBatch commits the provided batch with the configured fsync policy.
func (db *DB) CommitBatch(ctx context.Context, b *pebble.Batch) error {
	if b == nil {
		return errors.New("pebble: nil batch")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	ops, size := int(b.Count()), b.Len()
	wo := db.sync
	err := b.Commit(&wo)
	db.metrics.ObserveBatchCommit(time.Since(start), ops, size)
	return err
}

// Set sets a key to a value using a small internal batch respecting fsync policy.
func (db *DB) Set(key, value []byte) error {
	b := db.inner.NewBatch()
	defer b.Close()
	if err := b.Set(key, value, nil); err != nil {
		return err
	}
	return db.CommitBatch(context.Background(), b)
}

// Delete removes a key using a small internal batch respecting fsync policy.
func (db *DB) Delete(key []byte) error {
	b := db.inner.NewBatch()
	defer b.Close()
	if err := b.Delete(key, nil); err != nil {
		return err
	}
	return db.CommitBatch(context.Background(), b)
}

// Get copies the value for the given key. Missing keys return ErrNotFound.
func (db *DB) Get(key []byte) ([]byte, error) {
	start := time.Now()
	val, closer, err := db.inner.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	buf := append([]byte(nil), val...)
	db.metrics.ObserveRead(time.Since(start), len(buf))
	return buf, nil
}

// NewIter creates a raw Pebble iterator with the provided options.
func (db *DB) NewIter(opts *pebble.IterOptions) (*pebble.Iterator, error) {
	return db.inner.NewIter(opts)
}

// ScanPrefix calls fn for every key under prefix in ascending order. Key and
// value are only valid during the call. Returning false stops the scan.
func (db *DB) ScanPrefix(prefix []byte, fn func(key, value []byte) bool) error {
	it, err := db.inner.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: PrefixEnd(prefix)})
	if err != nil {
		return err
	}
	defer it.Close()
	for ok := it.First(); ok; ok = it.Next() {
		if !fn(it.Key(), it.Value()) {
			break
		}
	}
	return it.Error()
}

// DeletePrefix removes every key under prefix in one batch.
func (db *DB) DeletePrefix(ctx context.Context, prefix []byte) error {
	b := db.inner.NewBatch()
	defer b.Close()
	if err := b.DeleteRange(prefix, PrefixEnd(prefix), nil); err != nil {
		return err
	}
	return db.CommitBatch(ctx, b)
}

// PrefixEnd returns the smallest key greater than every key with prefix.
func PrefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

type pebbleLogger struct{ l logpkg.Logger }

func (p pebbleLogger) Infof(format string, args ...interface{}) {
	p.l.Debug(fmt.Sprintf(format, args...))
}

func (p pebbleLogger) Errorf(format string, args ...interface{}) {
	p.l.Error(fmt.Sprintf(format, args...))
}

func (p pebbleLogger) Fatalf(format string, args ...interface{}) {
	p.l.Fatal(fmt.Sprintf(format, args...))
}
