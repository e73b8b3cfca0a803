package runtime

import (
	"context"
	"errors"

	"github.com/GooseXRL8/flowerlove/internal/activity"
	"github.com/GooseXRL8/flowerlove/internal/clock"
	cfgpkg "github.com/GooseXRL8/flowerlove/internal/config"
	pebblestore "github.com/GooseXRL8/flowerlove/internal/storage/pebble"
	"github.com/GooseXRL8/flowerlove/internal/store"
	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir string
	Fsync   pebblestore.FsyncMode
	Config  cfgpkg.Config
	// Clock defaults to clock.Real.
	Clock clock.Clock
	// Logger defaults to a null logger.
	Logger logpkg.Logger
	// Metrics observes storage latencies. Optional.
	Metrics pebblestore.MetricsHook
	// OnActivity observes every appended activity kind. Optional.
	OnActivity func(kind string)
}

// Runtime wires storage, config, clock and the activity feed for a
// single-node instance.
type Runtime struct {
	db     *pebblestore.DB
	store  *store.Store
	feed   *activity.Feed
	config cfgpkg.Config
	clock  clock.Clock
	logger logpkg.Logger
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir: opts.DataDir,
		Fsync:   opts.Fsync,
		Metrics: opts.Metrics,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	feed := activity.NewFeed(db)
	feed.OnAppend = opts.OnActivity
	return &Runtime{
		db:     db,
		store:  store.New(db),
		feed:   feed,
		config: opts.Config,
		clock:  clk,
		logger: logger,
	}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth reports an error when storage stops answering reads.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !r.db.Healthy() {
		return errors.New("db not healthy")
	}
	return nil
}

// DB exposes the underlying DB for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

func (r *Runtime) Store() *store.Store { return r.store }

func (r *Runtime) Activity() *activity.Feed { return r.feed }

func (r *Runtime) Config() cfgpkg.Config { return r.config }

func (r *Runtime) Clock() clock.Clock { return r.clock }

func (r *Runtime) Logger() logpkg.Logger { return r.logger }
