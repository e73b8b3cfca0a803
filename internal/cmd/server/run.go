package serverrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/GooseXRL8/flowerlove/internal/clock"
	cfgpkg "github.com/GooseXRL8/flowerlove/internal/config"
	"github.com/GooseXRL8/flowerlove/internal/observability"
	"github.com/GooseXRL8/flowerlove/internal/runtime"
	grpcserver "github.com/GooseXRL8/flowerlove/internal/server/grpc"
	httpserver "github.com/GooseXRL8/flowerlove/internal/server/http"
	accountsvc "github.com/GooseXRL8/flowerlove/internal/services/accounts"
	watchersvc "github.com/GooseXRL8/flowerlove/internal/services/watcher"
	pebblestore "github.com/GooseXRL8/flowerlove/internal/storage/pebble"
	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

type Options struct {
	Config cfgpkg.Config
	// Clock defaults to the wall clock.
	Clock clock.Clock
	// Logger overrides the logger built from Config.Log.
	Logger logpkg.Logger
}

// StoreDir is where the pebble database lives under a data directory.
func StoreDir(dataDir string) string { return filepath.Join(dataDir, "store") }

// Run opens the runtime, seeds the bootstrap admin, starts the milestone
// watcher and serves gRPC and HTTP until ctx is cancelled or a signal
// arrives.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Server.DataDir == "" {
		cfg.Server.DataDir = cfgpkg.DefaultDataDir()
	}
	fsync, err := pebblestore.ParseFsyncMode(cfg.Server.Fsync)
	if err != nil {
		return err
	}

	procLogger := opts.Logger
	if procLogger == nil {
		if procLogger, err = logpkg.ApplyConfig(&cfg.Log); err != nil {
			return fmt.Errorf("log config: %w", err)
		}
		logpkg.RedirectStdLog(procLogger)
	}
	observability.RegisterMetrics()

	rt, err := runtime.Open(runtime.Options{
		DataDir:    StoreDir(cfg.Server.DataDir),
		Fsync:      fsync,
		Config:     cfg,
		Clock:      opts.Clock,
		Logger:     procLogger.WithComponent("storage"),
		Metrics:    observability.StorageMetrics{},
		OnActivity: observability.RecordActivity,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	procLogger.Info("Starting flowerlove server",
		logpkg.Str("grpc", cfg.Server.GRPCAddr),
		logpkg.Str("http", cfg.Server.HTTPAddr),
		logpkg.Str("data_dir", cfg.Server.DataDir),
		logpkg.Str("fsync", cfg.Server.Fsync),
		logpkg.Str("stage_scheme", cfg.Scheme().Name),
		logpkg.Dur("tick", cfg.Counter.TickInterval.Duration),
	)

	accounts := accountsvc.NewWithLogger(rt, procLogger)
	accounts.OnLogin = observability.RecordLogin
	admin := cfg.Auth.BootstrapAdmin
	created, generated, err := accounts.EnsureBootstrapAdmin(sctx, admin.Username, admin.Password)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created && generated != "" {
		procLogger.Warn("bootstrap admin created with generated password; change it after first login",
			logpkg.Str("username", admin.Username),
			logpkg.Str("password", generated))
	}

	watcher := watchersvc.NewWithLogger(rt, procLogger)
	watcher.OnPanic = observability.TickPanicHook("watcher")
	gsrv := grpcserver.New(rt, procLogger)
	hsrv := httpserver.New(rt, procLogger, accounts)

	g, gctx := errgroup.WithContext(sctx)
	sub := watcher.Start(gctx)
	g.Go(func() error {
		<-sub.Done()
		return nil
	})
	g.Go(func() error {
		if err := gsrv.ListenAndServe(gctx, cfg.Server.GRPCAddr); err != nil {
			return fmt.Errorf("grpc: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := hsrv.ListenAndServe(gctx, cfg.Server.HTTPAddr); err != nil {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})

	err = g.Wait()
	gsrv.Close()
	hsrv.Close()
	procLogger.Info("flowerlove server stopped")
	return err
}
