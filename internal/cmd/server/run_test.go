package serverrun

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	cfgpkg "github.com/GooseXRL8/flowerlove/internal/config"
	"github.com/GooseXRL8/flowerlove/internal/runtime"
	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

func quietLogger() logpkg.Logger {
	return logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
}

func TestStoreDir(t *testing.T) {
	baseDir := "/tmp/flowerlove"
	if got, want := StoreDir(baseDir), filepath.Join(baseDir, "store"); got != want {
		t.Errorf("Expected store dir %s, got %s", want, got)
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*cfgpkg.Config)
	}{
		{"unknown stage scheme", func(c *cfgpkg.Config) { c.Counter.StageScheme = "tulip" }},
		{"zero tick", func(c *cfgpkg.Config) { c.Counter.TickInterval.Duration = 0 }},
		{"bad fsync", func(c *cfgpkg.Config) { c.Server.Fsync = "sometimes" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := cfgpkg.Default()
			cfg.Server.DataDir = t.TempDir()
			tt.mutate(&cfg)
			if err := Run(context.Background(), Options{Config: cfg, Logger: quietLogger()}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

// TestRunIntegration starts both servers on ephemeral ports, lets the
// context expire and checks the bootstrap admin was persisted.
func TestRunIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	cfg := cfgpkg.Default()
	cfg.Server.DataDir = t.TempDir()
	cfg.Server.HTTPAddr = "127.0.0.1:0"
	cfg.Server.GRPCAddr = "127.0.0.1:0"
	cfg.Server.Fsync = "never"
	cfg.Auth.BootstrapAdmin.Password = "admin123"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := Run(ctx, Options{Config: cfg, Logger: quietLogger()}); err != nil {
		t.Fatalf("run: %v", err)
	}

	rt, err := runtime.Open(runtime.Options{DataDir: StoreDir(cfg.Server.DataDir), Config: cfg})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer rt.Close()
	u, err := rt.Store().GetUserByName("admin")
	if err != nil {
		t.Fatalf("admin not persisted: %v", err)
	}
	if !u.IsAdmin {
		t.Fatalf("bootstrap user is not admin")
	}
}
