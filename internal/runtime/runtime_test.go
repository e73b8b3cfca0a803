package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/GooseXRL8/flowerlove/internal/activity"
	"github.com/GooseXRL8/flowerlove/internal/clock"
	cfgpkg "github.com/GooseXRL8/flowerlove/internal/config"
	pebblestore "github.com/GooseXRL8/flowerlove/internal/storage/pebble"
)

func TestOpenCloseHealth(t *testing.T) {
	dir := t.TempDir()
	rt, err := Open(Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	defer rt.Close()
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if _, ok := rt.Clock().(clock.Real); !ok {
		t.Fatalf("default clock should be real")
	}
}

func TestWiresFeedAndClock(t *testing.T) {
	fake := clock.NewFake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	var seen []string
	rt, err := Open(Options{
		DataDir:    t.TempDir(),
		Config:     cfgpkg.Default(),
		Clock:      fake,
		OnActivity: func(k string) { seen = append(seen, k) },
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()
	if rt.Clock() != fake {
		t.Fatalf("clock not wired")
	}
	if _, err := rt.Activity().Append(context.Background(), "p", activity.Entry{Kind: activity.KindProfileCreated}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(seen) != 1 || seen[0] != activity.KindProfileCreated {
		t.Fatalf("activity hook not called: %v", seen)
	}
	if rt.Store() == nil || rt.DB() == nil {
		t.Fatalf("store not wired")
	}
}
