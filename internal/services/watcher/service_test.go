package watchersvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/GooseXRL8/flowerlove/internal/activity"
	"github.com/GooseXRL8/flowerlove/internal/clock"
	cfgpkg "github.com/GooseXRL8/flowerlove/internal/config"
	"github.com/GooseXRL8/flowerlove/internal/runtime"
	"github.com/GooseXRL8/flowerlove/internal/store"
)

func setup(t *testing.T) (*Service, *runtime.Runtime, *clock.Fake, store.Profile) {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Config: cfgpkg.Default(), Clock: clk})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	p := store.Profile{ID: "p1", Name: "one", StartDate: clk.Now(), Theme: "default"}
	require.NoError(t, rt.Store().PutProfile(context.Background(), p))
	return New(rt), rt, clk, p
}

func kinds(t *testing.T, rt *runtime.Runtime, pid string) []string {
	t.Helper()
	items, _, err := rt.Activity().Read(pid, activity.ReadOptions{})
	require.NoError(t, err)
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Kind
	}
	return out
}

func TestScanRecordsProgress(t *testing.T) {
	svc, rt, clk, p := setup(t)
	ctx := context.Background()

	n, err := svc.Scan(ctx, clk.Now())
	require.NoError(t, err)
	require.Zero(t, n, "first sighting is a baseline")

	clk.Advance(10 * 24 * time.Hour)
	n, err = svc.Scan(ctx, clk.Now())
	require.NoError(t, err)
	require.Zero(t, n)

	clk.Advance(21 * 24 * time.Hour)
	n, err = svc.Scan(ctx, clk.Now())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []string{activity.KindStageChanged, activity.KindMilestoneReached}, kinds(t, rt, p.ID))

	items, _, err := rt.Activity().Read(p.ID, activity.ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, "1", items[0].Detail["from"])
	require.Equal(t, "2", items[0].Detail["to"])
	require.Equal(t, "Bodas de Beijinho", items[1].Detail["milestone"])
	require.Equal(t, Actor, items[1].Actor)

	n, err = svc.Scan(ctx, clk.Now())
	require.NoError(t, err)
	require.Zero(t, n)

	mark, err := rt.Store().GetMark(p.ID)
	require.NoError(t, err)
	require.Equal(t, 2, mark.Stage)
	require.True(t, mark.SeenAt.Equal(clk.Now()))
}

func TestScanRebaselinesOnStartChange(t *testing.T) {
	svc, rt, clk, p := setup(t)
	ctx := context.Background()
	_, err := svc.Scan(ctx, clk.Now())
	require.NoError(t, err)

	p.StartDate = clk.Now().AddDate(-3, 0, 0)
	require.NoError(t, rt.Store().PutProfile(ctx, p))
	n, err := svc.Scan(ctx, clk.Now())
	require.NoError(t, err)
	require.Zero(t, n)
	require.Empty(t, kinds(t, rt, p.ID))

	mark, err := rt.Store().GetMark(p.ID)
	require.NoError(t, err)
	require.Equal(t, "Bodas de Couro ou Trigo", mark.Milestone)
	require.Equal(t, 5, mark.Stage)
}

func TestStartRunsOnTicks(t *testing.T) {
	svc, rt, clk, p := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := svc.Start(ctx)
	_, err := rt.Store().GetMark(p.ID)
	require.NoError(t, err, "immediate scan writes a baseline")

	clk.Advance(31 * 24 * time.Hour)
	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	require.NoError(t, rt.Activity().WaitForAppend(waitCtx, p.ID, 0))

	sub.Cancel()
	<-sub.Done()
	require.Contains(t, kinds(t, rt, p.ID), activity.KindMilestoneReached)
}
