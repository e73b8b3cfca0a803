package memorysvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/GooseXRL8/flowerlove/internal/activity"
	"github.com/GooseXRL8/flowerlove/internal/clock"
	cfgpkg "github.com/GooseXRL8/flowerlove/internal/config"
	"github.com/GooseXRL8/flowerlove/internal/runtime"
	"github.com/GooseXRL8/flowerlove/internal/services"
	"github.com/GooseXRL8/flowerlove/internal/store"
)

var admin = store.User{ID: "admin-id", Username: "admin", IsAdmin: true}

func setup(t *testing.T) (*Service, *runtime.Runtime, string) {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Config: cfgpkg.Default(), Clock: clk})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	p := store.Profile{ID: "p1", Name: "one", StartDate: clk.Now(), Theme: "default"}
	require.NoError(t, rt.Store().PutProfile(context.Background(), p))
	return New(rt), rt, p.ID
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }

func seed(t *testing.T, svc *Service, pid string) {
	t.Helper()
	ctx := context.Background()
	for _, in := range []Input{
		{Title: "Primeiro encontro", Date: day(2023, 5, 20), Location: "Café", Tags: []string{"Encontro", " encontro "}},
		{Title: "Viagem à praia", Date: day(2024, 1, 10), Tags: []string{"praia", "viagem"}, IsFavorite: true},
		{Title: "Aniversário", Description: "bolo de chocolate", Date: day(2024, 8, 2)},
	} {
		_, err := svc.Create(ctx, admin, pid, in)
		require.NoError(t, err)
	}
}

func titles(ms []store.Memory) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Title
	}
	return out
}

func TestCreateValidates(t *testing.T) {
	svc, _, pid := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, pid, Input{Date: day(2024, 1, 1)})
	require.ErrorIs(t, err, services.ErrInvalidArgument)
	_, err = svc.Create(ctx, admin, pid, Input{Title: "x"})
	require.ErrorIs(t, err, services.ErrInvalidArgument)
	_, err = svc.Create(ctx, admin, pid, Input{Title: "x", Date: day(2024, 1, 1), ImageURL: "file:///etc/passwd"})
	require.ErrorIs(t, err, services.ErrInvalidArgument)
	_, err = svc.Create(ctx, admin, "missing", Input{Title: "x", Date: day(2024, 1, 1)})
	require.ErrorIs(t, err, services.ErrNotFound)
	_, err = svc.Create(ctx, store.User{ID: "stranger"}, pid, Input{Title: "x", Date: day(2024, 1, 1)})
	require.ErrorIs(t, err, services.ErrForbidden)
}

func TestListOrderAndTags(t *testing.T) {
	svc, _, pid := setup(t)
	seed(t, svc, pid)

	all, err := svc.List(context.Background(), admin, pid, ListOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"Aniversário", "Viagem à praia", "Primeiro encontro"}, titles(all))
	require.Equal(t, []string{"encontro"}, all[2].Tags)
	require.Equal(t, "Café", store.Deref(all[2].Location))
	require.Nil(t, all[0].Location)

	favs, err := svc.List(context.Background(), admin, pid, ListOptions{FavoritesOnly: true})
	require.NoError(t, err)
	require.Equal(t, []string{"Viagem à praia"}, titles(favs))
}

func TestListFilter(t *testing.T) {
	svc, _, pid := setup(t)
	seed(t, svc, pid)

	cases := []struct {
		expr string
		want []string
	}{
		{`memory.year == 2024`, []string{"Aniversário", "Viagem à praia"}},
		{`"praia" in memory.tags`, []string{"Viagem à praia"}},
		{`memory.description.contains("chocolate")`, []string{"Aniversário"}},
		{`memory.location == "Café" || memory.favorite`, []string{"Viagem à praia", "Primeiro encontro"}},
		{`memory.date_ms < now_ms`, []string{"Aniversário", "Viagem à praia", "Primeiro encontro"}},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := svc.List(context.Background(), admin, pid, ListOptions{Filter: tc.expr})
			require.NoError(t, err)
			require.Equal(t, tc.want, titles(got))
		})
	}

	_, err := svc.List(context.Background(), admin, pid, ListOptions{Filter: `memory.title +`})
	require.ErrorIs(t, err, services.ErrInvalidArgument)
	_, err = svc.List(context.Background(), admin, pid, ListOptions{Filter: `1 + 2`})
	require.ErrorIs(t, err, services.ErrInvalidArgument)
}

func TestUpdateToggleDelete(t *testing.T) {
	svc, rt, pid := setup(t)
	ctx := context.Background()
	m, err := svc.Create(ctx, admin, pid, Input{Title: "a", Date: day(2024, 1, 1)})
	require.NoError(t, err)

	m, err = svc.Update(ctx, admin, pid, m.ID, Input{Title: "b", Date: day(2024, 2, 2), Location: "Rio"})
	require.NoError(t, err)
	require.Equal(t, "b", m.Title)
	require.Equal(t, "Rio", store.Deref(m.Location))

	m, err = svc.ToggleFavorite(ctx, admin, pid, m.ID)
	require.NoError(t, err)
	require.True(t, m.IsFavorite)
	m, err = svc.ToggleFavorite(ctx, admin, pid, m.ID)
	require.NoError(t, err)
	require.False(t, m.IsFavorite)

	require.NoError(t, svc.Delete(ctx, admin, pid, m.ID))
	require.ErrorIs(t, svc.Delete(ctx, admin, pid, m.ID), services.ErrNotFound)
	_, err = svc.Update(ctx, admin, pid, m.ID, Input{Title: "c", Date: day(2024, 1, 1)})
	require.ErrorIs(t, err, services.ErrNotFound)

	items, _, err := rt.Activity().Read(pid, activity.ReadOptions{})
	require.NoError(t, err)
	kinds := make([]string, len(items))
	for i, it := range items {
		kinds[i] = it.Kind
	}
	require.Equal(t, []string{
		activity.KindMemoryCreated,
		activity.KindMemoryUpdated,
		activity.KindMemoryFavorited,
		activity.KindMemoryFavorited,
		activity.KindMemoryDeleted,
	}, kinds)
	require.Equal(t, "false", items[3].Detail["favorite"])
}
