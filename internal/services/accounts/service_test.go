package accountsvc

import (
	"context"
	"regexp"
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

var cheap = HashParams{Time: 1, Memory: 1024, Threads: 1}

func newTestService(t *testing.T) (*Service, *runtime.Runtime, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Config: cfgpkg.Default(), Clock: clk})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	svc := New(rt)
	svc.SetHashParams(cheap)
	return svc, rt, clk
}

func bootstrap(t *testing.T, svc *Service) store.User {
	t.Helper()
	created, _, err := svc.EnsureBootstrapAdmin(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	require.True(t, created)
	_, admin, err := svc.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	return admin
}

func TestPasswordHashing(t *testing.T) {
	h, err := HashPassword("segredo", cheap)
	require.NoError(t, err)
	require.True(t, VerifyPassword(h, "segredo"))
	require.False(t, VerifyPassword(h, "Segredo"))
	require.False(t, VerifyPassword("plain", "plain"))

	h2, err := HashPassword("segredo", cheap)
	require.NoError(t, err)
	require.NotEqual(t, h, h2, "salt must differ")
}

func TestGeneratePassword(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z]{5}[0-9]{3}$`)
	for i := 0; i < 50; i++ {
		pw, err := GeneratePassword()
		require.NoError(t, err)
		require.Regexp(t, re, pw)
	}
}

func TestBootstrapIsOnce(t *testing.T) {
	svc, _, _ := newTestService(t)
	created, generated, err := svc.EnsureBootstrapAdmin(context.Background(), "", "")
	require.NoError(t, err)
	require.True(t, created)
	require.Len(t, generated, 8)

	created, _, err = svc.EnsureBootstrapAdmin(context.Background(), "other", "")
	require.NoError(t, err)
	require.False(t, created)
}

func TestLoginAuthenticateLogout(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()
	admin := bootstrap(t, svc)

	var outcomes []bool
	svc.OnLogin = func(ok bool) { outcomes = append(outcomes, ok) }

	u, pw, err := svc.CreateUser(ctx, admin, CreateUserInput{Username: "Ana"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ana", "wrong")
	require.ErrorIs(t, err, services.ErrUnauthorized)
	_, _, err = svc.Login(ctx, "nobody", pw)
	require.ErrorIs(t, err, services.ErrUnauthorized)

	sess, got, err := svc.Login(ctx, "ANA", pw)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, []bool{false, false, true}, outcomes)

	who, err := svc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	require.Equal(t, "Ana", who.Username)

	require.NoError(t, svc.Logout(ctx, sess.Token))
	_, err = svc.Authenticate(ctx, sess.Token)
	require.ErrorIs(t, err, services.ErrUnauthorized)

	sess, _, err = svc.Login(ctx, "ana", pw)
	require.NoError(t, err)
	clk.Advance(8 * 24 * time.Hour)
	_, err = svc.Authenticate(ctx, sess.Token)
	require.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "not-a-uuid")
	require.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestAdminOnlyOperations(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	admin := bootstrap(t, svc)
	u, _, err := svc.CreateUser(ctx, admin, CreateUserInput{Username: "bia", Password: "bia-pass"})
	require.NoError(t, err)

	_, _, err = svc.CreateUser(ctx, u, CreateUserInput{Username: "eve"})
	require.ErrorIs(t, err, services.ErrForbidden)
	_, err = svc.ListUsers(ctx, u)
	require.ErrorIs(t, err, services.ErrForbidden)
	require.ErrorIs(t, svc.DeleteUser(ctx, u, admin.ID), services.ErrForbidden)

	_, _, err = svc.CreateUser(ctx, admin, CreateUserInput{Username: "BIA"})
	require.ErrorIs(t, err, services.ErrDuplicateUsername)
	_, _, err = svc.CreateUser(ctx, admin, CreateUserInput{Username: "a b"})
	require.ErrorIs(t, err, services.ErrInvalidArgument)

	users, err := svc.ListUsers(ctx, admin)
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func TestAssignAndDeleteKeepBothSidesInSync(t *testing.T) {
	svc, rt, clk := newTestService(t)
	ctx := context.Background()
	admin := bootstrap(t, svc)
	st := rt.Store()
	now := clk.Now()
	require.NoError(t, st.PutProfile(ctx, store.Profile{ID: "p1", Name: "one", StartDate: now, CreatedAt: now}))
	require.NoError(t, st.PutProfile(ctx, store.Profile{ID: "p2", Name: "two", StartDate: now, CreatedAt: now}))

	u, _, err := svc.CreateUser(ctx, admin, CreateUserInput{Username: "ana", ProfileID: "p1"})
	require.NoError(t, err)
	require.Equal(t, "p1", store.Deref(u.AssignedProfileID))
	p1, _ := st.GetProfile("p1")
	require.Equal(t, u.ID, store.Deref(p1.AssignedUserID))

	// moving the user frees the first profile
	u, err = svc.AssignUserToProfile(ctx, admin, u.ID, "p2")
	require.NoError(t, err)
	p1, _ = st.GetProfile("p1")
	require.Nil(t, p1.AssignedUserID)

	// a second user taking p2 unassigns the first
	v, _, err := svc.CreateUser(ctx, admin, CreateUserInput{Username: "bia", ProfileID: "p2"})
	require.NoError(t, err)
	u, _ = st.GetUser(u.ID)
	require.Nil(t, u.AssignedProfileID)

	require.NoError(t, svc.DeleteUser(ctx, admin, v.ID))
	p2, _ := st.GetProfile("p2")
	require.Nil(t, p2.AssignedUserID)

	items, _, err := rt.Activity().Read("p2", activity.ReadOptions{})
	require.NoError(t, err)
	var kinds []string
	for _, it := range items {
		kinds = append(kinds, it.Kind)
	}
	require.Equal(t, []string{activity.KindUserAssigned, activity.KindUserAssigned, activity.KindUserUnassigned}, kinds)

	_, err = svc.AssignUserToProfile(ctx, admin, u.ID, "missing")
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestReassignWritesEverySideTogether(t *testing.T) {
	svc, rt, clk := newTestService(t)
	ctx := context.Background()
	admin := bootstrap(t, svc)
	st := rt.Store()
	now := clk.Now()
	require.NoError(t, st.PutProfile(ctx, store.Profile{ID: "p1", Name: "one", StartDate: now, CreatedAt: now}))
	require.NoError(t, st.PutProfile(ctx, store.Profile{ID: "p2", Name: "two", StartDate: now, CreatedAt: now}))
	ana, _, err := svc.CreateUser(ctx, admin, CreateUserInput{Username: "ana", ProfileID: "p1"})
	require.NoError(t, err)
	bia, _, err := svc.CreateUser(ctx, admin, CreateUserInput{Username: "bia", ProfileID: "p2"})
	require.NoError(t, err)

	// A failed commit leaves all four records as they were.
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.AssignUserToProfile(cancelled, admin, ana.ID, "p2")
	require.Error(t, err)
	ana, _ = st.GetUser(ana.ID)
	bia, _ = st.GetUser(bia.ID)
	p1, _ := st.GetProfile("p1")
	p2, _ := st.GetProfile("p2")
	require.Equal(t, "p1", store.Deref(ana.AssignedProfileID))
	require.Equal(t, "p2", store.Deref(bia.AssignedProfileID))
	require.Equal(t, ana.ID, store.Deref(p1.AssignedUserID))
	require.Equal(t, bia.ID, store.Deref(p2.AssignedUserID))

	_, err = svc.AssignUserToProfile(ctx, admin, ana.ID, "p2")
	require.NoError(t, err)
	ana, _ = st.GetUser(ana.ID)
	bia, _ = st.GetUser(bia.ID)
	p1, _ = st.GetProfile("p1")
	p2, _ = st.GetProfile("p2")
	require.Equal(t, "p2", store.Deref(ana.AssignedProfileID))
	require.Nil(t, bia.AssignedProfileID)
	require.Nil(t, p1.AssignedUserID)
	require.Equal(t, ana.ID, store.Deref(p2.AssignedUserID))

	items, _, err := rt.Activity().Read("p1", activity.ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, activity.KindUserUnassigned, items[len(items)-1].Kind)
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	admin := bootstrap(t, svc)
	require.ErrorIs(t, svc.ChangePassword(ctx, admin, "nope", "newpass1"), services.ErrUnauthorized)
	require.ErrorIs(t, svc.ChangePassword(ctx, admin, "admin123", "x"), services.ErrInvalidArgument)
	require.NoError(t, svc.ChangePassword(ctx, admin, "admin123", "newpass1"))
	_, _, err := svc.Login(ctx, "admin", "newpass1")
	require.NoError(t, err)
}
