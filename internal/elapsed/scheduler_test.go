package elapsed

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/GooseXRL8/flowerlove/internal/clock"
	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// tick advances the fake clock one period and waits until the callback count
// reaches want.
func tick(t *testing.T, clk *clock.Fake, period time.Duration, calls *atomic.Int64, want int64) {
	t.Helper()
	clk.Advance(period)
	require.Eventually(t, func() bool { return calls.Load() >= want }, time.Second, time.Millisecond)
}

func TestEveryTicksUntilCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	clk := clock.NewFake(epoch)
	var calls atomic.Int64
	sub := Every(context.Background(), clk, time.Second, func(time.Time) { calls.Add(1) })

	for i := int64(1); i <= 3; i++ {
		tick(t, clk, time.Second, &calls, i)
	}

	sub.Cancel()
	<-sub.Done()
	for i := 0; i < 5; i++ {
		clk.Advance(time.Second)
	}
	time.Sleep(20 * time.Millisecond)
	require.EqualValues(t, 3, calls.Load())
	require.Equal(t, 0, clk.Tickers())
}

func TestCancelIsIdempotentAndSafeInsideCallback(t *testing.T) {
	defer goleak.VerifyNone(t)

	clk := clock.NewFake(epoch)
	var calls atomic.Int64
	var sub *Subscription
	sub = Every(context.Background(), clk, time.Second, func(time.Time) {
		calls.Add(1)
		sub.Cancel()
		sub.Cancel()
	})

	tick(t, clk, time.Second, &calls, 1)
	<-sub.Done()
	clk.Advance(time.Second)
	clk.Advance(time.Second)
	require.EqualValues(t, 1, calls.Load())
	sub.Cancel()
}

func TestCancelFromAnotherGoroutineDropsPendingTick(t *testing.T) {
	defer goleak.VerifyNone(t)

	clk := clock.NewFake(epoch)
	reached := make(chan struct{})
	release := make(chan struct{})
	cancelled := make(chan struct{})
	var hold sync.Once
	var calls, late atomic.Int64

	hook := func(o *options) {
		o.beforeCallback = func() {
			hold.Do(func() {
				close(reached)
				<-release
			})
		}
	}
	sub := Every(context.Background(), clk, time.Second, func(time.Time) {
		select {
		case <-cancelled:
			late.Add(1)
		default:
		}
		calls.Add(1)
	}, hook)

	clk.Advance(time.Second)
	<-reached

	go func() {
		sub.Cancel()
		close(cancelled)
	}()
	require.Never(t, func() bool {
		select {
		case <-cancelled:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, time.Millisecond, "Cancel returned while a tick was pending")

	close(release)
	<-cancelled
	<-sub.Done()
	clk.Advance(time.Second)
	require.Zero(t, calls.Load(), "pending tick ran after cancellation")
	require.Zero(t, late.Load())
}

func TestContextCancelStopsTicks(t *testing.T) {
	defer goleak.VerifyNone(t)

	clk := clock.NewFake(epoch)
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int64
	sub := Every(ctx, clk, time.Second, func(time.Time) { calls.Add(1) })
	tick(t, clk, time.Second, &calls, 1)

	cancel()
	<-sub.Done()
	clk.Advance(3 * time.Second)
	require.EqualValues(t, 1, calls.Load())
}

func TestPanicDoesNotStopTicks(t *testing.T) {
	defer goleak.VerifyNone(t)

	var buf bytes.Buffer
	logger := logpkg.NewLogger(logpkg.WithOutput(logpkg.NewWriterOutput(&buf)))
	clk := clock.NewFake(epoch)
	var calls, panics atomic.Int64
	sub := Every(context.Background(), clk, time.Second, func(time.Time) {
		if calls.Add(1) == 1 {
			panic("boom")
		}
	}, WithLogger(logger), WithPanicHook(func(interface{}) { panics.Add(1) }))
	defer func() { sub.Cancel(); <-sub.Done() }()

	tick(t, clk, time.Second, &calls, 1)
	tick(t, clk, time.Second, &calls, 2)
	require.EqualValues(t, 1, panics.Load())
	require.Contains(t, buf.String(), "tick panicked")
}

func TestWatchPublishesImmediatelyAndPerTick(t *testing.T) {
	defer goleak.VerifyNone(t)

	start := time.Date(2024, 12, 2, 0, 0, 1, 0, time.UTC)
	clk := clock.NewFake(epoch)

	var mu sync.Mutex
	var got []Snapshot
	var calls atomic.Int64
	sub := Watch(context.Background(), clk, start, time.Second, func(s Snapshot) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
		calls.Add(1)
	})
	require.EqualValues(t, 1, calls.Load(), "first snapshot is synchronous")

	clk.Advance(48 * time.Hour)
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)
	sub.Cancel()
	<-sub.Done()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, Breakdown{Days: 29, Hours: 23, Minutes: 59, Seconds: 59}, got[0].Breakdown)
	require.Equal(t, Stage(1), got[0].Stage)
	require.Equal(t, DefaultMilestone, got[0].Milestone)
	require.Equal(t, "29 dias", got[0].Text)

	require.Equal(t, Breakdown{Months: 1, Hours: 23, Minutes: 59, Seconds: 59}, got[1].Breakdown)
	require.Equal(t, Stage(2), got[1].Stage)
	require.Equal(t, "Bodas de Beijinho", got[1].Milestone)
}

func TestComputeSchemes(t *testing.T) {
	start := epoch.AddDate(0, -7, 0)
	s := Compute(start, epoch, SchemeRose)
	require.Equal(t, Stage(4), s.Stage)
	require.Equal(t, Stage(3), Compute(start, epoch, SchemeFlower).Stage)
}
