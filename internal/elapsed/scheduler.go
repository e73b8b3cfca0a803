package elapsed

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/GooseXRL8/flowerlove/internal/clock"
	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

// DefaultPeriod is the counter's refresh cadence.
const DefaultPeriod = time.Second

// Snapshot is one recomputation of the engine for a start instant.
type Snapshot struct {
	Start      time.Time `json:"start"`
	Now        time.Time `json:"now"`
	Breakdown  Breakdown `json:"breakdown"`
	ApproxDays int       `json:"approxDays"`
	Stage      Stage     `json:"stage"`
	Milestone  string    `json:"milestone"`
	Text       string    `json:"text"`
}

// Compute runs Decompose, Classify and NameFor for one instant.
func Compute(start, now time.Time, scheme Scheme) Snapshot {
	b := Decompose(start, now)
	days := b.ApproxDays()
	return Snapshot{
		Start:      start,
		Now:        now,
		Breakdown:  b,
		ApproxDays: days,
		Stage:      scheme.Classify(days),
		Milestone:  NameFor(b.Years, b.Months),
		Text:       FormatDuration(b),
	}
}

// Option configures Every and Watch.
type Option func(*options)

type options struct {
	logger    logpkg.Logger
	onPanic   func(recovered interface{})
	immediate bool
	scheme    Scheme
	// beforeCallback runs once a tick holds running, before the cancelled
	// check; tests use it to hold a tick at that point.
	beforeCallback func()
}

// WithLogger sets the logger used to report recovered panics.
func WithLogger(l logpkg.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPanicHook is called after a tick's panic has been recovered.
func WithPanicHook(fn func(recovered interface{})) Option {
	return func(o *options) { o.onPanic = fn }
}

// WithImmediate runs the callback once before the first tick.
func WithImmediate() Option {
	return func(o *options) { o.immediate = true }
}

// WithScheme selects the stage thresholds used by Watch.
func WithScheme(s Scheme) Option {
	return func(o *options) { o.scheme = s }
}

// Subscription is the handle returned by Every and Watch.
type Subscription struct {
	// running is held from admission of a tick until its callback returns.
	running sync.Mutex

	mu         sync.Mutex
	cancelled  bool
	inCallback bool

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Cancel stops the subscription. Once Cancel returns no further callback
// starts: a tick caught between its timer firing and the cancelled check is
// waited out and then dropped. A callback that had already started, including
// the one calling Cancel, runs to completion. Cancel may be called more than
// once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.mu.Lock()
		s.cancelled = true
		inside := s.inCallback
		s.mu.Unlock()
		close(s.stop)
		if !inside {
			s.running.Lock()
			s.running.Unlock() //nolint:staticcheck // waits out an in-flight tick
		}
	})
}

// Done is closed when the subscription's goroutine has exited.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// begin admits a callback unless the subscription is cancelled. The caller
// holds running; from here on the callback counts as started.
func (s *Subscription) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return false
	}
	s.inCallback = true
	return true
}

func (s *Subscription) end() {
	s.mu.Lock()
	s.inCallback = false
	s.mu.Unlock()
}

// Every calls fn with the clock's time on every period until the
// subscription is cancelled or ctx is done. Calls never overlap.
func Every(ctx context.Context, clk clock.Clock, period time.Duration, fn func(time.Time), opts ...Option) *Subscription {
	o := options{logger: logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{})), scheme: SchemeFlower}
	for _, opt := range opts {
		opt(&o)
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	sub := &Subscription{stop: make(chan struct{}), done: make(chan struct{})}
	ticker := clk.NewTicker(period)
	log := o.logger.WithComponent("elapsed")

	run := func(now time.Time) {
		sub.running.Lock()
		defer sub.running.Unlock()
		if o.beforeCallback != nil {
			o.beforeCallback()
		}
		if !sub.begin() {
			return
		}
		defer sub.end()
		defer func() {
			if r := recover(); r != nil {
				log.Error("tick panicked", logpkg.F("panic", fmt.Sprint(r)), logpkg.Str("stack", string(debug.Stack())))
				if o.onPanic != nil {
					o.onPanic(r)
				}
			}
		}()
		fn(now)
	}

	if o.immediate {
		run(clk.Now())
	}

	go func() {
		defer close(sub.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				sub.Cancel()
				return
			case <-sub.stop:
				return
			case <-ticker.C():
				run(clk.Now())
			}
		}
	}()
	return sub
}

// Watch publishes a Snapshot for start immediately and then on every period.
func Watch(ctx context.Context, clk clock.Clock, start time.Time, period time.Duration, fn func(Snapshot), opts ...Option) *Subscription {
	o := options{scheme: SchemeFlower}
	for _, opt := range opts {
		opt(&o)
	}
	scheme := o.scheme
	opts = append(opts, WithImmediate())
	return Every(ctx, clk, period, func(now time.Time) {
		fn(Compute(start, now, scheme))
	}, opts...)
}
