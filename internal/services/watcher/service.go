package watchersvc

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/GooseXRL8/flowerlove/internal/activity"
	"github.com/GooseXRL8/flowerlove/internal/elapsed"
	"github.com/GooseXRL8/flowerlove/internal/runtime"
	"github.com/GooseXRL8/flowerlove/internal/store"
	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

// Actor is recorded on entries the watcher appends.
const Actor = "system"

type Service struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
	// OnPanic observes recovered scan panics; used for metrics.
	OnPanic func(interface{})
}

func New(rt *runtime.Runtime) *Service { return NewWithLogger(rt, rt.Logger()) }

func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &Service{rt: rt, logger: logger.WithComponent("watcher")}
}

// Start scans immediately and then every milestone scan interval.
func (s *Service) Start(ctx context.Context) *elapsed.Subscription {
	opts := []elapsed.Option{elapsed.WithLogger(s.logger), elapsed.WithImmediate()}
	if s.OnPanic != nil {
		opts = append(opts, elapsed.WithPanicHook(s.OnPanic))
	}
	period := s.rt.Config().Counter.MilestoneScanInterval.Duration
	s.logger.Info("milestone watcher started", logpkg.Dur("interval", period))
	return elapsed.Every(ctx, s.rt.Clock(), period, func(now time.Time) {
		if _, err := s.Scan(ctx, now); err != nil && ctx.Err() == nil {
			s.logger.Error("milestone scan failed", logpkg.Err(err))
		}
	}, opts...)
}

// Scan compares each profile against its last mark and returns how many
// activity entries were appended. The first sighting of a profile, or of a
// changed start date, only records a baseline.
func (s *Service) Scan(ctx context.Context, now time.Time) (int, error) {
	profiles, err := s.rt.Store().ListProfiles()
	if err != nil {
		return 0, err
	}
	scheme := s.rt.Config().Scheme()
	appended := 0
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return appended, err
		}
		n, err := s.scanProfile(ctx, p, elapsed.Compute(p.StartDate, now, scheme))
		appended += n
		if err != nil {
			return appended, err
		}
	}
	return appended, nil
}

func (s *Service) scanProfile(ctx context.Context, p store.Profile, snap elapsed.Snapshot) (int, error) {
	st := s.rt.Store()
	mark, err := st.GetMark(p.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}
	baseline := err != nil || !mark.StartDate.Equal(p.StartDate)

	var entries []activity.Entry
	if !baseline {
		if int(snap.Stage) != mark.Stage {
			entries = append(entries, activity.Entry{
				Kind: activity.KindStageChanged,
				Detail: map[string]string{
					"from":        strconv.Itoa(mark.Stage),
					"to":          strconv.Itoa(int(snap.Stage)),
					"description": snap.Stage.Description(),
				},
			})
		}
		if snap.Milestone != mark.Milestone && snap.Milestone != elapsed.DefaultMilestone {
			entries = append(entries, activity.Entry{
				Kind:   activity.KindMilestoneReached,
				Detail: map[string]string{"milestone": snap.Milestone, "text": snap.Text},
			})
		}
	}
	if !baseline && len(entries) == 0 && snap.Milestone == mark.Milestone {
		return 0, nil
	}
	for i := range entries {
		entries[i].At = snap.Now
		entries[i].Actor = Actor
	}
	if _, err := s.rt.Activity().Append(ctx, p.ID, entries...); err != nil {
		return 0, err
	}
	if len(entries) > 0 {
		s.logger.Info("profile progressed",
			logpkg.Str(logpkg.ProfileIDKey, p.ID),
			logpkg.Int("stage", int(snap.Stage)),
			logpkg.Str("milestone", snap.Milestone))
	}
	err = st.PutMark(ctx, store.Mark{
		ProfileID: p.ID,
		Stage:     int(snap.Stage),
		Milestone: snap.Milestone,
		StartDate: p.StartDate,
		SeenAt:    snap.Now,
	})
	return len(entries), err
}
