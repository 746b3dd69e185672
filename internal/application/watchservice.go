package application

import (
	"context"
	"log/slog"
	"time"
)

// WatchCycle describes one completed workspace refresh.
type WatchCycle struct {
	At   time.Time
	Tier ActivityTier
	// Next is the delay until the following scheduled refresh.
	Next time.Duration
	Err  error
}

// WatchService refreshes a Workspace on a schedule. With a fixed interval
// every cycle waits that long; with a zero interval the wait follows the
// activity tier of the tower list.
type WatchService struct {
	workspace *Workspace
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time
	refreshCh chan chan error
}

// NewWatchService creates a WatchService. A zero interval selects adaptive
// scheduling. A nil logger uses slog.Default.
func NewWatchService(ws *Workspace, interval time.Duration, logger *slog.Logger) *WatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WatchService{
		workspace: ws,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
		refreshCh: make(chan chan error),
	}
}

// Run refreshes immediately, then on schedule, until ctx is canceled. It
// also serves RefreshNow requests, which restart the schedule. onRefresh,
// if not nil, is called after every cycle on the Run goroutine.
func (s *WatchService) Run(ctx context.Context, onRefresh func(WatchCycle)) {
	c := s.cycle(ctx, onRefresh)
	timer := time.NewTimer(c.Next)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("watch stopped")
			return
		case <-timer.C:
			c = s.cycle(ctx, onRefresh)
			timer.Reset(c.Next)
		case done := <-s.refreshCh:
			c = s.cycle(ctx, onRefresh)
			done <- c.Err
			timer.Reset(c.Next)
		}
	}
}

// RefreshNow asks a running Run loop for an immediate refresh and waits for
// its result. It blocks until Run serves the request or ctx is canceled.
func (s *WatchService) RefreshNow(ctx context.Context) error {
	done := make(chan error, 1)

	select {
	case s.refreshCh <- done:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *WatchService) cycle(ctx context.Context, onRefresh func(WatchCycle)) WatchCycle {
	start := s.now()
	err := s.workspace.Refresh(ctx)

	tier := classifyActivity(lastTowerChange(s.workspace.Towers.List()), start)
	next := s.interval
	if next <= 0 {
		next = tierInterval(tier)
	}

	c := WatchCycle{At: start, Tier: tier, Next: next, Err: err}
	if err != nil {
		s.logger.Error("watch refresh failed", "error", err)
	} else {
		s.logger.Debug("watch refresh complete",
			"towers", len(s.workspace.Towers.List()),
			"tier", tier.String(),
			"next", next,
			"duration", s.now().Sub(start),
		)
	}

	if onRefresh != nil {
		onRefresh(c)
	}
	return c
}
