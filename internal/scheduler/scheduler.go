// Package scheduler runs the periodic store health probe.
package scheduler

import (
	"context"
	"sync"
	"time"

	"relay/backend/internal/logger"
	"relay/backend/internal/metrics"
)

// Pinger is the store check run on every tick.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Scheduler struct {
	pinger     Pinger
	interval   time.Duration
	ctx        context.Context
	cancelFunc context.CancelFunc // cancels the probe in flight on Stop
	stopOnce   sync.Once
	wg         sync.WaitGroup
	mu         sync.Mutex // protects up
	up         bool
}

func New(pinger Pinger, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		pinger:     pinger,
		interval:   interval,
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	logger.Info("health probe started", "module", "scheduler", "action", "probe", "resource", "store", "result", "ok", "interval_ms", s.interval.Milliseconds())
}

// Stop cancels the probe in flight and waits for the loop to exit. It is safe to call twice.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cancelFunc()
		s.wg.Wait()
		logger.Info("health probe stopped", "module", "scheduler", "action", "probe", "resource", "store", "result", "ok")
	})
}

// Up reports the result of the last probe.
func (s *Scheduler) Up() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.up
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	// Probe immediately on start
	s.probe()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.probe()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) probe() {
	// A probe never outlives its interval.
	ctx, cancel := context.WithTimeout(s.ctx, s.interval)
	defer cancel()

	err := s.pinger.Ping(ctx)
	if err != nil && s.ctx.Err() != nil {
		logger.Debug("health probe cancelled", "module", "scheduler", "action", "probe", "resource", "store", "result", "cancelled")
		return
	}

	up := err == nil
	s.mu.Lock()
	changed := s.up != up
	s.up = up
	s.mu.Unlock()
	metrics.SetStoreUp(up)

	switch {
	case !up && changed:
		logger.Error("store unreachable", "module", "scheduler", "action", "probe", "resource", "store", "result", "failed", "error", err)
	case up && changed:
		logger.Info("store reachable", "module", "scheduler", "action", "probe", "resource", "store", "result", "ok")
	}
}
