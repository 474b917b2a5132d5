// Package scheduler runs the periodic background refresh: a snapshot log of
// every character and a warm full-population discovery pass. Both jobs are
// read-only; neither is required for correctness.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"npcforge/internal/character"
	"npcforge/internal/discovery"
	"npcforge/pkg/logger"
)

// Scheduler owns the two fixed-interval background jobs. Jobs start on
// Run and stop when the context is cancelled; a failed run is logged and
// the ticker keeps going.
type Scheduler struct {
	store             *character.Store
	engine            *discovery.Engine
	snapshotInterval  time.Duration
	discoveryInterval time.Duration
	logger            *zap.Logger
}

// New creates a scheduler over store and engine
func New(store *character.Store, engine *discovery.Engine, snapshotInterval, discoveryInterval time.Duration) *Scheduler {
	return &Scheduler{
		store:             store,
		engine:            engine,
		snapshotInterval:  snapshotInterval,
		discoveryInterval: discoveryInterval,
		logger:            logger.Get(),
	}
}

// Run blocks until ctx is cancelled, driving both job loops
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.loop(ctx, s.snapshotInterval, s.SnapshotOnce)
	})
	g.Go(func() error {
		return s.loop(ctx, s.discoveryInterval, s.DiscoverOnce)
	})

	s.logger.Info("Background refresh started",
		zap.Duration("snapshot_interval", s.snapshotInterval),
		zap.Duration("discovery_interval", s.discoveryInterval),
	)
	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, job func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			job()
		}
	}
}

// SnapshotOnce logs a summary of every character's metadata, relationships
// and conversation history
func (s *Scheduler) SnapshotOnce() {
	chars := s.store.Snapshot()
	for _, c := range chars {
		s.logger.Info("Character snapshot",
			zap.String("id", c.ID),
			zap.String("name", c.Name),
			zap.String("location", c.Location),
			zap.String("faction", c.Faction),
			zap.String("state", c.CurrentState),
			zap.Int("relationships", len(c.Relationships)),
			zap.Int("conversations", len(c.Conversations)),
			zap.String("player_status", c.Player.Status),
		)
	}
	s.logger.Info("Store snapshot complete", zap.Int("characters", len(chars)))
}

// DiscoverOnce runs a full population discovery pass and logs the totals
func (s *Scheduler) DiscoverOnce() {
	pop := s.engine.DiscoverAll()
	s.logger.Info("Population discovery complete",
		zap.Int("characters", pop.Totals.Characters),
		zap.Int("direct", pop.Totals.Direct),
		zap.Int("mutual", pop.Totals.Mutual),
		zap.Int("conflicting", pop.Totals.Conflicting),
		zap.Int("indirect_pairs", pop.Totals.IndirectPairs),
		zap.Int("future", pop.Totals.Future),
		zap.Int("failures", pop.Totals.Failures),
	)
}
