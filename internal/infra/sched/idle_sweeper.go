// Package sched holds long-running background loops started by the
// server binary.
package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ai-chat-relay/internal/infra/metrics"
	"ai-chat-relay/internal/session"
)

// IdleSweeper periodically evicts sessions that have seen no activity
// for longer than the configured idle TTL, so abandoned logins do not
// accumulate for the lifetime of the process.
type IdleSweeper struct {
	interval time.Duration
	maxIdle  time.Duration
	sessions *session.Manager
	log      *zerolog.Logger
}

func NewIdleSweeper(interval, maxIdle time.Duration, sessions *session.Manager, logger *zerolog.Logger) *IdleSweeper {
	swLog := logger.With().Str("component", "IdleSweeper").Logger()
	return &IdleSweeper{
		interval: interval,
		maxIdle:  maxIdle,
		sessions: sessions,
		log:      &swLog,
	}
}

func (w *IdleSweeper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("max_idle", w.maxIdle).Msg("Starting idle sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping idle sweeper")
			return ctx.Err()
		case <-ticker.C:
			n := w.sessions.EvictIdle(w.maxIdle)
			metrics.SetActiveSessions(w.sessions.Count())
			if n > 0 {
				w.log.Info().Int("count", n).Msg("idle sessions evicted")
			}
		}
	}
}
