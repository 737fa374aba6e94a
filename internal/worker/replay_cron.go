package worker

// replay_cron.go
// Background goroutine that, while the print bridge breaker is not open,
// moves receipts parked in the impresion DLQ back onto the live queue, so
// tickets printed while the printer PC was off come out once it is back.

import (
	"context"
	"time"

	"github.com/KilOS-pos/pos-carniceria/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	replayTickInterval = 30 * time.Second
	replayBatchSize    = 10
)

type ReplayCronConfig struct {
	RDB      *redis.Client
	CB       *infra.CircuitBreaker
	Queue    string
	Interval time.Duration
}

func StartReplayCron(ctx context.Context, cfg ReplayCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = replayTickInterval
	}
	if cfg.Queue == "" {
		cfg.Queue = QueueImpresion
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()
		log.Info().Str("queue", cfg.Queue).Msg("replay_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("replay_cron: shutting down")
				return
			case <-ticker.C:
				replayOnce(ctx, cfg)
			}
		}
	}()
}

func replayOnce(ctx context.Context, cfg ReplayCronConfig) {
	// Don't feed a bridge we already know is down
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("replay_cron: circuit breaker is open, skipping tick")
		return
	}
	n, err := ReplayDLQ(ctx, cfg.RDB, cfg.Queue, replayBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("replay_cron: replay failed")
		return
	}
	if n > 0 {
		log.Info().Int("count", n).Str("queue", cfg.Queue).Msg("replay_cron: jobs moved back from DLQ")
	}
}
