package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueImpresion = "jobs:impresion"
	QueueEmail     = "jobs:email"

	JobImpresion   = "impresion"
	JobArqueoEmail = "arqueo_email"
)

// Job is the generic envelope for all async tasks. Attempts counts failed
// runs so far.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler runs one job. A returned error schedules a retry.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// ── Dispatcher ───────────────────────────────────────────────────────────────

// Dispatcher enqueues async jobs into Redis lists; the pool pops them with
// BRPOP.
type Dispatcher struct {
	rdb     *redis.Client
	emailTo string
}

func NewDispatcher(rdb *redis.Client, arqueoEmailTo string) *Dispatcher {
	return &Dispatcher{rdb: rdb, emailTo: arqueoEmailTo}
}

// EnqueueImpresion keeps a receipt that the bridge could not print.
func (d *Dispatcher) EnqueueImpresion(ctx context.Context, texto string) error {
	return d.enqueue(ctx, QueueImpresion, JobImpresion, ImpresionPayload{TicketText: texto})
}

// EnqueueArqueoEmail asks for the close report to be mailed as PDF. It is a
// no-op when no recipient is configured.
func (d *Dispatcher) EnqueueArqueoEmail(ctx context.Context, empresa string, a dto.ArqueoResponse) error {
	if d.emailTo == "" {
		return nil
	}
	return d.enqueue(ctx, QueueEmail, JobArqueoEmail, ArqueoEmailPayload{To: d.emailTo, Empresa: empresa, Arqueo: a})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return pushJob(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func pushJob(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// ── Pool ─────────────────────────────────────────────────────────────────────

type PoolConfig struct {
	Workers     int
	MaxAttempts int
	// BaseBackoff is the wait before the first retry; it doubles per attempt
	// up to MaxBackoff.
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

type Pool struct {
	rdb      *redis.Client
	cfg      PoolConfig
	handlers map[string]Handler
	queues   []string
}

func NewPool(rdb *redis.Client, cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	return &Pool{rdb: rdb, cfg: cfg, handlers: map[string]Handler{}}
}

// Handle registers h for jobs of jobType arriving on queue.
func (p *Pool) Handle(queue, jobType string, h Handler) {
	p.handlers[jobType] = h
	for _, q := range p.queues {
		if q == queue {
			return
		}
	}
	p.queues = append(p.queues, queue)
}

// Start launches the workers. Each goroutine blocks on BRPOP, zero CPU when idle.
func (p *Pool) Start(ctx context.Context) {
	if len(p.queues) == 0 {
		log.Warn().Msg("worker pool: no handlers registered")
		return
	}
	for i := 0; i < p.cfg.Workers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Int("workers", p.cfg.Workers).Strs("queues", p.queues).Msg("worker pool started")
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queues...).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Error().Err(err).Int("worker", id).Msg("worker: brpop failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("worker: failed to unmarshal job")
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, "no handler", job.Attempts)
		return
	}

	err := h.Process(ctx, job.Payload)
	if err == nil {
		return
	}
	job.Attempts++
	l := log.Warn().Err(err).Str("queue", queue).Str("type", job.Type).Int("attempts", job.Attempts)
	if job.Attempts >= p.cfg.MaxAttempts {
		l.Msg("worker: job failed, giving up")
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}
	l.Msg("worker: job failed, will retry")

	select {
	case <-time.After(Backoff(p.cfg.BaseBackoff, p.cfg.MaxBackoff, job.Attempts)):
	case <-ctx.Done():
	}
	// Requeue even on shutdown so the job is not lost.
	if perr := pushJob(context.WithoutCancel(ctx), p.rdb, queue, job); perr != nil {
		log.Error().Err(perr).Str("queue", queue).Msg("worker: requeue failed")
	}
}

// Backoff is base * 2^(attempt-1), capped at max.
func Backoff(base, max time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}
