package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/time/rate"

	"github.com/vitohq/docintel/internal/config"
)

// Server is the worker pool: a bounded number of concurrent executors
// pulling jobs off the queue, with a token-bucket ceiling on job starts.
// Retry counting and backoff belong to the queue, not to the handlers it
// runs.
type Server struct {
	srv      *asynq.Server
	registry *HandlersRegistry
	limiter  *rate.Limiter
}

func NewServer(redisCfg config.RedisConfig, workerCfg config.WorkerConfig) *Server {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		},
		asynq.Config{
			Concurrency: workerCfg.Concurrency,
			Queues: map[string]int{
				QueueName: 1,
			},
			RetryDelayFunc: exponentialBackoff(workerCfg.RetryBaseDelay),
			Logger:         slogAdapter{},
		},
	)

	return &Server{
		srv:      srv,
		registry: NewHandlersRegistry(),
		limiter:  rate.NewLimiter(rate.Limit(workerCfg.MaxJobsPerSec), 1),
	}
}

func (s *Server) Register(taskType string, handler asynq.Handler) {
	s.registry.Register(taskType, handler)
}

// Run blocks until Shutdown. Every handler invocation first waits on the
// start-rate limiter; executors that are mid-job are unaffected.
func (s *Server) Run() error {
	s.registry.Use(s.rateLimit)
	return s.srv.Run(s.registry.Mux())
}

// Shutdown stops intake of new jobs and lets in-flight executions finish.
// There is no mid-pipeline cancellation of an individual job.
func (s *Server) Shutdown() {
	s.srv.Shutdown()
}

func (s *Server) rateLimit(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		return next.ProcessTask(ctx, t)
	})
}

// exponentialBackoff yields base, 2*base, 4*base, ... per retry.
func exponentialBackoff(base time.Duration) asynq.RetryDelayFunc {
	return func(n int, _ error, _ *asynq.Task) time.Duration {
		if n < 1 {
			n = 1
		}
		return base << uint(n-1)
	}
}

// slogAdapter routes asynq's internal logging through slog.
type slogAdapter struct{}

func (slogAdapter) Debug(args ...interface{}) { slog.Debug("asynq", "msg", args) }
func (slogAdapter) Info(args ...interface{})  { slog.Info("asynq", "msg", args) }
func (slogAdapter) Warn(args ...interface{})  { slog.Warn("asynq", "msg", args) }
func (slogAdapter) Error(args ...interface{}) { slog.Error("asynq", "msg", args) }
func (slogAdapter) Fatal(args ...interface{}) { slog.Error("asynq", "msg", args) }
