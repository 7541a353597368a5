package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dinewise/config"
	"dinewise/services/rating"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeAggregateReconcile = "aggregate:reconcile"

type reconcilePayload struct {
	BusinessID string `json:"businessId,omitempty"`
	CustomerID string `json:"customerId,omitempty"`
}

func redisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
}

// NewReconcileTask builds the task that recomputes a business's aggregates
// and a customer's review count. Empty ids are skipped.
func NewReconcileTask(businessID, customerID string) (*asynq.Task, error) {
	if businessID == "" && customerID == "" {
		return nil, errors.New("reconcile task needs a business or customer id")
	}
	b, err := json.Marshal(reconcilePayload{BusinessID: businessID, CustomerID: customerID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAggregateReconcile, b, asynq.MaxRetry(5)), nil
}

// ReconcileQueue enqueues reconciliation tasks. It implements rating.ReconcileEnqueuer.
type ReconcileQueue struct {
	client *asynq.Client
	logger *zap.Logger
}

var _ rating.ReconcileEnqueuer = (*ReconcileQueue)(nil)

func NewReconcileQueue(cfg *config.Config, logger *zap.Logger) *ReconcileQueue {
	return &ReconcileQueue{client: asynq.NewClient(redisOpt(cfg)), logger: logger}
}

// EnqueueReconcile schedules a reconciliation. Identical requests within a
// minute collapse into one task.
func (q *ReconcileQueue) EnqueueReconcile(ctx context.Context, businessID, customerID string) error {
	task, err := NewReconcileTask(businessID, customerID)
	if err != nil {
		return err
	}
	info, err := q.client.EnqueueContext(ctx, task, asynq.Unique(time.Minute))
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			return nil
		}
		return fmt.Errorf("failed to enqueue reconciliation of business %s: %w", businessID, err)
	}
	q.logger.Info("reconciliation enqueued",
		zap.String("businessId", businessID),
		zap.String("customerId", customerID),
		zap.String("taskId", info.ID))
	return nil
}

func (q *ReconcileQueue) Close() error { return q.client.Close() }

// HandleReconcileTask decodes the payload and runs the reconciler.
func HandleReconcileTask(r *rating.Reconciler, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p reconcilePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil || (p.BusinessID == "" && p.CustomerID == "") {
			logger.Error("invalid reconcile payload", zap.ByteString("payload", task.Payload()), zap.Error(err))
			return fmt.Errorf("invalid reconcile payload: %w", asynq.SkipRetry)
		}
		if p.BusinessID != "" {
			if _, err := r.ReconcileBusiness(ctx, p.BusinessID); err != nil {
				logger.Error("reconciliation failed", zap.String("businessId", p.BusinessID), zap.Error(err))
				return err
			}
		}
		if p.CustomerID != "" {
			if _, err := r.ReconcileCustomer(ctx, p.CustomerID); err != nil {
				logger.Error("customer recount failed", zap.String("customerId", p.CustomerID), zap.Error(err))
				return err
			}
		}
		return nil
	}
}

// ReconcileWorker processes reconciliation tasks in the background.
type ReconcileWorker struct {
	srv       *asynq.Server
	mux       *asynq.ServeMux
	inspector *asynq.Inspector
	logger    *zap.Logger

	// ping checks the queue's Redis. asynq.Server.Start does not touch Redis,
	// so reachability is checked here before starting.
	ping    func() error
	backoff time.Duration
	done    chan struct{}
	once    sync.Once
}

func NewReconcileWorker(cfg *config.Config, r *rating.Reconciler, logger *zap.Logger) *ReconcileWorker {
	srv := asynq.NewServer(redisOpt(cfg), asynq.Config{
		Concurrency: 4,
		Queues:      map[string]int{"default": 1},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAggregateReconcile, HandleReconcileTask(r, logger))
	inspector := asynq.NewInspector(redisOpt(cfg))
	return &ReconcileWorker{
		srv:       srv,
		mux:       mux,
		inspector: inspector,
		logger:    logger,
		ping: func() error {
			_, err := inspector.Queues()
			return err
		},
		backoff: 2 * time.Second,
		done:    make(chan struct{}),
	}
}

const maxStartAttempts = 5

// awaitRedis pings until Redis answers, backing off between attempts. It
// gives up after maxStartAttempts or when the worker is shut down.
func (w *ReconcileWorker) awaitRedis() error {
	var err error
	for attempt := 1; attempt <= maxStartAttempts; attempt++ {
		if err = w.ping(); err == nil {
			return nil
		}
		w.logger.Warn("reconcile queue unreachable",
			zap.Int("attempt", attempt), zap.Int("maxAttempts", maxStartAttempts), zap.Error(err))
		select {
		case <-w.done:
			return fmt.Errorf("reconcile worker stopped while waiting for redis: %w", err)
		case <-time.After(time.Duration(attempt) * w.backoff):
		}
	}
	return fmt.Errorf("reconcile queue unreachable after %d attempts: %w", maxStartAttempts, err)
}

// Start waits for Redis in the background, then runs the worker.
func (w *ReconcileWorker) Start() {
	go func() {
		if err := w.awaitRedis(); err != nil {
			w.logger.Error("reconcile worker not started; failed aggregates will need a manual reconcile", zap.Error(err))
			return
		}
		if err := w.srv.Start(w.mux); err != nil {
			w.logger.Error("reconcile worker failed to start", zap.Error(err))
			return
		}
		w.logger.Info("reconcile worker started")
	}()
}

func (w *ReconcileWorker) Shutdown() {
	w.once.Do(func() { close(w.done) })
	w.srv.Shutdown()
	if w.inspector != nil {
		_ = w.inspector.Close()
	}
}
