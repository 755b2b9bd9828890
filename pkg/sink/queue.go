package sink

import (
	"context"
	"sync"
	"time"

	"github.com/2019UGEC100/matching-core/pkg/logger"
	"github.com/2019UGEC100/matching-core/pkg/model"
)

const DefaultFlushInterval = 250 * time.Millisecond

// Queue buffers trades from the engine and publishes them from its own
// goroutine. Emit only appends and signals, so it is safe to call with the
// engine lock held. The buffer is unbounded.
type Queue struct {
	pub      Publisher
	log      *logger.Logger
	interval time.Duration

	mu      sync.Mutex
	pending []model.Trade
	wake    chan struct{}
}

func NewQueue(pub Publisher, log *logger.Logger, interval time.Duration) *Queue {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Queue{
		pub:      pub,
		log:      log,
		interval: interval,
		wake:     make(chan struct{}, 1),
	}
}

// Emit implements the engine's trade sink.
func (q *Queue) Emit(trades []model.Trade) {
	if len(trades) == 0 {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, trades...)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Pending is the number of trades not yet published.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Run publishes on every Emit and on each tick until ctx is done. Failed
// batches stay queued for the next attempt.
func (q *Queue) Run(ctx context.Context) {
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		case <-ticker.C:
		}
		if err := q.Flush(ctx); err != nil {
			q.log.Error(err, logger.NewField("pending", q.Pending()))
		}
	}
}

// Flush publishes everything queued so far in one batch.
func (q *Queue) Flush(ctx context.Context) error {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	if err := q.pub.Publish(ctx, batch); err != nil {
		q.mu.Lock()
		q.pending = append(batch, q.pending...)
		q.mu.Unlock()
		return err
	}
	return nil
}
