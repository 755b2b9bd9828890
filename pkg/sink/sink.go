// Package sink delivers executed trades downstream of the engine.
//
// The engine hands trades to a Queue, which never blocks the matching path.
// A background loop drains the queue into a Publisher: Kafka, the log, or
// memory for tests.
package sink

import (
	"context"
	"sync"

	"github.com/2019UGEC100/matching-core/pkg/model"
)

// Publisher writes a batch of trades somewhere durable or visible. A failed
// batch is retried whole.
type Publisher interface {
	Publish(ctx context.Context, trades []model.Trade) error
	Close() error
}

// Memory keeps every trade it receives. It works both as an engine sink and
// as a Publisher.
type Memory struct {
	mu     sync.Mutex
	trades []model.Trade
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Emit(trades []model.Trade) {
	m.mu.Lock()
	m.trades = append(m.trades, trades...)
	m.mu.Unlock()
}

func (m *Memory) Publish(_ context.Context, trades []model.Trade) error {
	m.Emit(trades)
	return nil
}

func (m *Memory) Close() error { return nil }

// Trades returns a copy of everything received so far, in order.
func (m *Memory) Trades() []model.Trade {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Trade, len(m.trades))
	copy(out, m.trades)
	return out
}

// Nop drops every batch.
type Nop struct{}

func (Nop) Publish(context.Context, []model.Trade) error { return nil }

func (Nop) Close() error { return nil }
