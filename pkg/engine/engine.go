package engine

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/2019UGEC100/matching-core/pkg/logger"
	"github.com/2019UGEC100/matching-core/pkg/metrics"
	"github.com/2019UGEC100/matching-core/pkg/model"
)

// TradeSink receives executed trades in emission order. Emit is called with
// the engine lock held and must not block.
type TradeSink interface {
	Emit(trades []model.Trade)
}

type nopSink struct{}

func (nopSink) Emit([]model.Trade) {}

// Option configures an Engine.
type Option func(*Engine)

// WithSink sets where trades are handed off. Defaults to discarding them.
func WithSink(s TradeSink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithLogger sets the engine logger. Defaults to a no-op logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithInvariantChecks verifies both books after every mutation.
func WithInvariantChecks(on bool) Option {
	return func(e *Engine) { e.checkInvariants = on }
}

// WithClock sets the time source stamped on trades.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.book.now = now
		}
	}
}

// Engine serializes every operation on one instrument's OrderBook. All
// methods are safe for concurrent use; submits and cancels run one at a time.
type Engine struct {
	mu   sync.Mutex
	book *OrderBook

	sink            TradeSink
	log             *logger.Logger
	checkInvariants bool
}

func New(instrument string, opts ...Option) *Engine {
	e := &Engine{
		book: NewOrderBook(instrument),
		sink: nopSink{},
		log:  logger.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithFields(logger.NewField("instrument", instrument))
	return e
}

func (e *Engine) Instrument() string { return e.book.Instrument }

// Submit matches o and rests or discards the remainder by its time in force.
// Validation failures come back as *model.ValidationError with the book
// untouched. Any other error is an invariant violation: it is logged, the
// trades already produced are still handed to the sink, and the call aborts.
func (e *Engine) Submit(o *model.Order) ([]model.Trade, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	trades, err := e.book.Submit(o)
	if err != nil {
		if model.IsValidation(err) {
			metrics.IncOrdersRejected()
			fields := []logger.Field{logger.NewField("reason", err.Error())}
			if o != nil {
				fields = append(fields, logger.NewField("order_id", o.ID()))
			}
			e.log.Warn("order rejected", fields...)
			return nil, err
		}
		e.log.Error(err, logger.NewField("order_id", o.ID()))
		e.emit(trades)
		return trades, err
	}

	if e.checkInvariants {
		if err := e.book.Check(); err != nil {
			e.log.Error(err, logger.NewField("order_id", o.ID()))
			e.emit(trades)
			return trades, err
		}
	}

	metrics.IncOrdersProcessed()
	if o.TimeInForce() == model.FOK && len(trades) == 0 {
		e.log.Debug("fill-or-kill order killed",
			logger.NewField("order_id", o.ID()),
			logger.NewField("volume", o.Volume().String()))
	}
	for _, t := range trades {
		e.log.Debug("trade",
			logger.NewField("trade_id", t.ID),
			logger.NewField("price", t.Price.String()),
			logger.NewField("volume", t.Volume.String()))
	}
	e.emit(trades)
	return trades, nil
}

func (e *Engine) emit(trades []model.Trade) {
	if len(trades) == 0 {
		return
	}
	metrics.AddTradesExecuted(int64(len(trades)))
	e.sink.Emit(trades)
}

// Cancel removes a resting order. It reports false when nothing with that id
// is resting, including orders already filled or cancelled.
func (e *Engine) Cancel(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.book.Cancel(id) {
		return false
	}
	metrics.IncOrdersCancelled()
	e.log.Debug("order cancelled", logger.NewField("order_id", id))

	if e.checkInvariants {
		if err := e.book.Check(); err != nil {
			e.log.Error(err, logger.NewField("order_id", id))
		}
	}
	return true
}

// Order looks up a resting order by id.
func (e *Engine) Order(id string) (*model.Order, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Order(id)
}

func (e *Engine) BestBid() *model.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.BestBid()
}

func (e *Engine) BestAsk() *model.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.BestAsk()
}

// DepthAt lists the orders resting on side at exactly price, FIFO. For
// inspection only.
func (e *Engine) DepthAt(side model.Side, price decimal.Decimal) []*model.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.DepthAt(side, price)
}

func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Len()
}

func (e *Engine) Snapshot(depth int) BookSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Snapshot(depth)
}
