package metrics

import "sync/atomic"

// Process-level counters shared by the engine and the api.

var (
	ordersProcessed int64
	ordersRejected  int64
	ordersCancelled int64
	tradesExecuted  int64
)

// Snapshot is a point-in-time copy of every counter.
type Snapshot struct {
	OrdersProcessed int64 `json:"orders_processed"`
	OrdersRejected  int64 `json:"orders_rejected"`
	OrdersCancelled int64 `json:"orders_cancelled"`
	TradesExecuted  int64 `json:"trades_executed"`
}

func IncOrdersProcessed() { atomic.AddInt64(&ordersProcessed, 1) }

func IncOrdersRejected() { atomic.AddInt64(&ordersRejected, 1) }

func IncOrdersCancelled() { atomic.AddInt64(&ordersCancelled, 1) }

// AddTradesExecuted increments the trade counter by n.
func AddTradesExecuted(n int64) { atomic.AddInt64(&tradesExecuted, n) }

func GetOrdersProcessed() int64 { return atomic.LoadInt64(&ordersProcessed) }

func Get() Snapshot {
	return Snapshot{
		OrdersProcessed: atomic.LoadInt64(&ordersProcessed),
		OrdersRejected:  atomic.LoadInt64(&ordersRejected),
		OrdersCancelled: atomic.LoadInt64(&ordersCancelled),
		TradesExecuted:  atomic.LoadInt64(&tradesExecuted),
	}
}
