package engine

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/2019UGEC100/matching-core/pkg/model"
)

const defaultSnapshotDepth = 10

// Level is one aggregated price level.
type Level struct {
	Price  decimal.Decimal `json:"price"`
	Volume decimal.Decimal `json:"volume"`
	Orders int             `json:"orders"`
}

// BookSnapshot is a read-only, aggregated picture of the top of the book.
type BookSnapshot struct {
	Instrument string  `json:"instrument"`
	Bids       []Level `json:"bids"`
	Asks       []Level `json:"asks"`
}

// Snapshot aggregates up to depth price levels per side, best first.
// A non-positive depth means the default of 10.
func (ob *OrderBook) Snapshot(depth int) BookSnapshot {
	if depth <= 0 {
		depth = defaultSnapshotDepth
	}
	return BookSnapshot{
		Instrument: ob.Instrument,
		Bids:       aggregate(ob.bids, depth),
		Asks:       aggregate(ob.asks, depth),
	}
}

// aggregate walks the book best first and folds consecutive orders at the
// same price into one level.
func aggregate(b *PriceLevelBook, depth int) []Level {
	out := make([]Level, 0, depth)
	var group []*model.Order

	flush := func() {
		if len(group) == 0 {
			return
		}
		out = append(out, Level{
			Price: limitPrice(group[0]),
			Volume: lo.Reduce(group, func(acc decimal.Decimal, o *model.Order, _ int) decimal.Decimal {
				return acc.Add(o.Remaining())
			}, decimal.Zero),
			Orders: len(group),
		})
		group = group[:0]
	}

	b.Walk(func(o *model.Order) bool {
		if len(group) > 0 && !limitPrice(group[0]).Equal(limitPrice(o)) {
			flush()
			if len(out) >= depth {
				return false
			}
		}
		group = append(group, o)
		return true
	})
	if len(out) < depth {
		flush()
	}
	return out
}
