package engine

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/2019UGEC100/matching-core/pkg/model"
	"github.com/2019UGEC100/matching-core/pkg/sequence"
	"github.com/2019UGEC100/matching-core/pkg/store"
)

// OrderBook is the matching core for a single instrument: both side books and
// the id index of resting orders. It is single-writer and performs no I/O;
// Engine adds the locking.
type OrderBook struct {
	Instrument string

	bids    *PriceLevelBook
	asks    *PriceLevelBook
	resting *store.Store

	now      func() time.Time
	tradeSeq uint64
}

// NewOrderBook creates an empty book for instrument.
func NewOrderBook(instrument string) *OrderBook {
	return &OrderBook{
		Instrument: instrument,
		bids:       newSideBook(model.Bid),
		asks:       newSideBook(model.Ask),
		resting:    store.NewStore(),
		now:        time.Now,
	}
}

// sides returns the book an order of side rests in and the one it matches against.
func (ob *OrderBook) sides(side model.Side) (own, opposite *PriceLevelBook) {
	switch side {
	case model.Bid:
		return ob.bids, ob.asks
	case model.Ask:
		return ob.asks, ob.bids
	}
	return nil, nil
}

func (ob *OrderBook) book(side model.Side) *PriceLevelBook {
	own, _ := ob.sides(side)
	return own
}

// crossable reports whether incoming may trade against resting right now.
// Market orders cross anything.
func crossable(incoming, resting *model.Order) bool {
	switch incoming.Type() {
	case model.Market:
		return true
	case model.Limit, model.Stop:
		p := limitPrice(incoming)
		rp := limitPrice(resting)
		switch incoming.Side() {
		case model.Ask:
			return p.LessThanOrEqual(rp)
		case model.Bid:
			return p.GreaterThanOrEqual(rp)
		}
	}
	return false
}

// admit rejects orders the engine may not process.
func (ob *OrderBook) admit(o *model.Order) error {
	if o == nil {
		return &model.ValidationError{Field: "order", Message: "order is nil"}
	}
	if o.Status() != model.StatusNew {
		return &model.ValidationError{Field: "status", Message: fmt.Sprintf("order %s is %s, only new orders can be submitted", o.ID(), o.Status())}
	}
	if ob.resting.Has(o.ID()) {
		return &model.ValidationError{Field: "id", Message: fmt.Sprintf("order %s is already resting", o.ID())}
	}
	switch o.Type() {
	case model.Limit, model.Market:
	case model.Stop:
		if !o.Triggered() {
			return &model.ValidationError{Field: "type", Message: fmt.Sprintf("stop order %s has not been triggered", o.ID())}
		}
	default:
		return &model.ValidationError{Field: "type", Message: fmt.Sprintf("unsupported order type %s", o.Type())}
	}
	switch o.TimeInForce() {
	case model.GTC, model.IOC, model.FOK:
	default:
		return &model.ValidationError{Field: "tif", Message: fmt.Sprintf("unsupported time in force %s", o.TimeInForce())}
	}
	if own, _ := ob.sides(o.Side()); own == nil {
		return &model.ValidationError{Field: "side", Message: fmt.Sprintf("unsupported side %s", o.Side())}
	}
	return nil
}

// Submit matches o against the opposite side and applies its time in force
// to whatever is left. The returned trades are in execution order.
//
// A FOK order that cannot be filled completely is killed before anything
// executes: no trades, no error, and the order stays NEW.
func (ob *OrderBook) Submit(o *model.Order) ([]model.Trade, error) {
	if err := ob.admit(o); err != nil {
		return nil, err
	}
	own, opposite := ob.sides(o.Side())

	if o.TimeInForce() == model.FOK && !fillable(o, opposite) {
		return []model.Trade{}, nil
	}

	trades, err := ob.match(o, opposite)
	if err != nil {
		return trades, err
	}

	if !o.Remaining().IsPositive() {
		return trades, nil
	}

	switch o.TimeInForce() {
	case model.GTC:
		switch o.Type() {
		case model.Limit, model.Stop:
			if err := own.Insert(o); err != nil {
				return trades, err
			}
			ob.resting.Add(o)
		case model.Market:
			// market orders never rest
			o.Cancel()
		}
	case model.IOC:
		// The remainder is dropped; fills stand and the order is not cancelled.
	case model.FOK:
		return trades, errors.Wrapf(model.ErrInvariant, "fill-or-kill order %s left %s unfilled", o.ID(), o.Remaining())
	}
	return trades, nil
}

// fillable sums crossable liquidity on the opposite side, best first, and
// reports whether it covers o in full.
func fillable(o *model.Order, opposite *PriceLevelBook) bool {
	need := o.Remaining()
	available := decimal.Zero
	opposite.Walk(func(r *model.Order) bool {
		if !crossable(o, r) {
			return false
		}
		available = available.Add(r.Remaining())
		return available.LessThan(need)
	})
	return available.GreaterThanOrEqual(need)
}

// match runs the crossing loop. Each iteration checks both executions before
// applying either, so a failure leaves both orders and the book untouched.
func (ob *OrderBook) match(o *model.Order, opposite *PriceLevelBook) ([]model.Trade, error) {
	trades := make([]model.Trade, 0)
	for o.Remaining().IsPositive() {
		resting := opposite.PeekBest()
		if resting == nil || !crossable(o, resting) {
			break
		}

		volume := decimal.Min(o.Remaining(), resting.Remaining())
		price := limitPrice(resting)

		if err := o.CheckExecute(volume); err != nil {
			return trades, errors.WithStack(err)
		}
		if err := resting.CheckExecute(volume); err != nil {
			return trades, errors.WithStack(err)
		}
		if err := o.Execute(volume, price); err != nil {
			return trades, errors.WithStack(err)
		}
		if err := resting.Execute(volume, price); err != nil {
			return trades, errors.WithStack(err)
		}

		ob.tradeSeq++
		trades = append(trades, model.Trade{
			ID:        sequence.TradeID(),
			Seq:       ob.tradeSeq,
			Price:     price,
			Volume:    volume,
			MakerID:   resting.ID(),
			TakerID:   o.ID(),
			TakerSide: o.Side(),
			Timestamp: ob.now(),
		})

		if resting.Remaining().IsZero() {
			if _, err := opposite.RemoveBest(); err != nil {
				return trades, errors.Wrapf(err, "removing filled maker %s", resting.ID())
			}
			if err := ob.resting.Remove(resting.ID()); err != nil {
				return trades, errors.Wrapf(model.ErrInvariant, "filled maker %s missing from index", resting.ID())
			}
		}
	}
	return trades, nil
}

// Cancel removes a resting order and marks it cancelled. It reports false when
// no resting order has that id.
func (ob *OrderBook) Cancel(id string) bool {
	o, err := ob.resting.Get(id)
	if err != nil {
		return false
	}
	_ = ob.resting.Remove(id)
	ob.book(o.Side()).Remove(o)
	o.Cancel()
	return true
}

// Order returns the resting order with id, if any.
func (ob *OrderBook) Order(id string) (*model.Order, bool) {
	o, err := ob.resting.Get(id)
	if err != nil {
		return nil, false
	}
	return o, true
}

func (ob *OrderBook) BestBid() *model.Order { return ob.bids.PeekBest() }

func (ob *OrderBook) BestAsk() *model.Order { return ob.asks.PeekBest() }

// DepthAt lists the orders resting on side at exactly price, FIFO.
func (ob *OrderBook) DepthAt(side model.Side, price decimal.Decimal) []*model.Order {
	b := ob.book(side)
	if b == nil {
		return nil
	}
	return b.FindByPrice(price)
}

// Len is the number of resting orders on both sides.
func (ob *OrderBook) Len() int { return ob.bids.Len() + ob.asks.Len() }

// Check verifies both side books and the id index.
func (ob *OrderBook) Check() error {
	if err := ob.bids.Check(); err != nil {
		return err
	}
	if err := ob.asks.Check(); err != nil {
		return err
	}
	if n := ob.resting.Len(); n != ob.Len() {
		return errors.Wrapf(model.ErrInvariant, "index holds %d orders, books hold %d", n, ob.Len())
	}
	return nil
}
