package model

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Stamp is the identity handed out for every new order: a unique id and an
// arrival position. At orders arrivals; Seq breaks ties between equal At.
type Stamp struct {
	ID  string
	At  time.Time
	Seq uint64
}

// IDSource supplies a fresh Stamp per constructed order. Implementations must
// never reuse an ID and must hand out strictly increasing Seq values.
type IDSource interface {
	Next() Stamp
}

// Request carries the caller's order intent before it becomes an Order.
// A zero Type defaults to Limit and a zero TIF to GTC.
type Request struct {
	Side      Side                `json:"side"`
	Type      OrderType           `json:"type,omitempty"`
	TIF       TimeInForce         `json:"tif,omitempty"`
	Price     decimal.NullDecimal `json:"price"`
	StopPrice decimal.NullDecimal `json:"stop_price"`
	Volume    decimal.Decimal     `json:"volume"`
}

// Order is the mutable unit of trading intent. Its status is derived from the
// executed volume and the cancellation flag and is never stored on its own.
//
// An Order is not safe for concurrent use; the engine owning it serializes
// every mutation.
type Order struct {
	id   string
	side Side
	typ  OrderType
	tif  TimeInForce

	price     decimal.NullDecimal
	stopPrice decimal.NullDecimal

	volume    decimal.Decimal
	executed  decimal.Decimal
	lastPrice decimal.NullDecimal

	cancelled bool
	triggered bool

	at  time.Time
	seq uint64
}

// NewOrder validates req and builds a NEW order stamped by src.
// Market orders drop any supplied price.
func NewOrder(req Request, src IDSource) (*Order, error) {
	if src == nil {
		return nil, errors.New("model: nil id source")
	}
	if !req.Side.Valid() {
		return nil, &ValidationError{Field: "side", Message: fmt.Sprintf("invalid side %s: must be bid or ask", req.Side)}
	}
	if req.Type == 0 {
		req.Type = Limit
	}
	if !req.Type.Valid() {
		return nil, &ValidationError{Field: "type", Message: fmt.Sprintf("invalid type %s", req.Type)}
	}
	if req.TIF == 0 {
		req.TIF = GTC
	}
	if !req.TIF.Valid() {
		return nil, &ValidationError{Field: "tif", Message: fmt.Sprintf("invalid time in force %s", req.TIF)}
	}

	switch req.Type {
	case Market:
		req.Price = decimal.NullDecimal{}
	case Limit, Stop:
		if !req.Price.Valid {
			return nil, &ValidationError{Field: "price", Message: fmt.Sprintf("price required for %s order", req.Type)}
		}
		if !req.Price.Decimal.IsPositive() {
			return nil, &ValidationError{Field: "price", Message: fmt.Sprintf("price must be positive, got %s", req.Price.Decimal)}
		}
	}

	if req.Type == Stop {
		if !req.StopPrice.Valid {
			return nil, &ValidationError{Field: "stop_price", Message: "stop price required for stop order"}
		}
		if !req.StopPrice.Decimal.IsPositive() {
			return nil, &ValidationError{Field: "stop_price", Message: fmt.Sprintf("stop price must be positive, got %s", req.StopPrice.Decimal)}
		}
	}

	if !req.Volume.IsPositive() {
		return nil, &ValidationError{Field: "volume", Message: fmt.Sprintf("volume must be positive, got %s", req.Volume)}
	}

	st := src.Next()
	return &Order{
		id:        st.ID,
		side:      req.Side,
		typ:       req.Type,
		tif:       req.TIF,
		price:     req.Price,
		stopPrice: req.StopPrice,
		volume:    req.Volume,
		executed:  decimal.Zero,
		at:        st.At,
		seq:       st.Seq,
	}, nil
}

func (o *Order) ID() string               { return o.id }
func (o *Order) Side() Side               { return o.side }
func (o *Order) Type() OrderType          { return o.typ }
func (o *Order) TimeInForce() TimeInForce { return o.tif }
func (o *Order) Volume() decimal.Decimal  { return o.volume }
func (o *Order) Executed() decimal.Decimal {
	return o.executed
}

// Timestamp is the arrival time used for FIFO tie-breaks, not wall-clock truth.
func (o *Order) Timestamp() time.Time { return o.at }
func (o *Order) Seq() uint64          { return o.seq }

// Price returns the limit price; ok is false for market orders.
func (o *Order) Price() (p decimal.Decimal, ok bool) {
	return o.price.Decimal, o.price.Valid
}

func (o *Order) StopPrice() (p decimal.Decimal, ok bool) {
	return o.stopPrice.Decimal, o.stopPrice.Valid
}

// LastExecutionPrice is the price of the most recent fill, if any.
func (o *Order) LastExecutionPrice() (p decimal.Decimal, ok bool) {
	return o.lastPrice.Decimal, o.lastPrice.Valid
}

func (o *Order) Remaining() decimal.Decimal {
	return o.volume.Sub(o.executed)
}

func (o *Order) Status() Status {
	switch {
	case o.cancelled:
		return StatusCancelled
	case o.executed.Equal(o.volume):
		return StatusFilled
	case o.executed.IsPositive():
		return StatusPartiallyFilled
	default:
		return StatusNew
	}
}

// ArrivedBefore orders two orders by arrival: timestamp, then sequence.
func (o *Order) ArrivedBefore(p *Order) bool {
	if !o.at.Equal(p.at) {
		return o.at.Before(p.at)
	}
	return o.seq < p.seq
}

// Triggered reports whether an external trigger service released this stop
// order. Non-stop orders are never triggered.
func (o *Order) Triggered() bool { return o.triggered }

// Trigger marks a stop order as released for matching as a limit order at
// its price.
func (o *Order) Trigger() error {
	if o.typ != Stop {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("only stop orders can be triggered, got %s", o.typ)}
	}
	o.triggered = true
	return nil
}

// CheckExecute reports whether Execute(volume, _) would succeed without
// mutating the order.
func (o *Order) CheckExecute(volume decimal.Decimal) error {
	if o.cancelled {
		return &ExecutionError{OrderID: o.id, Volume: volume, Remaining: o.Remaining(),
			Message: fmt.Sprintf("cannot execute cancelled order %s", o.id)}
	}
	if !volume.IsPositive() {
		return &ExecutionError{OrderID: o.id, Volume: volume, Remaining: o.Remaining(),
			Message: fmt.Sprintf("execution volume must be positive, got %s", volume)}
	}
	if volume.GreaterThan(o.Remaining()) {
		return &ExecutionError{OrderID: o.id, Volume: volume, Remaining: o.Remaining()}
	}
	return nil
}

// Execute records a fill of volume at price.
func (o *Order) Execute(volume, price decimal.Decimal) error {
	if err := o.CheckExecute(volume); err != nil {
		return err
	}
	o.executed = o.executed.Add(volume)
	o.lastPrice = decimal.NewNullDecimal(price)
	return nil
}

// Cancel is final and idempotent. Filled orders stay filled; the unexecuted
// remainder of a cancelled order is abandoned, not zeroed.
func (o *Order) Cancel() {
	if o.Status().Terminal() {
		return
	}
	o.cancelled = true
}

// OrderView is a flat, serialisable copy of an order's state.
type OrderView struct {
	ID                 string              `json:"id"`
	Side               Side                `json:"side"`
	Type               OrderType           `json:"type"`
	TimeInForce        TimeInForce         `json:"time_in_force"`
	Price              decimal.NullDecimal `json:"price"`
	StopPrice          decimal.NullDecimal `json:"stop_price"`
	Volume             decimal.Decimal     `json:"volume"`
	ExecutedVolume     decimal.Decimal     `json:"executed_volume"`
	RemainingVolume    decimal.Decimal     `json:"remaining_volume"`
	LastExecutionPrice decimal.NullDecimal `json:"last_execution_price"`
	Status             Status              `json:"status"`
	Timestamp          time.Time           `json:"timestamp"`
}

func (o *Order) View() OrderView {
	return OrderView{
		ID:                 o.id,
		Side:               o.side,
		Type:               o.typ,
		TimeInForce:        o.tif,
		Price:              o.price,
		StopPrice:          o.stopPrice,
		Volume:             o.volume,
		ExecutedVolume:     o.executed,
		RemainingVolume:    o.Remaining(),
		LastExecutionPrice: o.lastPrice,
		Status:             o.Status(),
		Timestamp:          o.at,
	}
}

func (o *Order) String() string {
	price := "[MARKET]"
	if o.price.Valid {
		price = "$" + o.price.Decimal.String()
	}
	id := o.id
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("ORDER: #%s | %s | rem/start vol: %s / %s | %s | %s",
		id, o.side, o.Remaining(), o.volume, price, o.Status())
}
