package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is the immutable record of one execution. Price is always the
// maker's price. Seq numbers trades in the order the engine produced them.
type Trade struct {
	ID        string          `json:"trade_id"`
	Seq       uint64          `json:"seq"`
	Price     decimal.Decimal `json:"price"`
	Volume    decimal.Decimal `json:"volume"`
	MakerID   string          `json:"maker_order_id"`
	TakerID   string          `json:"taker_order_id"`
	TakerSide Side            `json:"taker_side"`
	Timestamp time.Time       `json:"timestamp"`
}

// Notional is price × volume.
func (t Trade) Notional() decimal.Decimal {
	return t.Price.Mul(t.Volume)
}
