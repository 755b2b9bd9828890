package api

import (
	"github.com/samber/lo"

	"github.com/2019UGEC100/matching-core/pkg/engine"
	"github.com/2019UGEC100/matching-core/pkg/logger"
	"github.com/2019UGEC100/matching-core/pkg/model"
)

// Submit outcomes reported in SubmitResponse.Status.
const (
	StatusResting         = "resting"
	StatusFilled          = "filled"
	StatusPartiallyFilled = "partially_filled"
	StatusKilled          = "killed"
	StatusCancelled       = "cancelled"
	StatusAccepted        = "accepted"
)

type SubmitResponse struct {
	Status string          `json:"status"`
	Order  model.OrderView `json:"order"`
	Trades []model.Trade   `json:"trades"`
}

type CancelResponse struct {
	OrderID   string `json:"order_id"`
	Cancelled bool   `json:"cancelled"`
}

type BestResponse struct {
	Bid *model.OrderView `json:"bid"`
	Ask *model.OrderView `json:"ask"`
}

type DepthResponse struct {
	Side   model.Side        `json:"side"`
	Price  string            `json:"price"`
	Orders []model.OrderView `json:"orders"`
}

// submit builds the order, hands it to the engine and reports what happened
// to it.
func (s *Server) submit(cmd Command) any {
	if cmd.Order == nil {
		return ErrorResponse{Error: "submit needs an order", Field: "order"}
	}

	o, err := model.NewOrder(cmd.Order.Request, s.src)
	if err != nil {
		return errorResponse(err)
	}
	if cmd.Order.Triggered {
		if err := o.Trigger(); err != nil {
			return errorResponse(err)
		}
	}

	trades, err := s.engine.Submit(o)
	if err != nil {
		if !model.IsValidation(err) {
			s.log.Error(err, logger.NewField("order_id", o.ID()))
		}
		return errorResponse(err)
	}
	if trades == nil {
		trades = []model.Trade{}
	}

	return SubmitResponse{
		Status: s.outcome(o, trades),
		Order:  o.View(),
		Trades: trades,
	}
}

func (s *Server) outcome(o *model.Order, trades []model.Trade) string {
	if _, ok := s.engine.Order(o.ID()); ok {
		return StatusResting
	}
	switch o.Status() {
	case model.StatusFilled:
		return StatusFilled
	case model.StatusCancelled:
		return StatusCancelled
	case model.StatusPartiallyFilled:
		return StatusPartiallyFilled
	}
	if o.TimeInForce() == model.FOK && len(trades) == 0 {
		return StatusKilled
	}
	return StatusAccepted
}

func (s *Server) cancel(cmd Command) any {
	if cmd.OrderID == "" {
		return ErrorResponse{Error: "cancel needs an order_id", Field: "order_id"}
	}
	return CancelResponse{OrderID: cmd.OrderID, Cancelled: s.engine.Cancel(cmd.OrderID)}
}

// order looks up a resting order by id.
func (s *Server) order(cmd Command) any {
	if cmd.OrderID == "" {
		return ErrorResponse{Error: "order needs an order_id", Field: "order_id"}
	}
	o, ok := s.engine.Order(cmd.OrderID)
	if !ok {
		return ErrorResponse{Error: "order not found", Field: "order_id"}
	}
	return o.View()
}

func (s *Server) best() any {
	return BestResponse{
		Bid: viewOf(s.engine.BestBid()),
		Ask: viewOf(s.engine.BestAsk()),
	}
}

func (s *Server) depth(cmd Command) any {
	if !cmd.Side.Valid() {
		return ErrorResponse{Error: "depth needs a side of bid or ask", Field: "side"}
	}
	if !cmd.Price.Valid {
		return ErrorResponse{Error: "depth needs a price", Field: "price"}
	}
	orders := s.engine.DepthAt(cmd.Side, cmd.Price.Decimal)
	return DepthResponse{
		Side:  cmd.Side,
		Price: cmd.Price.Decimal.String(),
		Orders: lo.Map(orders, func(o *model.Order, _ int) model.OrderView {
			return o.View()
		}),
	}
}

func (s *Server) book(cmd Command) engine.BookSnapshot {
	return s.engine.Snapshot(cmd.Depth)
}

func viewOf(o *model.Order) *model.OrderView {
	if o == nil {
		return nil
	}
	v := o.View()
	return &v
}
