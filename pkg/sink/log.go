package sink

import (
	"context"

	"github.com/2019UGEC100/matching-core/pkg/logger"
	"github.com/2019UGEC100/matching-core/pkg/model"
)

// Log writes one info entry per trade.
type Log struct {
	log *logger.Logger
}

func NewLog(l *logger.Logger) *Log {
	return &Log{log: l}
}

func (l *Log) Publish(_ context.Context, trades []model.Trade) error {
	for _, t := range trades {
		l.log.Info("trade",
			logger.NewField("trade_id", t.ID),
			logger.NewField("seq", t.Seq),
			logger.NewField("price", t.Price.String()),
			logger.NewField("volume", t.Volume.String()),
			logger.NewField("maker_order_id", t.MakerID),
			logger.NewField("taker_order_id", t.TakerID),
			logger.NewField("taker_side", t.TakerSide.String()),
		)
	}
	return nil
}

func (l *Log) Close() error { return nil }
