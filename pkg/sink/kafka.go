package sink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/2019UGEC100/matching-core/pkg/model"
)

// Event is the payload written per trade.
type Event struct {
	Version    int         `json:"v"`
	Type       string      `json:"type"`
	Instrument string      `json:"instrument"`
	Trade      model.Trade `json:"trade"`
}

// Kafka publishes trades to a topic keyed by instrument, so one instrument's
// trades stay on one partition in emission order.
type Kafka struct {
	instrument string
	writer     *kafka.Writer
}

func NewKafka(brokers []string, topic, instrument string) *Kafka {
	return &Kafka{
		instrument: instrument,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (k *Kafka) Publish(ctx context.Context, trades []model.Trade) error {
	msgs, err := k.messages(trades)
	if err != nil {
		return err
	}
	if err := k.writer.WriteMessages(ctx, msgs...); err != nil {
		return errors.Wrapf(err, "publishing %d trades", len(trades))
	}
	return nil
}

func (k *Kafka) messages(trades []model.Trade) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(trades))
	for _, t := range trades {
		value, err := json.Marshal(Event{Version: 1, Type: "trade", Instrument: k.instrument, Trade: t})
		if err != nil {
			return nil, errors.Wrapf(err, "encoding trade %s", t.ID)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(k.instrument),
			Value: value,
			Time:  t.Timestamp,
		})
	}
	return msgs, nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
