package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/2019UGEC100/matching-core/pkg/model"
	"github.com/2019UGEC100/matching-core/pkg/sequence"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type orderFactory struct {
	t   testing.TB
	src *sequence.Sequencer
}

func newFactory(t testing.TB) *orderFactory {
	return &orderFactory{t: t, src: sequence.New(0)}
}

func (f *orderFactory) make(req model.Request) *model.Order {
	f.t.Helper()
	o, err := model.NewOrder(req, f.src)
	require.NoError(f.t, err)
	return o
}

func (f *orderFactory) limit(side model.Side, tif model.TimeInForce, price, volume string) *model.Order {
	f.t.Helper()
	return f.make(model.Request{
		Side:   side,
		Type:   model.Limit,
		TIF:    tif,
		Price:  decimal.NewNullDecimal(dec(price)),
		Volume: dec(volume),
	})
}

func (f *orderFactory) market(side model.Side, tif model.TimeInForce, volume string) *model.Order {
	f.t.Helper()
	return f.make(model.Request{Side: side, Type: model.Market, TIF: tif, Volume: dec(volume)})
}

func (f *orderFactory) stop(side model.Side, price, stopPrice, volume string) *model.Order {
	f.t.Helper()
	return f.make(model.Request{
		Side:      side,
		Type:      model.Stop,
		Price:     decimal.NewNullDecimal(dec(price)),
		StopPrice: decimal.NewNullDecimal(dec(stopPrice)),
		Volume:    dec(volume),
	})
}

func prices(orders []*model.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		p, _ := o.Price()
		out = append(out, p.String())
	}
	return out
}
