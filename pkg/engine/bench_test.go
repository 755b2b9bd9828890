package engine

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/2019UGEC100/matching-core/pkg/model"
	"github.com/2019UGEC100/matching-core/pkg/sequence"
)

// BenchmarkEngineSubmit replays a random two-sided limit order stream
// clustered around one price, so most submits cross a few levels.
func BenchmarkEngineSubmit(b *testing.B) {
	src := sequence.New(0)
	rng := rand.New(rand.NewSource(42))
	e := New("BENCH")

	orders := make([]*model.Order, b.N)
	for i := range orders {
		side := model.Bid
		if rng.Intn(2) == 1 {
			side = model.Ask
		}
		o, err := model.NewOrder(model.Request{
			Side:   side,
			Price:  decimal.NewNullDecimal(decimal.New(int64(9900+rng.Intn(200)), -2)),
			Volume: decimal.NewFromInt(int64(1 + rng.Intn(100))),
		}, src)
		if err != nil {
			b.Fatal(err)
		}
		orders[i] = o
	}

	b.ReportAllocs()
	b.ResetTimer()
	for _, o := range orders {
		if _, err := e.Submit(o); err != nil {
			b.Fatal(err)
		}
	}
}
