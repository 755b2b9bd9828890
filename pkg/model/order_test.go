package model

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type counterSource struct{ n uint64 }

func (c *counterSource) Next() Stamp {
	c.n++
	return Stamp{
		ID:  fmt.Sprintf("order-%08d", c.n),
		At:  time.Unix(0, int64(c.n)),
		Seq: c.n,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func price(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

func TestNewOrder(t *testing.T) {
	src := &counterSource{}

	t.Run("limit", func(t *testing.T) {
		o, err := NewOrder(Request{Side: Bid, Type: Limit, Price: price("10.54"), Volume: dec("100")}, src)
		require.NoError(t, err)

		assert.Equal(t, Bid, o.Side())
		assert.Equal(t, Limit, o.Type())
		assert.Equal(t, GTC, o.TimeInForce())
		p, ok := o.Price()
		assert.True(t, ok)
		assert.True(t, p.Equal(dec("10.54")))
		assert.True(t, o.Remaining().Equal(dec("100")))
		assert.True(t, o.Executed().IsZero())
		assert.Equal(t, StatusNew, o.Status())
		assert.NotEmpty(t, o.ID())
	})

	t.Run("market drops price", func(t *testing.T) {
		o, err := NewOrder(Request{Side: Ask, Type: Market, Price: price("99"), Volume: dec("55")}, src)
		require.NoError(t, err)

		_, ok := o.Price()
		assert.False(t, ok)
		assert.Equal(t, Market, o.Type())
	})

	t.Run("stop", func(t *testing.T) {
		o, err := NewOrder(Request{Side: Bid, Type: Stop, Price: price("105"), StopPrice: price("106.55"), Volume: dec("150")}, src)
		require.NoError(t, err)

		sp, ok := o.StopPrice()
		assert.True(t, ok)
		assert.True(t, sp.Equal(dec("106.55")))
		assert.False(t, o.Triggered())
	})

	t.Run("defaults", func(t *testing.T) {
		o, err := NewOrder(Request{Side: Bid, Price: price("1"), Volume: dec("1")}, src)
		require.NoError(t, err)
		assert.Equal(t, Limit, o.Type())
		assert.Equal(t, GTC, o.TimeInForce())
	})

	t.Run("fresh identity", func(t *testing.T) {
		a, err := NewOrder(Request{Side: Bid, Price: price("1"), Volume: dec("1")}, src)
		require.NoError(t, err)
		b, err := NewOrder(Request{Side: Bid, Price: price("1"), Volume: dec("1")}, src)
		require.NoError(t, err)
		assert.NotEqual(t, a.ID(), b.ID())
		assert.True(t, a.ArrivedBefore(b))
		assert.False(t, b.ArrivedBefore(a))
	})
}

func TestNewOrderValidation(t *testing.T) {
	cases := []struct {
		name  string
		req   Request
		field string
		msg   string
	}{
		{
			"limit without price",
			Request{Side: Bid, Type: Limit, Volume: dec("100")},
			"price", "price required for limit order",
		},
		{
			"stop without stop price",
			Request{Side: Bid, Type: Stop, Price: price("100"), Volume: dec("100")},
			"stop_price", "stop price required for stop order",
		},
		{
			"stop without price",
			Request{Side: Bid, Type: Stop, StopPrice: price("100"), Volume: dec("100")},
			"price", "price required for stop order",
		},
		{
			"negative volume",
			Request{Side: Bid, Type: Limit, Price: price("100"), Volume: dec("-100")},
			"volume", "volume must be positive, got -100",
		},
		{
			"zero volume",
			Request{Side: Ask, Type: Market, Volume: decimal.Zero},
			"volume", "volume must be positive, got 0",
		},
		{
			"zero price",
			Request{Side: Ask, Type: Limit, Price: price("0"), Volume: dec("1")},
			"price", "price must be positive, got 0",
		},
		{
			"missing side",
			Request{Type: Limit, Price: price("1"), Volume: dec("1")},
			"side", "",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			o, err := NewOrder(c.req, &counterSource{})
			require.Error(t, err)
			assert.Nil(t, o)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, c.field, ve.Field)
			if c.msg != "" {
				assert.Equal(t, c.msg, ve.Error())
			}
		})
	}
}

func TestOrderExecute(t *testing.T) {
	o, err := NewOrder(Request{Side: Bid, Price: price("100"), Volume: dec("100")}, &counterSource{})
	require.NoError(t, err)

	require.NoError(t, o.Execute(dec("30"), dec("99.95")))
	assert.True(t, o.Executed().Equal(dec("30")))
	assert.True(t, o.Remaining().Equal(dec("70")))
	assert.Equal(t, StatusPartiallyFilled, o.Status())
	last, ok := o.LastExecutionPrice()
	require.True(t, ok)
	assert.True(t, last.Equal(dec("99.95")))

	require.NoError(t, o.Execute(dec("70"), dec("100.10")))
	assert.True(t, o.Remaining().IsZero())
	assert.Equal(t, StatusFilled, o.Status())
	last, _ = o.LastExecutionPrice()
	assert.True(t, last.Equal(dec("100.10")))
}

func TestOrderExecuteValidation(t *testing.T) {
	o, err := NewOrder(Request{Side: Bid, Price: price("100"), Volume: dec("100")}, &counterSource{})
	require.NoError(t, err)

	err = o.Execute(dec("150"), dec("100"))
	require.Error(t, err)
	assert.True(t, IsExecution(err))
	assert.Equal(t, "cannot execute 150, remaining: 100", err.Error())

	// nothing was applied
	assert.True(t, o.Executed().IsZero())
	assert.Equal(t, StatusNew, o.Status())

	assert.True(t, IsExecution(o.Execute(decimal.Zero, dec("100"))))

	o.Cancel()
	assert.True(t, IsExecution(o.Execute(dec("1"), dec("100"))))
}

func TestOrderCancel(t *testing.T) {
	src := &counterSource{}

	t.Run("new", func(t *testing.T) {
		o, _ := NewOrder(Request{Side: Ask, Price: price("5"), Volume: dec("10")}, src)
		o.Cancel()
		assert.Equal(t, StatusCancelled, o.Status())
		// remainder is abandoned, not zeroed
		assert.True(t, o.Remaining().Equal(dec("10")))
	})

	t.Run("partially filled", func(t *testing.T) {
		o, _ := NewOrder(Request{Side: Ask, Price: price("5"), Volume: dec("10")}, src)
		require.NoError(t, o.Execute(dec("4"), dec("5")))
		o.Cancel()
		assert.Equal(t, StatusCancelled, o.Status())
		assert.True(t, o.Executed().Equal(dec("4")))
	})

	t.Run("filled is terminal", func(t *testing.T) {
		o, _ := NewOrder(Request{Side: Ask, Price: price("5"), Volume: dec("10")}, src)
		require.NoError(t, o.Execute(dec("10"), dec("5")))
		o.Cancel()
		assert.Equal(t, StatusFilled, o.Status())
	})

	t.Run("idempotent", func(t *testing.T) {
		o, _ := NewOrder(Request{Side: Ask, Price: price("5"), Volume: dec("10")}, src)
		o.Cancel()
		first := o.View()
		o.Cancel()
		assert.Equal(t, first, o.View())
	})
}

func TestOrderTrigger(t *testing.T) {
	src := &counterSource{}

	stop, err := NewOrder(Request{Side: Ask, Type: Stop, Price: price("95"), StopPrice: price("96"), Volume: dec("1")}, src)
	require.NoError(t, err)
	require.NoError(t, stop.Trigger())
	assert.True(t, stop.Triggered())

	limit, err := NewOrder(Request{Side: Ask, Price: price("95"), Volume: dec("1")}, src)
	require.NoError(t, err)
	assert.True(t, IsValidation(limit.Trigger()))
	assert.False(t, limit.Triggered())
}

func TestOrderStringAndView(t *testing.T) {
	src := &counterSource{}

	o, err := NewOrder(Request{Side: Bid, Price: price("100.5"), Volume: dec("100")}, src)
	require.NoError(t, err)
	require.NoError(t, o.Execute(dec("30"), dec("100.5")))
	assert.Equal(t, "ORDER: #order-00 | bid | rem/start vol: 70 / 100 | $100.5 | partially_filled", o.String())

	m, err := NewOrder(Request{Side: Ask, Type: Market, Volume: dec("5")}, src)
	require.NoError(t, err)
	assert.Contains(t, m.String(), "[MARKET]")

	raw, err := json.Marshal(o.View())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "bid", got["side"])
	assert.Equal(t, "limit", got["type"])
	assert.Equal(t, "GTC", got["time_in_force"])
	assert.Equal(t, "partially_filled", got["status"])
	assert.Equal(t, "70", got["remaining_volume"])
	assert.Nil(t, got["stop_price"])
}

func TestRequestJSON(t *testing.T) {
	var req Request
	require.NoError(t, json.Unmarshal([]byte(`{"side":"sell","type":"limit","tif":"ioc","price":"110.00","volume":120}`), &req))

	assert.Equal(t, Ask, req.Side)
	assert.Equal(t, Limit, req.Type)
	assert.Equal(t, IOC, req.TIF)
	assert.True(t, req.Price.Valid)
	assert.False(t, req.StopPrice.Valid)
	assert.True(t, req.Volume.Equal(dec("120")))

	assert.Error(t, json.Unmarshal([]byte(`{"side":"up"}`), &req))
}

func TestRemainingRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := rapid.Int64Range(1, 1_000_000).Draw(t, "volume")
		o, err := NewOrder(Request{Side: Bid, Price: price("1"), Volume: decimal.NewFromInt(total)}, &counterSource{})
		if err != nil {
			t.Fatal(err)
		}

		executed := int64(0)
		for executed < total {
			step := rapid.Int64Range(1, total-executed).Draw(t, "step")
			if err := o.Execute(decimal.NewFromInt(step), dec("1")); err != nil {
				t.Fatal(err)
			}
			executed += step

			want := decimal.NewFromInt(total - executed)
			if !o.Remaining().Equal(want) {
				t.Fatalf("remaining %s, want %s", o.Remaining(), want)
			}
		}
		if o.Status() != StatusFilled {
			t.Fatalf("status %s after full execution", o.Status())
		}
	})
}
