package engine

import (
	"strings"

	rbt "github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/2019UGEC100/matching-core/pkg/model"
)

// PriceOrder ranks two prices for one side of the book. A negative result
// means a is matched before b.
type PriceOrder func(a, b decimal.Decimal) int

// AskPriority ranks the lowest ask first.
func AskPriority(a, b decimal.Decimal) int { return a.Cmp(b) }

// BidPriority ranks the highest bid first.
func BidPriority(a, b decimal.Decimal) int { return b.Cmp(a) }

// PriceLevelBook holds the resting orders of one side in price-time priority:
// by price under the side's PriceOrder, then by arrival (FIFO within a price).
// The first order is the best one.
//
// Backed by a red-black tree keyed by the orders themselves, so insert and
// remove are O(log n). Not safe for concurrent use.
type PriceLevelBook struct {
	side  model.Side
	price PriceOrder
	tree  *rbt.Tree
}

// NewPriceLevelBook builds a book for side ranked by price.
func NewPriceLevelBook(side model.Side, price PriceOrder) *PriceLevelBook {
	b := &PriceLevelBook{side: side, price: price}
	b.tree = rbt.NewWith(b.compare)
	return b
}

// newSideBook picks the standard priority for side.
func newSideBook(side model.Side) *PriceLevelBook {
	switch side {
	case model.Bid:
		return NewPriceLevelBook(side, BidPriority)
	case model.Ask:
		return NewPriceLevelBook(side, AskPriority)
	}
	panic("engine: unknown side " + side.String())
}

func limitPrice(o *model.Order) decimal.Decimal {
	p, _ := o.Price()
	return p
}

func (b *PriceLevelBook) compare(x, y interface{}) int {
	a, c := x.(*model.Order), y.(*model.Order)
	if d := b.price(limitPrice(a), limitPrice(c)); d != 0 {
		return d
	}
	switch {
	case a.ArrivedBefore(c):
		return -1
	case c.ArrivedBefore(a):
		return 1
	}
	return strings.Compare(a.ID(), c.ID())
}

func (b *PriceLevelBook) Side() model.Side { return b.side }

func (b *PriceLevelBook) Len() int { return b.tree.Size() }

func (b *PriceLevelBook) Empty() bool { return b.tree.Empty() }

// admit reports why o may not rest in this book, if anything.
func (b *PriceLevelBook) admit(o *model.Order) error {
	if o.Side() != b.side {
		return errors.Wrapf(model.ErrInvariant, "%s order %s in %s book", o.Side(), o.ID(), b.side)
	}
	if _, ok := o.Price(); !ok {
		return errors.Wrapf(model.ErrInvariant, "order %s has no limit price", o.ID())
	}
	if !o.Remaining().IsPositive() {
		return errors.Wrapf(model.ErrInvariant, "order %s has remaining volume %s", o.ID(), o.Remaining())
	}
	switch o.Status() {
	case model.StatusNew, model.StatusPartiallyFilled:
		return nil
	default:
		return errors.Wrapf(model.ErrInvariant, "order %s is %s", o.ID(), o.Status())
	}
}

// Insert places o after every order it does not strictly precede, so a later
// order at an existing price queues behind the ones already there.
func (b *PriceLevelBook) Insert(o *model.Order) error {
	if err := b.admit(o); err != nil {
		return err
	}
	if _, found := b.tree.Get(o); found {
		return errors.Wrapf(model.ErrInvariant, "order %s already resting", o.ID())
	}
	b.tree.Put(o, struct{}{})
	return nil
}

// PeekBest returns the best order, or nil when the book is empty.
func (b *PriceLevelBook) PeekBest() *model.Order {
	n := b.tree.Left()
	if n == nil {
		return nil
	}
	return n.Key.(*model.Order)
}

// RemoveBest pops the best order. It fails with model.ErrEmptyBook when
// there is nothing to pop.
func (b *PriceLevelBook) RemoveBest() (*model.Order, error) {
	n := b.tree.Left()
	if n == nil {
		return nil, errors.WithStack(model.ErrEmptyBook)
	}
	o := n.Key.(*model.Order)
	b.tree.Remove(o)
	return o, nil
}

// Remove takes o out of the book wherever it sits. It reports false when o
// was not resting here.
func (b *PriceLevelBook) Remove(o *model.Order) bool {
	if _, found := b.tree.Get(o); !found {
		return false
	}
	b.tree.Remove(o)
	return true
}

// Walk visits orders best first until fn returns false.
func (b *PriceLevelBook) Walk(fn func(o *model.Order) bool) {
	it := b.tree.Iterator()
	for it.Next() {
		if !fn(it.Key().(*model.Order)) {
			return
		}
	}
}

// Orders returns every resting order, best first.
func (b *PriceLevelBook) Orders() []*model.Order {
	out := make([]*model.Order, 0, b.tree.Size())
	b.Walk(func(o *model.Order) bool {
		out = append(out, o)
		return true
	})
	return out
}

// FindByPrice returns the orders resting at exactly price in FIFO order.
// It is meant for inspection, not for the matching path.
func (b *PriceLevelBook) FindByPrice(price decimal.Decimal) []*model.Order {
	var out []*model.Order
	b.Walk(func(o *model.Order) bool {
		d := b.price(limitPrice(o), price)
		if d < 0 {
			return true
		}
		if d == 0 {
			out = append(out, o)
			return true
		}
		return false
	})
	return out
}

// Check verifies the book invariants: strictly increasing under the book's
// ordering and every order admissible.
func (b *PriceLevelBook) Check() error {
	var (
		prev *model.Order
		err  error
	)
	b.Walk(func(o *model.Order) bool {
		if err = b.admit(o); err != nil {
			return false
		}
		if prev != nil && b.compare(prev, o) >= 0 {
			err = errors.Wrapf(model.ErrInvariant, "%s book out of order at %s after %s", b.side, o.ID(), prev.ID())
			return false
		}
		prev = o
		return true
	})
	return err
}
