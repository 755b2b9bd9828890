package model

import (
	"fmt"
	"strings"
)

type Side uint8
type OrderType uint8
type TimeInForce uint8
type Status uint8

// Zero values are deliberately invalid so an unset field fails validation.
const (
	Bid Side = iota + 1
	Ask
)

const (
	Limit OrderType = iota + 1
	Market
	Stop
)

const (
	GTC TimeInForce = iota + 1 // good till cancelled
	IOC                        // immediate or cancel
	FOK                        // fill or kill
)

const (
	StatusNew Status = iota + 1
	StatusPartiallyFilled
	StatusFilled
	StatusCancelled
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "bid"
	case Ask:
		return "ask"
	}
	return fmt.Sprintf("side(%d)", uint8(s))
}

// Opposite returns the side an incoming order of side s matches against.
func (s Side) Opposite() Side {
	switch s {
	case Bid:
		return Ask
	case Ask:
		return Bid
	}
	return s
}

func (s Side) Valid() bool { return s == Bid || s == Ask }

func (t OrderType) String() string {
	switch t {
	case Limit:
		return "limit"
	case Market:
		return "market"
	case Stop:
		return "stop"
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

func (t OrderType) Valid() bool { return t >= Limit && t <= Stop }

func (f TimeInForce) String() string {
	switch f {
	case GTC:
		return "GTC"
	case IOC:
		return "IOC"
	case FOK:
		return "FOK"
	}
	return fmt.Sprintf("tif(%d)", uint8(f))
}

func (f TimeInForce) Valid() bool { return f >= GTC && f <= FOK }

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusPartiallyFilled:
		return "partially_filled"
	case StatusFilled:
		return "filled"
	case StatusCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Terminal reports whether no further execution or cancellation can change s.
func (s Status) Terminal() bool {
	return s == StatusFilled || s == StatusCancelled
}

// ParseSide accepts "bid"/"ask" and the BUY/SELL spellings used on the wire.
func ParseSide(v string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "bid", "buy":
		return Bid, nil
	case "ask", "sell":
		return Ask, nil
	}
	return 0, &ValidationError{Field: "side", Message: fmt.Sprintf("invalid side %q: must be bid or ask", v)}
}

func ParseOrderType(v string) (OrderType, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "limit":
		return Limit, nil
	case "market":
		return Market, nil
	case "stop":
		return Stop, nil
	}
	return 0, &ValidationError{Field: "type", Message: fmt.Sprintf("invalid type %q: must be limit, market or stop", v)}
}

func ParseTimeInForce(v string) (TimeInForce, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "", "GTC":
		return GTC, nil
	case "IOC":
		return IOC, nil
	case "FOK":
		return FOK, nil
	}
	return 0, &ValidationError{Field: "tif", Message: fmt.Sprintf("invalid time in force %q: must be GTC, IOC or FOK", v)}
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (t OrderType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *OrderType) UnmarshalText(b []byte) error {
	v, err := ParseOrderType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (f TimeInForce) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *TimeInForce) UnmarshalText(b []byte) error {
	v, err := ParseTimeInForce(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
