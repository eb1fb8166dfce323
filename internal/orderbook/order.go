package orderbook

type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// TimeInForce controls what happens to the unfilled remainder of an order.
type TimeInForce uint8

const (
	// GoodTillCancel rests any unfilled remainder in the book.
	GoodTillCancel TimeInForce = iota
	// ImmediateOrCancel discards any unfilled remainder; it never rests.
	ImmediateOrCancel
)

func (t TimeInForce) String() string {
	if t == GoodTillCancel {
		return "GTC"
	}
	return "IOC"
}

// Order is a limit order. Prices are signed integer ticks, quantities are
// whole units. Everything except Remaining is immutable after creation.
type Order struct {
	ID        uint64      `json:"id"`
	Side      Side        `json:"side"`
	TIF       TimeInForce `json:"tif"`
	Price     int32       `json:"price"`
	Quantity  uint32      `json:"quantity"`
	Remaining uint32      `json:"remaining"`
}

// NewOrder creates an order with its full quantity remaining.
func NewOrder(id uint64, side Side, tif TimeInForce, price int32, qty uint32) *Order {
	return &Order{
		ID:        id,
		Side:      side,
		TIF:       tif,
		Price:     price,
		Quantity:  qty,
		Remaining: qty,
	}
}

func (o *Order) Filled() bool {
	return o.Remaining == 0
}

// fill decrements the remaining quantity. Filling more than remains signals
// a defect in the matching loop itself, so it is fatal rather than an error.
func (o *Order) fill(qty uint32) {
	if qty > o.Remaining {
		panic("orderbook: overfill")
	}
	o.Remaining -= qty
}

// Trade is one execution. Price is always the resting order's price; any
// price improvement accrues to the aggressor.
type Trade struct {
	RestingID   uint64 `json:"resting_id"`
	AggressorID uint64 `json:"aggressor_id"`
	Price       int32  `json:"price"`
	Quantity    uint32 `json:"quantity"`
	Timestamp   int64  `json:"timestamp"` // unix nanoseconds
	Aggressor   Side   `json:"aggressor"`
}
