package preview

import "time"

// Context carries the live data a preview binds into blocks. Every field
// set here overrides the built-in sample values; the designer usually
// renders with SampleContext so the canvas is meaningful before any order
// exists.
type Context struct {
	Restaurant Restaurant
	Order      *Order
	KOT        *KOTInfo
}

// Restaurant is the venue identity printed by header blocks.
type Restaurant struct {
	Name    string
	Address string
	Phone   string
	Email   string
	PAN     string
}

// OrderLine is one sellable row of an order.
type OrderLine struct {
	Name     string
	Quantity int
	Rate     float64
	Amount   float64
}

// PaymentLine is one settled or tendered payment method row.
type PaymentLine struct {
	Method string
	Amount float64
}

// Order is the bill/receipt side of the context.
type Order struct {
	BillNumber string
	Number     string
	Table      string
	PlacedAt   time.Time
	Cashier    string
	Customer   string
	Phone      string

	Items      []OrderLine
	Discount   float64
	GrandTotal float64

	Payments []PaymentLine
	Tendered []PaymentLine
	Due      float64
}

// KOTInfo is the kitchen-ticket side of the context.
type KOTInfo struct {
	TicketNumber string
	Station      string
	Type         string
	Category     string
	User         string
	At           time.Time
}

// SampleContext returns the fixed demonstration data used when no live
// context is supplied. The timestamp is pinned so rendering stays
// deterministic.
func SampleContext() *Context {
	at := time.Date(2025, time.March, 14, 19, 30, 0, 0, time.UTC)

	return &Context{
		Restaurant: Restaurant{
			Name:    "The Golden Spoon",
			Address: "12 Market Street, Riverside",
			Phone:   "01-4432100",
			Email:   "hello@goldenspoon.example",
			PAN:     "601234567",
		},
		Order: &Order{
			BillNumber: "B-1042",
			Number:     "ORD-358",
			Table:      "T4",
			PlacedAt:   at,
			Cashier:    "anita",
			Customer:   "Walk-in Guest",
			Phone:      "98-5550123",
			Items: []OrderLine{
				{Name: "Chicken Momo", Quantity: 2, Rate: 180, Amount: 360},
				{Name: "Veg Chowmein", Quantity: 1, Rate: 150, Amount: 150},
				{Name: "Masala Tea", Quantity: 3, Rate: 40, Amount: 120},
			},
			Discount:   30,
			GrandTotal: 600,
			Payments: []PaymentLine{
				{Method: "Cash", Amount: 600},
			},
			Tendered: []PaymentLine{
				{Method: "Cash", Amount: 400},
			},
			Due: 200,
		},
		KOT: &KOTInfo{
			TicketNumber: "K-77",
			Station:      "Grill",
			Type:         "Dine-in",
			Category:     "Food",
			User:         "anita",
			At:           at,
		},
	}
}
