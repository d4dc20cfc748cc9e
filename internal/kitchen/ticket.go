// Package kitchen maintains the live kitchen order ticket board: the ticket
// status machine, the delay predicate, and a feed that merges push
// notifications with an unconditional poll so the board never silently goes
// stale.
package kitchen

import (
	"time"
)

// Status is a ticket's position in the preparation lifecycle.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusServed    Status = "SERVED"
	StatusRejected  Status = "REJECTED"
)

// ParseStatus converts a wire string into a Status.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusPreparing, StatusReady, StatusServed, StatusRejected:
		return Status(s), true
	}
	return "", false
}

// Terminal reports whether no further transition is possible. REJECTED is
// reachable from any non-terminal state by an explicit reject action, not by
// the forward chain.
func (s Status) Terminal() bool {
	return s == StatusServed || s == StatusRejected
}

// NextStatus returns the next step on the forward path
// PENDING → PREPARING → READY → SERVED. Terminal states have no next step.
func NextStatus(s Status) (Status, bool) {
	switch s {
	case StatusPending:
		return StatusPreparing, true
	case StatusPreparing:
		return StatusReady, true
	case StatusReady:
		return StatusServed, true
	}
	return "", false
}

// DelayThreshold is the ticket age past which an unfinished ticket counts as
// delayed.
const DelayThreshold = 20 * time.Minute

// TicketItem is one line of a kitchen ticket. Quantity is a signed delta:
// negative quantities arise when an order line is reduced after the ticket
// was fired.
type TicketItem struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Quantity       int      `json:"quantity"`
	ReadyQuantity  int      `json:"ready_quantity"`
	ServedQuantity int      `json:"served_quantity"`
	IsDeleted      bool     `json:"is_deleted"`
	Modifiers      []string `json:"modifiers"`
	Notes          string   `json:"notes"`
}

// Ticket is one kitchen order ticket as returned by the backend search
// endpoint.
type Ticket struct {
	ID           string       `json:"id"`
	TicketNumber string       `json:"ticket_number"`
	Station      string       `json:"station"`
	Type         string       `json:"type"`
	Status       Status       `json:"status"`
	OrderID      string       `json:"order_id"`
	CreatedAt    time.Time    `json:"created_at"`
	Items        []TicketItem `json:"items"`
}

// Age returns the time elapsed since the ticket was fired.
func (t Ticket) Age(now time.Time) time.Duration {
	return now.Sub(t.CreatedAt)
}

// Delayed reports whether the ticket has been open past the delay threshold.
// Finished tickets are never delayed, however old. Derived on demand, never
// stored.
func (t Ticket) Delayed(now time.Time) bool {
	if t.Status.Terminal() {
		return false
	}
	return t.Age(now) >= DelayThreshold
}

// Counts aggregates one snapshot of the board.
type Counts struct {
	Total    int            `json:"total"`
	Delayed  int            `json:"delayed"`
	ByStatus map[Status]int `json:"by_status"`
}

// Summarize derives the aggregate counts over a ticket snapshot.
func Summarize(tickets []Ticket, now time.Time) Counts {
	c := Counts{ByStatus: make(map[Status]int)}
	for _, t := range tickets {
		c.Total++
		c.ByStatus[t.Status]++
		if t.Delayed(now) {
			c.Delayed++
		}
	}
	return c
}
