package kitchen

import (
	"testing"
	"time"
)

func TestNextStatus_ForwardChain(t *testing.T) {
	tests := []struct {
		from Status
		want Status
		ok   bool
	}{
		{StatusPending, StatusPreparing, true},
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusServed, true},
		{StatusServed, "", false},
		{StatusRejected, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			got, ok := NextStatus(tt.from)
			if ok != tt.ok || got != tt.want {
				t.Errorf("NextStatus(%s) = (%s, %v), want (%s, %v)", tt.from, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestStatus_Terminal(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusPreparing, StatusReady} {
		if s.Terminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
	for _, s := range []Status{StatusServed, StatusRejected} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if got, ok := ParseStatus("PREPARING"); !ok || got != StatusPreparing {
		t.Errorf("ParseStatus(PREPARING) = (%s, %v)", got, ok)
	}
	if _, ok := ParseStatus("preparing"); ok {
		t.Error("statuses are case sensitive on the wire")
	}
	if _, ok := ParseStatus("BURNT"); ok {
		t.Error("unknown status accepted")
	}
}

func TestDelayed(t *testing.T) {
	now := time.Date(2025, 3, 14, 19, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		age    time.Duration
		status Status
		want   bool
	}{
		{"preparing past threshold", 21 * time.Minute, StatusPreparing, true},
		{"served past threshold", 21 * time.Minute, StatusServed, false},
		{"pending under threshold", 19 * time.Minute, StatusPending, false},
		{"rejected past threshold", 45 * time.Minute, StatusRejected, false},
		{"exactly at threshold", 20 * time.Minute, StatusReady, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := Ticket{Status: tt.status, CreatedAt: now.Add(-tt.age)}
			if got := ticket.Delayed(now); got != tt.want {
				t.Errorf("Delayed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 3, 14, 19, 30, 0, 0, time.UTC)
	tickets := []Ticket{
		{Status: StatusPending, CreatedAt: now.Add(-5 * time.Minute)},
		{Status: StatusPreparing, CreatedAt: now.Add(-25 * time.Minute)},
		{Status: StatusPreparing, CreatedAt: now.Add(-2 * time.Minute)},
		{Status: StatusServed, CreatedAt: now.Add(-40 * time.Minute)},
		{Status: StatusRejected, CreatedAt: now.Add(-90 * time.Minute)},
	}

	c := Summarize(tickets, now)

	if c.Total != 5 {
		t.Errorf("Total = %d, want 5", c.Total)
	}
	if c.Delayed != 1 {
		t.Errorf("Delayed = %d, want 1 (finished tickets never count)", c.Delayed)
	}
	if c.ByStatus[StatusPreparing] != 2 {
		t.Errorf("ByStatus[PREPARING] = %d, want 2", c.ByStatus[StatusPreparing])
	}
	if c.ByStatus[StatusServed] != 1 || c.ByStatus[StatusRejected] != 1 {
		t.Error("terminal statuses must still be counted per status")
	}
}
