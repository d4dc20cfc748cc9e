// Package backend is the typed client for the external POS backend: it
// loads and persists print templates through the restaurant settings
// endpoints and drives the kitchen ticket collection and its mutations.
// The backend owns all durable state; this client never retries writes.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tablewise/printstudio/internal/kitchen"
	"github.com/tablewise/printstudio/pkg/templatefmt"
)

const (
	requestTimeout = 15 * time.Second
	ticketPageSize = 200
)

// Client talks to one restaurant's slice of the POS backend.
type Client struct {
	baseURL      string
	token        string
	restaurantID string
	http         *http.Client
}

// New creates a client. baseURL carries no trailing slash.
func New(baseURL, token, restaurantID string) *Client {
	return &Client{
		baseURL:      baseURL,
		token:        token,
		restaurantID: restaurantID,
		http:         &http.Client{Timeout: requestTimeout},
	}
}

// RestaurantID returns the configured restaurant id.
func (c *Client) RestaurantID() string { return c.restaurantID }

// Settings is the slice of the restaurant settings payload the designer
// needs. The template arrays stay raw: parsing is the serializer's job and
// never fails.
type Settings struct {
	RestaurantID    string          `json:"restaurant_id"`
	Name            string          `json:"name"`
	ReceiptTemplate json.RawMessage `json:"receipt_template"`
	KOTTemplate     json.RawMessage `json:"kot_template"`
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// FetchSettings loads the restaurant settings payload.
func (c *Client) FetchSettings(ctx context.Context) (Settings, error) {
	var s Settings
	url := fmt.Sprintf("%s/restaurants/%s/settings", c.baseURL, c.restaurantID)
	if err := c.call(ctx, http.MethodGet, url, nil, &s); err != nil {
		return Settings{}, fmt.Errorf("fetch settings: %w", err)
	}
	return s, nil
}

// Template loads and parses the template for one family. A missing or
// malformed stored template degrades to the built-in default, so the
// designer never opens to a blank canvas.
func (c *Client) Template(ctx context.Context, family templatefmt.Family) (templatefmt.Template, error) {
	s, err := c.FetchSettings(ctx)
	if err != nil {
		return templatefmt.Template{}, err
	}

	raw := s.ReceiptTemplate
	if family == templatefmt.FamilyKOT {
		raw = s.KOTTemplate
	}
	return templatefmt.Parse(raw, family), nil
}

// SaveTemplate persists one family's flattened template array under its
// family key. The two keys are mutually exclusive per call.
func (c *Client) SaveTemplate(ctx context.Context, family templatefmt.Family, elements []map[string]any) error {
	url := fmt.Sprintf("%s/restaurants/%s/templates", c.baseURL, c.restaurantID)
	body := map[string]any{family.TemplateKey(): elements}
	if err := c.call(ctx, http.MethodPut, url, body, nil); err != nil {
		return fmt.Errorf("save %s template: %w", family, err)
	}
	return nil
}

// ListTickets searches the kitchen ticket collection for one day, bounded
// to the full day in ISO form.
func (c *Client) ListTickets(ctx context.Context, day time.Time) ([]kitchen.Ticket, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.Add(24*time.Hour - time.Second)

	body := map[string]any{
		"restaurant_id": c.restaurantID,
		"limit":         ticketPageSize,
		"date_from":     from.Format(time.RFC3339),
		"date_to":       to.Format(time.RFC3339),
	}

	var tickets []kitchen.Ticket
	url := c.baseURL + "/kots/search"
	if err := c.call(ctx, http.MethodPost, url, body, &tickets); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

// UpdateTicketStatus moves one ticket to the target status.
func (c *Client) UpdateTicketStatus(ctx context.Context, id string, status kitchen.Status) error {
	url := fmt.Sprintf("%s/kots/%s/status", c.baseURL, id)
	body := map[string]any{"status": string(status)}
	if err := c.call(ctx, http.MethodPost, url, body, nil); err != nil {
		return fmt.Errorf("update ticket %s: %w", id, err)
	}
	return nil
}

// RejectTicket rejects one ticket. No payload beyond the id.
func (c *Client) RejectTicket(ctx context.Context, id string) error {
	url := fmt.Sprintf("%s/kots/%s/reject", c.baseURL, id)
	if err := c.call(ctx, http.MethodPost, url, nil, nil); err != nil {
		return fmt.Errorf("reject ticket %s: %w", id, err)
	}
	return nil
}

// call issues one request and decodes the enveloped response. Any status
// other than "success" is an error carrying the backend's message.
func (c *Client) call(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("backend returned %s", resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Status != "success" {
		if env.Message != "" {
			return fmt.Errorf("backend rejected the request: %s", env.Message)
		}
		return fmt.Errorf("backend status %q", env.Status)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
	}
	return nil
}
