package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tablewise/printstudio/internal/api"
	"github.com/tablewise/printstudio/internal/backend"
	"github.com/tablewise/printstudio/internal/config"
	"github.com/tablewise/printstudio/internal/kitchen"
)

// Version is set during build via ldflags
var Version = "dev"

func main() {
	cfg := config.Load()

	client := backend.New(cfg.BackendURL, cfg.APIToken, cfg.RestaurantID)

	// The feed's update callback broadcasts to websocket clients; the
	// server does not exist yet, so bind it through the closure.
	var server *api.Server
	feed := kitchen.NewFeed(client, time.Now(), kitchen.FeedConfig{
		Debounce: cfg.Debounce,
		Poll:     cfg.PollInterval,
		OnUpdate: func(tickets []kitchen.Ticket) {
			server.BroadcastSnapshot(tickets)
		},
	})
	server = api.NewServer(client, feed)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return feed.Run(ctx)
	})

	if cfg.SocketURL != "" {
		socketURL, err := withQuery(cfg.SocketURL, cfg.APIToken, cfg.RestaurantID)
		if err != nil {
			log.Fatalf("Invalid KOT_SOCKET_URL: %v", err)
		}
		socket := kitchen.NewSocket(
			kitchen.GorillaDialer(socketURL, nil),
			feed.RefreshNow,
			feed.Notify,
			kitchen.SocketConfig{RetryDelay: cfg.RetryDelay, Heartbeat: cfg.Heartbeat},
		)
		g.Go(func() error {
			return socket.Run(ctx)
		})
	} else {
		log.Printf("Warning: KOT_SOCKET_URL not set, board runs on polling alone")
	}

	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: server.Handler(),
	}

	g.Go(func() error {
		log.Printf("printstudio %s listening on %s", Version, cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Server error: %v", err)
	}
}

// withQuery appends the auth token and restaurant id as query parameters,
// the shape the push endpoint expects.
func withQuery(raw, token, restaurantID string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	if token != "" {
		q.Set("token", token)
	}
	q.Set("restaurant_id", restaurantID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
