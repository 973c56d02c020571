package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/skribly/skribly-backend/internal"
	"github.com/skribly/skribly-backend/internal/config"
	"github.com/skribly/skribly-backend/internal/game"
	"github.com/skribly/skribly-backend/internal/registry"
	"github.com/skribly/skribly-backend/internal/server"
	"github.com/skribly/skribly-backend/internal/words"
	"github.com/skribly/skribly-backend/internal/ws"
)

func main() {
	cfg := config.Load()

	reg := registry.New()
	wordSvc := words.New(cfg.WordsDir)

	hub := ws.NewHub(reg)
	engine := game.NewEngine(reg, wordSvc, hub, game.Timings{
		WordSelection: cfg.WordSelectionTime,
		ResultDisplay: cfg.ResultDisplayTime,
		Intermission:  cfg.IntermissionTime,
	})
	hub.SetHandler(game.NewRouter(reg, hub, engine))

	srv := server.New(cfg, reg, wordSvc, hub, engine)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepStaleRooms(ctx, reg, engine)
	if cfg.SelfPingURL != "" {
		go selfPing(ctx, cfg.SelfPingURL, cfg.SelfPingInterval)
	}

	go func() {
		log.Printf("[main] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] graceful shutdown failed: %v", err)
	}
}

// sweepStaleRooms periodically drops empty and expired rooms and tears down
// their timers.
func sweepStaleRooms(ctx context.Context, reg *registry.Registry, engine *game.Engine) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, roomID := range reg.CleanupStaleRooms(internal.RoomMaxAge) {
				engine.CleanupRoom(roomID)
			}
		}
	}
}

// selfPing keeps free-tier hosts from idling the process out.
func selfPing(ctx context.Context, url string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	client := &http.Client{Timeout: 10 * time.Second}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			resp, err := client.Get(url)
			if err != nil {
				log.Printf("[selfPing] ping failed: %v", err)
				continue
			}
			resp.Body.Close()
		}
	}
}
