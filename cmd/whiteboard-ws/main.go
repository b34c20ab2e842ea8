// Command whiteboard-ws runs the realtime whiteboard sync server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/config"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/directory"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/handlers"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/hub"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/middleware"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/presence"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/protocol"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/transport"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(logger, "whiteboard")
	if err != nil {
		logger.Error("load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	limits := &middleware.Limits{
		MaxWhiteboards:      cfg.Limits.MaxWhiteboards,
		MaxSessionsPerBoard: cfg.Limits.MaxSessionsPerBoard,
		MaxShapesPerCanvas:  cfg.Limits.MaxShapesPerCanvas,
		MaxMessageSize:      cfg.Limits.MaxMessageSize,
		MessagesPerSecond:   cfg.Limits.MessagesPerSecond,
		BurstSize:           cfg.Limits.BurstSize,
	}

	service := directory.NewInMemory()
	boards := hub.New(service, cfg.Limits.MaxWhiteboards, logger)
	tracker := presence.NewTracker(logger)
	broadcaster := hub.NewBroadcaster(logger)
	router := handlers.NewRouter(protocol.NewValidator(), limits, tracker, broadcaster, logger)
	ipLimiter := middleware.NewIPRateLimit(cfg.Limits.ConnectionsPerMinute, cfg.Limits.ConnectionBurst)
	server := transport.NewServer(cfg, boards, router, ipLimiter, limits, logger)

	go cleanupLoop(ctx, cfg, boards, ipLimiter, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", server.HandleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("whiteboard sync server started", "address", cfg.Server.Address)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// cleanupLoop expires idle whiteboards and stale IP limiters.
func cleanupLoop(ctx context.Context, cfg *config.Config, boards *hub.Hub, ipLimiter *middleware.IPRateLimit, logger *slog.Logger) {
	ticker := time.NewTicker(cfg.Transport.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			boards.Cleanup(cfg.Transport.BoardIdleExpiry, cfg.Transport.BoardMaxAge)
			ipLimiter.Cleanup()
			logger.Debug("cleanup pass complete", "open_boards", boards.BoardCount())
		}
	}
}
