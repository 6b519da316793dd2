// Command mediamath-mcp serves the ad-platform tool server over HTTP: a
// JSON-RPC message endpoint, a per-session SSE event stream, and seeded demo
// data in the in-memory entity store.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	mcp "github.com/hypermindz/mediamath-mcp"
	"github.com/hypermindz/mediamath-mcp/internal/auth"
	"github.com/hypermindz/mediamath-mcp/internal/config"
	"github.com/hypermindz/mediamath-mcp/servers/mediamath"
	"github.com/hypermindz/mediamath-mcp/store"
)

const serverVersion = "0.3.0"

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server exited", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	st := store.New()
	if err := mediamath.Seed(st); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}

	sessions := mcp.NewSessionManager(
		mcp.WithSessionTTL(cfg.SessionTTL.Duration),
		mcp.WithSweepInterval(cfg.SweepInterval.Duration),
		mcp.WithSessionLogger(logger),
	)
	defer sessions.Close()

	notifier := mcp.NewNotificationServer(sessions,
		mcp.WithKeepAliveInterval(cfg.KeepAliveInterval.Duration),
		mcp.WithNotificationLogger(logger),
	)
	defer notifier.Close()

	domain := mediamath.NewServer(st,
		mediamath.WithNotifier(notifier),
		mediamath.WithLogger(logger),
	)

	tools := mcp.NewToolRegistry(logger)
	if err := domain.RegisterTools(tools); err != nil {
		return fmt.Errorf("register tools: %w", err)
	}

	prompts := mcp.NewPromptRegistry()
	if err := domain.RegisterPrompts(prompts); err != nil {
		return fmt.Errorf("register prompts: %w", err)
	}

	server := mcp.NewServer(
		mcp.Info{Name: "mediamath-mcp", Version: serverVersion},
		sessions,
		mcp.WithToolRegistry(tools),
		mcp.WithPromptRegistry(prompts),
		mcp.WithNotifier(notifier),
		mcp.WithServerLogger(logger),
		mcp.WithInstructions("Ad-platform tool server. Call initialize first, keep the "+
			"Mcp-Session-Id header from the reply, and open the events endpoint with it "+
			"to receive entity-change notifications."),
	)

	authn := auth.New(cfg.Auth.APIKeys, cfg.Auth.JWTSecret, logger)

	mux := http.NewServeMux()
	mux.Handle(cfg.MessagePath, authn.Middleware(server.HandleMessage()))
	mux.Handle(cfg.EventsPath, authn.Middleware(notifier.HandleEvents()))

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening",
			slog.String("addr", cfg.Addr),
			slog.String("message", cfg.MessagePath),
			slog.String("events", cfg.EventsPath),
			slog.Int("tools", tools.Len()),
			slog.Int("prompts", prompts.Len()))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		notifier.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
