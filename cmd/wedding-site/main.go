package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"wedding-rsvp/internal/config"
	"wedding-rsvp/internal/countdown"
	"wedding-rsvp/internal/directory"
	"wedding-rsvp/internal/gifts"
	"wedding-rsvp/internal/handler"
	"wedding-rsvp/internal/metrics"
	"wedding-rsvp/internal/rsvp"
	"wedding-rsvp/internal/whatsapp"
)

func main() {
	cfg, err := config.LoadSite()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Site stopped")
	}
}

func run(ctx context.Context, cfg config.Site, log zerolog.Logger) error {
	metrics.Init()

	dir, err := directory.NewClient(cfg.DirectoryURL, cfg.DirectoryTimeout, config.Component(log, "Directory"))
	if err != nil {
		return err
	}

	sessions := rsvp.NewRegistry(dir, cfg.SessionIdleTTL, config.Component(log, "RSVP"))
	go sessions.Run(ctx)

	var notifier handler.Notifier
	if cfg.WhatsApp.Enabled() {
		svc, err := whatsapp.NewService(ctx, whatsapp.Config{
			DataDir:     cfg.WhatsApp.DataDir,
			NotifyPhone: cfg.WhatsApp.NotifyPhone,
			CountryCode: cfg.WhatsApp.CountryCode,
			CoupleNames: cfg.CoupleNames,
		}, config.Component(log, "WhatsApp"))
		if err != nil {
			return fmt.Errorf("initialize WhatsApp service: %w", err)
		}
		if err := svc.Connect(ctx); err != nil {
			return fmt.Errorf("connect to WhatsApp: %w", err)
		}
		defer svc.Disconnect()
		notifier = svc
	}

	h, err := handler.New(handler.Config{
		CoupleNames: cfg.CoupleNames,
		VenueName:   cfg.VenueName,
		VenueMapURL: cfg.VenueMapURL,
	}, sessions, gifts.Default(), countdown.NewTimer(cfg.WeddingDate), notifier, config.Component(log, "HTTP"))
	if err != nil {
		return err
	}

	mux := h.Routes()
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.WithLogging(config.Component(log, "HTTP"), mux),
		ReadHeaderTimeout: 10 * time.Second,
		// live countdown connections end with the process context
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.HTTPAddr).
			Str("directory", cfg.DirectoryURL).
			Time("wedding", cfg.WeddingDate).
			Msg("Wedding site listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
