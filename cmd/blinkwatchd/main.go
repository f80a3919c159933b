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

	"github.com/blinkwatch/blinkwatch/internal/alertlog"
	"github.com/blinkwatch/blinkwatch/internal/api"
	"github.com/blinkwatch/blinkwatch/internal/config"
	"github.com/blinkwatch/blinkwatch/internal/hub"
	"github.com/blinkwatch/blinkwatch/internal/metrics"
	"github.com/blinkwatch/blinkwatch/internal/monitor"
	"github.com/blinkwatch/blinkwatch/internal/notify"
	"github.com/blinkwatch/blinkwatch/internal/provider"
	"github.com/blinkwatch/blinkwatch/internal/session"
	"github.com/blinkwatch/blinkwatch/internal/sysmon"
	"github.com/blinkwatch/blinkwatch/internal/tracker"
	"github.com/blinkwatch/blinkwatch/internal/ws"
)

// alertHistorySize bounds the in-memory alert log exposed by the API.
const alertHistorySize = 100

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("blinkwatchd starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"provider_mode", cfg.Provider.Mode,
		"ear_threshold", cfg.Tracking.EARThreshold,
		"consecutive_frames", cfg.Tracking.ConsecutiveFrames,
		"max_frame_skip", cfg.Tracking.MaxFrameSkip,
		"http_port", cfg.Server.HTTPPort,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	prov, src, err := buildProvider(cfg)
	if err != nil {
		slog.Error("failed to build landmark provider", "err", err)
		os.Exit(1)
	}

	observers := hub.New()
	trk := tracker.New(cfg.Tracking, prov, observers)

	// Alert delivery: structured log always, desktop and webhooks per config.
	sinks := notify.MultiSink{notify.SlogSink{}}
	if cfg.Alerts.Desktop {
		sinks = append(sinks, notify.DesktopSink{})
	}
	if len(cfg.Alerts.Webhooks) > 0 {
		sinks = append(sinks, notify.NewWebhookSink(cfg.Alerts.Webhooks))
	}

	history := alertlog.New(alertHistorySize)
	mon := monitor.New(cfg.Alerts, sinks, history)
	if err := observers.Subscribe("monitor", mon); err != nil {
		slog.Error("failed to subscribe blink-rate monitor", "err", err)
		os.Exit(1)
	}

	// Background system-stats poller for the dashboard.
	stats := sysmon.New(cfg.Stats.PollInterval)
	go stats.Run(ctx)

	// WebSocket hub — pushes the tracking state to dashboard clients.
	wsHub := ws.New(func() interface{} {
		return api.SnapshotResponse{
			Snapshot: trk.Snapshot(),
			Pipeline: trk.Stats(),
			System:   stats.Last(),
		}
	}, cfg.Server.WSInterval)
	go wsHub.Run(ctx)

	// Combined HTTP server: REST API + metrics + WebSocket hub on one port.
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", api.New(trk, mon, history, stats))
	httpMux.Handle("/metrics", metrics.New(trk, mon))
	httpMux.Handle("/ws/stream", wsHub)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	// Config hot reload. Applied on the tick goroutine so the pipeline
	// stays single-writer.
	reload := make(chan *config.Config, 1)
	go func() {
		err := config.Watch(ctx, *configPath, func(next *config.Config) {
			select {
			case reload <- next:
			default:
				slog.Warn("config reload dropped, previous reload still pending")
			}
		})
		if err != nil && ctx.Err() == nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	sessionStart := time.Now()
	runPipeline(ctx, trk, src, reload, cfg.Tracking.FrameInterval)

	slog.Info("blinkwatchd shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck

	totalBlinks := trk.BlinkCount()
	if err := trk.Close(); err != nil {
		slog.Warn("tracker close", "err", err)
	}

	if rep := session.New(cfg.Session); rep != nil {
		if err := rep.Report(shutdownCtx, sessionStart, time.Now(), totalBlinks); err != nil {
			slog.Warn("session report failed", "err", err)
		} else {
			slog.Info("session reported", "total_blinks", totalBlinks)
		}
	}
}

// buildProvider assembles the landmark provider and frame source selected by
// the config. Mode validity was already checked at load time.
func buildProvider(cfg *config.Config) (provider.Provider, provider.Source, error) {
	switch cfg.Provider.Mode {
	case "sim":
		// Roughly one 100ms blink every 3 seconds at the default tick rate.
		return provider.NewSimulator(90, 3, 0), provider.NewTickSource(), nil
	case "remote":
		return provider.NewRemote(cfg.Provider, cfg.Tracking),
			provider.NewHTTPSource(cfg.Provider.FrameURL), nil
	default:
		return nil, nil, fmt.Errorf("provider mode %q unknown", cfg.Provider.Mode)
	}
}

// runPipeline drives the tracking loop until ctx is cancelled. Everything
// that mutates tracker state runs here, on one goroutine: frame processing
// and hot-reloaded tuning changes.
func runPipeline(ctx context.Context, trk *tracker.Tracker, src provider.Source, reload <-chan *config.Config, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case next := <-reload:
			trk.ApplyTuning(next.Tracking)
		case <-ticker.C:
			frame, err := src.Next(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("frame source failed", "err", err)
				continue
			}
			if _, err := trk.ProcessFrame(ctx, frame); err != nil {
				if errors.Is(err, tracker.ErrClosed) || ctx.Err() != nil {
					return
				}
				slog.Warn("frame processing failed", "seq", frame.Seq, "err", err)
			}
		}
	}
}
