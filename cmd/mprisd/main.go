// Command mprisd bridges a go-librespot playback daemon onto the MPRIS
// D-Bus interface and a small local HTTP status API.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ncspot/mprisd/internal/api"
	"github.com/ncspot/mprisd/internal/config"
	"github.com/ncspot/mprisd/internal/controller"
	"github.com/ncspot/mprisd/internal/events"
	"github.com/ncspot/mprisd/internal/library"
	"github.com/ncspot/mprisd/internal/mpris"
	"github.com/ncspot/mprisd/internal/queue"
	"github.com/ncspot/mprisd/internal/spotify"
	"github.com/ncspot/mprisd/internal/zeroconf"
)

func main() {
	var (
		addr   = flag.String("addr", "", "HTTP listen address (default from config)")
		cfgDir = flag.String("config-dir", "", "config directory (default: ~/.config/mprisd)")
		debug  = flag.Bool("debug", false, "enable debug logging")
		noDBus = flag.Bool("no-dbus", false, "skip MPRIS D-Bus registration")
		noMDNS = flag.Bool("no-mdns", false, "skip mDNS advertisement")
	)
	flag.Parse()

	// Configure logging
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Resolve config directory
	if *cfgDir == "" {
		dir, err := config.Dir()
		if err != nil {
			slog.Error("cannot determine config directory", "err", err)
			os.Exit(1)
		}
		*cfgDir = dir
	}
	if err := os.MkdirAll(*cfgDir, 0755); err != nil {
		slog.Error("cannot create config directory", "path", *cfgDir, "err", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*cfgDir)
	if err != nil {
		slog.Error("cannot load config", "err", err)
		os.Exit(1)
	}
	if *addr == "" {
		*addr = cfg.HTTPAddr
	}

	// Graceful shutdown context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Playback engine (go-librespot control connection)
	session := spotify.NewSession(cfg.LibrespotURL)
	go session.Run(ctx)

	// Play queue
	q := queue.New(session)

	// Saved-tracks library
	lib, err := library.New(*cfgDir)
	if err != nil {
		slog.Error("library initialization failed", "err", err)
		os.Exit(1)
	}
	defer lib.Close()

	// Catalog client
	catalog := spotify.NewAPIClient(cfg.APIBaseURL, cfg.APIToken)

	// Event bus and controller facade
	bus := events.NewBus()
	ctrl := controller.New(session, q, lib, bus)
	session.OnEvent(ctrl.HandleEvent)

	// MPRIS D-Bus presence
	if !*noDBus {
		mgr, err := mpris.NewManager(session, q, catalog, lib, ctrl)
		if err != nil {
			slog.Error("MPRIS registration failed", "err", err)
			os.Exit(1)
		}
		ctrl.AttachNotifier(mgr)
		go mgr.Run(ctx)
		slog.Info("MPRIS bus name registered", "name", mpris.BusName)
	}

	// Zeroconf mDNS registration
	if cfg.Zeroconf.Enabled && !*noMDNS {
		port := 0
		if parts := strings.SplitN(*addr, ":", 2); len(parts) == 2 && parts[1] != "" {
			if p, err := strconv.Atoi(parts[1]); err == nil {
				port = p
			}
		}
		if port > 0 {
			zc := zeroconf.New(cfg.Zeroconf.Name, port)
			go func() {
				if err := zc.Start(ctx); err != nil {
					slog.Warn("zeroconf failed", "err", err)
				}
			}()
		}
	}

	// HTTP server
	srv := &http.Server{
		Addr:         *addr,
		Handler:      api.NewRouter(ctrl, bus),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // 0 = no timeout (needed for SSE)
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("mprisd listening", "addr", *addr, "config", *cfgDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()

	// Flush pending library writes
	if err := lib.Flush(); err != nil {
		slog.Warn("failed to flush library", "err", err)
	}

	// Graceful HTTP shutdown
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Warn("server shutdown error", "err", err)
	}

	slog.Info("shutdown complete")
}
