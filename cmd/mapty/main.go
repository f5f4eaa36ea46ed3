package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mapty "github.com/claude/mapty"
	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/config"
	"github.com/claude/mapty/internal/geo"
	"github.com/claude/mapty/internal/logging"
	"github.com/claude/mapty/internal/mapview"
	"github.com/claude/mapty/internal/mcp"
	"github.com/claude/mapty/internal/server"
	"github.com/claude/mapty/internal/storage"
	"github.com/claude/mapty/internal/store"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	log.Info("mapty starting", "version", Version)

	// Open storage
	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	// Wire the controller to the headless views
	views := server.Views{Canvas: mapview.NewCanvas(), List: &app.List{}, Alerts: &app.Alerts{}}
	a := app.New(app.Deps{
		Store:    store.New(backend, log),
		Maps:     views.Canvas,
		Locator:  geo.FromConfig(cfg.Map.Home),
		List:     views.List,
		Notifier: views.Alerts,
		Log:      log,
	}, app.Options{
		Zoom:               cfg.Map.Zoom,
		GeolocationTimeout: cfg.Map.GeolocationTimeout,
	})
	if err := a.Start(ctx); err != nil {
		log.Error("failed to start", "error", err)
		os.Exit(1)
	}

	// Create server
	srv := server.New(a, views, log)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcp.New(mcp.Local{App: a}, Version, log)))

	// Serve embedded frontend
	web, err := fs.Sub(mapty.WebFS, "web")
	if err != nil {
		log.Error("failed to load embedded frontend", "error", err)
		os.Exit(1)
	}
	srv.SetFrontend(web)

	// Start server on tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
