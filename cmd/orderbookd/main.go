// Command orderbookd is the production process: it reads the binary feed,
// routes messages to per-symbol book engines, drives the grid clock, and
// serves the admin HTTP API and the websocket signal feed. Bootstrap
// shape is adapted from the teacher's cmd/main.go: signal.NotifyContext
// for graceful shutdown, a single http.Server, background goroutines for
// the hub and feed reader.
package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marketfeed/orderbook-engine/internal/config"
	"github.com/marketfeed/orderbook-engine/internal/control"
	"github.com/marketfeed/orderbook-engine/internal/control/middleware"
	"github.com/marketfeed/orderbook-engine/internal/dispatch"
	"github.com/marketfeed/orderbook-engine/internal/feed"
	"github.com/marketfeed/orderbook-engine/internal/griddriver"
	"github.com/marketfeed/orderbook-engine/internal/sigwriter"
	"github.com/marketfeed/orderbook-engine/internal/wsfeed"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.Default()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	tokenMaker, err := middleware.NewJWTMaker(cfg.JWTSecret)
	if err != nil {
		logger.Fatalf("jwt maker: %v", err)
	}

	router := dispatch.New()
	go router.Run()

	hub := wsfeed.NewHub(logger)
	go hub.Run(rootCtx)

	csvFile, err := os.OpenFile(cfg.SignalCSVPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.Fatalf("open signal csv: %v", err)
	}
	writer := sigwriter.New(csvFile, cfg.SigWriterFlushRows, cfg.SigWriterFlushInterval)

	driver := griddriver.New(router, cfg.GridTickInterval, writer, hub, logger)
	go driver.Run(rootCtx)

	serveMux := http.NewServeMux()
	serveMux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		wsfeed.ServeWS(hub, w, r)
	})
	control.BindRouter(control.BindRouterOpts{
		ServerRouter: serveMux,
		Router:       router,
		TokenMaker:   tokenMaker,
		Logger:       logger,
	})
	logger.Println("finished binding router")

	corsServeMux := control.Cors(serveMux)
	server := http.Server{
		Addr:    cfg.AdminAddr,
		Handler: corsServeMux,
	}

	go func() {
		logger.Printf("admin HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen error: %v", err)
		}
	}()

	go runFeed(rootCtx, cfg, router, logger)

	<-rootCtx.Done()
	logger.Println("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v; forcing close", err)
		_ = server.Close()
	}

	if err := writer.Flush(); err != nil {
		logger.Printf("final signal flush failed: %v", err)
	}
	_ = csvFile.Close()

	logger.Println("server stopped")
}

// runFeed dials the feed source and applies every decoded message to the
// router until ctx is cancelled or the connection drops. Reconnection is
// left to the surrounding process supervisor, matching the teacher's
// habit of keeping cmd/main.go's own retry logic minimal.
func runFeed(ctx context.Context, cfg config.Config, router *dispatch.Router, logger *log.Logger) {
	if cfg.FeedMode == "file" {
		f, err := os.Open(cfg.FeedAddr)
		if err != nil {
			logger.Printf("feed: open %s: %v", cfg.FeedAddr, err)
			return
		}
		defer f.Close()
		applyFeed(feed.NewDecoder(f, logger), router)
		return
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", cfg.FeedAddr)
	if err != nil {
		logger.Printf("feed: dial %s: %v", cfg.FeedAddr, err)
		return
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	applyFeed(feed.NewDecoder(conn, logger), router)
}

func applyFeed(dec *feed.Decoder, router *dispatch.Router) {
	for {
		msg, err := dec.Next()
		if err != nil {
			return
		}
		router.Dispatch(msg)
	}
}
