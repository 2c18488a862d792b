// Package control implements the admin HTTP API: read-only BBO/depth
// lookups, an authenticated book-clear endpoint, and a liveness probe.
// It is the "process bootstrap" surface spec.md §6 leaves unnamed but a
// complete repository needs; adapted from the teacher's
// internal/router/router.go (logging, CORS, BindRouter shape).
package control

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/marketfeed/orderbook-engine/internal/book"
	"github.com/marketfeed/orderbook-engine/internal/control/middleware"
	"github.com/marketfeed/orderbook-engine/internal/dispatch"
	"github.com/marketfeed/orderbook-engine/internal/signal"
)

const defaultDepthLevels = 10

type statusWriter struct {
	http.ResponseWriter
	status int
	n      int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.n += n
	return n, err
}

func logging(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(sw, r)
		logger.Printf("%s %s %d %dB %s", r.Method, r.URL.Path, sw.status, sw.n, time.Since(start))
	})
}

// Cors is the teacher's permissive CORS middleware, reflecting the
// request's Origin/headers/method rather than hardcoding them.
func Cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			reqHdrs := r.Header.Get("Access-Control-Request-Headers")
			if reqHdrs == "" {
				reqHdrs = "Content-Type, Authorization"
			}
			w.Header().Set("Access-Control-Allow-Headers", reqHdrs)

			reqMethod := r.Header.Get("Access-Control-Request-Method")
			if reqMethod == "" {
				reqMethod = "GET, POST, PUT, DELETE, OPTIONS"
			}
			w.Header().Set("Access-Control-Allow-Methods", reqMethod)
			w.Header().Set("Access-Control-Max-Age", "86400")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BindRouterOpts bundles everything the admin routes need.
type BindRouterOpts struct {
	ServerRouter *http.ServeMux
	Router       *dispatch.Router
	TokenMaker   *middleware.JWTMaker
	Logger       *log.Logger
}

// BindRouter registers every admin route on opts.ServerRouter.
func BindRouter(opts BindRouterOpts) {
	auth := middleware.AuthMiddleware(opts.TokenMaker)

	opts.ServerRouter.Handle("GET /admin/bbo", logging(opts.Logger, http.HandlerFunc(bboHandler(opts.Router))))
	opts.ServerRouter.Handle("GET /admin/depth", logging(opts.Logger, http.HandlerFunc(depthHandler(opts.Router))))
	opts.ServerRouter.Handle("POST /admin/clear", logging(opts.Logger, auth(http.HandlerFunc(clearHandler(opts.Router)))))

	opts.ServerRouter.Handle("GET /healthz", logging(opts.Logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": 200,
			"health": "healthy",
		})
	})))
}

func bboHandler(router *dispatch.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sym := r.URL.Query().Get("symbol")
		if sym == "" {
			writeJSONError(w, http.StatusBadRequest, errors.New("symbol is required"))
			return
		}
		writeJSON(w, http.StatusOK, router.Snapshot(sym))
	}
}

func depthHandler(router *dispatch.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sym := r.URL.Query().Get("symbol")
		if sym == "" {
			writeJSONError(w, http.StatusBadRequest, errors.New("symbol is required"))
			return
		}
		levels := defaultDepthLevels
		if raw := r.URL.Query().Get("levels"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				levels = n
			}
		}

		bids, asks := router.DepthSnapshot(sym, levels)
		var vwapLevel int
		var vwapClass string
		router.WithEngine(sym, func(e *book.Engine) {
			vwapLevel, vwapClass = signal.VWAPLevelDetail(e, e.Window().VWAP())
		})

		writeJSON(w, http.StatusOK, map[string]any{
			"symbol":               sym,
			"bids":                 bids,
			"asks":                 asks,
			"vwap_level_10min":     vwapLevel,
			"vwap_classification":  vwapClass,
		})
	}
}

func clearHandler(router *dispatch.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sym := r.URL.Query().Get("symbol")
		if sym == "" {
			writeJSONError(w, http.StatusBadRequest, errors.New("symbol is required"))
			return
		}
		router.Clear(sym)
		writeJSON(w, http.StatusOK, map[string]any{"cleared": sym})
	}
}
