package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bantuaku/peraturan-ingest/middleware"
)

// serveAdmin runs the /healthz and /metrics endpoints for continuous mode,
// on its own goroutine; it never touches the job queue, it only reports on it.
func serveAdmin(ctx context.Context, a *app) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"running": boolString(a.supervisor.IsRunning()),
		})
	})
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	handler := middleware.Chain(mux, middleware.RequestID, middleware.Logger, middleware.Recover)

	srv := &http.Server{Addr: a.cfg.AdminAddr, Handler: handler}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		a.log.Warn("admin server stopped", "error", err)
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
