package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/knetproto/kindex/internal/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Serve runs the metrics/health HTTP server until ctx is cancelled. Serve
// errors other than a clean shutdown are logged, never fatal: losing
// observability must not stop indexing.
func Serve(ctx context.Context, addr string, log logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "metrics server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "metrics server stopped", "error", err)
	}
}
