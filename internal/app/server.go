package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dinotail/dinotail/internal/logging"
	"github.com/dinotail/dinotail/internal/metrics"
)

const metricsShutdownTimeout = 2 * time.Second

// serveMetrics binds addr and serves /metrics until ctx is cancelled. The
// bind happens before returning so a bad address fails startup. It returns
// the bound address.
func serveMetrics(ctx context.Context, addr string, collector *metrics.Collector, logger *logging.Logger) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("cannot bind metrics %s: %w", addr, err)
	}

	if logger == nil {
		logger = logging.Nop()
	}
	log := logger.WithComponent("metrics")
	host, _, _ := net.SplitHostPort(addr)
	if host == "0.0.0.0" || host == "" || host == "::" {
		log.Warn("metrics server bound to all interfaces", "addr", addr)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", collector.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics server started", "addr", ln.Addr().String())
	return ln.Addr().String(), nil
}
