package metrics

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Close protocol outcomes.
const (
	OutcomeConfirmed = "confirmed"
	OutcomeOccupied  = "occupied"
	OutcomeBusy      = "busy"
)

var (
	CloseAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workspace",
		Name:      "close_attempts_total",
		Help:      "Close protocol runs by outcome.",
	}, []string{"outcome"})

	Arrangements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workspace",
		Name:      "arrangements_total",
		Help:      "Window arrangements applied by strategy.",
	}, []string{"strategy"})

	BrokerCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workspace",
		Name:      "broker_commands_total",
		Help:      "Broker commands handled by the session.",
	}, []string{"command"})

	ThemeChanges = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "workspace",
		Name:      "theme_changes_total",
		Help:      "Palette theme switches.",
	})

	SessionState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "workspace",
		Name:      "session_state",
		Help:      "Current session state (0 starting, 1 running, 2 closing, 3 terminated).",
	})

	Visitors = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "workspace",
		Name:      "visitors",
		Help:      "Foreign windows counted on workspace surfaces at the last close attempt.",
	})
)

// Serve exposes /metrics on addr until ctx is cancelled. An empty addr
// disables the listener.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return serve(ctx, ln)
}

func serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Metrics listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
