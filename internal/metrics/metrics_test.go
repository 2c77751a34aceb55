package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(CloseAttempts.WithLabelValues(OutcomeOccupied))
	CloseAttempts.WithLabelValues(OutcomeOccupied).Inc()
	if got := testutil.ToFloat64(CloseAttempts.WithLabelValues(OutcomeOccupied)); got != before+1 {
		t.Fatalf("close attempts = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(Arrangements.WithLabelValues("grid"))
	Arrangements.WithLabelValues("grid").Add(2)
	if got := testutil.ToFloat64(Arrangements.WithLabelValues("grid")); got != before+2 {
		t.Fatalf("grid arrangements = %v, want %v", got, before+2)
	}

	SessionState.Set(1)
	if got := testutil.ToFloat64(SessionState); got != 1 {
		t.Fatalf("session state = %v, want 1", got)
	}
}

func scrape(url string) (string, bool) {
	resp, err := http.Get(url)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false
	}
	return string(data), resp.StatusCode == http.StatusOK
}

func TestServeExposesMetrics(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, ln) }()

	ThemeChanges.Inc()

	url := "http://" + ln.Addr().String() + "/metrics"
	var body string
	deadline := time.Now().Add(2 * time.Second)
	for {
		var ok bool
		if body, ok = scrape(url); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("metrics endpoint never answered")
		}
		time.Sleep(20 * time.Millisecond)
	}
	if !strings.Contains(body, "workspace_theme_changes_total") {
		t.Fatalf("metrics body missing theme changes:\n%s", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve() error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}

func TestServeDisabled(t *testing.T) {
	if err := Serve(context.Background(), ""); err != nil {
		t.Fatalf("Serve() with no address: %v", err)
	}
}
