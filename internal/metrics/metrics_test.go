package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveEvent(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveEvent("applied", 10*time.Millisecond)
	m.ObserveEvent("applied", 20*time.Millisecond)
	m.ObserveEvent("noop", time.Millisecond)

	if got := testutil.ToFloat64(m.events.WithLabelValues("applied")); got != 2 {
		t.Errorf("applied = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.events.WithLabelValues("noop")); got != 1 {
		t.Errorf("noop = %v, want 1", got)
	}
}

func TestObserveEventNil(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.ObserveEvent("applied", time.Millisecond)
}

func TestMiddlewareAndHandler(t *testing.T) {
	t.Parallel()

	m := New()
	router := mux.NewRouter()
	router.Use(m.Middleware)
	router.HandleFunc("/things/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	router.Handle("/metrics", m.Handler())

	for _, id := range []string{"1", "2"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/"+id, nil))
	}

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/things/{id}", "202")); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "slackchat_http_requests_total") {
		t.Errorf("/metrics output missing slackchat_http_requests_total")
	}
}
