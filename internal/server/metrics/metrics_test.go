package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.HTTPMiddleware)
	r.Post("/admin/clients/revoke/{client_id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/clients/revoke/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/admin/clients/revoke/{client_id}", "404"))
	assert.Equal(t, 3.0, got)
}

func TestObserveAuthAndHandler(t *testing.T) {
	m := New()
	m.ObserveAuth("http", "login", "ok")
	m.ObserveAuth("http", "login", "stale_request")
	m.ObserveAuth("http", "login", "ok")
	m.DevicesEnrolled.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthResultsTotal.WithLabelValues("http", "login", "ok")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	assert.True(t, strings.Contains(text, `sidhilynx_auth_results_total{operation="login",result="stale_request",transport="http"} 1`))
	assert.True(t, strings.Contains(text, "sidhilynx_devices_enrolled_total 1"))
	assert.True(t, strings.Contains(text, "go_goroutines"))
}
