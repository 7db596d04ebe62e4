package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_HandlerExposesCounters(t *testing.T) {
	r := NewRegistry()
	r.OrdersCreated.Add(3)
	r.Uploads.WithLabelValues("ok").Inc()

	assert.Equal(t, 3.0, testutil.ToFloat64(r.OrdersCreated))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "legacy_orders_created_total 3")
	assert.Contains(t, string(body), `legacy_uploads_total{outcome="ok"} 1`)
}
