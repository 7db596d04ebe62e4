package main

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legacyorders/internal/config"
	"legacyorders/internal/platform/logger"
	sharedinfra "legacyorders/internal/shared/infrastructure"
	"legacyorders/internal/testhelpers"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("GIN_MODE", gin.TestMode)
	t.Setenv("QUERY_CACHE_TTL", "1m")
	cfg, err := config.FromEnv()
	require.NoError(t, err)
	return cfg
}

func TestApp_UploadThenQuery(t *testing.T) {
	a := newApp(testConfig(t), logger.Nop(), testhelpers.SetupTestDB(t), sharedinfra.DialectSQLite)
	defer a.Close()

	content := testhelpers.FixedWidthContent(t,
		testhelpers.Line(70, "Palmer Prosacco", 753, 3, "1836.74", "2021-03-08"),
		testhelpers.Line(70, "Palmer Prosacco", 753, 4, "0.26", "2021-03-08"),
	)
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "data_1.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/order/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/order?orderId=753", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"user_id":70,"name":"Palmer Prosacco","orders":[
		{"order_id":753,"total":"1837.00","date":"2021-03-08","products":[
			{"product_id":3,"value":"1836.74"},
			{"product_id":4,"value":"0.26"}
		]}
	]}]`, rec.Body.String())
}

func TestApp_HealthAndMetrics(t *testing.T) {
	a := newApp(testConfig(t), logger.Nop(), testhelpers.SetupTestDB(t), sharedinfra.DialectSQLite)
	defer a.Close()

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/order", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `order_queries_total{cache="miss"} 1`)
}

func TestApp_MetricsDisabled(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "false")
	a := newApp(testConfig(t), logger.Nop(), testhelpers.SetupTestDB(t), sharedinfra.DialectSQLite)
	defer a.Close()

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
