package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/grvbrk/yt-categorizer/internal/app"
	"github.com/grvbrk/yt-categorizer/internal/config"
	"github.com/grvbrk/yt-categorizer/internal/handlers"
	handler_analytics "github.com/grvbrk/yt-categorizer/internal/handlers/analytics"
	"github.com/grvbrk/yt-categorizer/internal/middlewares"
	"github.com/grvbrk/yt-categorizer/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApplication(t *testing.T) *app.Application {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		StoreDriver:    config.StoreSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "videos.db"),
		AllowedOrigins: []string{"https://app.example"},
		MaxChannels:    3,
	}

	videoStore, err := app.OpenVideoStore(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { videoStore.Close() })

	ingestion := services.NewIngestionService(nil, nil, videoStore, nil, logger)

	return &app.Application{
		Config:                    cfg,
		Logger:                    logger,
		VideoStore:                videoStore,
		IngestionService:          ingestion,
		MiddlewareHandler:         middlewares.NewMiddlewareHandler(logger, cfg.AllowedOrigins),
		ChannelHandler:            handlers.NewChannelHandler(ingestion, videoStore, logger, cfg.MaxChannels),
		VideoHandler:              handlers.NewVideoHandler(videoStore, logger),
		AnalyticsIngestionHandler: handler_analytics.NewAnalyticsIngestionHandler(nil, logger),
	}
}

func TestHomeAndHealth(t *testing.T) {
	r := SetupRoutes(testApplication(t))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"Hello"`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestVideosEndpointAgainstEmptyStore(t *testing.T) {
	r := SetupRoutes(testApplication(t))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/videos", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"videos": [],
		"pagination": {"currentPage": 1, "totalPages": 0, "totalCount": 0, "hasNext": false, "hasPrev": false}
	}`, rec.Body.String())
}

func TestPagingValidationThroughRouter(t *testing.T) {
	r := SetupRoutes(testApplication(t))

	for _, path := range []string{"/api/videos?page=0", "/api/videos?limit=101"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestTooManyChannelURLs(t *testing.T) {
	r := SetupRoutes(testApplication(t))

	path := "/api/channels/videos?channelUrls=" +
		"https://www.youtube.com/@a,https://www.youtube.com/@b,https://www.youtube.com/@c,https://www.youtube.com/@d"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Maximum of 3 channel URLs allowed"}`, rec.Body.String())
}

func TestIngestionsDisabled(t *testing.T) {
	r := SetupRoutes(testApplication(t))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ingestions", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCorsAllowsConfiguredOrigin(t *testing.T) {
	r := SetupRoutes(testApplication(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHugePageReadsPastTheEnd(t *testing.T) {
	r := SetupRoutes(testApplication(t))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/videos?page=9223372036854775807&limit=100", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"videos": [],
		"pagination": {"currentPage": 9223372036854775807, "totalPages": 0, "totalCount": 0, "hasNext": false, "hasPrev": true}
	}`, rec.Body.String())
}
