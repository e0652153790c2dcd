package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"qatrack/internal/api"
	"qatrack/internal/config"
	"qatrack/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, s *config.Settings) http.Handler {
	t.Helper()
	router, err := api.NewRouter(s, testutil.Logger())
	require.NoError(t, err)
	return router
}

func TestAPIHandler(t *testing.T) {
	router := newTestRouter(t, testutil.LocalSettings(t))

	tests := []struct {
		name           string
		host           string
		path           string
		expectedStatus int
		validate       func(t *testing.T, body []byte)
	}{
		{
			name:           "Health",
			host:           "192.168.1.13",
			path:           "/healthz",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, body []byte) {
				assert.JSONEq(t, `{"status":"ok"}`, string(body))
			},
		},
		{
			name:           "Settings are redacted",
			host:           "127.0.0.1:8000",
			path:           "/api/settings",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, body []byte) {
				assert.JSONEq(t, `{
					"debug": false,
					"databases": {
						"default": {
							"engine": "django.db.backends.postgresql_psycopg2",
							"name": "postgres",
							"user": "postgres",
							"password": "********",
							"host": "qatrack-postgres",
							"port": "5432"
						}
					},
					"allowed_hosts": ["192.168.1.13", "127.0.0.1"],
					"time_zone": "UTC"
				}`, string(body))
			},
		},
		{
			name:           "Single database",
			host:           "127.0.0.1",
			path:           "/api/settings/databases/default",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, body []byte) {
				var db config.Database
				require.NoError(t, json.Unmarshal(body, &db))
				assert.Equal(t, "qatrack-postgres", db.Host)
				assert.Equal(t, config.Port(5432), db.Port)
			},
		},
		{
			name:           "Unknown database",
			host:           "127.0.0.1",
			path:           "/api/settings/databases/replica",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Disallowed host",
			host:           "qatrack.example.com",
			path:           "/api/settings",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Metrics behind host check",
			host:           "127.0.0.1",
			path:           "/metrics",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.validate != nil {
				tt.validate(t, rec.Body.Bytes())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	router := newTestRouter(t, testutil.LocalSettings(t))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Host = "127.0.0.1"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	assert.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Host = "127.0.0.1"
	req.Header.Set("X-Request-ID", "upstream-id")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "upstream-id", rec.Header().Get("X-Request-ID"))
}

func TestDebugAllowsLocalhost(t *testing.T) {
	s := testutil.LocalSettings(t)
	s.Debug = true
	s.AllowedHosts = nil
	router := newTestRouter(t, s)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Host = "localhost:8000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
