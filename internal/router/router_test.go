package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/handler"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/service"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/utils"
)

const secret = "router-secret"

type okReporter struct{}

func (okReporter) Report(context.Context) (model.IntegrityReport, error) {
	return model.IntegrityReport{Users: 2}, nil
}

type okRunner struct{ calls *int }

func (r okRunner) Run(context.Context) (service.RunSummary, error) {
	*r.calls++
	return service.RunSummary{RunID: "run-42"}, nil
}

func testServer(calls *int) http.Handler {
	return New(Handlers{
		Verification: &handler.VerificationHandler{Reporter: okReporter{}},
		Merged:       &handler.MergedHandler{Dataset: func() (model.Dataset, error) { return model.Dataset{}, nil }},
		Reload:       &handler.ReloadHandler{Runner: okRunner{calls: calls}},
	}, Options{JWTSecret: secret})
}

func request(h http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", "Bearer "+auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestReadRoutes(t *testing.T) {
	srv := testServer(new(int))

	assert.Equal(t, http.StatusOK, request(srv, http.MethodGet, "/healthz", "").Code)

	rec := request(srv, http.MethodGet, "/v1/verification", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"users":2`)
	assert.Contains(t, rec.Body.String(), `"passed":true`)

	rec = request(srv, http.MethodGet, "/v1/merged", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)

	rec = request(srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "go_goroutines"))
}

func TestReloadRequiresOperator(t *testing.T) {
	calls := 0
	srv := testServer(&calls)

	assert.Equal(t, http.StatusUnauthorized, request(srv, http.MethodPost, "/v1/reload", "").Code)
	assert.Zero(t, calls)

	tok, err := utils.NewOperatorToken(secret, "ops", time.Minute)
	require.NoError(t, err)
	rec := request(srv, http.MethodPost, "/v1/reload", tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "run-42")
	assert.Equal(t, 1, calls)

	assert.Equal(t, http.StatusMethodNotAllowed, request(srv, http.MethodGet, "/v1/reload", "").Code)
}
