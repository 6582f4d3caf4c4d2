package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveness(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	rec := doRequest(t, srv, jsonRequest(t, http.MethodGet, "/health/live", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestReadiness_AllChecksPass(t *testing.T) {
	checks := []HealthCheck{
		{Name: "postgres", Check: func(context.Context) error { return nil }},
		{Name: "redis", Check: func(context.Context) error { return nil }},
	}
	srv := NewServer(testConfig(), &mockAppService{}, nil, nil, checks)

	rec := doRequest(t, srv, jsonRequest(t, http.MethodGet, "/health/ready", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp["status"])
}

func TestReadiness_FailingCheckNamed(t *testing.T) {
	checks := []HealthCheck{
		{Name: "postgres", Check: func(context.Context) error { return nil }},
		{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
	}
	srv := NewServer(testConfig(), &mockAppService{}, nil, nil, checks)

	rec := doRequest(t, srv, jsonRequest(t, http.MethodGet, "/health/ready", ""))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp["status"])
	assert.Equal(t, "redis", resp["failed_check"])
}

func TestVersionEndpoint(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	rec := doRequest(t, srv, jsonRequest(t, http.MethodGet, "/version", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "version")
}
