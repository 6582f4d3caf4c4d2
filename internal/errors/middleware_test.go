package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zd8899/isitjustme/internal/domain"
)

func getCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	_ = c.Write(m)
	return m.GetCounter().GetValue()
}

func runMiddleware(t *testing.T, handlerErr error) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/votes", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Middleware()(func(c echo.Context) error {
		return handlerErr
	})
	return rec, handler(c)
}

func TestMiddlewareWithStructuredError(t *testing.T) {
	HTTPErrorsTotal.Reset()

	rec, err := runMiddleware(t, ValidationError("invalid input"))
	require.NoError(t, err) // middleware writes the response itself

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid input", resp.Error)
	assert.Equal(t, TypeValidation, resp.Type)

	assert.Equal(t, 1.0, getCounterValue(HTTPErrorsTotal.WithLabelValues("validation")))
}

func TestMiddlewareMapsDomainSentinels(t *testing.T) {
	HTTPErrorsTotal.Reset()

	rec, err := runMiddleware(t, domain.ErrTargetNotFound)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, TypeNotFound, resp.Type)
}

func TestMiddlewareWithUnknownError(t *testing.T) {
	HTTPErrorsTotal.Reset()

	rec, err := runMiddleware(t, errors.New("boom"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, TypeInternal, resp.Type)
	// The raw cause never leaks to the client.
	assert.Equal(t, "internal server error", resp.Error)
}

func TestMiddlewareWithNoError(t *testing.T) {
	rec, err := runMiddleware(t, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewarePassesThroughEchoHTTPError(t *testing.T) {
	_, err := runMiddleware(t, echo.NewHTTPError(http.StatusTeapot, "teapot"))

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTeapot, httpErr.Code)
}
