package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/hostjobs/internal/validation"
)

func validationRequest(t *testing.T, body string) (*Server, echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate/host", bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return s, s.echo.NewContext(req, rec), rec
}

func TestValidateHost_Valid(t *testing.T) {
	s, c, rec := validationRequest(t, `{
		"@context": "https://schema.org",
		"@type": "ComputerSystem",
		"@id": "host:oss-01",
		"name": "oss-01",
		"ipAddress": "10.0.0.21",
		"location": "fra-1",
		"hostState": "packages_installed"
	}`)

	err := s.validateHost(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result validation.ValidationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Valid)
}

func TestValidateHost_InvalidState(t *testing.T) {
	s, c, rec := validationRequest(t, `{
		"@context": "https://schema.org",
		"@type": "ComputerSystem",
		"@id": "host:oss-01",
		"name": "oss-01",
		"hostState": "rebooting"
	}`)

	err := s.validateHost(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var result validation.ValidationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Valid)

	fields := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "hostState")
}

func TestValidateHost_MissingJSONLD(t *testing.T) {
	s, c, rec := validationRequest(t, `{"name": "oss-01", "hostState": "managed"}`)

	err := s.validateHost(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var result validation.ValidationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestValidateHost_MalformedJSON(t *testing.T) {
	s, c, rec := validationRequest(t, `{"name": `)

	err := s.validateHost(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
