package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func fakeResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_StructuredEnvelope(t *testing.T) {
	resp := fakeResponse(http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"product 42 not found"}}`)

	err := ParseResponseError(resp, "collection-api")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Contains(t, appErr.Message, "product 42 not found")
	assert.True(t, errors.Is(err, apperrors.ErrRemoteRejected))
}

func TestParseResponseError_Unauthorized(t *testing.T) {
	resp := fakeResponse(http.StatusUnauthorized, `{"error":{"code":"UNAUTHENTICATED","message":"token expired"}}`)

	err := ParseResponseError(resp, "collection-api")
	assert.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
	assert.Equal(t, http.StatusUnauthorized, apperrors.HTTPStatus(err))
}

func TestParseResponseError_UnstructuredBody(t *testing.T) {
	resp := fakeResponse(http.StatusBadGateway, "upstream exploded")

	err := ParseResponseError(resp, "collection-api")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrRemoteRejected))
	assert.Contains(t, err.Error(), "upstream exploded")
	assert.Equal(t, http.StatusBadGateway, apperrors.HTTPStatus(err))
}
