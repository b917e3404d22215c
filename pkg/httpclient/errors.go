package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// UpstreamErrorResponse mirrors the `{error: {code, message}}` envelope used
// by the storefront's upstream services. It is used to parse structured error
// bodies from downstream HTTP calls.
type UpstreamErrorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an appropriate AppError. If the body matches the standard error
// envelope, the upstream message is preserved and passed through; otherwise a
// generic rejection carrying the status and raw body is returned.
//
// The caller should only invoke this when resp.StatusCode indicates an error.
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return apperrors.RemoteRejected(serviceName, resp.StatusCode,
			fmt.Sprintf("status %d (failed to read body: %v)", resp.StatusCode, err))
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return apperrors.Unauthenticated(serviceName + " rejected the credential")
	}

	var upstream UpstreamErrorResponse
	if json.Unmarshal(bodyBytes, &upstream) == nil && upstream.Error != nil {
		return apperrors.RemoteRejected(serviceName, resp.StatusCode, upstream.Error.Message)
	}

	// Unstructured error body.
	return apperrors.RemoteRejected(serviceName, resp.StatusCode,
		fmt.Sprintf("status %d: %s", resp.StatusCode, string(bodyBytes)))
}
