package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
)

const serviceName = "collection-api"

// Client implements remote.CollectionClient against the upstream REST
// collection API. Transport retries and circuit breaking live in the wrapped
// HTTP client; this layer maps responses to typed errors.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
	logger  *slog.Logger
}

// New creates a new REST collection client.
func New(hc *httpclient.CircuitBreakerClient, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http:    hc,
		baseURL: baseURL,
		logger:  logger,
	}
}

// listResponse is the upstream response envelope for the collection read.
type listResponse struct {
	Data []domain.CollectionItem `json:"data"`
}

// List reads the full remote collection.
func (c *Client) List(ctx context.Context, token string) ([]domain.CollectionItem, error) {
	if token == "" {
		return nil, apperrors.Unauthenticated("collection read requires a credential")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/favorites", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.RemoteUnavailable(serviceName, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode collection response: %w", err)
	}

	if body.Data == nil {
		body.Data = []domain.CollectionItem{}
	}
	return body.Data, nil
}

// Add inserts a product into the remote collection.
func (c *Client) Add(ctx context.Context, token string, productID int64) error {
	return c.mutate(ctx, token, http.MethodPost, productID)
}

// Remove deletes a product from the remote collection.
func (c *Client) Remove(ctx context.Context, token string, productID int64) error {
	return c.mutate(ctx, token, http.MethodDelete, productID)
}

func (c *Client) mutate(ctx context.Context, token, method string, productID int64) error {
	if token == "" {
		return apperrors.Unauthenticated("collection update requires a credential")
	}

	url := fmt.Sprintf("%s/favorites/%d", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, method, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "collection mutation transport failure",
			slog.String("method", method),
			slog.Int64("product_id", productID),
			slog.String("error", err.Error()),
		)
		return apperrors.RemoteUnavailable(serviceName, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	_ = resp.Body.Close()

	return nil
}
