package remote

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// CollectionClient is the contract for the user's remote collection
// (favorites) on the upstream service. All operations require a bearer
// credential; implementations must fail with an unauthenticated error and no
// network call when the token is known to be absent.
type CollectionClient interface {
	// List reads the full remote collection, newest first.
	List(ctx context.Context, token string) ([]domain.CollectionItem, error)

	// Add inserts a product into the remote collection.
	Add(ctx context.Context, token string, productID int64) error

	// Remove deletes a product from the remote collection.
	Remove(ctx context.Context, token string, productID int64) error
}

// Session carries the credential state supplied by the external
// authentication collaborator. The sync engine treats any change in these
// values as a trigger to reset its view.
type Session struct {
	Token         string
	UserID        string
	Authenticated bool
}
