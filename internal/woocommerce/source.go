package woocommerce

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrlokans/storefront/internal/catalog"
)

// Source adapts the paginated product API to catalog.Source.
type Source struct {
	client *Client
	creds  Credentials
}

// NewSource creates a catalog source for one store.
func NewSource(client *Client, creds Credentials) *Source {
	return &Source{client: client, creds: creds}
}

func (s *Source) Origin() catalog.Origin { return catalog.OriginWooCommerce }

// Read fetches every product page. The fetch phase is all-or-nothing: a
// failed page aborts the read and nothing fetched so far is returned.
func (s *Source) Read(ctx context.Context) (*catalog.Batch, error) {
	if err := s.creds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrSourceUnreachable, err)
	}

	records, total, err := s.client.FetchAll(ctx, s.creds)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", catalog.ErrSourceUnreachable, err)
	}

	return &catalog.Batch{
		Origin:         catalog.OriginWooCommerce,
		Records:        records,
		TotalAvailable: total,
	}, nil
}

// Compile-time interface check
var _ catalog.Source = (*Source)(nil)
