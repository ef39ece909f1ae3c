package woocommerce

import (
	"errors"
	"fmt"
)

// ErrUnauthorized indicates the consumer key/secret pair was rejected
var ErrUnauthorized = errors.New("woocommerce credentials rejected")

// ErrRateLimited indicates the store rate limit was exceeded
var ErrRateLimited = errors.New("woocommerce API rate limit exceeded")

// ServerError represents a 5xx error from the store
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("WooCommerce server error: HTTP %d", e.StatusCode)
}
