package woocommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/storefront/internal/catalog"
)

const (
	// PageSize is the fixed number of products requested per page.
	PageSize = 100

	DefaultResourcePath = "/wp-json/wc/v3/products"

	defaultTimeout     = 30 * time.Second
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
	// defaultMaxPages caps stores that never report a total.
	defaultMaxPages = 10000

	totalHeader = "X-WP-Total"
)

// Credentials identify a store and the REST API key pair used for HTTP
// Basic authentication.
type Credentials struct {
	BaseURL        string `json:"url"`
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
}

// Validate checks that all credential parts are present.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("store URL is required")
	}
	if c.ConsumerKey == "" || c.ConsumerSecret == "" {
		return errors.New("consumer key and secret are required")
	}
	return nil
}

// Client interfaces with the WooCommerce product listing API
type Client struct {
	httpClient   *http.Client
	resourcePath string
	retryDelay   time.Duration
	maxPages     int
}

// NewClient creates a new WooCommerce API client. A zero timeout or empty
// resource path selects the defaults.
func NewClient(timeout time.Duration, resourcePath string) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if resourcePath == "" {
		resourcePath = DefaultResourcePath
	}
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		resourcePath: resourcePath,
		retryDelay:   initialRetryDelay,
		maxPages:     defaultMaxPages,
	}
}

// Page is one page of products.
type Page struct {
	Products []catalog.RawRecord
	// Total is the store-wide product count from X-WP-Total, or -1 when the
	// header is missing.
	Total int
}

// FetchPage fetches a single page, retrying rate limits and server errors.
func (c *Client) FetchPage(ctx context.Context, creds Credentials, page int) (*Page, error) {
	pageURL, err := c.pageURL(creds.BaseURL, page)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateRetryDelay(attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		var resp *Page
		resp, lastErr = c.doPageRequest(ctx, pageURL, creds)
		if lastErr == nil {
			return resp, nil
		}

		// Only retry on rate limits or server errors
		if !isRetryableError(lastErr) {
			return nil, lastErr
		}
		log.Printf("[WOOCOMMERCE] page %d attempt %d failed: %v", page, attempt+1, lastErr)
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// FetchAll requests pages in increasing order until a page returns fewer than
// PageSize products or the pages fetched cover the store-reported total. Any
// failure discards everything fetched so far. The
// returned total is the store-reported product count (or the number
// retrieved when the store does not report one).
func (c *Client) FetchAll(ctx context.Context, creds Credentials) ([]catalog.RawRecord, int, error) {
	var all []catalog.RawRecord
	total := -1

	for page := 1; ; page++ {
		if page > c.maxPages {
			return nil, 0, fmt.Errorf("store returned more than %d full pages", c.maxPages)
		}
		// Page boundaries are the only suspension point worth cancelling at.
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		resp, err := c.FetchPage(ctx, creds, page)
		if err != nil {
			return nil, 0, fmt.Errorf("page %d: %w", page, err)
		}

		if total < 0 && resp.Total >= 0 {
			total = resp.Total
		}
		all = append(all, resp.Products...)

		if len(resp.Products) < PageSize {
			break
		}
		if total >= 0 && page*PageSize >= total {
			break
		}
	}

	if total < 0 {
		total = len(all)
	}
	return all, total, nil
}

func (c *Client) pageURL(baseURL string, page int) (string, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/") + c.resourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid store URL %q", baseURL)
	}

	q := u.Query()
	q.Set("per_page", strconv.Itoa(PageSize))
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) doPageRequest(ctx context.Context, pageURL string, creds Credentials) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(creds.ConsumerKey, creds.ConsumerSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode >= 500 {
		return nil, &ServerError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()

	var products []map[string]any
	if err := decoder.Decode(&products); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	page := &Page{
		Products: make([]catalog.RawRecord, 0, len(products)),
		Total:    -1,
	}
	for _, p := range products {
		page.Products = append(page.Products, catalog.RecordFromMap(p))
	}
	if raw := resp.Header.Get(totalHeader); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			page.Total = n
		}
	}

	return page, nil
}

func (c *Client) calculateRetryDelay(attempt int) time.Duration {
	delay := c.retryDelay
	for i := 1; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}
