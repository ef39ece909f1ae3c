package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/storefront/internal/catalog"
)

func newTestClient() *Client {
	c := NewClient(5*time.Second, "")
	c.retryDelay = time.Millisecond
	return c
}

func products(from, n int) []map[string]any {
	out := make([]map[string]any, 0, n)
	for i := from; i < from+n; i++ {
		out = append(out, map[string]any{"id": i, "name": fmt.Sprintf("Book %d", i), "price": "100"})
	}
	return out
}

// storeServer serves total products in pages of PageSize.
func storeServer(t *testing.T, total int, requests *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)

		user, pass, ok := r.BasicAuth()
		if !ok || user != "ck_test" || pass != "cs_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "/wp-json/wc/v3/products", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		assert.NoError(t, err)

		start := (page - 1) * PageSize
		n := total - start
		if n > PageSize {
			n = PageSize
		}
		if n < 0 {
			n = 0
		}

		w.Header().Set("X-WP-Total", strconv.Itoa(total))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(products(start+1, n))
	}))
}

func testCreds(url string) Credentials {
	return Credentials{BaseURL: url, ConsumerKey: "ck_test", ConsumerSecret: "cs_test"}
}

func TestClient_FetchAll(t *testing.T) {
	tests := []struct {
		name         string
		total        int
		wantRequests int32
	}{
		{name: "two full pages and a short one", total: 250, wantRequests: 3},
		{name: "exact multiple stops at the reported total", total: 200, wantRequests: 2},
		{name: "single short page", total: 7, wantRequests: 1},
		{name: "empty store", total: 0, wantRequests: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests int32
			server := storeServer(t, tt.total, &requests)
			defer server.Close()

			records, total, err := newTestClient().FetchAll(context.Background(), testCreds(server.URL+"/"))

			require.NoError(t, err)
			assert.Len(t, records, tt.total)
			assert.Equal(t, tt.total, total)
			assert.Equal(t, tt.wantRequests, atomic.LoadInt32(&requests))
			if tt.total > 0 {
				assert.Equal(t, "1", records[0]["id"].Text())
				assert.Equal(t, strconv.Itoa(tt.total), records[len(records)-1]["id"].Text())
			}
		})
	}
}

func TestClient_FetchAllWithoutTotalHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(products(1, 3))
	}))
	defer server.Close()

	records, total, err := newTestClient().FetchAll(context.Background(), testCreds(server.URL))

	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, 3, total)
}

func TestClient_FetchAllStopsAtReportedTotal(t *testing.T) {
	// A store that ignores the page parameter keeps returning full pages.
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Header().Set("X-WP-Total", "250")
		_ = json.NewEncoder(w).Encode(products(1, PageSize))
	}))
	defer server.Close()

	records, total, err := newTestClient().FetchAll(context.Background(), testCreds(server.URL))

	require.NoError(t, err)
	assert.Equal(t, 250, total)
	assert.Len(t, records, 3*PageSize)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestClient_FetchAllCapsPagesWithoutTotal(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		_ = json.NewEncoder(w).Encode(products(1, PageSize))
	}))
	defer server.Close()

	client := newTestClient()
	client.maxPages = 4

	records, _, err := client.FetchAll(context.Background(), testCreds(server.URL))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than 4 full pages")
	assert.Nil(t, records)
	assert.Equal(t, int32(4), atomic.LoadInt32(&requests))
}

func TestClient_Unauthorized(t *testing.T) {
	var requests int32
	server := storeServer(t, 10, &requests)
	defer server.Close()

	creds := testCreds(server.URL)
	creds.ConsumerSecret = "wrong"

	_, _, err := newTestClient().FetchAll(context.Background(), creds)

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests), "credential failures are not retried")
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(products(1, 2))
	}))
	defer server.Close()

	records, _, err := newTestClient().FetchAll(context.Background(), testCreds(server.URL))

	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, _, err := newTestClient().FetchAll(context.Background(), testCreds(server.URL))

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(maxRetries), atomic.LoadInt32(&requests))
}

// cancelAfterResponse buffers each response body and then cancels the
// request context, simulating a cancellation that lands between pages.
type cancelAfterResponse struct {
	cancel context.CancelFunc
}

func (c cancelAfterResponse) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	c.cancel()
	return resp, nil
}

func TestClient_CancelledBetweenPages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		_ = json.NewEncoder(w).Encode(products(1, PageSize))
	}))
	defer server.Close()

	client := newTestClient()
	client.httpClient = &http.Client{Transport: cancelAfterResponse{cancel: cancel}}

	_, _, err := client.FetchAll(ctx, testCreds(server.URL))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestClient_InvalidStoreURL(t *testing.T) {
	_, err := newTestClient().FetchPage(context.Background(), testCreds("not a url"), 1)
	assert.Error(t, err)
}

func TestCredentials_Validate(t *testing.T) {
	assert.NoError(t, testCreds("https://shop.example").Validate())
	assert.Error(t, Credentials{ConsumerKey: "k", ConsumerSecret: "s"}.Validate())
	assert.Error(t, Credentials{BaseURL: "https://shop.example", ConsumerKey: "k"}.Validate())
}

func TestSource_Read(t *testing.T) {
	t.Run("successful fetch", func(t *testing.T) {
		var requests int32
		server := storeServer(t, 120, &requests)
		defer server.Close()

		batch, err := NewSource(newTestClient(), testCreds(server.URL)).Read(context.Background())

		require.NoError(t, err)
		assert.Equal(t, catalog.OriginWooCommerce, batch.Origin)
		assert.Len(t, batch.Records, 120)
		assert.Equal(t, 120, batch.TotalAvailable)
	})

	t.Run("mid-fetch failure discards fetched pages", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "2" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(products(1, PageSize))
		}))
		defer server.Close()

		batch, err := NewSource(newTestClient(), testCreds(server.URL)).Read(context.Background())

		assert.Nil(t, batch)
		assert.ErrorIs(t, err, catalog.ErrSourceUnreachable)
	})

	t.Run("unreachable host", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := NewSource(newTestClient(), testCreds(url)).Read(context.Background())

		assert.ErrorIs(t, err, catalog.ErrSourceUnreachable)
	})

	t.Run("missing credentials", func(t *testing.T) {
		_, err := NewSource(newTestClient(), Credentials{BaseURL: "https://shop.example"}).Read(context.Background())
		assert.ErrorIs(t, err, catalog.ErrSourceUnreachable)
	})

	t.Run("cancellation is not reported as unreachable", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewSource(newTestClient(), testCreds("https://shop.example")).Read(ctx)

		assert.True(t, errors.Is(err, context.Canceled))
		assert.False(t, errors.Is(err, catalog.ErrSourceUnreachable))
	})
}
