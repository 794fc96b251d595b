package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RahulJ0hn/Clarifi/internal/config"
	"github.com/RahulJ0hn/Clarifi/internal/errorwrapper"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fetchTestPage = `<html><head><title>Status Page</title></head>
<body><main><p>All systems operational.</p></main></body></html>`

func shrinkDelays(t *testing.T) {
	t.Helper()
	old := delayUnit
	delayUnit = time.Millisecond
	t.Cleanup(func() { delayUnit = old })
}

func newTestFetcher() *PageFetcher {
	cfg := config.NewDefaultFetcherConfig()
	cfg.HTTPTimeoutSeconds = 5
	return NewPageFetcher(cfg, zerolog.Nop())
}

func TestPageFetcher_FetchPage_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept"))
		_, _ = w.Write([]byte(fetchTestPage))
	}))
	defer server.Close()

	result, err := newTestFetcher().FetchPage(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Status Page", result.Title)
	assert.Contains(t, result.Text, "All systems operational.")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, server.URL, result.URL)
}

func TestPageFetcher_FetchPage_ForbiddenThenReferrerRetry(t *testing.T) {
	shrinkDelays(t)

	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		if r.Header.Get("Referer") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(fetchTestPage))
	}))
	defer server.Close()

	result, err := newTestFetcher().FetchPage(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Status Page", result.Title)
	// first attempt blocked, immediate retry carries the referrer
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
}

func TestPageFetcher_FetchPage_RateLimitedThenRecovered(t *testing.T) {
	shrinkDelays(t)

	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(fetchTestPage))
	}))
	defer server.Close()

	result, err := newTestFetcher().FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Status Page", result.Title)
}

func TestPageFetcher_FetchPage_NotFoundIsTerminal(t *testing.T) {
	shrinkDelays(t)

	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestFetcher().FetchPage(context.Background(), server.URL)
	require.Error(t, err)

	assert.True(t, errors.Is(err, errorwrapper.ErrPageNotFound))
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestPageFetcher_FetchPage_PersistentFailureExhaustsRetries(t *testing.T) {
	shrinkDelays(t)

	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestFetcher().FetchPage(context.Background(), server.URL)
	require.Error(t, err)

	assert.True(t, errors.Is(err, errorwrapper.ErrUnavailable))
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestPageFetcher_FetchPage_ContentTooLarge(t *testing.T) {
	shrinkDelays(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>" + strings.Repeat("x", 4096) + "</body></html>"))
	}))
	defer server.Close()

	cfg := config.NewDefaultFetcherConfig()
	cfg.MaxContentSize = 1024
	fetcher := NewPageFetcher(cfg, zerolog.Nop())

	_, err := fetcher.FetchPage(context.Background(), server.URL)
	require.Error(t, err)

	var tooLarge *errorwrapper.ContentTooLargeError
	assert.True(t, errors.As(err, &tooLarge))
}

func TestPageFetcher_FetchPage_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(fetchTestPage))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher().FetchPage(ctx, server.URL)
	require.Error(t, err)
}

func TestAlternateURLs(t *testing.T) {
	alternates := alternateURLs("https://coinmarketcap.com/currencies/bitcoin/")
	require.Len(t, alternates, 3)
	assert.Equal(t, "https://coinmarketcap.com/trending-cryptocurrencies", alternates[0])

	// subdomains of a known host still resolve
	assert.NotEmpty(t, alternateURLs("https://www.finance.yahoo.com/quote/AAPL"))

	assert.Empty(t, alternateURLs("https://example.com/page"))
}

func TestRandomUserAgent(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.Contains(t, userAgents, randomUserAgent())
	}
}
