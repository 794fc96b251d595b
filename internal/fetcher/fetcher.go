package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/RahulJ0hn/Clarifi/internal/config"
	"github.com/RahulJ0hn/Clarifi/internal/errorwrapper"
	"github.com/RahulJ0hn/Clarifi/internal/extractor"
	"github.com/rs/zerolog"
)

// PageResult holds the outcome of a successful page fetch.
type PageResult struct {
	URL        string
	FinalURL   string
	Title      string
	Text       string
	HTML       string
	StatusCode int
}

// PageFetcher retrieves pages with anti-blocking retries and alternate-URL
// fallback. It has no knowledge of monitors.
type PageFetcher struct {
	httpClient *http.Client
	logger     zerolog.Logger
	cfg        config.FetcherConfig
}

// NewPageFetcher creates a new PageFetcher from configuration.
func NewPageFetcher(cfg config.FetcherConfig, logger zerolog.Logger) *PageFetcher {
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &PageFetcher{
		httpClient: &http.Client{
			Timeout:   time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
			Transport: transport,
		},
		logger: logger.With().Str("component", "PageFetcher").Logger(),
		cfg:    cfg,
	}
}

// FetchPage retrieves a URL and extracts its title and clean text.
//
// Retry policy: up to MaxRetries attempts with randomized 1-3s backoff. A 429
// waits 5-10s before the next attempt. A 403 gets one immediate retry with a
// rotated User-Agent and a synthetic referrer that does not consume an
// attempt. After direct attempts are exhausted the site's alternate URLs are
// tried once each. Failures are classified as typed errors.
func (f *PageFetcher) FetchPage(ctx context.Context, rawURL string) (*PageResult, error) {
	result, err := f.fetchWithRetries(ctx, rawURL)
	if err == nil {
		return result, nil
	}

	// A missing page or an oversized response will not improve elsewhere.
	var tooLarge *errorwrapper.ContentTooLargeError
	if errors.Is(err, errorwrapper.ErrPageNotFound) || errors.As(err, &tooLarge) {
		return nil, err
	}

	for _, altURL := range alternateURLs(rawURL) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.Debug().Str("url", rawURL).Str("alternate", altURL).Msg("Trying alternate URL")
		altResult, altErr := f.attempt(ctx, altURL, "")
		if altErr == nil {
			altResult.URL = rawURL
			return altResult, nil
		}
	}

	return nil, err
}

func (f *PageFetcher) fetchWithRetries(ctx context.Context, rawURL string) (*PageResult, error) {
	maxRetries := f.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepWithContext(ctx, randomDelay(1, 3)); err != nil {
				return nil, err
			}
		}

		result, err := f.attempt(ctx, rawURL, "")
		if err == nil {
			return result, nil
		}
		lastErr = err

		var httpErr *errorwrapper.HTTPError
		switch {
		case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusForbidden:
			// One extra shot with fresh identity, outside the attempt budget.
			f.logger.Debug().Str("url", rawURL).Int("attempt", attempt+1).Msg("Got 403, retrying with rotated identity")
			result, retryErr := f.attempt(ctx, rawURL, syntheticReferrer)
			if retryErr == nil {
				return result, nil
			}
			lastErr = retryErr
		case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests:
			f.logger.Warn().Str("url", rawURL).Int("attempt", attempt+1).Msg("Rate limited, backing off")
			if sleepErr := sleepWithContext(ctx, randomDelay(5, 10)); sleepErr != nil {
				return nil, sleepErr
			}
		case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound:
			// Retrying a 404 will not help.
			return nil, err
		default:
			var tooLargeErr *errorwrapper.ContentTooLargeError
			if errors.As(err, &tooLargeErr) {
				return nil, err
			}
			f.logger.Debug().Err(err).Str("url", rawURL).Int("attempt", attempt+1).Msg("Fetch attempt failed")
		}
	}

	return nil, lastErr
}

// attempt performs a single GET with browser-like headers.
func (f *PageFetcher) attempt(ctx context.Context, rawURL, referrer string) (*PageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "creating request for "+rawURL)
	}

	for name, value := range baseHeaders {
		req.Header.Set(name, value)
	}
	req.Header.Set("User-Agent", randomUserAgent())
	if referrer != "" {
		req.Header.Set("Referer", referrer)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errorwrapper.NewNetworkError(rawURL, "HTTP request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a little of the body for error context.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errorwrapper.NewHTTPErrorWithURL(resp.StatusCode, string(body), rawURL)
	}

	maxSize := int64(f.cfg.MaxContentSize)
	if resp.ContentLength > 0 && resp.ContentLength > maxSize {
		return nil, errorwrapper.NewContentTooLargeError(rawURL, resp.ContentLength, maxSize)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, errorwrapper.WrapError(err, "reading response body for "+rawURL)
	}
	if int64(len(body)) > maxSize {
		return nil, errorwrapper.NewContentTooLargeError(rawURL, int64(len(body)), maxSize)
	}

	markup := string(body)
	page, err := extractor.ExtractFullPage(markup)
	if err != nil {
		return nil, err
	}

	f.logger.Debug().Str("url", rawURL).Int("size", len(body)).Msg("Page fetched")
	return &PageResult{
		URL:        rawURL,
		FinalURL:   resp.Request.URL.String(),
		Title:      page.Title,
		Text:       page.Text,
		HTML:       markup,
		StatusCode: resp.StatusCode,
	}, nil
}

// delayUnit scales retry backoffs; tests shrink it to keep retries fast.
var delayUnit = time.Second

func randomDelay(minUnits, maxUnits int) time.Duration {
	span := maxUnits - minUnits
	return time.Duration(minUnits)*delayUnit + time.Duration(rand.Int63n(int64(span)*int64(delayUnit)))
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
