package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/gocolly/colly/v2"

	"totw-tracker/internal/interfaces"
	"totw-tracker/internal/logger"
	"totw-tracker/internal/store"
)

var (
	// ErrNavigation wraps transport failures and HTTP error statuses
	ErrNavigation = errors.New("navigation failed")
	// ErrElementNotFound means the wait selector never matched
	ErrElementNotFound = errors.New("element not found")
	// ErrSessionClosed is returned by Render after Close
	ErrSessionClosed = errors.New("fetch session closed")
)

// CollyFetcher renders pages over plain HTTP with colly
type CollyFetcher struct {
	cfg store.ScraperConfig
}

var _ interfaces.PageFetcher = (*CollyFetcher)(nil)

// NewCollyFetcher creates a fetcher from scraper configuration
func NewCollyFetcher(cfg store.ScraperConfig) *CollyFetcher {
	return &CollyFetcher{cfg: cfg}
}

// NewSession creates one browsing context: a base collector, its
// transport and a shared rate limiter.
func (f *CollyFetcher) NewSession(ctx context.Context) (interfaces.FetchSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: f.cfg.MaxConcurrency,
		IdleConnTimeout:     90 * time.Second,
	}

	base := colly.NewCollector(
		colly.UserAgent(f.cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	base.WithTransport(transport)
	base.SetRequestTimeout(f.cfg.NavigationTimeout())

	logger.Debug(ctx, "Fetch session opened", "max_concurrency", f.cfg.MaxConcurrency)

	return &collySession{
		base:      base,
		transport: transport,
		limiter:   NewRateLimiter(f.cfg.RateLimit.Burst, time.Duration(f.cfg.RateLimit.IntervalMillis)*time.Millisecond),
		cfg:       f.cfg,
	}, nil
}

type collySession struct {
	base      *colly.Collector
	transport *http.Transport
	limiter   *RateLimiter
	cfg       store.ScraperConfig
	closed    atomic.Bool
}

func (s *collySession) Render(ctx context.Context, url, waitSelector string) (*goquery.Document, error) {
	var doc *goquery.Document
	attempt := 0

	op := func() error {
		if s.closed.Load() {
			return backoff.Permanent(ErrSessionClosed)
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		attempt++

		d, err := s.visit(url)
		if err != nil {
			return err
		}
		if waitSelector != "" && d.Find(waitSelector).Length() == 0 {
			return fmt.Errorf("%w: %q on %s", ErrElementNotFound, waitSelector, url)
		}
		doc = d
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.Debug(ctx, "Retrying page fetch", "url", url, "attempt", attempt, "wait_ms", wait.Milliseconds(), "error", err)
	}

	if err := backoff.RetryNotify(op, s.retryPolicy(ctx), notify); err != nil {
		return nil, err
	}
	return doc, nil
}

// retryPolicy bounds retries by count and by the element timeout
func (s *collySession) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Duration(s.cfg.Retry.InitialBackoffMillis) * time.Millisecond
	b.MaxInterval = time.Duration(s.cfg.Retry.MaxBackoffMillis) * time.Millisecond
	b.MaxElapsedTime = s.cfg.ElementTimeout()

	retries := s.cfg.Retry.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

// visit performs one navigation on a fresh page cloned from the session
func (s *collySession) visit(url string) (*goquery.Document, error) {
	c := s.base.Clone()

	var body []byte
	status := 0
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		status = r.StatusCode
	})
	c.OnError(func(r *colly.Response, err error) {
		status = r.StatusCode
	})

	if err := c.Visit(url); err != nil {
		err = fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
		if status >= 400 && status < 500 && status != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	c.Wait()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("parse %s: %w", url, err))
	}
	return doc, nil
}

func (s *collySession) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.transport.CloseIdleConnections()
	return nil
}
