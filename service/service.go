// Package service implements the price lookup pipeline: validation,
// cache, retried fetch+extract, and the ordered batch runner on top.
package service

import (
	"context"
	"errors"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ByteMe6/rozetka-scrapper/cache"
	"github.com/ByteMe6/rozetka-scrapper/config"
	"github.com/ByteMe6/rozetka-scrapper/extract"
	"github.com/ByteMe6/rozetka-scrapper/models"
	"github.com/ByteMe6/rozetka-scrapper/scraper"
)

// Fetcher produces one rendered-document attempt per call. Satisfied by
// *scraper.Orchestrator.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*scraper.Result, error)
}

// Service resolves product URLs to prices.
type Service struct {
	fetcher Fetcher
	cache   *cache.Cache
	retry   config.RetryConfig
	batch   config.BatchConfig
	hosts   []string
	webhook config.WebhookConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a Service around a fetcher and a fresh cache.
func New(fetcher Fetcher, cfg *config.Config) *Service {
	return &Service{
		fetcher: fetcher,
		cache:   cache.New(cfg.Cache.TTL, cfg.Cache.MaxEntries),
		retry:   cfg.Retry,
		batch:   cfg.Batch,
		hosts:   cfg.Hosts.Allowed,
		webhook: cfg.Webhook,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Lookup resolves one product URL to a price. Terminal availability
// outcomes (404 page, out of stock, non-product page) come back as
// *models.LookupError with the matching code; only soft misses and
// transient fetch failures are retried.
func (s *Service) Lookup(ctx context.Context, rawURL string) (*models.PriceResult, error) {
	if err := s.validate(rawURL); err != nil {
		return nil, err
	}
	normalized := scraper.NormalizeURL(rawURL)

	if price, source, ok := s.cache.Get(normalized); ok {
		return &models.PriceResult{URL: normalized, Price: price, Source: source, Cached: true}, nil
	}

	return s.lookupCold(ctx, normalized)
}

func (s *Service) lookupCold(ctx context.Context, target string) (*models.PriceResult, error) {
	var lastErr error
	for attempt := 1; attempt <= s.retry.Attempts; attempt++ {
		if attempt > 1 {
			if err := s.backoff(ctx); err != nil {
				return nil, models.NewLookupError(models.ErrCodeFetch, "retry wait canceled", err)
			}
		}

		res, err := s.fetcher.Fetch(ctx, target)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		if res.Status == scraper.StatusNotFound {
			return nil, models.NewLookupError(models.ErrCodePageNotFound, "product page does not exist", nil)
		}

		if out := extract.Price(res.HTML); out.Found {
			s.cache.Put(target, out.Price, out.Strategy)
			return &models.PriceResult{URL: target, Price: out.Price, Source: out.Strategy}, nil
		}

		status := extract.Availability(res.HTML)
		switch status {
		case models.StatusNotFound:
			// Soft miss: the page may not have finished rendering.
			lastErr = models.NewLookupError(models.ErrCodePriceNotFound, "no price found on product page", nil)
		default:
			return nil, models.NewLookupError(status.ErrorCode(), "product unavailable: "+string(status), nil)
		}
	}

	if lastErr == nil {
		lastErr = models.NewLookupError(models.ErrCodePriceNotFound, "no price found on product page", nil)
	}
	var le *models.LookupError
	if errors.As(lastErr, &le) {
		return nil, le
	}
	return nil, models.NewLookupError(models.ErrCodeFetch, "failed to fetch product page", lastErr)
}

// validate rejects URLs before they reach the rate limiter: unparseable
// input, non-HTTP schemes, and hosts outside the allow-list.
func (s *Service) validate(rawURL string) error {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return models.NewLookupError(models.ErrCodeInvalidInput, "url must not be empty", nil)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return models.NewLookupError(models.ErrCodeInvalidInput, "invalid url", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return models.NewLookupError(models.ErrCodeInvalidInput, "url scheme must be http or https", nil)
	}
	if u.Host == "" {
		return models.NewLookupError(models.ErrCodeInvalidInput, "url has no host", nil)
	}
	if len(s.hosts) > 0 && !s.hostAllowed(u.Hostname()) {
		return models.NewLookupError(models.ErrCodeInvalidInput, "host not allowed: "+u.Hostname(), nil)
	}
	return nil
}

func (s *Service) hostAllowed(host string) bool {
	host = strings.ToLower(host)
	for _, allowed := range s.hosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

// backoff sleeps for the configured base plus random jitter, honoring
// context cancellation.
func (s *Service) backoff(ctx context.Context) error {
	delay := s.retry.BackoffBase
	if s.retry.BackoffJitter > 0 {
		s.mu.Lock()
		delay += time.Duration(s.rng.Int63n(int64(s.retry.BackoffJitter)))
		s.mu.Unlock()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CacheLen reports the number of live cache entries, for health reporting.
func (s *Service) CacheLen() int {
	return s.cache.Len()
}
