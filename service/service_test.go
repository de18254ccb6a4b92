package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ByteMe6/rozetka-scrapper/config"
	"github.com/ByteMe6/rozetka-scrapper/models"
	"github.com/ByteMe6/rozetka-scrapper/scraper"
)

const productHTML = `<html><body>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"Product","name":"Widget","offers":{"@type":"Offer","price":"1299","priceCurrency":"UAH"}}</script>
<p class="product-price__big">1 299 &#8372;</p>
</body></html>`

const notFoundHTML = `<html><body><h1>Сторінку не знайдено</h1></body></html>`

const outOfStockHTML = `<html><body>
<div class="product-price__big"></div>
<p>Немає в наявності</p>
</body></html>`

// pending product page: markers present, no price rendered yet.
const pendingHTML = `<html><body><div class="product-price__big"></div></body></html>`

// fakeFetcher serves canned documents keyed by URL and counts calls.
type fakeFetcher struct {
	mu       sync.Mutex
	pages    map[string]*scraper.Result
	errs     map[string]error
	calls    map[string]int
	failures int // transient errors to return before succeeding, per URL
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: make(map[string]*scraper.Result),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (*scraper.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	target := scraper.NormalizeURL(rawURL)
	f.calls[target]++
	if f.failures > 0 && f.calls[target] <= f.failures {
		return nil, fmt.Errorf("connection reset")
	}
	if err, ok := f.errs[target]; ok {
		return nil, err
	}
	if res, ok := f.pages[target]; ok {
		return res, nil
	}
	return &scraper.Result{HTML: productHTML, Status: scraper.StatusOK, Method: "browser"}, nil
}

func (f *fakeFetcher) callCount(rawURL string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[scraper.NormalizeURL(rawURL)]
}

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.Retry.Attempts = 3
	cfg.Retry.BackoffBase = time.Millisecond
	cfg.Retry.BackoffJitter = time.Millisecond
	cfg.Batch.Concurrency = 5
	return cfg
}

func TestLookupStructuredPrice(t *testing.T) {
	f := newFakeFetcher()
	svc := New(f, testConfig())

	result, err := svc.Lookup(context.Background(), "https://rozetka.com.ua/widget/p123/")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if result.Price != 1299 {
		t.Errorf("price = %v, want 1299", result.Price)
	}
	if result.Source != "jsonld" {
		t.Errorf("source = %q, want jsonld", result.Source)
	}
	if result.Cached {
		t.Error("first lookup should not be cached")
	}
}

func TestLookupCacheSuppressesFetch(t *testing.T) {
	f := newFakeFetcher()
	svc := New(f, testConfig())
	url := "https://rozetka.com.ua/widget/p123/"

	if _, err := svc.Lookup(context.Background(), url); err != nil {
		t.Fatalf("cold lookup failed: %v", err)
	}
	result, err := svc.Lookup(context.Background(), url)
	if err != nil {
		t.Fatalf("warm lookup failed: %v", err)
	}
	if !result.Cached {
		t.Error("second lookup should be cached")
	}
	if result.Price != 1299 {
		t.Errorf("cached price = %v, want 1299", result.Price)
	}
	if got := f.callCount(url); got != 1 {
		t.Errorf("fetch count = %d, want 1 (cache must suppress the second fetch)", got)
	}
}

func TestLookupInvalidURLShortCircuits(t *testing.T) {
	f := newFakeFetcher()
	svc := New(f, testConfig())

	cases := []string{
		"",
		"not a url at all",
		"ftp://rozetka.com.ua/x/",
		"https://example.com/widget/",
	}
	for _, raw := range cases {
		_, err := svc.Lookup(context.Background(), raw)
		le, ok := err.(*models.LookupError)
		if !ok || le.Code != models.ErrCodeInvalidInput {
			t.Errorf("Lookup(%q) error = %v, want INVALID_INPUT", raw, err)
		}
	}
	if len(f.calls) != 0 {
		t.Errorf("invalid URLs reached the fetcher: %v", f.calls)
	}
}

func TestLookupPageNotFoundIsTerminal(t *testing.T) {
	f := newFakeFetcher()
	url := "https://rozetka.com.ua/gone/p404/"
	f.pages[scraper.NormalizeURL(url)] = &scraper.Result{HTML: notFoundHTML, Status: scraper.StatusNotFound, Method: "browser"}
	svc := New(f, testConfig())

	_, err := svc.Lookup(context.Background(), url)
	le, ok := err.(*models.LookupError)
	if !ok || le.Code != models.ErrCodePageNotFound {
		t.Fatalf("error = %v, want PAGE_NOT_FOUND", err)
	}
	if got := f.callCount(url); got != 1 {
		t.Errorf("fetch count = %d, want 1 (404 must not be retried)", got)
	}
}

func TestLookupOutOfStockIsTerminal(t *testing.T) {
	f := newFakeFetcher()
	url := "https://rozetka.com.ua/sold/p7/"
	f.pages[scraper.NormalizeURL(url)] = &scraper.Result{HTML: outOfStockHTML, Status: scraper.StatusOK, Method: "browser"}
	svc := New(f, testConfig())

	_, err := svc.Lookup(context.Background(), url)
	le, ok := err.(*models.LookupError)
	if !ok || le.Code != models.ErrCodeOutOfStock {
		t.Fatalf("error = %v, want OUT_OF_STOCK", err)
	}
	if got := f.callCount(url); got != 1 {
		t.Errorf("fetch count = %d, want 1 (out of stock must not be retried)", got)
	}
}

func TestLookupSoftMissRetries(t *testing.T) {
	f := newFakeFetcher()
	url := "https://rozetka.com.ua/slow/p9/"
	f.pages[scraper.NormalizeURL(url)] = &scraper.Result{HTML: pendingHTML, Status: scraper.StatusOK, Method: "browser"}
	svc := New(f, testConfig())

	_, err := svc.Lookup(context.Background(), url)
	le, ok := err.(*models.LookupError)
	if !ok || le.Code != models.ErrCodePriceNotFound {
		t.Fatalf("error = %v, want PRICE_NOT_FOUND", err)
	}
	if got := f.callCount(url); got != 3 {
		t.Errorf("fetch count = %d, want 3 (soft miss must exhaust all attempts)", got)
	}
}

func TestLookupTransientErrorThenSuccess(t *testing.T) {
	f := newFakeFetcher()
	f.failures = 2
	svc := New(f, testConfig())
	url := "https://rozetka.com.ua/flaky/p5/"

	result, err := svc.Lookup(context.Background(), url)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if result.Price != 1299 {
		t.Errorf("price = %v, want 1299", result.Price)
	}
	if got := f.callCount(url); got != 3 {
		t.Errorf("fetch count = %d, want 3", got)
	}
}

func TestLookupExhaustedFetchErrors(t *testing.T) {
	f := newFakeFetcher()
	f.failures = 10
	svc := New(f, testConfig())

	_, err := svc.Lookup(context.Background(), "https://rozetka.com.ua/down/p1/")
	le, ok := err.(*models.LookupError)
	if !ok || le.Code != models.ErrCodeFetch {
		t.Fatalf("error = %v, want FETCH_ERROR", err)
	}
}

func TestBatchMixedOutcomesOrdered(t *testing.T) {
	f := newFakeFetcher()
	cached := "https://rozetka.com.ua/cached/p1/"
	cold := "https://rozetka.com.ua/cold/p2/"
	svc := New(f, testConfig())

	// Warm the cache for the middle URL.
	if _, err := svc.Lookup(context.Background(), cached); err != nil {
		t.Fatalf("cache warm-up failed: %v", err)
	}

	urls := []string{"not a url", cached, cold}
	outcomes := svc.LookupBatch(context.Background(), urls)

	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}
	if outcomes[0].Found || outcomes[0].Status != models.OutcomeInvalidURL {
		t.Errorf("outcomes[0] = %+v, want invalid url", outcomes[0])
	}
	if !outcomes[1].Found || outcomes[1].Price != 1299 {
		t.Errorf("outcomes[1] = %+v, want cached hit 1299", outcomes[1])
	}
	if !outcomes[2].Found || outcomes[2].Price != 1299 {
		t.Errorf("outcomes[2] = %+v, want cold hit 1299", outcomes[2])
	}
	if got := f.callCount(cached); got != 1 {
		t.Errorf("cached URL fetched %d times across warm-up and batch, want 1", got)
	}
	if got := f.callCount(cold); got != 1 {
		t.Errorf("cold URL fetched %d times, want 1", got)
	}
}

func TestBatchIndexAlignment(t *testing.T) {
	f := newFakeFetcher()
	svc := New(f, testConfig())

	urls := make([]string, 20)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://rozetka.com.ua/item-%d/p%d/", i, i)
	}
	outcomes := svc.LookupBatch(context.Background(), urls)

	if len(outcomes) != len(urls) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(urls))
	}
	for i, o := range outcomes {
		if o.URL != urls[i] {
			t.Errorf("outcomes[%d].URL = %q, want %q", i, o.URL, urls[i])
		}
		if !o.Found {
			t.Errorf("outcomes[%d] not found: %+v", i, o)
		}
	}
}

func TestBatchZeroConcurrencyStillCompletes(t *testing.T) {
	f := newFakeFetcher()
	cfg := testConfig()
	cfg.Batch.Concurrency = 0
	svc := New(f, cfg)

	done := make(chan []models.BatchOutcome, 1)
	go func() {
		done <- svc.LookupBatch(context.Background(), []string{"https://rozetka.com.ua/widget/p1/"})
	}()

	select {
	case outcomes := <-done:
		if len(outcomes) != 1 || !outcomes[0].Found {
			t.Errorf("outcomes = %+v, want one found result", outcomes)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("LookupBatch hung with Concurrency=0")
	}
}

func TestBatchConcurrencyBound(t *testing.T) {
	var inFlight, peak atomic.Int32
	f := &boundedFetcher{inFlight: &inFlight, peak: &peak}
	cfg := testConfig()
	cfg.Batch.Concurrency = 3
	svc := New(f, cfg)

	urls := make([]string, 12)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://rozetka.com.ua/item-%d/p%d/", i, i)
	}
	svc.LookupBatch(context.Background(), urls)

	if p := peak.Load(); p > 3 {
		t.Errorf("peak concurrent fetches = %d, want <= 3", p)
	}
}

type boundedFetcher struct {
	inFlight *atomic.Int32
	peak     *atomic.Int32
}

func (f *boundedFetcher) Fetch(_ context.Context, _ string) (*scraper.Result, error) {
	n := f.inFlight.Add(1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	f.inFlight.Add(-1)
	return &scraper.Result{HTML: productHTML, Status: scraper.StatusOK, Method: "http"}, nil
}

func TestStatusFromError(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{models.ErrCodeInvalidInput, models.OutcomeInvalidURL},
		{models.ErrCodeOutOfStock, string(models.StatusOutOfStock)},
		{models.ErrCodeInvalidPage, string(models.StatusInvalidPage)},
		{models.ErrCodePageNotFound, string(models.StatusPageNotFound)},
		{models.ErrCodePriceNotFound, string(models.StatusNotFound)},
		{models.ErrCodeFetch, models.OutcomeError},
		{models.ErrCodeBrowserCrash, models.OutcomeError},
	}
	for _, tc := range cases {
		got := statusFromError(models.NewLookupError(tc.code, "x", nil))
		if got != tc.want {
			t.Errorf("statusFromError(%s) = %q, want %q", tc.code, got, tc.want)
		}
	}
	if got := statusFromError(fmt.Errorf("plain")); got != models.OutcomeError {
		t.Errorf("statusFromError(plain error) = %q, want error", got)
	}
}
