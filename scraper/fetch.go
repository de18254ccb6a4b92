package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod"

	"github.com/ByteMe6/rozetka-scrapper/browser"
	"github.com/ByteMe6/rozetka-scrapper/config"
	"github.com/ByteMe6/rozetka-scrapper/extract"
	"github.com/ByteMe6/rozetka-scrapper/models"
	"github.com/ByteMe6/rozetka-scrapper/ratelimit"
)

// Status classifies what one fetch attempt produced.
type Status string

const (
	// StatusOK — a usable rendered document.
	StatusOK Status = "ok"
	// StatusNotFound — the site answered with its 404-equivalent page.
	StatusNotFound Status = "not-found"
)

// Result is the output of one fetch attempt. A navigation failure is
// reported as an error, not a Result.
type Result struct {
	HTML   string
	Status Status
	Method string // "http" or "browser"
}

// priceRegionSelector marks the part of a product page the price lives in.
// Its appearance means the SPA finished rendering the interesting region.
const priceRegionSelector = `.product-price__big, .product-prices__big, [itemprop="price"]`

// Orchestrator drives one navigation attempt per Fetch call: rate-limiter
// admission, HTTP fast path, then the pooled browser. Retrying across
// attempts is the caller's job.
type Orchestrator struct {
	pool     *browser.Pool
	limiter  *ratelimit.Limiter
	cfg      config.FetchConfig
	fastPath *httpFetcher // nil when disabled
}

// NewOrchestrator wires the fetch path together. proxy applies to the HTTP
// fast path only; the browser pool carries its own proxy setting.
func NewOrchestrator(pool *browser.Pool, limiter *ratelimit.Limiter, cfg config.FetchConfig, proxy string) *Orchestrator {
	o := &Orchestrator{pool: pool, limiter: limiter, cfg: cfg}
	if cfg.FastPath {
		o.fastPath = newHTTPFetcher(proxy)
	}
	return o
}

// Fetch performs one attempt to retrieve and classify the rendered document
// behind rawURL. Every call pays the admission toll first so the target
// site sees human pacing regardless of which tier serves the request.
func (o *Orchestrator) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	target := NormalizeURL(rawURL)

	if err := o.limiter.Admit(ctx); err != nil {
		return nil, models.NewLookupError(models.ErrCodeFetch, "admission wait canceled", err)
	}

	if o.fastPath != nil {
		if res := o.tryFastPath(ctx, target); res != nil {
			return res, nil
		}
	}

	return o.fetchBrowser(ctx, target)
}

// tryFastPath attempts the utls HTTP tier. Any failure, and any body that
// looks like an unrendered SPA shell, falls through to the browser.
func (o *Orchestrator) tryFastPath(ctx context.Context, target string) *Result {
	fetchCtx, cancel := context.WithTimeout(ctx, o.cfg.FastPathTimeout)
	defer cancel()

	body, err := o.fastPath.fetch(fetchCtx, target)
	if err != nil {
		slog.Debug("http fast path failed, falling back to browser",
			"url", target, "error", err)
		return nil
	}
	if needsBrowser(body) {
		slog.Debug("http fast path got an unrendered shell, falling back to browser",
			"url", target)
		return nil
	}
	return o.classify(string(body), "http")
}

// fetchBrowser runs the full browser tier on the next pooled context.
//
// Navigation is two-staged: a fast content-loaded wait with a short
// timeout, then one lenient retry waiting for the full load event with a
// longer timeout. After navigation the price-region selector is awaited in
// a few short bounded attempts; a marker that never shows up is tolerated —
// a degraded document is better than none, extraction decides what it can
// do with it.
func (o *Orchestrator) fetchBrowser(ctx context.Context, target string) (*Result, error) {
	c := o.pool.Next()

	page, err := o.pool.NewPage(c)
	if err != nil {
		return nil, err
	}
	defer o.pool.ClosePage(page)

	if err := o.navigate(ctx, page, target, o.cfg.NavTimeout, false); err != nil {
		slog.Debug("fast navigation failed, retrying with lenient wait",
			"url", target, "slot", c.Identity().Slot, "error", err)
		if err := o.navigate(ctx, page, target, o.cfg.NavRetryTimeout, true); err != nil {
			return nil, models.NewLookupError(models.ErrCodeFetch, "navigation failed", err)
		}
	}

	for attempt := 0; attempt < o.cfg.MarkerAttempts; attempt++ {
		if _, err := page.Context(ctx).Timeout(o.cfg.MarkerTimeout).Element(priceRegionSelector); err == nil {
			break
		}
	}

	content, err := page.Context(ctx).HTML()
	if err != nil {
		return nil, models.NewLookupError(models.ErrCodeFetch, "failed to read document", err)
	}

	return o.classify(content, "browser"), nil
}

// navigate runs one navigation with either the fast (DOM stable) or the
// lenient (full load event) wait strategy.
func (o *Orchestrator) navigate(ctx context.Context, page *rod.Page, target string, timeout time.Duration, waitFullLoad bool) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p := page.Context(navCtx)
	if err := p.Navigate(target); err != nil {
		return err
	}
	if waitFullLoad {
		return p.WaitLoad()
	}
	return p.WaitDOMStable(300*time.Millisecond, 0.1)
}

// classify decides whether a captured document is usable. Thin documents
// with no product markers are either the site's 404 page or a blocked/empty
// response; the latter is still returned as ok so extraction and the
// availability classifier get their chance.
func (o *Orchestrator) classify(content, method string) *Result {
	if len(content) < o.cfg.MinDocumentBytes && !extract.HasProductMarkers(content) {
		if extract.HasNotFoundToken(content) {
			return &Result{HTML: content, Status: StatusNotFound, Method: method}
		}
		slog.Debug("suspiciously thin document, returning as-is",
			"bytes", len(content), "method", method)
	}
	return &Result{HTML: content, Status: StatusOK, Method: method}
}
