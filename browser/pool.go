package browser

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/ByteMe6/rozetka-scrapper/config"
	"github.com/ByteMe6/rozetka-scrapper/models"
)

// Context binds one identity to a live incognito browser session. It is
// owned exclusively by the pool and lives until pool shutdown.
type Context struct {
	identity Identity
	browser  *rod.Browser
}

// Identity returns the fingerprint bound to this context.
func (c *Context) Identity() Identity { return c.identity }

// Pool owns K browser contexts, each with a distinct identity, and hands
// them out round-robin. It is safe for concurrent use.
type Pool struct {
	browser     *rod.Browser
	contexts    []*Context
	next        atomic.Uint64
	activePages atomic.Int32
}

// NewPool launches a headless browser and creates one incognito context per
// identity slot. A launch or connect failure is fatal for the service: the
// caller is expected to exit.
func NewPool(cfg config.BrowserConfig) (*Pool, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewLookupError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewLookupError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	if cfg.Contexts <= 0 {
		cfg.Contexts = 1
	}

	contexts := make([]*Context, cfg.Contexts)
	for slot := 0; slot < cfg.Contexts; slot++ {
		incognito, err := browser.Incognito()
		if err != nil {
			browser.MustClose()
			return nil, models.NewLookupError(
				models.ErrCodeBrowserCrash,
				fmt.Sprintf("failed to create browser context %d", slot),
				err,
			)
		}
		contexts[slot] = &Context{
			identity: NewIdentity(slot),
			browser:  incognito,
		}
	}
	slog.Info("context pool created", "contexts", cfg.Contexts)

	return &Pool{browser: browser, contexts: contexts}, nil
}

// Next returns the next context round-robin. O(1) and safe under
// concurrent callers: the shared index advances atomically.
func (p *Pool) Next() *Context {
	n := p.next.Add(1) - 1
	return p.contexts[n%uint64(len(p.contexts))]
}

// Size returns the number of pooled contexts (K).
func (p *Pool) Size() int { return len(p.contexts) }

// NewPage opens an ephemeral page on the given context with the context's
// identity fully applied: stealth JS, hardware/geolocation patch,
// user-agent, viewport, timezone and Accept-Language headers. The caller
// must release the page with ClosePage on every exit path.
func (p *Pool) NewPage(c *Context) (*rod.Page, error) {
	page, err := c.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewLookupError(
			models.ErrCodeBrowserCrash,
			"failed to open page",
			err,
		)
	}

	id := c.identity
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth",
			"slot", id.Slot, "error", err)
	}
	if _, err := page.EvalOnNewDocument(id.patchScript()); err != nil {
		slog.Warn("identity patch injection failed",
			"slot", id.Slot, "error", err)
	}

	if err := (proto.NetworkSetUserAgentOverride{
		UserAgent:      id.UserAgent,
		AcceptLanguage: id.AcceptLanguage,
	}).Call(page); err != nil {
		_ = page.Close()
		return nil, models.NewLookupError(
			models.ErrCodeBrowserCrash,
			"failed to apply user-agent override",
			err,
		)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             id.ViewportWidth,
		Height:            id.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		slog.Warn("viewport override failed", "slot", id.Slot, "error", err)
	}

	if err := (proto.EmulationSetTimezoneOverride{
		TimezoneID: id.Timezone,
	}).Call(page); err != nil {
		slog.Warn("timezone override failed", "slot", id.Slot, "error", err)
	}

	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{
			"Accept-Language": id.AcceptLanguage,
		}),
	}.Call(page)

	p.activePages.Add(1)
	return page, nil
}

// ClosePage closes an ephemeral page and releases its pool slot count.
func (p *Pool) ClosePage(page *rod.Page) {
	if err := page.Close(); err != nil {
		slog.Warn("page close failed", "error", err)
	}
	p.activePages.Add(-1)
}

// Stats returns a snapshot of the pool's current state.
func (p *Pool) Stats() models.PoolStats {
	return models.PoolStats{
		Contexts:    len(p.contexts),
		ActivePages: int(p.activePages.Load()),
	}
}

// Shutdown releases all contexts and kills the browser process.
// Call this on graceful shutdown to prevent zombie Chrome processes.
func (p *Pool) Shutdown() {
	slog.Info("context pool shutting down", "contexts", len(p.contexts))
	for _, c := range p.contexts {
		_ = c.browser.Close()
	}
	p.browser.MustClose()
	slog.Info("context pool shutdown complete")
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
