package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Compiled selectors for the pattern-matcher strategies. cascadia.Selector
// satisfies goquery.Matcher, so these plug straight into FindMatcher.
var (
	jsonLDSel       = cascadia.MustCompile(`script[type="application/ld+json"]`)
	priceClassSel   = cascadia.MustCompile(`.product-price__big, .product-prices__big, [itemprop="price"]`)
	currencySel     = cascadia.MustCompile(`.currency, .product-price__symbol`)
	dataPriceSel    = cascadia.MustCompile(`[data-price], [data-product-price]`)
	metaPriceSel    = cascadia.MustCompile(`meta[itemprop="price"], meta[property="product:price:amount"], meta[name="price"]`)
	genericPriceSel = cascadia.MustCompile(`[class*="price"]`)
)

// scriptPriceRe matches inline script assignments like `"price": 1299` or
// `price = "1299"`. The word boundary keeps lowPrice/highPrice out.
var scriptPriceRe = regexp.MustCompile(`(?i)["']?\bprice["']?\s*[:=]\s*["']?([0-9][0-9 \x{00a0}.,]*)`)

// strategy is one (matcher, extractor) pair in the cascade's ordered table.
// New template variants are appended here, not branched in code.
type strategy struct {
	name    string
	extract func(doc *goquery.Document, content string) (float64, bool)
}

// strategies run after structured data, from most to least specific.
var strategies = []strategy{
	{"selector:price-class", extractPriceClass},
	{"attr:data-price", extractDataAttr},
	{"script:price-var", extractScriptVar},
	{"meta:price", extractMetaPrice},
	{"selector:generic-currency", extractGenericCurrency},
}

// extractPriceClass matches the site's dedicated price classes and accepts
// the numeric text only when a currency marker sits right next to it.
func extractPriceClass(doc *goquery.Document, _ string) (float64, bool) {
	if doc == nil {
		return 0, false
	}
	var price float64
	var found bool
	doc.FindMatcher(priceClassSel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !adjacentToCurrency(s) {
			return true
		}
		if v, ok := accept(s.Text()); ok {
			price, found = v, true
			return false
		}
		return true
	})
	return price, found
}

// adjacentToCurrency reports whether the selection carries a currency
// marker: a currency tag inside it, a currency glyph in its text, or a
// currency element immediately following it.
func adjacentToCurrency(s *goquery.Selection) bool {
	if s.FindMatcher(currencySel).Length() > 0 {
		return true
	}
	if hasCurrencyGlyph(s.Text()) {
		return true
	}
	next := s.Next()
	if next.Length() == 0 {
		return false
	}
	if next.IsMatcher(currencySel) {
		return true
	}
	return hasCurrencyGlyph(next.Text())
}

func extractDataAttr(doc *goquery.Document, _ string) (float64, bool) {
	if doc == nil {
		return 0, false
	}
	var price float64
	var found bool
	doc.FindMatcher(dataPriceSel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, attr := range []string{"data-price", "data-product-price"} {
			raw, exists := s.Attr(attr)
			if !exists {
				continue
			}
			if v, ok := accept(raw); ok {
				price, found = v, true
				return false
			}
		}
		return true
	})
	return price, found
}

func extractScriptVar(_ *goquery.Document, content string) (float64, bool) {
	for _, m := range scriptPriceRe.FindAllStringSubmatch(content, 20) {
		if v, ok := accept(m[1]); ok {
			return v, true
		}
	}
	return 0, false
}

func extractMetaPrice(doc *goquery.Document, _ string) (float64, bool) {
	if doc == nil {
		return 0, false
	}
	var price float64
	var found bool
	doc.FindMatcher(metaPriceSel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw, exists := s.Attr("content")
		if !exists {
			return true
		}
		if v, ok := accept(raw); ok {
			price, found = v, true
			return false
		}
		return true
	})
	return price, found
}

// extractGenericCurrency is the last resort: any price-ish class whose own
// text pairs a number with a currency glyph or word.
func extractGenericCurrency(doc *goquery.Document, _ string) (float64, bool) {
	if doc == nil {
		return 0, false
	}
	var price float64
	var found bool
	doc.FindMatcher(genericPriceSel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := s.Text()
		if !hasCurrencyGlyph(t) {
			return true
		}
		if v, ok := accept(t); ok {
			price, found = v, true
			return false
		}
		return true
	})
	return price, found
}

var currencyGlyphs = []string{"₴", "грн", "uah", "₽", "$", "€"}

func hasCurrencyGlyph(s string) bool {
	lower := strings.ToLower(s)
	for _, g := range currencyGlyphs {
		if strings.Contains(lower, g) {
			return true
		}
	}
	return false
}
