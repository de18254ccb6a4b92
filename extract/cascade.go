package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Outcome is the result of running the cascade over one rendered document.
type Outcome struct {
	Price    float64
	Strategy string // which strategy matched, for diagnostics
	Found    bool
}

// Price extracts a numeric price from rendered page content by trying
// strategies in strict reliability order; the first plausible match wins.
// Structured product metadata always outranks pattern matching over raw
// markup. Malformed input never causes an error, only a miss.
func Price(content string) Outcome {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		doc = nil
	}

	if doc != nil {
		if price, ok := fromStructuredData(doc); ok {
			return Outcome{Price: price, Strategy: "jsonld", Found: true}
		}
	}

	for _, st := range strategies {
		if price, ok := st.extract(doc, content); ok {
			return Outcome{Price: price, Strategy: st.name, Found: true}
		}
	}

	return Outcome{}
}

// productLD mirrors the parts of a schema.org Product block we care about.
// Fields are `any` because sites emit prices as both strings and numbers,
// and offers as both a single object and an array.
type productLD struct {
	Type   any `json:"@type"`
	Offers any `json:"offers"`
}

// fromStructuredData scans <script type="application/ld+json"> blocks for a
// Product object with an offers price. Malformed JSON blocks are skipped,
// never fatal.
func fromStructuredData(doc *goquery.Document) (float64, bool) {
	var price float64
	var found bool

	doc.FindMatcher(jsonLDSel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}

		for _, item := range decodeLDBlocks(raw) {
			if v, ok := priceFromProduct(item); ok {
				price, found = v, true
				return false
			}
		}
		return true
	})

	return price, found
}

// decodeLDBlocks parses one JSON-LD script body, which may hold a single
// object or an array of objects.
func decodeLDBlocks(raw string) []productLD {
	var list []productLD
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}
	var single productLD
	if err := json.Unmarshal([]byte(raw), &single); err == nil {
		return []productLD{single}
	}
	return nil
}

// priceFromProduct pulls price, then lowPrice, then highPrice out of a
// Product's offers.
func priceFromProduct(item productLD) (float64, bool) {
	if !isProductType(item.Type) {
		return 0, false
	}

	for _, offer := range offerObjects(item.Offers) {
		for _, key := range []string{"price", "lowPrice", "highPrice"} {
			v, present := offer[key]
			if !present || v == nil {
				continue
			}
			if price, ok := accept(fmt.Sprint(v)); ok {
				return price, true
			}
		}
	}
	return 0, false
}

// isProductType handles "@type" being a string or an array of strings.
func isProductType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Product"
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

// offerObjects normalizes an offers value (object or array) into a slice
// of maps.
func offerObjects(offers any) []map[string]any {
	switch v := offers.(type) {
	case map[string]any:
		return []map[string]any{v}
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, e := range v {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}
