package extract

import (
	"strconv"
	"strings"
)

// Price sanity bounds. Values outside the open interval are parsing
// artifacts (an ID or a review count matched, not a price) and are
// discarded so the cascade can try the next strategy.
const (
	priceMin = 10
	priceMax = 10_000_000
)

func plausible(v float64) bool {
	return v > priceMin && v < priceMax
}

// accept sanitizes a raw matched string and applies the sanity bound.
// Every strategy funnels its candidates through here.
func accept(raw string) (float64, bool) {
	v, ok := sanitizeNumber(raw)
	if !ok || !plausible(v) {
		return 0, false
	}
	return v, true
}

// sanitizeNumber turns scraped price text into a number. It drops
// non-breaking and thin spaces, quotes, currency glyphs and any other
// non-digit noise, keeps at most one decimal separator, and rejects
// anything that does not parse cleanly.
//
// Separator handling: when both '.' and ',' appear, the rightmost one is
// the decimal separator. A single separator followed by exactly three
// digits is a thousands separator ("5.999" and "5,999" both mean 5999);
// anything else is decimal ("899,50" means 899.5).
func sanitizeNumber(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return 0, false
	}

	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastComma >= 0:
		s = normalizeSingleSeparator(s, ',')
	case lastDot >= 0:
		s = normalizeSingleSeparator(s, '.')
	}

	if strings.Count(s, ".") > 1 {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// normalizeSingleSeparator resolves a string containing only one kind of
// separator into plain decimal form.
func normalizeSingleSeparator(s string, sep byte) string {
	if strings.Count(s, string(sep)) > 1 {
		// More than one occurrence: thousands separators.
		return strings.ReplaceAll(s, string(sep), "")
	}
	idx := strings.IndexByte(s, sep)
	if len(s)-idx-1 == 3 && idx > 0 {
		// Exactly three trailing digits: thousands separator.
		return strings.ReplaceAll(s, string(sep), "")
	}
	return strings.Replace(s, string(sep), ".", 1)
}
