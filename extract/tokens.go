package extract

import "strings"

// Marker tokens are matched case-insensitively against rendered documents.
// The tables are shared by the fetch-time document classification and the
// availability classifier so both agree on what a "product page" is.

// productMarkers is heuristic evidence that a document is a genuine product
// page rather than an error, redirect or category page.
var productMarkers = []string{
	"application/ld+json",
	`itemprop="price"`,
	"product-price",
	"product-prices",
	`"@type":"product"`,
	"buy-button",
	"data-price",
}

// notFoundTokens appear on the site's localized 404 page.
var notFoundTokens = []string{
	"сторінку не знайдено",
	"сторінка не знайдена",
	"страница не найдена",
	"нічого не знайдено",
	"page not found",
	"error 404",
}

// outOfStockTokens appear on product pages whose item is unavailable.
var outOfStockTokens = []string{
	"немає в наявності",
	"товар закінчився",
	"закінчився",
	"відсутній у продажу",
	"нет в наличии",
	"товар закончился",
	"out of stock",
	"item sold out",
	"sold out",
}

// HasProductMarkers reports whether the document carries at least one
// product-page marker.
func HasProductMarkers(content string) bool {
	return containsAny(strings.ToLower(content), productMarkers)
}

// HasNotFoundToken reports whether the document contains a localized
// "not found" token.
func HasNotFoundToken(content string) bool {
	return containsAny(strings.ToLower(content), notFoundTokens)
}

func containsAny(lower string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
