package extract

import (
	"strings"

	"github.com/ByteMe6/rozetka-scrapper/models"
)

// Availability explains why a document yielded no price. It is only
// meaningful for content the cascade already came up empty on.
//
// Decision order: a document without product markers is either the site's
// 404 page or not a product page at all; a marked product page without a
// price is either out of stock or a soft miss worth retrying.
func Availability(content string) models.AvailabilityStatus {
	lower := strings.ToLower(content)
	hasMarkers := containsAny(lower, productMarkers)

	switch {
	case !hasMarkers && containsAny(lower, notFoundTokens):
		return models.StatusPageNotFound
	case !hasMarkers:
		return models.StatusInvalidPage
	case containsAny(lower, outOfStockTokens):
		return models.StatusOutOfStock
	default:
		return models.StatusNotFound
	}
}
