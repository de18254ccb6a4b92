package models

// AvailabilityStatus explains why a product page yielded no price.
// It is assigned only after the extraction cascade came up empty.
type AvailabilityStatus string

const (
	// StatusOutOfStock — genuine product page with an out-of-stock marker.
	StatusOutOfStock AvailabilityStatus = "out_of_stock"
	// StatusNotFound — looks like a product page, but no price could be
	// located. Soft miss, eligible for retry.
	StatusNotFound AvailabilityStatus = "not_found"
	// StatusInvalidPage — the document is not a product page at all.
	StatusInvalidPage AvailabilityStatus = "invalid_page"
	// StatusPageNotFound — the site served its localized 404 page.
	StatusPageNotFound AvailabilityStatus = "page_not_found"
)

// ErrorCode maps an availability status to its LookupError code.
func (s AvailabilityStatus) ErrorCode() string {
	switch s {
	case StatusOutOfStock:
		return ErrCodeOutOfStock
	case StatusInvalidPage:
		return ErrCodeInvalidPage
	case StatusPageNotFound:
		return ErrCodePageNotFound
	default:
		return ErrCodePriceNotFound
	}
}

// Batch outcome status strings that are not availability statuses.
const (
	OutcomeInvalidURL = "invalid url"
	OutcomeError      = "error"
)

// PriceResult is a successfully resolved price for one URL.
type PriceResult struct {
	URL    string  `json:"url"`
	Price  float64 `json:"price"`
	Source string  `json:"source,omitempty"` // extraction strategy, or "cache"
	Cached bool    `json:"cached,omitempty"`
}

// BatchOutcome is one slot of an ordered batch result. Exactly one of
// Price (with Found=true) or Status is meaningful.
type BatchOutcome struct {
	URL    string  `json:"url"`
	Price  float64 `json:"price,omitempty"`
	Found  bool    `json:"found"`
	Status string  `json:"status,omitempty"` // "invalid url", "error", or an AvailabilityStatus value
}
