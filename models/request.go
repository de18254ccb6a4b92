package models

// PriceRequest is the body of POST /api/v1/price.
type PriceRequest struct {
	URL string `json:"url" binding:"required"`
}

// BatchRequest is the body of POST /api/v1/prices.
type BatchRequest struct {
	URLs []string `json:"urls" binding:"required"`
}

// AsyncBatchRequest is the body of POST /api/v1/prices/async.
// Results are pushed to WebhookURL when the batch completes.
type AsyncBatchRequest struct {
	URLs       []string `json:"urls" binding:"required"`
	WebhookURL string   `json:"webhook_url" binding:"required"`
}

// PriceResponse is the body of a single-URL lookup response.
type PriceResponse struct {
	Success bool         `json:"success"`
	Result  *PriceResult `json:"result,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// BatchResponse is the body of a synchronous batch response. Results are
// index-aligned with the request's urls list.
type BatchResponse struct {
	Success bool           `json:"success"`
	Results []BatchOutcome `json:"results,omitempty"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}

// AsyncBatchResponse acknowledges an accepted async batch.
type AsyncBatchResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// UpdateResponse is the legacy POST /update contract consumed by the
// existing bot client: a map of URL to price string, misses omitted.
type UpdateResponse struct {
	Data map[string]string `json:"data"`
}

// PoolStats is a snapshot of browser context pool state.
type PoolStats struct {
	Contexts    int `json:"contexts"`
	ActivePages int `json:"active_pages"`
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool"`
	Version   string    `json:"version"`
}
