package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/ByteMe6/rozetka-scrapper/models"
	"github.com/ByteMe6/rozetka-scrapper/service"
)

// Prices returns a handler for POST /api/v1/prices: a synchronous batch
// lookup. Results are index-aligned with the request's urls list; invalid
// entries occupy their slot instead of failing the whole batch.
func Prices(svc *service.Service, maxURLs int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.BatchResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		if len(req.URLs) == 0 {
			c.JSON(http.StatusBadRequest, models.BatchResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "urls must not be empty",
				},
			})
			return
		}
		if len(req.URLs) > maxURLs {
			c.JSON(http.StatusBadRequest, models.BatchResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: fmt.Sprintf("maximum %d URLs per batch", maxURLs),
				},
			})
			return
		}

		results := svc.LookupBatch(c.Request.Context(), req.URLs)
		c.JSON(http.StatusOK, models.BatchResponse{
			Success: true,
			Results: results,
		})
	}
}

// PricesAsync returns a handler for POST /api/v1/prices/async. The batch
// runs in the background; completed results are pushed to the caller's
// webhook URL. Responds immediately with the job id.
func PricesAsync(svc *service.Service, maxURLs int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AsyncBatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.PriceResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		if len(req.URLs) == 0 || len(req.URLs) > maxURLs {
			c.JSON(http.StatusBadRequest, models.PriceResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: fmt.Sprintf("batch must contain between 1 and %d URLs", maxURLs),
				},
			})
			return
		}
		if !validWebhookURL(req.WebhookURL) {
			c.JSON(http.StatusBadRequest, models.PriceResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "webhook_url must be a valid http(s) URL",
				},
			})
			return
		}

		jobID := svc.LookupAsync(req.URLs, req.WebhookURL)
		c.JSON(http.StatusAccepted, models.AsyncBatchResponse{
			JobID:  jobID,
			Status: "processing",
			Total:  len(req.URLs),
		})
	}
}

func validWebhookURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
