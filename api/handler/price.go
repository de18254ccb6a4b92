package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ByteMe6/rozetka-scrapper/models"
	"github.com/ByteMe6/rozetka-scrapper/service"
)

// Price returns a handler for POST /api/v1/price.
//
// Flow:
//  1. Parse & validate request.
//  2. Service.Lookup → cache hit or cold fetch+extract.
//  3. Map lookup errors to HTTP status codes and respond.
func Price(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PriceRequest
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

		result, err := svc.Lookup(c.Request.Context(), req.URL)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.PriceResponse{
			Success: true,
			Result:  result,
		})
	}
}

// respondError maps a LookupError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error) {
	var lookupErr *models.LookupError
	if !errors.As(err, &lookupErr) {
		lookupErr = models.NewLookupError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(lookupErr), models.PriceResponse{
		Success: false,
		Error:   lookupErr.ToDetail(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
//
// The four availability codes describe the product, not the service, so
// they travel as 200 with success=false: the request itself worked.
func mapErrorToStatus(e *models.LookupError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeFetch:
		return http.StatusBadGateway // 502
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodePageNotFound, models.ErrCodeInvalidPage,
		models.ErrCodeOutOfStock, models.ErrCodePriceNotFound:
		return http.StatusOK // 200, success=false
	default:
		return http.StatusInternalServerError // 500
	}
}
