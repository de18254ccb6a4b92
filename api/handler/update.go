package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ByteMe6/rozetka-scrapper/models"
	"github.com/ByteMe6/rozetka-scrapper/service"
)

// Update returns a handler for POST /update, the legacy contract consumed
// by the existing bot client: {"urls": [...]} in, {"data": {url: "price"}}
// out. URLs that yielded no price are omitted from the map.
func Update(svc *service.Service, maxURLs int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "urls list required"})
			return
		}
		if len(req.URLs) == 0 || len(req.URLs) > maxURLs {
			c.JSON(http.StatusBadRequest, gin.H{"error": "urls list empty or too long"})
			return
		}

		outcomes := svc.LookupBatch(c.Request.Context(), req.URLs)

		data := make(map[string]string, len(outcomes))
		for _, o := range outcomes {
			if o.Found {
				data[o.URL] = strconv.FormatFloat(o.Price, 'f', -1, 64)
			}
		}
		c.JSON(http.StatusOK, models.UpdateResponse{Data: data})
	}
}
