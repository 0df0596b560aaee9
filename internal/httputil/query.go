package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// maxEventLimit caps how many events one listing request may pull.
const maxEventLimit = 1000

// ParseLimit safely parses and validates the limit query parameter for event
// listings. It defaults to 50 and cannot exceed 1000.
func ParseLimit(c *gin.Context) (int, error) {
	limitStr := c.DefaultQuery("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 || limit > maxEventLimit {
		return 0, fmt.Errorf("invalid limit parameter: must be between 1 and %d", maxEventLimit)
	}

	return limit, nil
}
