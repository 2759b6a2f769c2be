package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tutorhub/internal/pkg/validator"
)

// BindJSON decodes the body into dst and runs struct validation. On
// failure it writes a 400 and returns false.
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		Error(c, http.StatusBadRequest, CodeValidation, "Invalid request body")
		return false
	}
	if errs := validator.Validate(dst); errs != nil {
		ErrorWithDetails(c, http.StatusBadRequest, CodeValidation, "Validation failed", errs)
		return false
	}
	return true
}

// IDParam parses a positive integer path parameter.
func IDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		Error(c, http.StatusBadRequest, CodeValidation, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// Page reads limit/offset query parameters with a default and upper bound.
func Page(c *gin.Context, def, max int) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
