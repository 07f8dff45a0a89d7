package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/castpass/castpass/internal/shared/errors"
)

// ParseUint64Query reads a required positive integer query parameter.
func ParseUint64Query(c *gin.Context, name string) (uint64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, errors.NewValidationError(name + " is required")
	}

	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, errors.NewValidationError("invalid "+name, raw)
	}

	return value, nil
}
