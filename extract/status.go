package extract

import (
	"strings"

	"github.com/Farouk858/product-radar/models"
)

// Classify derives an availability status from normalised product text.
func Classify(name string) models.Status {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "sold out"):
		return models.StatusSoldOut
	case strings.Contains(lower, "only") && strings.Contains(lower, "left"):
		return models.StatusLowStock
	default:
		return models.StatusAvailable
	}
}
