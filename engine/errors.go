package engine

import (
	"context"
	"errors"

	"github.com/Farouk858/product-radar/models"
)

// Categorize converts err into a *models.FetchError. An existing FetchError
// anywhere in the chain is returned as is; context expiry maps to a timeout;
// everything else gets code.
func Categorize(err error, code, msg string) *models.FetchError {
	if err == nil {
		return nil
	}
	var fe *models.FetchError
	if errors.As(err, &fe) {
		return fe
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewFetchError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewFetchError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewFetchError(code, msg, err)
	}
}
