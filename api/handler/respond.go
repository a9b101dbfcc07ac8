package handler

import (
	"errors"
	"net/http"

	"github.com/Farouk858/product-radar/models"
	"github.com/gin-gonic/gin"
)

// respondError maps an error to the correct HTTP status code and writes a
// structured JSON error response.
func respondError(c *gin.Context, err error) {
	var fe *models.FetchError
	if !errors.As(err, &fe) {
		fe = models.NewFetchError(models.ErrCodeInternal, err.Error(), err)
	}
	c.JSON(statusFor(fe.Code), models.ErrorResponse{Success: false, Error: fe.ToDetail()})
}

func respondInvalid(c *gin.Context, err error) {
	respondError(c, models.NewFetchError(models.ErrCodeInvalidInput, err.Error(), err))
}

// statusFor translates error codes to HTTP status codes.
func statusFor(code string) int {
	switch code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case models.ErrCodeNavigation, models.ErrCodeTransport:
		return http.StatusBadGateway
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case models.ErrCodeNotFound:
		return http.StatusNotFound
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
