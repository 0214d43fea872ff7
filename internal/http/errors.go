package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"coupon-api/internal/service"
)

// errorStatus mapea 1:1 cada clase de error de servicio a un status HTTP.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidLogin),
		errors.Is(err, service.ErrTokenNotFound),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrRoleMismatch):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrCompanyNotFound),
		errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, service.ErrCouponNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrCompanyExists),
		errors.Is(err, service.ErrCustomerExists),
		errors.Is(err, service.ErrCouponExists),
		errors.Is(err, service.ErrCompanyRename),
		errors.Is(err, service.ErrCouponOwnership):
		return http.StatusConflict
	case errors.Is(err, service.ErrCouponExpired),
		errors.Is(err, service.ErrInsufficientAmount),
		errors.Is(err, service.ErrAlreadyPurchased):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
