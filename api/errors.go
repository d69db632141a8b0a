package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/judyrop/storefront/auth"
	"github.com/judyrop/storefront/catalog"
	"github.com/judyrop/storefront/orders"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, orders.ErrNotFound),
		errors.Is(err, auth.ErrOIDCDisabled):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrInvalidCategory),
		errors.Is(err, catalog.ErrInvalidProduct),
		errors.Is(err, catalog.ErrUnknownCategory),
		errors.Is(err, orders.ErrEmptyOrder),
		errors.Is(err, orders.ErrInvalidQuantity),
		errors.Is(err, orders.ErrUnknownProduct),
		errors.Is(err, orders.ErrInvalidPayment),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordTooLong):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrSlugTaken),
		errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrUnverifiedEmail),
		errors.Is(err, auth.ErrUserNotFound):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": msg}. Unexpected errors are logged and
// reported as a generic 500.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
