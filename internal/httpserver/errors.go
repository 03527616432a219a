package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"popup-checkout/internal/domain"
	"popup-checkout/internal/oracle"
	checkoutsvc "popup-checkout/internal/service/checkout"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, checkoutsvc.ErrSubmitInProgress), errors.Is(err, checkoutsvc.ErrCheckoutChanged):
		return http.StatusConflict
	case errors.Is(err, checkoutsvc.ErrUnrecognizedPaymentStatus):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrValidation), checkoutsvc.IsOracleRejection(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case checkoutsvc.IsOracleUnavailable(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps service errors onto HTTP statuses. Internal failures are
// logged and hidden from the client.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := statusFor(err)
	msg := err.Error()
	switch {
	case status == http.StatusInternalServerError:
		loggerFrom(c).Error("request failed", zap.Error(err))
		msg = "internal error"
	case checkoutsvc.IsOracleRejection(err):
		if m := oracle.Message(err); m != "" {
			msg = m
		}
	}
	c.JSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}
