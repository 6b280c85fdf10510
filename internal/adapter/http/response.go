package http

import (
	"errors"
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reimx/reimx-backend/internal/domain"
	"github.com/reimx/reimx-backend/internal/logger"
)

func respondOK(c *gin.Context, data any) {
	c.JSON(nethttp.StatusOK, gin.H{"data": data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(nethttp.StatusCreated, gin.H{"data": data})
}

// respondError maps domain sentinels onto status codes. Internal failures are
// logged and hidden behind a generic message so replay mechanics never leak
// to the caller.
func respondError(c *gin.Context, err error) {
	status := nethttp.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = nethttp.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		status = nethttp.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = nethttp.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = nethttp.StatusConflict
	}

	message := err.Error()
	if status == nethttp.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		message = "internal error"
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
