package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jime0083/BatsuGaku/apperr"
	"github.com/jime0083/BatsuGaku/logger"
)

// respondError maps the sentinel error taxonomy to one status code per
// class and logs anything that lands on 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrAuthentication):
		status = http.StatusUnauthorized
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		logger.Get().Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
