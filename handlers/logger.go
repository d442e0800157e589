package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medislot/utils"
)

// getLogger retrieves a Zap logger from the Gin context or falls back to the process logger.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// bindError turns a request binding failure into a validation error.
func bindError(c *gin.Context, err error) {
	getLogger(c).Debug("invalid request payload", zap.String("path", c.FullPath()), zap.Error(err))
	utils.WriteError(c, utils.ErrMissingField.WithMessage("invalid request payload: %v", err))
}
