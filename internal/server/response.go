package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paybridgehq/paybridge/internal/gateway/domain"
	"go.uber.org/zap"
)

func (s *Server) abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingField):
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": domain.ClientMessage(err)})
	case errors.Is(err, domain.ErrConfigNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": false, "msg": "unknown identifier"})
	default:
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": false, "msg": "internal error"})
	}
}
