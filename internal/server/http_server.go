package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/goldwen/matching-service/internal/config"
)

// StartHTTPServer boots the HTTP server on the configured address and
// blocks until it exits.
func StartHTTPServer(cfg *config.Config, router *gin.Engine) error {
	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	if err := router.Run(addr); err != nil {
		return fmt.Errorf("http server stopped: %w", err)
	}
	return nil
}
