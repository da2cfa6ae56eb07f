package handler

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"vestra/internal/scheduler"

	"github.com/gin-gonic/gin"
)

type RoiRunner interface {
	RunOnce(ctx context.Context) (scheduler.Summary, error)
}

// CronHandler lets an external scheduler trigger one ROI pass.
type CronHandler struct {
	runner RoiRunner
	key    string
}

func NewCronHandler(runner RoiRunner, key string) *CronHandler {
	return &CronHandler{runner: runner, key: key}
}

func (h *CronHandler) RunRoi(c *gin.Context) {
	if h.key == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cron trigger disabled"})
		return
	}
	given := c.GetHeader("X-CRON-KEY")
	if subtle.ConstantTimeCompare([]byte(given), []byte(h.key)) != 1 {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid cron key"})
		return
	}
	sum, err := h.runner.RunOnce(c.Request.Context())
	if err != nil {
		slog.Error("cron roi pass failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "roi pass failed", "summary": sum})
		return
	}
	c.JSON(http.StatusOK, sum)
}
