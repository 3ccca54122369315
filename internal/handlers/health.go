package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smartreads/internal/kv"
)

const healthProbeKey = "smartreads_healthz"

// Health reports whether the key-value store answers.
func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"status": "ok", "kv": "ok"}
	code := http.StatusOK

	if _, err := h.store.Get(ctx, healthProbeKey); err != nil && !errors.Is(err, kv.ErrNotFound) {
		status["status"] = "degraded"
		status["kv"] = err.Error()
		code = http.StatusServiceUnavailable
	}

	stats := h.catalog.Stats()
	status["catalog"] = gin.H{
		"books":      stats.Books,
		"authors":    stats.Authors,
		"categories": stats.Categories,
		"publishers": stats.Publishers,
	}

	c.JSON(code, status)
}
