package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const storageCheckTimeout = 2 * time.Second

// StorageCheck reports whether the submission store answers
type StorageCheck func(ctx context.Context) error

// HealthHandler reports liveness together with the submission store it writes to
type HealthHandler struct {
	backend string
	check   StorageCheck
}

func NewHealthHandler(backend string, check StorageCheck) *HealthHandler {
	return &HealthHandler{
		backend: backend,
		check:   check,
	}
}

// Healthcheck handles GET /api/healthcheck
func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	if h.check != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), storageCheckTimeout)
		defer cancel()
		if err := h.check(ctx); err != nil {
			attachError(c, err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unavailable",
				"storage": h.backend,
				"reason":  "submission store not reachable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"storage": h.backend,
	})
}
