package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devboom/devboom/internal/icon"
	"github.com/devboom/devboom/internal/model"
	"github.com/devboom/devboom/internal/storage"
	"github.com/devboom/devboom/internal/store"
)

// AdminHandler exposes service statistics built from the registry and
// the resolution audit log.
type AdminHandler struct {
	store  *store.Store
	audit  storage.ResolutionRepository
	logger *zap.Logger
}

func NewAdminHandler(st *store.Store, audit storage.ResolutionRepository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		store:  st,
		audit:  audit,
		logger: logger,
	}
}

// Stats returns registry counts and per-source resolution totals.
// Route: GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	ides := h.store.IDEs()
	withIcon := 0
	for _, ide := range ides {
		if ide.Icon != nil {
			withIcon++
		}
	}

	resolutions := gin.H{}
	sources := []string{
		string(icon.SourceExtraction),
		string(icon.SourceUserFile),
		string(icon.SourceWeb),
		string(icon.SourceWebCache),
		model.ResolutionMiss,
	}
	for _, src := range sources {
		count, err := h.audit.CountBySource(ctx, src)
		if err != nil {
			h.logger.Error("counting resolutions", zap.String("source", src), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		resolutions[src] = count
	}

	recent, err := h.audit.Recent(ctx, 20)
	if err != nil {
		h.logger.Error("listing recent resolutions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects":     len(h.store.Projects()),
		"ides":         len(ides),
		"idesWithIcon": withIcon,
		"resolutions":  resolutions,
		"recent":       recent,
	})
}
