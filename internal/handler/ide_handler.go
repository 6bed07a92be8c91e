package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devboom/devboom/internal/model"
	"github.com/devboom/devboom/internal/scan"
	"github.com/devboom/devboom/internal/service"
	"github.com/devboom/devboom/internal/store"
)

// IDEHandler exposes the IDE registry. Icons ride inside the JSON
// entities as data URLs, so listing is the natural refresh point:
// missing or stale icons are resolved before the response goes out.
type IDEHandler struct {
	store  *store.Store
	icons  *service.IconService
	logger *zap.Logger
}

func NewIDEHandler(st *store.Store, icons *service.IconService, logger *zap.Logger) *IDEHandler {
	return &IDEHandler{
		store:  st,
		icons:  icons,
		logger: logger,
	}
}

// List returns all configured IDEs by priority, refreshing icons first.
// Route: GET /api/v1/ides
func (h *IDEHandler) List(c *gin.Context) {
	if n := h.icons.RefreshAll(c.Request.Context()); n > 0 {
		h.logger.Info("refreshed icons during listing", zap.Int("updated", n))
	}
	c.JSON(http.StatusOK, h.store.IDEs())
}

// Create registers a user-defined IDE.
// Route: POST /api/v1/ides
func (h *IDEHandler) Create(c *gin.Context) {
	var in store.NewIDEInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	ide, err := h.store.AddIDE(in)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ide)
}

// Delete removes an IDE and scrubs it from project preferences.
// Route: DELETE /api/v1/ides/:id
func (h *IDEHandler) Delete(c *gin.Context) {
	if err := h.store.RemoveIDE(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "IDE not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// SetIcon applies a user-chosen icon file to an IDE.
// Route: PUT /api/v1/ides/:id/icon
func (h *IDEHandler) SetIcon(c *gin.Context) {
	var body struct {
		Path string `json:"path"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "icon file path is required"})
		return
	}

	ide, err := h.icons.SetIconFromFile(c.Request.Context(), c.Param("id"), body.Path)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "IDE not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ide)
}

// RefreshIcon forces a resolution pass for one IDE.
// Route: POST /api/v1/ides/:id/icon/refresh
func (h *IDEHandler) RefreshIcon(c *gin.Context) {
	ide, err := h.icons.RefreshOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "IDE not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ide)
}

// Detect scans for known IDE installations and registers any that are
// not yet in the store.
// Route: POST /api/v1/ides/detect
func (h *IDEHandler) Detect(c *gin.Context) {
	existing := make(map[string]bool)
	for _, ide := range h.store.IDEs() {
		existing[ide.ID] = true
	}

	added := []model.IDEConfig{}
	for _, ide := range scan.DetectIDEs(existing) {
		ok, err := h.store.AddDetectedIDE(ide)
		if err != nil {
			h.logger.Warn("registering detected IDE failed",
				zap.String("ide", ide.ID),
				zap.Error(err),
			)
			continue
		}
		if ok {
			added = append(added, ide)
		}
	}

	// New entries have no icons yet; resolve them right away.
	if len(added) > 0 {
		h.icons.RefreshAll(c.Request.Context())
	}

	h.logger.Info("IDE detection finished", zap.Int("added", len(added)))
	c.JSON(http.StatusOK, gin.H{"added": added})
}
