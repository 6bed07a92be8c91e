package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devboom/devboom/internal/launch"
	"github.com/devboom/devboom/internal/model"
	"github.com/devboom/devboom/internal/scan"
	"github.com/devboom/devboom/internal/store"
)

// ProjectHandler exposes the project registry: listing, registration,
// discovery scans, ordering, and launching.
type ProjectHandler struct {
	store        *store.Store
	launcher     *launch.Launcher
	scanMaxDepth int
	logger       *zap.Logger
}

func NewProjectHandler(st *store.Store, launcher *launch.Launcher, scanMaxDepth int, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		store:        st,
		launcher:     launcher,
		scanMaxDepth: scanMaxDepth,
		logger:       logger,
	}
}

// List returns all registered projects, most recently modified first.
// Route: GET /api/v1/projects
func (h *ProjectHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Projects())
}

// Create registers a project directory.
// Route: POST /api/v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var in store.NewProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	project, err := h.store.AddProject(in, scan.DetectProjectType)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "project path already registered"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, project)
}

// Delete removes a project from the registry. The directory itself is
// untouched.
// Route: DELETE /api/v1/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.store.RemoveProject(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleFavorite flips a project's favorite flag.
// Route: POST /api/v1/projects/:id/favorite
func (h *ProjectHandler) ToggleFavorite(c *gin.Context) {
	project, err := h.store.ToggleFavorite(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, project)
}

// Reorder applies an explicit display order.
// Route: PUT /api/v1/projects/reorder
func (h *ProjectHandler) Reorder(c *gin.Context) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if err := h.store.Reorder(body.IDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "persisting order failed"})
		return
	}
	c.JSON(http.StatusOK, h.store.Projects())
}

// SetPreferences replaces a project's preferred IDE list.
// Route: PUT /api/v1/projects/:id/preferences
func (h *ProjectHandler) SetPreferences(c *gin.Context) {
	var body struct {
		IDEIDs []string `json:"ideIds"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	project, err := h.store.SetIDEPreferences(c.Param("id"), body.IDEIDs)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, project)
}

// Scan walks a directory tree, registering every project root that is
// not already known. Returns the newly added projects.
// Route: POST /api/v1/projects/scan
func (h *ProjectHandler) Scan(c *gin.Context) {
	var body struct {
		Root     string `json:"root"`
		MaxDepth *int   `json:"maxDepth"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Root == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "root directory is required"})
		return
	}
	depth := h.scanMaxDepth
	if body.MaxDepth != nil && *body.MaxDepth > 0 {
		depth = *body.MaxDepth
	}

	added := []model.Project{}
	for _, dir := range scan.Projects(body.Root, depth) {
		if h.store.HasProjectPath(dir) {
			continue
		}
		project, err := h.store.AddProject(store.NewProjectInput{Path: dir}, scan.DetectProjectType)
		if err != nil {
			h.logger.Warn("registering scanned project failed",
				zap.String("path", dir),
				zap.Error(err),
			)
			continue
		}
		added = append(added, *project)
	}

	h.logger.Info("project scan finished",
		zap.String("root", body.Root),
		zap.Int("added", len(added)),
	)
	c.JSON(http.StatusOK, gin.H{"added": added})
}

// Launch opens a project in an IDE. The IDE is chosen explicitly via
// the body, else from the project's preference list, else the highest
// priority IDE in the registry.
// Route: POST /api/v1/projects/:id/launch
func (h *ProjectHandler) Launch(c *gin.Context) {
	var body struct {
		IDEID string `json:"ideId"`
	}
	// An empty body means "use preferences".
	_ = c.ShouldBindJSON(&body)

	project, err := h.store.Project(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	ide, err := h.pickIDE(*project, body.IDEID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.launcher.Open(*ide, project.Path); err != nil {
		h.logger.Error("launch failed",
			zap.String("project", project.ID),
			zap.String("ide", ide.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.MarkOpened(project.ID); err != nil {
		h.logger.Warn("marking project opened failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"launched": ide.ID})
}

func (h *ProjectHandler) pickIDE(project model.Project, explicit string) (*model.IDEConfig, error) {
	if explicit != "" {
		ide, err := h.store.IDE(explicit)
		if err != nil {
			return nil, errors.New("unknown IDE id: " + explicit)
		}
		return ide, nil
	}
	for _, pref := range project.Metadata.IDEPreferences {
		if ide, err := h.store.IDE(pref); err == nil {
			return ide, nil
		}
	}
	ides := h.store.IDEs()
	if len(ides) == 0 {
		return nil, errors.New("no IDEs configured")
	}
	return &ides[0], nil
}
