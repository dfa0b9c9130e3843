package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"flipbook/metrics"
	"flipbook/models"
	"flipbook/store"
	"flipbook/utils"
)

const (
	// ProjectPasswordHeader carries the password of a protected project.
	ProjectPasswordHeader = "X-Project-Password"

	publicProjectLimit = 50
	shareIDAttempts    = 5
)

type projectCreatedResponse struct {
	*models.Project
	Message string `json:"message"`
}

func (h *Controller) CreateProject(c *gin.Context) {
	var req models.CreateProjectRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, &ValidationError{Message: "Invalid project payload"})
		return
	}

	now := h.now()
	project := &models.Project{
		Name:         req.Name,
		Description:  req.Description,
		Settings:     req.Settings,
		IsPublic:     req.IsPublic,
		Images:       req.Images,
		TextOverlays: req.TextOverlays,
		PageMetadata: req.PageMetadata,
		AltTexts:     req.AltTexts,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if project.Name == "" {
		project.Name = "Flipbook " + now.Format("1/2/2006")
	}
	if project.Description == "" {
		project.Description = fmt.Sprintf("Flipbook with %d pages", len(req.Images))
	}
	project.ApplyDefaults()

	if req.Password != "" {
		hash, err := utils.HashPass(req.Password)
		if err != nil {
			writeError(c, &StorageError{Op: "hash project password", Message: "Failed to save project", Err: err, ShowDetails: true})
			return
		}
		project.Password = hash
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.insertProject(ctx, project); err != nil {
		writeError(c, &StorageError{Op: "create project", Message: "Failed to save project", Err: err, ShowDetails: true})
		return
	}

	log.Info().Str("shareId", project.ShareID).Msg("Project saved")
	project.ApplyDefaults()
	c.JSON(http.StatusCreated, projectCreatedResponse{Project: project, Message: "Project saved successfully"})
}

// insertProject assigns a fresh shareId and inserts, regenerating the id
// when the unique index rejects it.
func (h *Controller) insertProject(ctx context.Context, project *models.Project) error {
	var err error
	for range shareIDAttempts {
		project.ShareID, err = h.newShareID(h.clock())
		if err != nil {
			return fmt.Errorf("generate shareId: %w", err)
		}
		err = h.store.CreateProject(ctx, project)
		if !errors.Is(err, store.ErrDuplicateKey) {
			return err
		}
		metrics.ShareIDCollisions.Inc()
		log.Warn().Str("shareId", project.ShareID).Msg("shareId collision, regenerating")
	}
	return fmt.Errorf("no unique shareId after %d attempts: %w", shareIDAttempts, err)
}

// loadProject fetches the project named by the :shareId param and checks
// the password header when the project is protected.
func (h *Controller) loadProject(ctx context.Context, c *gin.Context) (*models.Project, error) {
	shareID := c.Param("shareId")
	project, err := h.store.GetProject(ctx, shareID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Message: "Project not found"}
	}
	if err != nil {
		return nil, storageError("get project", "Failed to fetch project", err)
	}
	if err := authorizeProject(c, project); err != nil {
		return nil, err
	}
	return project, nil
}

func authorizeProject(c *gin.Context, project *models.Project) error {
	if project.Password == "" {
		return nil
	}
	supplied := c.GetHeader(ProjectPasswordHeader)
	if supplied == "" {
		return &UnauthorizedError{Message: "Password required"}
	}
	if err := utils.ComparePass(supplied, project.Password); err != nil {
		return &UnauthorizedError{Message: "Incorrect password"}
	}
	return nil
}

func (h *Controller) GetProject(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	project, err := h.loadProject(ctx, c)
	if err != nil {
		writeError(c, err)
		return
	}

	// Best effort: a failed view count never fails the read.
	if _, err := h.store.RecordProjectView(ctx, project.ShareID, h.now()); err != nil {
		metrics.ProjectViewFailures.Inc()
		log.Warn().Err(err).Str("shareId", project.ShareID).Msg("Analytics tracking failed")
	}

	log.Debug().Str("shareId", project.ShareID).Msg("Project accessed")
	project.ApplyDefaults()
	c.JSON(http.StatusOK, project)
}

func (h *Controller) GetProjectAnalytics(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	project, err := h.loadProject(ctx, c)
	if err != nil {
		writeError(c, err)
		return
	}

	views, err := h.store.GetProjectViews(ctx, project.ShareID)
	if errors.Is(err, store.ErrNotFound) {
		views = &models.ProjectView{ShareID: project.ShareID}
	} else if err != nil {
		writeError(c, storageError("get project views", "Failed to fetch project analytics", err))
		return
	}
	c.JSON(http.StatusOK, views)
}

// ListPublicProjects returns the newest public projects. Password hashes
// are cleared even though they never serialize.
func (h *Controller) ListPublicProjects(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	projects, err := h.store.ListPublicProjects(ctx, publicProjectLimit)
	if err != nil {
		writeError(c, storageError("list public projects", "Failed to fetch projects", err))
		return
	}
	for i := range projects {
		projects[i].ApplyDefaults()
		projects[i].Password = ""
	}
	c.JSON(http.StatusOK, projects)
}

func (h *Controller) UpdateProject(c *gin.Context) {
	var update models.ProjectUpdate
	if err := bindJSON(c, &update); err != nil {
		writeError(c, &ValidationError{Message: "Invalid project payload"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	project, err := h.loadProject(ctx, c)
	if err != nil {
		writeError(c, err)
		return
	}

	if update.Password != nil && *update.Password != "" {
		hash, err := utils.HashPass(*update.Password)
		if err != nil {
			writeError(c, storageError("hash project password", "Failed to update project", err))
			return
		}
		update.Password = &hash
	}
	update.UpdatedAt = h.now()

	updated, err := h.store.UpdateProject(ctx, project.ShareID, update)
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, &NotFoundError{Message: "Project not found"})
		return
	}
	if err != nil {
		writeError(c, storageError("update project", "Failed to update project", err))
		return
	}
	updated.ApplyDefaults()
	c.JSON(http.StatusOK, updated)
}

func (h *Controller) DeleteProject(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	project, err := h.loadProject(ctx, c)
	if err != nil {
		writeError(c, err)
		return
	}

	err = h.store.DeleteProject(ctx, project.ShareID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, &NotFoundError{Message: "Project not found"})
		return
	}
	if err != nil {
		writeError(c, storageError("delete project", "Failed to delete project", err))
		return
	}
	log.Info().Str("shareId", project.ShareID).Msg("Project deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}
