package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flipbook/models"
)

func (h *Controller) RecordPageView(c *gin.Context) {
	var req models.PageViewRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, &ValidationError{Message: "pageIndex is required"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	analytics, err := h.store.RecordPageView(ctx, *req.PageIndex, h.now())
	if err != nil {
		writeError(c, storageError("record page view", "Failed to track page view", err))
		return
	}
	c.JSON(http.StatusOK, analytics)
}

func (h *Controller) ListAnalytics(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	analytics, err := h.store.ListPageAnalytics(ctx)
	if err != nil {
		writeError(c, storageError("list analytics", "Failed to fetch analytics", err))
		return
	}
	c.JSON(http.StatusOK, analytics)
}
