package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flipbook/models"
)

func (h *Controller) CreateBookmark(c *gin.Context) {
	var req models.CreateBookmarkRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, &ValidationError{Message: "pageIndex is required"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	bookmark := &models.Bookmark{
		PageIndex: *req.PageIndex,
		Title:     req.Title,
		CreatedAt: h.now(),
	}
	if err := h.store.CreateBookmark(ctx, bookmark); err != nil {
		writeError(c, storageError("create bookmark", "Failed to create bookmark", err))
		return
	}
	c.JSON(http.StatusCreated, bookmark)
}

func (h *Controller) ListBookmarks(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	bookmarks, err := h.store.ListBookmarks(ctx)
	if err != nil {
		writeError(c, storageError("list bookmarks", "Failed to fetch bookmarks", err))
		return
	}
	c.JSON(http.StatusOK, bookmarks)
}

// DeleteBookmark removes the oldest bookmark for the page. Deleting a page
// with no bookmark is not an error; deletedCount is 0.
func (h *Controller) DeleteBookmark(c *gin.Context) {
	pageIndex, err := pageIndexParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	deleted, err := h.store.DeleteBookmark(ctx, pageIndex)
	if err != nil {
		writeError(c, storageError("delete bookmark", "Failed to delete bookmark", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bookmark deleted successfully", "deletedCount": deleted})
}
