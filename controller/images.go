package controller

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"flipbook/models"
	"flipbook/store"
)

// imageResponse adds a presigned URL for images stored in our bucket. A
// signing failure falls back to the stored URL.
func (h *Controller) imageResponse(ctx context.Context, img models.Image) models.ImageResponse {
	img.ApplyDefaults()
	resp := models.ImageResponse{Image: img}
	if h.objects == nil || img.S3Key == "" {
		return resp
	}
	signedURL, err := h.objects.PresignGet(ctx, img.S3Key, h.signedURLTTL)
	if err != nil {
		log.Warn().Err(err).Str("s3Key", img.S3Key).Msg("Error generating pre-signed URL")
		signedURL = img.URL
	}
	resp.SignedURL = signedURL
	return resp
}

func (h *Controller) imageResponses(ctx context.Context, imgs []models.Image) []models.ImageResponse {
	out := make([]models.ImageResponse, 0, len(imgs))
	for _, img := range imgs {
		out = append(out, h.imageResponse(ctx, img))
	}
	return out
}

func pageIndexParam(c *gin.Context) (int, error) {
	pageIndex, err := strconv.Atoi(c.Param("pageIndex"))
	if err != nil {
		return 0, &ValidationError{Message: "pageIndex must be an integer"}
	}
	return pageIndex, nil
}

func (h *Controller) CreateImage(c *gin.Context) {
	var req models.CreateImageRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, &ValidationError{Message: "url and pageIndex are required"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	img := &models.Image{
		URL:        req.URL,
		PageIndex:  *req.PageIndex,
		PageName:   req.PageName,
		UploadedAt: h.now(),
	}
	img.ApplyDefaults()
	if err := h.store.CreateImage(ctx, img); err != nil {
		writeError(c, storageError("create image", "Failed to save image info", err))
		return
	}
	c.JSON(http.StatusCreated, h.imageResponse(ctx, *img))
}

func (h *Controller) ListImages(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	images, err := h.store.ListImages(ctx)
	if err != nil {
		writeError(c, storageError("list images", "Failed to fetch images", err))
		return
	}
	c.JSON(http.StatusOK, h.imageResponses(ctx, images))
}

func (h *Controller) DeleteImage(c *gin.Context) {
	var req models.DeleteImageRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, &ValidationError{Message: "pageIndex is required"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	deleted, err := h.store.DeleteImage(ctx, *req.PageIndex)
	if err != nil {
		writeError(c, storageError("delete image", "Failed to delete image", err))
		return
	}
	if deleted == 0 {
		writeError(c, &NotFoundError{Message: "No image found for this page"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully", "deletedCount": deleted})
}

func (h *Controller) BulkCreateImages(c *gin.Context) {
	var req models.BulkImagesRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, &ValidationError{Message: "images must be a list of image objects"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	now := h.now()
	images := make([]models.Image, 0, len(req.Images))
	for _, item := range req.Images {
		img := item.Image()
		img.ApplyDefaults()
		if img.UploadedAt.IsZero() {
			img.UploadedAt = now
		}
		images = append(images, img)
	}
	saved, err := h.store.InsertImages(ctx, images)
	if err != nil {
		writeError(c, storageError("bulk create images", "Failed to bulk save images", err))
		return
	}
	c.JSON(http.StatusCreated, h.imageResponses(ctx, saved))
}

func (h *Controller) BulkDeleteImages(c *gin.Context) {
	var req models.BulkDeleteRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, &ValidationError{Message: "pageIndexes must be a list of integers"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	deleted, err := h.store.DeleteImages(ctx, req.PageIndexes)
	if err != nil {
		writeError(c, storageError("bulk delete images", "Failed to bulk delete images", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Images deleted successfully", "deletedCount": deleted})
}

func (h *Controller) upsertImageField(c *gin.Context, pageIndex int, field string, value any, failMessage string) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	img, err := h.store.UpsertImageField(ctx, pageIndex, field, value, h.now())
	if err != nil {
		writeError(c, storageError("upsert image "+field, failMessage, err))
		return
	}
	c.JSON(http.StatusOK, h.imageResponse(ctx, *img))
}

func (h *Controller) UpdateTextOverlays(c *gin.Context) {
	pageIndex, err := pageIndexParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var req models.TextOverlaysRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, &ValidationError{Message: "textOverlays must be a list"})
		return
	}
	if req.TextOverlays == nil {
		req.TextOverlays = []any{}
	}
	h.upsertImageField(c, pageIndex, store.FieldTextOverlays, req.TextOverlays, "Failed to update text overlays")
}

func (h *Controller) UpdateMetadata(c *gin.Context) {
	pageIndex, err := pageIndexParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var req models.MetadataRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, &ValidationError{Message: "metadata must be an object"})
		return
	}
	if req.Metadata == nil {
		req.Metadata = map[string]any{}
	}
	h.upsertImageField(c, pageIndex, store.FieldMetadata, req.Metadata, "Failed to update metadata")
}

func (h *Controller) UpdateAltText(c *gin.Context) {
	pageIndex, err := pageIndexParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var req models.AltTextRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, &ValidationError{Message: "altText must be a string"})
		return
	}
	h.upsertImageField(c, pageIndex, store.FieldAltText, req.AltText, "Failed to update alt text")
}

func (h *Controller) SearchImages(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	images, err := h.store.SearchImages(ctx, c.Query("query"))
	if err != nil {
		writeError(c, storageError("search images", "Failed to search images", err))
		return
	}
	c.JSON(http.StatusOK, h.imageResponses(ctx, images))
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// objectKey places an upload under its page with a unique prefix. The client
// filename is reduced to URL-safe characters.
func objectKey(pageIndex int, filename string) string {
	name := unsafeKeyChars.ReplaceAllString(path.Base(filename), "-")
	if name == "" || name == "." || name == ".." {
		name = "image"
	}
	return fmt.Sprintf("pages/%d/%s-%s", pageIndex, uuid.NewString(), name)
}

// UploadImage stores a multipart "image" file in object storage and records
// it as the image for the given page.
func (h *Controller) UploadImage(c *gin.Context) {
	if h.objects == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Image uploads are not configured"})
		return
	}

	pageIndex, err := strconv.Atoi(c.PostForm("pageIndex"))
	if err != nil {
		writeError(c, &ValidationError{Message: "pageIndex is required"})
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		writeError(c, &ValidationError{Message: "No image file provided"})
		return
	}
	content, err := file.Open()
	if err != nil {
		writeError(c, storageError("open upload", "Something went wrong", err))
		return
	}
	defer content.Close()

	ctx, cancel := h.requestContext(c)
	defer cancel()

	s3Key := objectKey(pageIndex, file.Filename)
	url, err := h.objects.Upload(ctx, s3Key, content, file.Header.Get("Content-Type"))
	if err != nil {
		writeError(c, storageError("upload image", "Error uploading image", err))
		return
	}

	img := &models.Image{
		URL:        url,
		PageIndex:  pageIndex,
		PageName:   c.PostForm("pageName"),
		UploadedAt: h.now(),
		S3Key:      s3Key,
	}
	img.ApplyDefaults()
	if err := h.store.CreateImage(ctx, img); err != nil {
		writeError(c, storageError("create image", "Failed to save image info", err))
		return
	}
	c.JSON(http.StatusCreated, h.imageResponse(ctx, *img))
}
