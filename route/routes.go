package route

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flipbook/controller"
)

// Register mounts every flipbook route on router.
func Register(router *gin.Engine, h *controller.Controller) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	images := api.Group("/images")
	images.POST("", h.CreateImage)
	images.GET("", h.ListImages)
	images.DELETE("", h.DeleteImage)
	images.POST("/bulk", h.BulkCreateImages)
	images.DELETE("/bulk", h.BulkDeleteImages)
	images.POST("/upload", h.UploadImage)
	images.PUT("/:pageIndex/text", h.UpdateTextOverlays)
	images.PUT("/:pageIndex/metadata", h.UpdateMetadata)
	images.PUT("/:pageIndex/alt", h.UpdateAltText)

	api.POST("/analytics/view", h.RecordPageView)
	api.GET("/analytics", h.ListAnalytics)

	api.POST("/bookmarks", h.CreateBookmark)
	api.GET("/bookmarks", h.ListBookmarks)
	api.DELETE("/bookmarks/:pageIndex", h.DeleteBookmark)

	projects := api.Group("/projects")
	projects.POST("", h.CreateProject)
	projects.GET("", h.ListPublicProjects)
	projects.GET("/:shareId", h.GetProject)
	projects.GET("/:shareId/analytics", h.GetProjectAnalytics)
	projects.PUT("/:shareId", h.UpdateProject)
	projects.DELETE("/:shareId", h.DeleteProject)

	api.GET("/search", h.SearchImages)
}
