package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Liveness
	router.GET("/", handler.HealthCheck)

	router.POST("/files", handler.UploadFile)
	router.GET("/files", handler.ListFiles)
	router.GET("/files/:file_id", handler.GetFileContent)
	router.GET("/files/:file_id/progress", handler.GetProgress)
	router.DELETE("/files/:file_id", handler.DeleteFile)
}
