package router

import (
	"github.com/gin-gonic/gin"

	"draftdesk.app/server/internal/http/handler"
	"draftdesk.app/server/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	canvasHandler := handler.NewCanvasHandler(services.Canvas())
	draftsHandler := handler.NewDraftsHandler(services.Drafts(), services.Style())

	v1 := router.Group("/api/v1")
	{
		cg := v1.Group("/canvas")
		cg.GET("/self", canvasHandler.Self)
		cg.GET("/courses", canvasHandler.Courses)
		cg.GET("/assignments", canvasHandler.Assignments)
		cg.GET("/submissions", canvasHandler.Submissions)
		cg.GET("/file", canvasHandler.File)
		cg.POST("/comment", canvasHandler.PostComment)

		v1.POST("/style-guide", draftsHandler.StyleGuide)
		v1.POST("/drafts", draftsHandler.Generate)
	}
}
