package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(
		s.recovery(),
		s.observe(),
		allowCORS(),
	)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))

	api := r.Group("/api")
	api.POST("/signup", s.signup)
	api.POST("/login", s.login)
	api.GET("/profile", s.authRequired(), s.profile)

	notes := r.Group("/notes", s.authRequired())
	notes.GET("", s.listNotes)
	notes.POST("", s.createNote)
	notes.PUT("/:id", s.updateNote)
	notes.DELETE("/:id", s.deleteNote)
	notes.POST("/:id/attachments", s.createAttachment)
	notes.GET("/:id/attachments/:attachmentID", s.getAttachment)

	return r
}
