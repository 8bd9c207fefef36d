package http

import (
	"github.com/gin-gonic/gin"

	"docuchat/internal/bootstrap"
	"docuchat/internal/transport/http/handler"
	"docuchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	documentsHandler := handler.NewDocumentsHandler(
		app.Sessions,
		app.Ingest,
		app.Lifecycle,
		app.Config.Session.TokenSecret,
		app.Config.Session.CookieName,
		app.Config.Session.CookieMaxAgeSeconds,
		app.Config.Session.MaxUploadBytes,
	)
	queryHandler := handler.NewQueryHandler(app.Sessions, app.Answer)
	adminHandler := handler.NewAdminHandler(app.Index, app.Lifecycle)

	session := middleware.Session(app.Config.Session.TokenSecret, app.Config.Session.CookieName)
	router.POST("/upload", session, documentsHandler.Upload)
	router.POST("/query", session, queryHandler.Ask)
	router.GET("/files", session, documentsHandler.ListFiles)
	router.POST("/session/clear", session, documentsHandler.ClearSession)

	admin := router.Group("/admin")
	admin.GET("/index/status", adminHandler.IndexStatus)
	admin.POST("/reset", adminHandler.Reset)

	return router
}
