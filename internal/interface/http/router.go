package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/varad-more/Voyagent/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/health", handler.Health)

	api := router.Group("/api/v1")
	itineraries := api.Group("/itineraries")
	{
		itineraries.POST("/generate", handler.Generate)
		itineraries.POST("/stream", handler.GenerateStream)
		itineraries.POST("/demo", handler.LoadDemo)
		itineraries.POST("/save", handler.Save)

		itineraries.POST("/edit", handler.Edit)
		itineraries.POST("/edit/confirm", handler.ConfirmEdit)
		itineraries.POST("/edit/cancel", handler.CancelEdit)
		itineraries.POST("/swap", handler.Swap)
		itineraries.POST("/swap/apply", handler.ApplySwap)
		itineraries.POST("/regenerate-day", handler.RegenerateDay)
		itineraries.POST("/blocks/delete", handler.DeleteBlock)
		itineraries.POST("/blocks/insert", handler.InsertBlock)

		itineraries.GET("", handler.History)
		itineraries.GET("/current", handler.Current)
		itineraries.GET("/current/progress", handler.Progress)
		itineraries.GET("/current/ics", handler.Calendar)
		itineraries.GET("/current/share", handler.Share)
		itineraries.GET("/current/share/qr", handler.ShareQR)
		itineraries.GET("/:id", handler.RecordByID)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
