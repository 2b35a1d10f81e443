package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/grvbrk/yt-categorizer/internal/app"
	"github.com/grvbrk/yt-categorizer/internal/handlers"
)

func SetupRoutes(app *app.Application) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitAll(200, time.Minute))
	r.Use(app.MiddlewareHandler.RequestLogger)
	r.Use(app.MiddlewareHandler.Security)
	r.Use(app.MiddlewareHandler.Cors)

	r.Get("/", handlers.HandlerHome)
	r.Get("/health", handlers.HandlerHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitAll(100, time.Minute))

		r.Get("/channel/videos", app.ChannelHandler.HandlerGetChannelVideos)
		r.Get("/channels/videos", app.ChannelHandler.HandlerGetMultipleChannelVideos)
		r.Get("/channels/paginated-videos", app.ChannelHandler.HandlerGetPaginatedVideos)
		r.Get("/channels/{channelId}/videos", app.VideoHandler.HandlerGetVideosByChannel)

		r.Get("/videos", app.VideoHandler.HandlerGetVideos)
		r.Get("/ingestions", app.AnalyticsIngestionHandler.HandlerGetIngestions)
	})

	return r
}
