// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yahu/internal/http/handlers"
	"yahu/internal/http/middleware"
)

type RouterDeps struct {
	Engine   handlers.TurnHandler
	Bookings handlers.BookingReader
}

func NewRouter(deps RouterDeps) http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	chat := handlers.NewChatHandler(deps.Engine)
	r.POST("/api/chatbot", chat.Chat)

	bookings := handlers.NewBookingHandler(deps.Bookings)
	r.GET("/api/bookings", bookings.List)
	r.GET("/api/bookings/:id", bookings.Get)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
