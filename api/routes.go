package api

import "github.com/gin-gonic/gin"

// SetupRoutes registers all API routes on the router
func SetupRoutes(router *gin.Engine, h *Handlers) {
	api := router.Group("/api")

	// Public routes: no access token required
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
	}

	oauthGroup := api.Group("/oauth")
	{
		oauthGroup.GET("/authorize", h.OAuthAuthorize)
		oauthGroup.GET("/callback", h.OAuthCallback)
	}

	// Everything below requires authentication
	authed := api.Group("")
	authed.Use(RequireAuth())
	{
		authed.GET("/auth/me", h.Me)

		tasks := authed.Group("/tasks")
		{
			tasks.GET("", h.ListTasks)
			tasks.POST("", h.CreateTask)
			tasks.GET("/:id", h.GetTask)
			tasks.PATCH("/:id", h.UpdateTask)
			tasks.DELETE("/:id", h.DeleteTask)
			tasks.POST("/:id/move", h.MoveTask)
		}

		authed.GET("/board", h.GetBoard)

		focus := authed.Group("/focus")
		{
			focus.GET("", h.ListFocusSessions)
			focus.POST("", h.StartFocusSession)
			focus.GET("/active", h.ActiveFocusSession)
			focus.POST("/:id/complete", h.CompleteFocusSession)
			focus.POST("/:id/abandon", h.AbandonFocusSession)
		}

		analytics := authed.Group("/analytics")
		{
			analytics.GET("/summary", h.AnalyticsSummary)
			analytics.GET("/daily", h.AnalyticsDaily)
		}

		chat := authed.Group("/chat/conversations")
		{
			chat.GET("", h.ListConversations)
			chat.POST("", h.CreateConversation)
			chat.GET("/:id", h.GetConversation)
			chat.DELETE("/:id", h.DeleteConversation)
			chat.GET("/:id/messages", h.ListMessages)
			chat.POST("/:id/messages", h.PostMessage)
		}

		authed.GET("/settings", h.GetSettings)
		authed.PATCH("/settings", h.UpdateSettings)
		authed.DELETE("/settings", h.ResetSettings)

		authed.GET("/stats", h.GetStats)

		authed.GET("/notifications/stream", h.NotificationsStream)
	}
}
