package routes

import (
	"log"
	"net/http"

	"twitchgame/handlers"
	"twitchgame/middleware"
	"twitchgame/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	gameHandler *handlers.GameHandler,
	userHandler *handlers.UserHandler,
	hub *services.Hub,
	authService *services.AuthService,
) {
	// API routes
	api := router.Group("/api")
	{
		// Public game routes
		game := api.Group("/game")
		{
			game.GET("/active", gameHandler.ActiveSessions)
			game.GET("/:sessionCode", gameHandler.GetSession)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(authService))
		{
			protected.GET("/auth/validate", func(c *gin.Context) {
				userID, _ := c.Get("user_id")
				username, _ := c.Get("username")
				c.JSON(http.StatusOK, gin.H{
					"success":  true,
					"userId":   userID,
					"username": username,
				})
			})

			user := protected.Group("/user")
			{
				user.GET("/profile", userHandler.GetProfile)
				user.PUT("/profile", userHandler.UpdateProfile)
				user.GET("/stats", userHandler.GetStats)
			}
		}

		// Leaderboard is public
		api.GET("/user/leaderboard", userHandler.GetLeaderboard)
	}

	// WebSocket endpoint for real-time game communication. The bearer token
	// arrives either as the websocket subprotocol or as a query parameter.
	router.GET("/ws", func(c *gin.Context) {
		token := c.Query("token")
		var responseHeader http.Header
		if protocols := websocket.Subprotocols(c.Request); len(protocols) > 0 {
			token = protocols[0]
			responseHeader = http.Header{"Sec-WebSocket-Protocol": {protocols[0]}}
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, responseHeader)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}

		if token == "" {
			closeWithPolicyViolation(conn, "Authentication required")
			return
		}

		identity, err := authService.ValidateToken(token)
		if err != nil {
			log.Printf("WebSocket authentication error: %v", err)
			closeWithPolicyViolation(conn, "Invalid token")
			return
		}

		hub.ServeConnection(conn, identity)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// closeWithPolicyViolation refuses a connection that failed authentication.
// No retry happens server-side; the client must re-handshake.
func closeWithPolicyViolation(conn *websocket.Conn, reason string) {
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason))
	conn.Close()
}
