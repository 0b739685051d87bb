package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/companionhq/companion-server/internal/bot"
	"github.com/companionhq/companion-server/internal/chat"
	"github.com/companionhq/companion-server/internal/config"
	"github.com/companionhq/companion-server/internal/httpapi/handlers"
	"github.com/companionhq/companion-server/internal/httpapi/middleware"
	"github.com/companionhq/companion-server/internal/store/rabbitmq"
)

func NewRouter(db *gorm.DB, cfg config.Config, chatSvc *chat.Service, botSvc *bot.Service, rabbit *rabbitmq.Publisher) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	h := handlers.NewHandler(db, cfg, chatSvc, botSvc, rabbit)

	// bot path (redis prompt per bot id)
	r.GET("/chat", h.ChatPage)
	r.POST("/chat", h.BotChat)
	r.GET("/create", h.CreatePage)
	r.POST("/create", h.CreateBotForm)

	api := r.Group("/api")
	api.GET("/health", h.Health)

	api.POST("/users", h.CreateUser)
	api.GET("/users", h.ListUsers)
	api.DELETE("/users/:id", h.DeleteUser)

	api.POST("/companions", h.CreateCompanion)
	api.GET("/companions", h.ListCompanions)
	api.PATCH("/companions/:id", h.UpdateCompanion)
	api.DELETE("/companions/:id", h.DeleteCompanion)

	api.POST("/conversations", h.CreateConversation)
	api.GET("/conversations", h.ListConversations)

	api.POST("/chat", h.Chat)
	api.POST("/chat/async", h.ChatAsync)
	api.GET("/jobs/:id", h.GetChatJob)
	api.GET("/history", h.History)

	api.GET("/bots", h.ListBots)
	api.GET("/bots/:bot_id", h.GetBot)
	api.PUT("/bots/:bot_id", h.UpdateBot)
	api.DELETE("/bots/:bot_id", h.DeleteBot)

	return r
}
