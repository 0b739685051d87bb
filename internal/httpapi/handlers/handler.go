package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/companionhq/companion-server/internal/bot"
	"github.com/companionhq/companion-server/internal/chat"
	"github.com/companionhq/companion-server/internal/config"
	"github.com/companionhq/companion-server/internal/store/rabbitmq"
)

type Handler struct {
	DB      *gorm.DB
	Cfg     config.Config
	ChatSvc *chat.Service
	BotSvc  *bot.Service
	Rabbit  *rabbitmq.Publisher // nil when async chat is disabled
}

func NewHandler(db *gorm.DB, cfg config.Config, chatSvc *chat.Service, botSvc *bot.Service, rabbit *rabbitmq.Publisher) *Handler {
	return &Handler{
		DB:      db,
		Cfg:     cfg,
		ChatSvc: chatSvc,
		BotSvc:  botSvc,
		Rabbit:  rabbit,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
