package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/companionhq/companion-server/internal/common"
	"github.com/companionhq/companion-server/internal/models"
)

type createConversationReq struct {
	UserID      uint64 `json:"user_id"`
	CompanionID uint64 `json:"companion_id"`
	SessionKey  string `json:"session_key"`
}

func (h *Handler) CreateConversation(c *gin.Context) {
	var req createConversationReq
	_ = c.ShouldBindJSON(&req)

	sessionKey := strings.TrimSpace(req.SessionKey)
	if req.UserID == 0 || req.CompanionID == 0 || sessionKey == "" {
		common.Error(c, http.StatusBadRequest, "user_id, companion_id, session_key are required")
		return
	}

	ctx := c.Request.Context()
	if err := h.DB.WithContext(ctx).First(&models.User{}, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Error(c, http.StatusNotFound, "user not found")
			return
		}
		common.Internal(c, err)
		return
	}
	if err := h.DB.WithContext(ctx).First(&models.Companion{}, req.CompanionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Error(c, http.StatusNotFound, "companion not found")
			return
		}
		common.Internal(c, err)
		return
	}

	conv := models.Conversation{
		UserID:      req.UserID,
		CompanionID: req.CompanionID,
		SessionKey:  sessionKey,
	}
	if err := h.DB.WithContext(ctx).Create(&conv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			common.Error(c, http.StatusConflict, "session_key already exists")
			return
		}
		common.Internal(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": conv.ID, "session_key": conv.SessionKey})
}

func (h *Handler) ListConversations(c *gin.Context) {
	q := h.DB.WithContext(c.Request.Context()).Model(&models.Conversation{})
	if v := c.Query("user_id"); v != "" {
		userID, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			common.Error(c, http.StatusBadRequest, "invalid user_id")
			return
		}
		q = q.Where("user_id = ?", userID)
	}
	if v := c.Query("companion_id"); v != "" {
		companionID, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			common.Error(c, http.StatusBadRequest, "invalid companion_id")
			return
		}
		q = q.Where("companion_id = ?", companionID)
	}

	var convs []models.Conversation
	if err := q.Find(&convs).Error; err != nil {
		common.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, convs)
}
