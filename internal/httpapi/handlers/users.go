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

type createUserReq struct {
	Username string `json:"username"`
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserReq
	_ = c.ShouldBindJSON(&req)

	username := strings.TrimSpace(req.Username)
	if username == "" {
		common.Error(c, http.StatusBadRequest, "username is required")
		return
	}

	user := models.User{Username: username}
	if err := h.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			common.Error(c, http.StatusConflict, "username already exists")
			return
		}
		common.Internal(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}

func (h *Handler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.WithContext(c.Request.Context()).Find(&users).Error; err != nil {
		common.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// DeleteUser removes the user and, in the same transaction, every
// companion and conversation it owns.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Error(c, http.StatusBadRequest, "invalid user id")
		return
	}

	err = h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Conversation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Companion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Error(c, http.StatusNotFound, "user not found")
			return
		}
		common.Internal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}
