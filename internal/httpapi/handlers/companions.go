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

type companionAttrs struct {
	Age          *int    `json:"age"`
	Gender       *string `json:"gender"`
	BirthCountry *string `json:"birth_country"`
	Personality  *string `json:"personality"`
	Education    *string `json:"education"`
	Background   *string `json:"background"`
	SystemPrompt *string `json:"system_prompt"`
}

type createCompanionReq struct {
	UserID uint64 `json:"user_id"`
	Name   string `json:"name"`
	companionAttrs
}

func (h *Handler) CreateCompanion(c *gin.Context) {
	var req createCompanionReq
	_ = c.ShouldBindJSON(&req)

	name := strings.TrimSpace(req.Name)
	if req.UserID == 0 || name == "" {
		common.Error(c, http.StatusBadRequest, "user_id and name are required")
		return
	}

	ctx := c.Request.Context()
	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Error(c, http.StatusNotFound, "user not found")
			return
		}
		common.Internal(c, err)
		return
	}

	companion := models.Companion{
		UserID:       req.UserID,
		Name:         name,
		Age:          req.Age,
		Gender:       req.Gender,
		BirthCountry: req.BirthCountry,
		Personality:  req.Personality,
		Education:    req.Education,
		Background:   req.Background,
		SystemPrompt: req.SystemPrompt,
	}
	if err := h.DB.WithContext(ctx).Create(&companion).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			common.Error(c, http.StatusConflict, "companion name already exists for this user")
			return
		}
		common.Internal(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": companion.ID, "name": companion.Name})
}

func (h *Handler) ListCompanions(c *gin.Context) {
	q := h.DB.WithContext(c.Request.Context()).Model(&models.Companion{})
	if v := c.Query("user_id"); v != "" {
		userID, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			common.Error(c, http.StatusBadRequest, "invalid user_id")
			return
		}
		q = q.Where("user_id = ?", userID)
	}

	var companions []models.Companion
	if err := q.Find(&companions).Error; err != nil {
		common.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, companions)
}

type updateCompanionReq struct {
	Name *string `json:"name"`
	companionAttrs
}

func (h *Handler) UpdateCompanion(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Error(c, http.StatusBadRequest, "invalid companion id")
		return
	}

	var req updateCompanionReq
	_ = c.ShouldBindJSON(&req)

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Age != nil {
		updates["age"] = *req.Age
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.BirthCountry != nil {
		updates["birth_country"] = *req.BirthCountry
	}
	if req.Personality != nil {
		updates["personality"] = *req.Personality
	}
	if req.Education != nil {
		updates["education"] = *req.Education
	}
	if req.Background != nil {
		updates["background"] = *req.Background
	}
	if req.SystemPrompt != nil {
		updates["system_prompt"] = *req.SystemPrompt
	}

	ctx := c.Request.Context()
	var companion models.Companion
	if err := h.DB.WithContext(ctx).First(&companion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Error(c, http.StatusNotFound, "companion not found")
			return
		}
		common.Internal(c, err)
		return
	}

	if len(updates) > 0 {
		if err := h.DB.WithContext(ctx).Model(&companion).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				common.Error(c, http.StatusConflict, "companion name already exists for this user")
				return
			}
			common.Internal(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"id": companion.ID, "updated": true})
}

// DeleteCompanion removes the companion and its conversations.
func (h *Handler) DeleteCompanion(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Error(c, http.StatusBadRequest, "invalid companion id")
		return
	}

	err = h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var companion models.Companion
		if err := tx.First(&companion, id).Error; err != nil {
			return err
		}
		if err := tx.Where("companion_id = ?", id).Delete(&models.Conversation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&companion).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Error(c, http.StatusNotFound, "companion not found")
			return
		}
		common.Internal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}
