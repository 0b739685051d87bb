package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/companionhq/companion-server/internal/ai"
	"github.com/companionhq/companion-server/internal/chat"
	"github.com/companionhq/companion-server/internal/common"
)

type chatReq struct {
	UserID      uint64 `json:"user_id"`
	CompanionID uint64 `json:"companion_id"`
	SessionKey  string `json:"session_key"`
	Input       string `json:"input"`
}

func (r chatReq) validate() (chatReq, bool) {
	r.SessionKey = strings.TrimSpace(r.SessionKey)
	r.Input = strings.TrimSpace(r.Input)
	ok := r.UserID != 0 && r.CompanionID != 0 && r.SessionKey != "" && r.Input != ""
	return r, ok
}

// Chat runs one synchronous turn against the companion persona.
func (h *Handler) Chat(c *gin.Context) {
	var req chatReq
	_ = c.ShouldBindJSON(&req)

	req, valid := req.validate()
	if !valid {
		common.Error(c, http.StatusBadRequest, "user_id, companion_id, session_key, input are required")
		return
	}

	reply, err := h.ChatSvc.Reply(c.Request.Context(), req.UserID, req.CompanionID, req.SessionKey, req.Input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Error(c, http.StatusNotFound, "user or companion not found")
			return
		}
		if errors.Is(err, ai.ErrNotConfigured) {
			common.Error(c, http.StatusInternalServerError, "ai provider is not configured")
			return
		}
		common.Internal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply})
}

func (h *Handler) History(c *gin.Context) {
	sessionKey := c.Query("session_key")
	if sessionKey == "" {
		common.Error(c, http.StatusBadRequest, "session_key is required")
		return
	}

	msgs, err := h.ChatSvc.History(c.Request.Context(), sessionKey)
	if err != nil {
		common.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// ChatAsync records the human turn, queues reply generation, and answers
// with the job id. Repeated requests with the same Idempotency-Key reuse
// the original job.
func (h *Handler) ChatAsync(c *gin.Context) {
	if h.Rabbit == nil {
		common.Error(c, http.StatusServiceUnavailable, "async chat is disabled")
		return
	}

	var req chatReq
	_ = c.ShouldBindJSON(&req)

	req, valid := req.validate()
	if !valid {
		common.Error(c, http.StatusBadRequest, "user_id, companion_id, session_key, input are required")
		return
	}

	idempoKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if len(idempoKey) > 128 {
		common.Error(c, http.StatusBadRequest, "idempotency key too long")
		return
	}
	var idempoKeyPtr *string
	if idempoKey != "" {
		idempoKeyPtr = &idempoKey
	}

	ctx := c.Request.Context()
	if _, err := h.ChatSvc.GetUser(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Error(c, http.StatusNotFound, "user not found")
			return
		}
		common.Internal(c, err)
		return
	}
	if _, err := h.ChatSvc.GetCompanion(ctx, req.CompanionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Error(c, http.StatusNotFound, "companion not found")
			return
		}
		common.Internal(c, err)
		return
	}

	jobID, err := common.NewULID()
	if err != nil {
		common.Internal(c, err)
		return
	}

	j := &chat.Job{
		ID:             jobID,
		UserID:         req.UserID,
		CompanionID:    req.CompanionID,
		SessionKey:     req.SessionKey,
		Prompt:         req.Input,
		IdempotencyKey: idempoKeyPtr,
		Status:         chat.JobQueued,
	}

	job, created, err := h.ChatSvc.CreateJobOrGetExisting(ctx, j)
	if err != nil {
		log.Printf("[ChatAsync] create job failed session_key=%s err=%v", req.SessionKey, err)
		common.Internal(c, err)
		return
	}

	// Record the human turn and enqueue only for a freshly created job.
	if created {
		if err := h.ChatSvc.AppendHumanTurn(ctx, req.SessionKey, req.Input); err != nil {
			common.Internal(c, err)
			return
		}
		if err := h.Rabbit.PublishJob(ctx, job.ID); err != nil {
			log.Printf("[ChatAsync] publish failed job_id=%s err=%v", job.ID, err)
			common.Error(c, http.StatusInternalServerError, "enqueue failed")
			return
		}
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID})
}

func (h *Handler) GetChatJob(c *gin.Context) {
	jobID := c.Param("id")
	if jobID == "" {
		common.Error(c, http.StatusBadRequest, "job id is required")
		return
	}

	j, err := h.ChatSvc.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Error(c, http.StatusNotFound, "job not found")
			return
		}
		common.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, j)
}
