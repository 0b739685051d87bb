package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/companionhq/companion-server/internal/common"
	"github.com/companionhq/companion-server/internal/store/redisstore"
)

// The web pages are deliberately minimal; there is no template engine.

const chatPage = `<!doctype html>
<html>
<head><title>Companion Chat</title></head>
<body>
<h1>Chat</h1>
<div id="log"></div>
<form id="f"><input id="m" autocomplete="off"><button>Send</button></form>
<script>
const botId = new URLSearchParams(location.search).get('bot_id') || '';
const log = document.getElementById('log');
document.getElementById('f').onsubmit = async (e) => {
  e.preventDefault();
  const message = document.getElementById('m').value;
  document.getElementById('m').value = '';
  log.innerHTML += '<p><b>you:</b> ' + message + '</p>';
  const res = await fetch('/chat', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({botId, message})
  });
  const data = await res.json();
  log.innerHTML += '<p><b>bot:</b> ' + (data.response || data.error) + '</p>';
};
</script>
</body>
</html>`

const createPage = `<!doctype html>
<html>
<head><title>Create Bot</title></head>
<body>
<h1>Create a bot</h1>
<form method="post" action="/create">
<label>Bot id <input name="bot_id"></label><br>
<label>System prompt<br><textarea name="content" rows="8" cols="60"></textarea></label><br>
<button>Save</button>
</form>
</body>
</html>`

func (h *Handler) ChatPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(chatPage))
}

type botChatReq struct {
	BotID   string `json:"botId"`
	Message string `json:"message"`
}

// BotChat routes one turn through the bot's cached chain. The session id
// is derived from the bot id, so the page shares one running history per
// bot.
func (h *Handler) BotChat(c *gin.Context) {
	var req botChatReq
	_ = c.ShouldBindJSON(&req)

	if strings.TrimSpace(req.Message) == "" {
		common.Error(c, http.StatusBadRequest, "Message cannot be empty")
		return
	}

	sessionID := req.BotID + "-user001"
	reply, err := h.BotSvc.Reply(c.Request.Context(), req.BotID, sessionID, req.Message)
	if err != nil {
		if errors.Is(err, redisstore.ErrNotFound) {
			common.Error(c, http.StatusNotFound, "bot not found")
			return
		}
		common.Internal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply})
}

func (h *Handler) CreatePage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(createPage))
}

// CreateBotForm handles the form post from the create page and renders
// the form again.
func (h *Handler) CreateBotForm(c *gin.Context) {
	botID := strings.TrimSpace(c.PostForm("bot_id"))
	content := strings.TrimSpace(c.PostForm("content"))
	if botID == "" || content == "" {
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8", []byte(createPage))
		return
	}

	if err := h.BotSvc.CreatePrompt(c.Request.Context(), botID, content); err != nil {
		if errors.Is(err, redisstore.ErrExists) {
			c.Data(http.StatusConflict, "text/html; charset=utf-8", []byte(createPage))
			return
		}
		common.Internal(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(createPage))
}

// JSON bot administration. The store client always supported update and
// delete; these routes expose them.

func (h *Handler) ListBots(c *gin.Context) {
	pattern := c.DefaultQuery("pattern", "*")
	bots, err := h.BotSvc.ListBots(c.Request.Context(), pattern)
	if err != nil {
		common.Internal(c, err)
		return
	}
	if bots == nil {
		bots = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"bots": bots})
}

func (h *Handler) GetBot(c *gin.Context) {
	botID := c.Param("bot_id")
	prompt, err := h.BotSvc.ReadPrompt(c.Request.Context(), botID)
	if err != nil {
		if errors.Is(err, redisstore.ErrNotFound) {
			common.Error(c, http.StatusNotFound, "bot not found")
			return
		}
		common.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bot_id": botID, "prompt": prompt})
}

type updateBotReq struct {
	Prompt string `json:"prompt"`
}

func (h *Handler) UpdateBot(c *gin.Context) {
	botID := c.Param("bot_id")

	var req updateBotReq
	_ = c.ShouldBindJSON(&req)
	if strings.TrimSpace(req.Prompt) == "" {
		common.Error(c, http.StatusBadRequest, "prompt is required")
		return
	}

	if err := h.BotSvc.UpdatePrompt(c.Request.Context(), botID, req.Prompt); err != nil {
		if errors.Is(err, redisstore.ErrNotFound) {
			common.Error(c, http.StatusNotFound, "bot not found")
			return
		}
		common.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bot_id": botID, "updated": true})
}

func (h *Handler) DeleteBot(c *gin.Context) {
	botID := c.Param("bot_id")
	if err := h.BotSvc.DeletePrompt(c.Request.Context(), botID); err != nil {
		if errors.Is(err, redisstore.ErrNotFound) {
			common.Error(c, http.StatusNotFound, "bot not found")
			return
		}
		common.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bot_id": botID, "deleted": true})
}
