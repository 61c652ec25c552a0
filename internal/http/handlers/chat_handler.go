// README: Chatbot handler; one conversational turn per request.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"yahu/internal/modules/dialog"
)

// TurnHandler is the slice of the dialogue engine the handler needs.
type TurnHandler interface {
	HandleTurn(ctx context.Context, req dialog.TurnRequest) (dialog.TurnResponse, error)
}

type ChatHandler struct {
	engine TurnHandler
}

func NewChatHandler(engine TurnHandler) *ChatHandler {
	return &ChatHandler{engine: engine}
}

type chatReq struct {
	SessionID string   `json:"sessionId"`
	UserInput string   `json:"userInput"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
}

type chatResp struct {
	SessionID  string `json:"sessionId"`
	BotMessage string `json:"botMessage"`
	Done       bool   `json:"done"`
}

// Chat handles POST /api/chatbot.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	resp, err := h.engine.HandleTurn(ctx, dialog.TurnRequest{
		SessionID: strings.TrimSpace(req.SessionID),
		UserInput: req.UserInput,
		Lat:       req.Lat,
		Lng:       req.Lng,
	})
	if err != nil {
		writeJSON(c, http.StatusOK, chatResp{
			SessionID:  req.SessionID,
			BotMessage: "عذراً، حدث خطأ. حاول مرة أخرى.",
		})
		return
	}

	writeJSON(c, http.StatusOK, chatResp{
		SessionID:  resp.SessionID,
		BotMessage: resp.BotMessage,
		Done:       resp.Done,
	})
}
