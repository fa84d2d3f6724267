package handler

import (
	"net/http"

	"parley-chat/internal/services"
	"parley-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// SocketIDHeader carries the caller's websocket connection id so the
// broadcast of its own message skips that connection.
const SocketIDHeader = "X-Socket-ID"

type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	chatID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req httpdto.ListMessagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeInvalidRequest(c, map[string]string{"page": "must be an integer", "page_size": "must be an integer"})
		return
	}

	page, err := h.service.List(c.Request.Context(), userID, services.ListMessagesInput{
		ChatID:   chatID,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromMessagePage(page)))
}

func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	chatID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidRequest(c, nil)
		return
	}

	msg, err := h.service.Append(c.Request.Context(), userID, services.AppendMessageInput{
		ChatID:              chatID,
		Content:             req.Content,
		ExcludeConnectionID: c.GetHeader(SocketIDHeader),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromMessage(msg)))
}
