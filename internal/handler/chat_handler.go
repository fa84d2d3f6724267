package handler

import (
	"net/http"
	"strconv"

	"parley-chat/internal/services"
	"parley-chat/internal/transport/httpdto"
	parley_errors "parley-chat/pkg/errors"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	service *services.ChatService
}

func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// List handles GET /chats?is_private=1. The filter defaults to private chats.
func (h *ChatHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var opts services.ListChatsOptions
	if raw, present := c.GetQuery("is_private"); present && raw != "" {
		private, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(c, parley_errors.NewValidationError("is_private", "must be a boolean"))
			return
		}
		opts.Private = &private
	}

	chats, err := h.service.List(c.Request.Context(), userID, opts)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListChatsResponse{
		Chats: httpdto.FromChatDetailsSlice(chats),
	}))
}

// Create returns the private chat with another user, creating it when needed.
func (h *ChatHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req httpdto.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidRequest(c, nil)
		return
	}
	if req.UserID <= 0 {
		writeError(c, parley_errors.NewValidationError("user_id", "is required"))
		return
	}

	details, err := h.service.CreateOrGet(c.Request.Context(), userID, req.UserID, services.ChatAttributes{Title: req.Title})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromChatDetails(details)))
}

func (h *ChatHandler) CreateGroup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req httpdto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidRequest(c, nil)
		return
	}

	details, err := h.service.CreateGroup(c.Request.Context(), userID, services.CreateGroupInput{
		Title:          req.Title,
		ParticipantIDs: req.UserIDs,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromChatDetails(details)))
}

func (h *ChatHandler) Show(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	chatID, ok := pathID(c, "id")
	if !ok {
		return
	}

	details, err := h.service.Show(c.Request.Context(), userID, chatID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromChatDetails(details)))
}
