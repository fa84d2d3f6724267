package handler

import (
	"net/http"

	"parley-chat/internal/transport/httpdto"
	"parley-chat/internal/websocket"

	"github.com/gin-gonic/gin"
)

// BroadcastingHandler answers channel authorization checks over HTTP, for
// clients that authorize before subscribing.
type BroadcastingHandler struct {
	authorizer *websocket.ChannelAuthorizer
}

func NewBroadcastingHandler(authorizer *websocket.ChannelAuthorizer) *BroadcastingHandler {
	return &BroadcastingHandler{authorizer: authorizer}
}

func (h *BroadcastingHandler) Auth(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req httpdto.BroadcastingAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidRequest(c, map[string]string{"channel_name": "is required"})
		return
	}

	authorized, err := h.authorizer.AuthorizeChannel(c.Request.Context(), userID, req.ChannelName)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := httpdto.BroadcastingAuthResponse{Channel: req.ChannelName, Authorized: authorized}
	if !authorized {
		c.JSON(http.StatusForbidden, httpdto.Response[httpdto.BroadcastingAuthResponse]{
			Success: false,
			Data:    resp,
			Error:   "forbidden",
			Code:    "FORBIDDEN",
		})
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(resp))
}
