package handler

import (
	"net/http"

	"parley-chat/internal/services"
	"parley-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List returns everyone except the caller, for picking a chat partner.
func (h *UserHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req httpdto.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeInvalidRequest(c, nil)
		return
	}

	users, total, err := h.service.List(c.Request.Context(), userID, req.Page, req.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	page, limit := services.UserPageBounds(req.Page, req.Limit)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListUsersResponse{
		Users: httpdto.FromUserSlice(users),
		Total: total,
		Page:  page,
		Limit: limit,
	}))
}
