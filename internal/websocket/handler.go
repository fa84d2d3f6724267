package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"parley-chat/internal/events"
	"parley-chat/internal/services"
	"parley-chat/internal/transport/httpdto"
	"parley-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// ClientCommand is a frame sent by a websocket client.
type ClientCommand struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// ServerFrame is a control frame sent by the server.
type ServerFrame struct {
	Event   string `json:"event"`
	Channel string `json:"channel,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

type Handler struct {
	auth       *services.AuthService
	hub        *Hub
	authorizer *ChannelAuthorizer
	logger     *logger.Logger
	upgrader   websocket.Upgrader
}

func NewHandler(auth *services.AuthService, hub *Hub, authorizer *ChannelAuthorizer, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Handler{
		auth:       auth,
		hub:        hub,
		authorizer: authorizer,
		logger:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
	}

	userID, err := h.auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		c.JSON(services.HTTPStatus(err), httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(conn, userID)
	log := h.logger.With(zap.String("socket_id", client.ID), zap.Int64("user_id", userID))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)
	log.Debug("websocket connected")

	h.send(client, ServerFrame{
		Event: events.EventTypeConnectionEstablished,
		Payload: map[string]any{
			"socket_id":        client.ID,
			"activity_timeout": int(pingInterval.Seconds()),
		},
	})

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		h.handleCommand(ctx, client, data, log)
	}

	h.hub.Unregister(client)
	log.Debug("websocket disconnected")
}

func (h *Handler) handleCommand(ctx context.Context, client *Client, data []byte, log *logger.Logger) {
	var cmd ClientCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		h.send(client, ServerFrame{Event: events.EventTypeSubscriptionError, Payload: map[string]any{"error": "malformed frame"}})
		return
	}

	switch cmd.Action {
	case ActionSubscribe:
		ok, err := h.authorizer.AuthorizeChannel(ctx, client.UserID, cmd.Channel)
		if err != nil {
			log.Error("channel authorization failed", zap.String("channel", cmd.Channel), zap.Error(err))
			h.send(client, ServerFrame{Event: events.EventTypeSubscriptionError, Channel: cmd.Channel, Payload: map[string]any{"status": http.StatusInternalServerError}})
			return
		}
		if !ok {
			h.send(client, ServerFrame{Event: events.EventTypeSubscriptionError, Channel: cmd.Channel, Payload: map[string]any{"status": http.StatusForbidden}})
			return
		}
		h.hub.Subscribe(client, cmd.Channel)
		h.send(client, ServerFrame{Event: events.EventTypeSubscriptionSucceeded, Channel: cmd.Channel})
	case ActionUnsubscribe:
		h.hub.Unsubscribe(client, cmd.Channel)
		h.send(client, ServerFrame{Event: events.EventTypeUnsubscribed, Channel: cmd.Channel})
	default:
		h.send(client, ServerFrame{Event: events.EventTypeSubscriptionError, Channel: cmd.Channel, Payload: map[string]any{"error": "unknown action"}})
	}
}

func (h *Handler) send(client *Client, frame ServerFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	client.SendMessage(data)
}
