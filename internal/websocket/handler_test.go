package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"parley-chat/config"
	"parley-chat/internal/domain/user"
	"parley-chat/internal/mocks"
	"parley-chat/internal/proxy"
	"parley-chat/internal/services"
	"parley-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const wsTestSecret = "ws-secret"

type wsFixture struct {
	hub   *Hub
	users *mocks.MockUserRepository
	chats *mocks.MockChatRepository
	url   string
}

func newWSFixture(t *testing.T) wsFixture {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	chats := mocks.NewMockChatRepository(ctrl)
	hub := startHub(t)

	auth := services.NewAuthService(users, &config.Config{JWTSecret: wsTestSecret, JWTExpiryMin: 60})
	h := NewHandler(auth, hub, NewChannelAuthorizer(proxy.NewAccessControl(chats)), logger.NewNop())

	r := gin.New()
	r.GET("/v1/ws", h.Connect)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return wsFixture{
		hub:   hub,
		users: users,
		chats: chats,
		url:   "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws",
	}
}

func wsToken(t *testing.T, userID int64) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, services.AccessClaims{
		UserID:           userID,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(wsTestSecret))
	require.NoError(t, err)
	return token
}

func (f wsFixture) dial(t *testing.T, userID int64) (*websocket.Conn, string) {
	t.Helper()
	f.users.EXPECT().GetUserByID(gomock.Any(), userID).Return(user.User{ID: userID}, nil)

	conn, _, err := websocket.DefaultDialer.Dial(f.url+"?token="+wsToken(t, userID), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	established := readFrame(t, conn)
	require.Equal(t, "connection.established", established.Event)
	payload := established.Payload.(map[string]any)
	socketID, _ := payload["socket_id"].(string)
	require.NotEmpty(t, socketID)
	return conn, socketID
}

func readFrame(t *testing.T, conn *websocket.Conn) ServerFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame ServerFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestHandler_RejectsMissingToken(t *testing.T) {
	f := newWSFixture(t)

	_, resp, err := websocket.DefaultDialer.Dial(f.url, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_SubscribeAndReceiveExceptOwnConnection(t *testing.T) {
	req := require.New(t)
	f := newWSFixture(t)
	f.chats.EXPECT().IsParticipant(gomock.Any(), int64(7), int64(1)).Return(true, nil)
	f.chats.EXPECT().IsParticipant(gomock.Any(), int64(7), int64(2)).Return(true, nil)

	alice, _ := f.dial(t, 1)
	bob, bobSocket := f.dial(t, 2)

	for _, conn := range []*websocket.Conn{alice, bob} {
		req.NoError(conn.WriteJSON(ClientCommand{Action: ActionSubscribe, Channel: "chat.7"}))
		frame := readFrame(t, conn)
		req.Equal("subscription.succeeded", frame.Event)
		req.Equal("chat.7", frame.Channel)
	}

	delivered := f.hub.BroadcastExcept("chat.7", []byte(`{"event":"message.created","channel":"chat.7"}`), bobSocket)
	req.Equal(1, delivered)
	req.Equal("message.created", readFrame(t, alice).Event)

	req.NoError(bob.SetReadDeadline(time.Now().Add(200 * time.Millisecond)))
	_, _, err := bob.ReadMessage()
	req.Error(err)
}

func TestHandler_SubscribeDeniedForOutsider(t *testing.T) {
	req := require.New(t)
	f := newWSFixture(t)
	f.chats.EXPECT().IsParticipant(gomock.Any(), int64(7), int64(3)).Return(false, nil)

	carol, _ := f.dial(t, 3)
	req.NoError(carol.WriteJSON(ClientCommand{Action: ActionSubscribe, Channel: "chat.7"}))

	frame := readFrame(t, carol)
	req.Equal("subscription.error", frame.Event)
	req.EqualValues(http.StatusForbidden, frame.Payload.(map[string]any)["status"])
	req.Equal(0, f.hub.GetChannelSubscriberCount("chat.7"))
}

func TestHandler_DisconnectUnregisters(t *testing.T) {
	f := newWSFixture(t)

	conn, _ := f.dial(t, 1)
	require.Eventually(t, func() bool { return f.hub.GetClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return f.hub.GetClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
