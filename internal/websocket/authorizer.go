package websocket

import (
	"context"

	"parley-chat/internal/events"
	"parley-chat/internal/proxy"
)

// ChannelAuthorizer decides realtime channel subscriptions. Membership is
// checked on every request.
type ChannelAuthorizer struct {
	access *proxy.AccessControl
}

func NewChannelAuthorizer(access *proxy.AccessControl) *ChannelAuthorizer {
	return &ChannelAuthorizer{access: access}
}

// CanSubscribe reports whether userID may receive events of chatID.
func (a *ChannelAuthorizer) CanSubscribe(ctx context.Context, userID, chatID int64) (bool, error) {
	return a.access.CanSubscribe(ctx, userID, chatID)
}

// AuthorizeChannel resolves a channel name and checks it. Only chat channels
// exist; every other name is denied.
func (a *ChannelAuthorizer) AuthorizeChannel(ctx context.Context, userID int64, channel string) (bool, error) {
	chatID, ok := events.ParseChatChannel(channel)
	if !ok {
		return false, nil
	}
	return a.CanSubscribe(ctx, userID, chatID)
}
