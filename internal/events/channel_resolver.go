package events

import (
	"fmt"
	"strconv"
	"strings"
)

const chatChannelPrefix = "chat."

// ChatChannelPattern matches every chat channel for PSUBSCRIBE.
const ChatChannelPattern = chatChannelPrefix + "*"

// ChatChannel is the realtime channel carrying a chat's events.
func ChatChannel(chatID int64) string {
	return fmt.Sprintf("%s%d", chatChannelPrefix, chatID)
}

// ParseChatChannel extracts the chat id from "chat.<id>". Any other name is rejected.
func ParseChatChannel(channel string) (int64, bool) {
	raw, ok := strings.CutPrefix(channel, chatChannelPrefix)
	if !ok || raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
