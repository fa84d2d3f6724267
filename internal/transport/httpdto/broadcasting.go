package httpdto

// BroadcastingAuthRequest is used for POST /broadcasting/auth
type BroadcastingAuthRequest struct {
	ChannelName string `json:"channel_name" binding:"required"`
}

type BroadcastingAuthResponse struct {
	Channel    string `json:"channel"`
	Authorized bool   `json:"authorized"`
}
