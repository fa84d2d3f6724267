package events

// Message events
const (
	EventTypeMessageCreated = "message.created"
)

// Connection events, sent by the websocket layer only
const (
	EventTypeConnectionEstablished = "connection.established"
	EventTypeSubscriptionSucceeded = "subscription.succeeded"
	EventTypeSubscriptionError     = "subscription.error"
	EventTypeUnsubscribed          = "unsubscribed"
)
