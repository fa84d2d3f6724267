package websocket

import (
	"context"
	"sync"
)

// subscriptionRequest represents a channel subscription/unsubscription request
type subscriptionRequest struct {
	client    *Client
	channel   string
	subscribe bool
	done      chan struct{}
}

type registration struct {
	client *Client
	done   chan struct{}
}

// Hub is the per-node registry of connections and their channel subscriptions.
// Membership changes go through the Run loop; broadcasts only take the read lock.
type Hub struct {
	mu sync.RWMutex

	// clients maps socket id to client
	clients map[string]*Client

	// channels maps channel name to set of clients subscribed to it
	channels map[string]map[*Client]struct{}

	register     chan registration
	unregister   chan *Client
	subscription chan subscriptionRequest
	stopped      chan struct{}
	stopOnce     sync.Once
}

func NewHub() *Hub {
	return &Hub{
		clients:      make(map[string]*Client),
		channels:     make(map[string]map[*Client]struct{}),
		register:     make(chan registration, 256),
		unregister:   make(chan *Client, 256),
		subscription: make(chan subscriptionRequest, 512),
		stopped:      make(chan struct{}),
	}
}

// Run starts the hub's event loop and blocks until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer h.stopOnce.Do(func() { close(h.stopped) })
	for {
		select {
		case <-ctx.Done():
			return
		case reg := <-h.register:
			h.addClient(reg.client)
			close(reg.done)
		case client := <-h.unregister:
			h.removeClient(client)
		case req := <-h.subscription:
			if req.subscribe {
				h.subscribeToChannel(req.client, req.channel)
			} else {
				h.unsubscribeFromChannel(req.client, req.channel)
			}
			close(req.done)
		}
	}
}

// Register adds a new client to the hub and returns once it is registered.
func (h *Hub) Register(client *Client) {
	reg := registration{client: client, done: make(chan struct{})}
	select {
	case h.register <- reg:
	case <-h.stopped:
		return
	}
	select {
	case <-reg.done:
	case <-h.stopped:
	}
}

// Unregister removes a client from the hub and closes its Send channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
	}
}

// Subscribe subscribes a client to a channel and returns once the hub applied it.
func (h *Hub) Subscribe(client *Client, channel string) {
	h.changeSubscription(client, channel, true)
}

// Unsubscribe unsubscribes a client from a channel and returns once the hub applied it.
func (h *Hub) Unsubscribe(client *Client, channel string) {
	h.changeSubscription(client, channel, false)
}

func (h *Hub) changeSubscription(client *Client, channel string, subscribe bool) {
	req := subscriptionRequest{client: client, channel: channel, subscribe: subscribe, done: make(chan struct{})}
	select {
	case h.subscription <- req:
	case <-h.stopped:
		return
	}
	select {
	case <-req.done:
	case <-h.stopped:
	}
}

// Broadcast sends a message to all clients subscribed to a channel
func (h *Hub) Broadcast(channel string, payload []byte) int {
	return h.BroadcastExcept(channel, payload, "")
}

// BroadcastExcept sends payload to every subscriber of channel except the
// connection with socket id excludeID. It returns the number of clients queued.
func (h *Hub) BroadcastExcept(channel string, payload []byte, excludeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for c := range h.channels[channel] {
		if excludeID != "" && c.ID == excludeID {
			continue
		}
		if c.SendMessage(payload) {
			delivered++
		}
	}
	return delivered
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetChannelSubscriberCount returns the number of subscribers for a channel
func (h *Hub) GetChannelSubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	for _, channel := range client.GetChannels() {
		if subscribers, ok := h.channels[channel]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.channels, channel)
			}
		}
	}

	delete(h.clients, client.ID)
	close(client.Send)
}

func (h *Hub) subscribeToChannel(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// a client that already left must not be resubscribed
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[*Client]struct{})
	}
	h.channels[channel][client] = struct{}{}
	client.subscribe(channel)
}

func (h *Hub) unsubscribeFromChannel(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subscribers, ok := h.channels[channel]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.channels, channel)
		}
	}
	client.unsubscribe(channel)
}
