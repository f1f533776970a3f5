package ws

import (
	"encoding/json"
	"log/slog"

	"DonorLink/entity"
	"DonorLink/internal/lib/sl"
)

// MessageHandler handles incoming WebSocket events from chat clients.
type MessageHandler interface {
	// AuthorizeJoin reports whether the user may subscribe to the contact's
	// room.
	AuthorizeJoin(userID, contactID string) error
	// HandleChatMessage persists a message and returns it enriched with
	// participant profiles. The hub broadcasts only after this succeeds.
	HandleChatMessage(senderID, contactID, receiverID, content string) (*entity.ChatEntry, error)
}

// Event is a WebSocket event sent to chat clients.
type Event struct {
	Type string      `json:"type"` // "message", "user_left", "error"
	Data interface{} `json:"data"`
}

type joinRequest struct {
	client *Client
	room   string
}

type roomEvent struct {
	room  string
	event *Event
}

// Hub maintains the set of live connections and their room memberships and
// fans events out to room subscribers. Rooms are keyed by contact id. All
// map access happens on the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	join       chan joinRequest
	broadcast  chan *roomEvent
	handler    MessageHandler
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan joinRequest),
		broadcast:  make(chan *roomEvent, 256),
		log:        log.With(sl.Module("ws.hub")),
	}
}

// SetHandler sets the handler for incoming client events.
func (h *Hub) SetHandler(handler MessageHandler) {
	h.handler = handler
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			h.drop(client)

		case req := <-h.join:
			// A connection belongs to at most one room; joining a new room
			// leaves the previous one.
			h.leaveRoom(req.client)
			if h.rooms[req.room] == nil {
				h.rooms[req.room] = make(map[*Client]bool)
			}
			h.rooms[req.room][req.client] = true
			req.client.room = req.room

		case ev := <-h.broadcast:
			h.fanOut(ev.room, ev.event)
		}
	}
}

// leaveRoom removes the client from its current room, if any. Run goroutine
// only.
func (h *Hub) leaveRoom(client *Client) {
	if client.room == "" {
		return
	}
	if members, ok := h.rooms[client.room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, client.room)
		}
	}
	client.room = ""
}

// drop tears a client down: it leaves its room, the send channel is closed
// and the room is told. Safe to call twice for the same client. Run
// goroutine only.
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	room := client.room
	h.leaveRoom(client)
	delete(h.clients, client)
	client.closeSend()
	if room != "" {
		h.fanOut(room, &Event{
			Type: "user_left",
			Data: map[string]string{
				"contact_id": room,
				"user_id":    client.userID,
			},
		})
	}
}

// fanOut delivers an event to every member of a room. A slow client loses
// its connection rather than blocking the rest of the room. Run goroutine
// only.
func (h *Hub) fanOut(room string, event *Event) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("marshal event", sl.Err(err))
		return
	}

	var stalled []*Client
	for client := range members {
		if !client.enqueue(data) {
			stalled = append(stalled, client)
		}
	}
	for _, client := range stalled {
		h.drop(client)
	}
}

// BroadcastMessage sends a message event to the subscribers of the
// message's contact room.
func (h *Hub) BroadcastMessage(entry *entity.ChatEntry) {
	h.broadcast <- &roomEvent{
		room: entry.Contact.Hex(),
		event: &Event{
			Type: "message",
			Data: entry,
		},
	}
}

// clientEvent is an incoming WebSocket event from a chat client.
type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type joinRoomData struct {
	ContactID string `json:"contact_id"`
}

type chatMessageData struct {
	ContactID  string `json:"contact_id"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

// HandleClientMessage parses and dispatches an incoming event from a client.
func (h *Hub) HandleClientMessage(client *Client, raw []byte) {
	if h.handler == nil {
		return
	}

	var event clientEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		h.log.Warn("parse client ws event", sl.Err(err))
		return
	}

	switch event.Type {
	case "join_room":
		var data joinRoomData
		if err := json.Unmarshal(event.Data, &data); err != nil || data.ContactID == "" {
			h.log.Warn("parse join_room data", slog.String("user", client.userID))
			return
		}
		if err := h.handler.AuthorizeJoin(client.userID, data.ContactID); err != nil {
			client.sendEvent(&Event{Type: "error", Data: err.Error()})
			return
		}
		h.join <- joinRequest{client: client, room: data.ContactID}

	case "chat_message":
		var data chatMessageData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			h.log.Warn("parse chat_message data", slog.String("user", client.userID))
			return
		}

		entry, err := h.handler.HandleChatMessage(client.userID, data.ContactID, data.ReceiverID, data.Content)
		if err != nil {
			// Persistence failed, nothing may be broadcast. The sender alone
			// learns about the failure and may retry.
			h.log.Error("handle chat message",
				slog.String("user", client.userID),
				slog.String("contact", data.ContactID),
				sl.Err(err),
			)
			client.sendEvent(&Event{Type: "error", Data: err.Error()})
			return
		}

		h.BroadcastMessage(entry)
	}
}
