package libraries

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type WebSocketMessageType string

const (
	WebSocketMessageTypePing          WebSocketMessageType = "ping"
	WebSocketMessageTypePong          WebSocketMessageType = "pong"
	WebSocketMessageTypeError         WebSocketMessageType = "error"
	WebSocketMessageTypeMessage       WebSocketMessageType = "chat_message"
	WebSocketMessageTypeChatResponse  WebSocketMessageType = "chat_response"
	WebSocketMessageTypeChatStarting  WebSocketMessageType = "chat_starting"
	WebSocketMessageTypeChatCompleted WebSocketMessageType = "chat_completed"
	WebSocketMessageTypeChatError     WebSocketMessageType = "chat_error"
	WebSocketMessageTypeCreated       WebSocketMessageType = "message_created"
	WebSocketMessageTypeCleared       WebSocketMessageType = "messages_cleared"
)

type Client struct {
	ID   string
	conn *websocket.Conn
	// Send is written only by the hub's Run goroutine, which also closes it.
	Send chan []byte
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		conn: conn,
		Send: make(chan []byte, 256),
	}
}

type directMessage struct {
	client *Client
	data   []byte
}

// Hub owns the set of connected clients. All mutation of the set and every
// write to a client's Send channel happens on the Run goroutine.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	direct     chan directMessage

	// closed when Run returns
	done chan struct{}
}

// WebSocketMessage is the envelope of every frame in both directions.
type WebSocketMessage struct {
	Type WebSocketMessageType `json:"type"`
	Data interface{}          `json:"data,omitempty"`
}

type ChatMessagePayload struct {
	Message string `json:"message"`
}

type ChatMessageResponsePayload struct {
	Message   string `json:"message"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
		direct:     make(chan directMessage),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			return
		case client := <-h.register:
			h.clients[client.ID] = client
		case client := <-h.unregister:
			if _, exists := h.clients[client.ID]; exists {
				delete(h.clients, client.ID)
				close(client.Send)
			}
		case message := <-h.broadcast:
			for id, client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// a client that stopped reading is dropped instead of stalling everyone
					log.Printf("websocket client %s is not keeping up, disconnecting", id)
					delete(h.clients, id)
					close(client.Send)
				}
			}
		case dm := <-h.direct:
			client, ok := h.clients[dm.client.ID]
			if !ok || client != dm.client {
				// disconnected while its reply was being produced
				continue
			}
			select {
			case client.Send <- dm.data:
			default:
				log.Printf("websocket client %s send buffer full, dropping frame", client.ID)
			}
		}
	}
}

func (h *Hub) BroadcastMessage(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// Register adds client to the hub. Once the hub has stopped the client's
// Send channel is closed straight away.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendMessage queues message for a single client. Frames for clients that
// are no longer registered, or whose buffer is full, are dropped.
func (h *Hub) SendMessage(client *Client, message []byte) {
	select {
	case h.direct <- directMessage{client: client, data: message}:
	case <-h.done:
	}
}

func sendTyped(hub *Hub, client *Client, msg WebSocketMessage) {
	b, err := json.Marshal(msg)
	if err != nil {
		log.Println("failed to marshal websocket message:", err)
		return
	}
	hub.SendMessage(client, b)
}

// SendErrorMessage sends a standardized error message to a client
func SendErrorMessage(hub *Hub, client *Client, errorMsg string) {
	sendTyped(hub, client, WebSocketMessage{
		Type: WebSocketMessageTypeError,
		Data: &ErrorPayload{Message: errorMsg},
	})
}

func sendPongMessage(hub *Hub, client *Client) {
	sendTyped(hub, client, WebSocketMessage{Type: WebSocketMessageTypePong})
}

// SendChatMessageResponse answers a chat_message received over the socket.
func SendChatMessageResponse(hub *Hub, client *Client, message *ChatMessageResponsePayload) {
	sendTyped(hub, client, WebSocketMessage{
		Type: WebSocketMessageTypeChatResponse,
		Data: message,
	})
}

// parseWebSocketMessage decodes an inbound frame, typing the payload of the
// message kinds a client may send.
func parseWebSocketMessage(msg []byte) (*WebSocketMessage, error) {
	var rawMessage struct {
		Type WebSocketMessageType `json:"type"`
		Data json.RawMessage      `json:"data,omitempty"`
	}
	if err := json.Unmarshal(msg, &rawMessage); err != nil {
		return nil, err
	}

	message := &WebSocketMessage{Type: rawMessage.Type}
	if len(rawMessage.Data) > 0 && rawMessage.Type == WebSocketMessageTypeMessage {
		var chatPayload ChatMessagePayload
		if err := json.Unmarshal(rawMessage.Data, &chatPayload); err != nil {
			return nil, err
		}
		message.Data = &chatPayload
	}
	return message, nil
}

// ChatMessageProcessor runs a chat turn submitted over the socket.
type ChatMessageProcessor interface {
	ProcessChatMessage(hub *Hub, client *Client, message *ChatMessagePayload)
}

// handleFrame dispatches one inbound frame for client.
func handleFrame(hub *Hub, client *Client, processor ChatMessageProcessor, raw []byte) {
	message, err := parseWebSocketMessage(raw)
	if err != nil {
		SendErrorMessage(hub, client, "Invalid JSON format")
		return
	}

	switch message.Type {
	case WebSocketMessageTypePing:
		sendPongMessage(hub, client)
	case WebSocketMessageTypeMessage:
		chatPayload, ok := message.Data.(*ChatMessagePayload)
		if !ok || chatPayload == nil {
			SendErrorMessage(hub, client, "Chat message payload is required")
			return
		}
		go processor.ProcessChatMessage(hub, client, chatPayload)
	default:
		SendErrorMessage(hub, client, "Type is invalid or not provided")
	}
}

func WebSocketHandler(hub *Hub, processor ChatMessageProcessor) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client := NewClient(conn)
		hub.Register(client)

		// Write loop
		go func() {
			for msg := range client.Send {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					log.Println("websocket write error:", err)
					return
				}
			}
		}()

		// Read loop
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			handleFrame(hub, client, processor, msg)
		}

		hub.Unregister(client)
		conn.Close()
	})
}
