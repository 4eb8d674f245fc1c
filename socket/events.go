package socket

import "encoding/json"

// Client → Server
const (
	EventJoin        = "join"
	EventSendMessage = "sendMessage"
)

// Server → Client
const (
	EventChatJoined     = "chatJoined"
	EventReceiveMessage = "receiveMessage"
	EventChatError      = "chatError"

	// EventDisconnect is raised locally when the connection drops
	EventDisconnect = "disconnect"
)

// Envelope is the frame exchanged on the wire
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Handler receives the raw data of one event
type Handler func(data json.RawMessage)

// DisconnectPayload is the data of EventDisconnect
type DisconnectPayload struct {
	Message string `json:"message"`
}

// NewEnvelope marshals payload into an envelope for event
func NewEnvelope(event string, payload any) (*Envelope, error) {
	if payload == nil {
		return &Envelope{Event: event}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{Event: event, Data: data}, nil
}
