package ws

import "encoding/json"

// InboundEnvelope is the generic envelope for all client-to-server messages.
// The Type field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	// Unmarshal just the type field
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-Server message payloads ---

// AuthMsg identifies the host with a JWT so finished rounds show up in their history.
type AuthMsg struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// SubmitNameMsg enters the name for the seat currently being collected.
type SubmitNameMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// SelectFirstPlayerMsg picks who flips first: "player1" or "player2".
type SelectFirstPlayerMsg struct {
	Type   string `json:"type"`
	Player string `json:"player"`
}

// FlipCardMsg is sent by the client to flip a card.
type FlipCardMsg struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
}

// ResetMsg returns the table to name entry.
type ResetMsg struct {
	Type string `json:"type"`
}

// --- Server-to-Client messages ---

// HelloMsg is the first message on every connection. SessionID scopes the
// remembered names; reconnect with ?session=<id> to keep them.
type HelloMsg struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

// AuthOKMsg confirms an auth message.
type AuthOKMsg struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// ErrorMsg is sent when a client message is invalid.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
