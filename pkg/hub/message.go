// Package hub fans cycle updates out to websocket clients. Each hub owns a
// goroutine that serializes registration and broadcast, so publishers never
// touch connections directly.
package hub

// MessageType selects the websocket frame type.
type MessageType int

const (
	// JSONMessage is sent as a text frame (status snapshots).
	JSONMessage MessageType = iota
	// BinaryMessage is sent as a binary frame (JPEG views).
	BinaryMessage
)

func (t MessageType) String() string {
	if t == BinaryMessage {
		return "binary"
	}
	return "json"
}

// Message is one broadcast payload. Data is shared by all recipients and
// must not be modified after broadcasting.
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage wraps pre-encoded JSON.
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage wraps binary data such as an encoded frame.
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}
