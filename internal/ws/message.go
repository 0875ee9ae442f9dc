// internal/ws/message.go
package ws

import (
	"encoding/json"
	"time"
)

const (
	EventConnected     = "connected"
	EventPing          = "ping"
	EventPong          = "pong"
	EventTaskAssigned  = "task.assigned"
	EventTaskCompleted = "task.completed"
)

// Message is the envelope every frame on the wire uses.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewMessage(msgType string, data interface{}) *Message {
	return &Message{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// TaskEventData is the payload for task lifecycle events pushed to callers.
type TaskEventData struct {
	TaskID    string `json:"taskId"`
	Customers int    `json:"customers,omitempty"`
}
