// internal/models/chat.go
package models

import "time"

// ChatSender identifies who wrote a transcript entry.
type ChatSender string

const (
	SenderUser ChatSender = "user"
	SenderBot  ChatSender = "bot"
)

// ChatMessage is one append-only transcript entry.
type ChatMessage struct {
	ID     string     `json:"id"`
	Sender ChatSender `json:"type"`
	Text   string     `json:"content"`
	At     time.Time  `json:"at"`
}

// ChatRequest is the body of the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply of the chat endpoint.
type ChatResponse struct {
	Response string      `json:"response"`
	Data     *RiskRecord `json:"data,omitempty"`
}

// CompareRequest is an explicit multi-country selection.
type CompareRequest struct {
	Countries []string `json:"countries"`
	Year      *int     `json:"year,omitempty"`
}
