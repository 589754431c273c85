package types

import "cardflow-backend/internal/chat"

type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	SessionID string         `json:"sessionId"`
	Reply     string         `json:"reply"`
	Messages  []chat.Message `json:"messages"`
	// HasPendingCard tells the frontend a confirmation is expected next.
	HasPendingCard bool `json:"hasPendingCard"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
