package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/draylen/graphchat/internal/chat"
	"github.com/draylen/graphchat/pkg/types"
)

// ChatService is the conversation pipeline surface the handlers depend on.
type ChatService interface {
	Start(ctx context.Context, userID int64) (string, error)
	Send(ctx context.Context, userID int64, conversationID, text string) (types.ChatMessage, error)
	History(ctx context.Context, userID int64, conversationID string) ([]types.ChatMessage, error)
	List(ctx context.Context, userID int64) ([]types.Conversation, error)
}

// ChatHandlers contains HTTP handlers for conversations and messages.
type ChatHandlers struct {
	service ChatService
}

// NewChatHandlers creates a new ChatHandlers instance.
func NewChatHandlers(service ChatService) *ChatHandlers {
	return &ChatHandlers{service: service}
}

// StartConversation handles POST /api/conversations - create a conversation.
func (h *ChatHandlers) StartConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	id, err := h.service.Start(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create conversation", err)
		return
	}
	respondJSON(w, http.StatusCreated, StartConversationResponse{ID: id})
}

// ListConversations handles GET /api/conversations - the user's
// conversations, most recently active first.
func (h *ChatHandlers) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	conversations, err := h.service.List(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list conversations", err)
		return
	}

	out := make([]ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		out = append(out, ConversationResponse{
			ID:            c.ID,
			Title:         c.Title,
			CreatedAt:     c.CreatedAt,
			LastMessageAt: c.LastMessageAt,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// SendMessage handles POST /api/conversations/{id}/messages - run one chat
// turn and return the assistant reply.
func (h *ChatHandlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	conversationID := r.PathValue("id")
	if conversationID == "" {
		respondError(w, http.StatusBadRequest, "conversation ID is required", nil)
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "text is required", nil)
		return
	}

	reply, err := h.service.Send(r.Context(), userID, conversationID, req.Text)
	if err != nil {
		if errors.Is(err, chat.ErrConversationNotFound) {
			respondError(w, http.StatusNotFound, "conversation not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to process message", err)
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Role: reply.Role, Content: reply.Content})
}

// GetHistory handles GET /api/conversations/{id}/messages - the full
// transcript.
func (h *ChatHandlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	conversationID := r.PathValue("id")
	if conversationID == "" {
		respondError(w, http.StatusBadRequest, "conversation ID is required", nil)
		return
	}

	messages, err := h.service.History(r.Context(), userID, conversationID)
	if err != nil {
		if errors.Is(err, chat.ErrConversationNotFound) {
			respondError(w, http.StatusNotFound, "conversation not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load history", err)
		return
	}

	out := HistoryResponse{
		ConversationID: conversationID,
		Messages:       make([]MessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		out.Messages = append(out.Messages, MessageResponse{Role: m.Role, Content: m.Content})
	}
	respondJSON(w, http.StatusOK, out)
}
