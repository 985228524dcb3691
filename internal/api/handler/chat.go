package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/teachme/platform/internal/api/middleware"
	"github.com/teachme/platform/internal/api/response"
	"github.com/teachme/platform/internal/service"
)

// ChatHandler exposes the send-message entry point.
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Send drives one full agent run for an inbound message.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	bindingID, err := uuid.Parse(chi.URLParam(r, "threadID"))
	if err != nil {
		response.BadRequest(w, "invalid thread ID")
		return
	}

	var input struct {
		Message string `json:"message" validate:"required,max=32768"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, fieldErrors(err))
		return
	}

	result, err := h.chatService.Send(r.Context(), userID, bindingID, input.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"ok":       true,
		"messages": []service.SendResult{*result},
	})
}
