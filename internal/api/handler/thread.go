package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/teachme/platform/internal/api/middleware"
	"github.com/teachme/platform/internal/api/response"
	"github.com/teachme/platform/internal/service"
)

// ThreadHandler exposes thread binding management endpoints.
type ThreadHandler struct {
	threadService  *service.ThreadService
	sessionService *service.SessionService
}

// NewThreadHandler creates a new thread handler
func NewThreadHandler(threadService *service.ThreadService, sessionService *service.SessionService) *ThreadHandler {
	return &ThreadHandler{
		threadService:  threadService,
		sessionService: sessionService,
	}
}

// Start resolves or creates the caller's thread for an agent.
func (h *ThreadHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input struct {
		AgentID uuid.UUID `json:"agent_id" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if input.AgentID == uuid.Nil {
		response.BadRequest(w, "agent_id is required")
		return
	}

	session, err := h.sessionService.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	binding, err := h.threadService.ResolveOrCreate(r.Context(), session, input.AgentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, binding)
}

// List returns the caller's threads, optionally filtered by course.
func (h *ThreadHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var courseID *uuid.UUID
	if raw := r.URL.Query().Get("course_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "invalid course_id")
			return
		}
		courseID = &id
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	threads, err := h.threadService.List(r.Context(), userID, courseID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, threads)
}

// Get returns one thread binding.
func (h *ThreadHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, bindingID, ok := h.threadRequest(w, r)
	if !ok {
		return
	}

	binding, err := h.threadService.Get(r.Context(), userID, bindingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, binding)
}

// Rename retitles a thread.
func (h *ThreadHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, bindingID, ok := h.threadRequest(w, r)
	if !ok {
		return
	}

	var input struct {
		Title string `json:"title" validate:"required,max=255"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, fieldErrors(err))
		return
	}

	if err := h.threadService.Rename(r.Context(), userID, bindingID, input.Title); err != nil {
		writeServiceError(w, err)
		return
	}
	response.NoContent(w)
}

// Archive retires a thread.
func (h *ThreadHandler) Archive(w http.ResponseWriter, r *http.Request) {
	userID, bindingID, ok := h.threadRequest(w, r)
	if !ok {
		return
	}
	if err := h.threadService.Archive(r.Context(), userID, bindingID); err != nil {
		writeServiceError(w, err)
		return
	}
	response.NoContent(w)
}

// Unarchive restores an archived thread.
func (h *ThreadHandler) Unarchive(w http.ResponseWriter, r *http.Request) {
	userID, bindingID, ok := h.threadRequest(w, r)
	if !ok {
		return
	}
	if err := h.threadService.Unarchive(r.Context(), userID, bindingID); err != nil {
		writeServiceError(w, err)
		return
	}
	response.NoContent(w)
}

// Delete removes a thread and its history.
func (h *ThreadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, bindingID, ok := h.threadRequest(w, r)
	if !ok {
		return
	}
	if err := h.threadService.Delete(r.Context(), userID, bindingID); err != nil {
		writeServiceError(w, err)
		return
	}
	response.NoContent(w)
}

// Messages returns the displayable conversation history. Tool audit rows
// are never included.
func (h *ThreadHandler) Messages(w http.ResponseWriter, r *http.Request) {
	userID, bindingID, ok := h.threadRequest(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	history, err := h.threadService.History(r.Context(), userID, bindingID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, history)
}

func (h *ThreadHandler) threadRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return uuid.Nil, uuid.Nil, false
	}
	bindingID, err := uuid.Parse(chi.URLParam(r, "threadID"))
	if err != nil {
		response.BadRequest(w, "invalid thread ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, bindingID, true
}
