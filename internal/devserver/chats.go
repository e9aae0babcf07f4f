package devserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ministagram/internal/httputil"
	"ministagram/internal/model"
)

// GET /chats
func (s *Server) listChats(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.store.Chats(currentUser(r)))
}

// GET /chats/{username}/messages
func (s *Server) messages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.store.Messages(currentUser(r), chi.URLParam(r, "chat"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, msgs)
}

// POST /chats/{username}/messages
func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req model.SendMessagePayload
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	resp, err := s.store.Send(currentUser(r), chi.URLParam(r, "chat"), req.Content)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

// PATCH /chats/{id}/seen
func (s *Server) markSeen(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "chat")
	if !ok {
		return
	}
	if err := s.store.MarkSeen(currentUser(r), id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	httputil.WriteMessage(w, "Chat marked as seen")
}
