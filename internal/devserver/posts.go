package devserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ministagram/internal/httputil"
	"ministagram/internal/model"
)

// POST /posts
func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var req model.PostPayload
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	post, err := s.store.CreatePost(currentUser(r), req)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, post)
}

// GET /posts
func (s *Server) myPosts(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.store.PostsByOwner(currentUser(r)))
}

// GET /posts/user/{username}
// Private accounts' posts are returned to anyone; hiding them is left to clients.
func (s *Server) postsByUser(w http.ResponseWriter, r *http.Request) {
	owner, err := s.store.UserByUsername(chi.URLParam(r, "username"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.store.PostsByOwner(owner.ID))
}

// DELETE /posts/{id}
func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeletePost(currentUser(r), id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	httputil.WriteMessage(w, "Post deleted")
}

// DELETE /posts
func (s *Server) deleteAllPosts(w http.ResponseWriter, r *http.Request) {
	s.store.DeleteAllPosts(currentUser(r))
	httputil.WriteMessage(w, "All posts deleted")
}

// POST /posts/{id}/like
func (s *Server) like(w http.ResponseWriter, r *http.Request) {
	s.setLiked(w, r, true)
}

// DELETE /posts/{id}/unlike
func (s *Server) unlike(w http.ResponseWriter, r *http.Request) {
	s.setLiked(w, r, false)
}

func (s *Server) setLiked(w http.ResponseWriter, r *http.Request, liked bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.SetLiked(currentUser(r), id, liked); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if liked {
		httputil.WriteMessage(w, "Post liked")
		return
	}
	httputil.WriteMessage(w, "Post unliked")
}

// GET /posts/{id}/comments
func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	comments, err := s.store.Comments(id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, comments)
}

// POST /posts/{id}/comments
func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req model.CommentPayload
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	comment, err := s.store.AddComment(currentUser(r), id, req.Content)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// DELETE /comments/{id}
func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteComment(currentUser(r), id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	httputil.WriteMessage(w, "Comment deleted")
}

// GET /feed
func (s *Server) feed(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.store.Feed(currentUser(r)))
}
