package devserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ministagram/internal/httputil"
	"ministagram/internal/model"
)

// POST /auth/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginPayload
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	user, err := s.store.Authenticate(req.Username, req.Password)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	token, err := s.tokens.issue(user.ID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.AuthResponse{Token: token})
}

// POST /auth/signup
func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupPayload
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	user, err := s.store.CreateUser(req)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, model.SignUpResponse{
		Message: "User registered successfully",
		User:    user,
	})
}

// GET /auth/me
func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.UserByID(currentUser(r))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// GET /users
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.store.Users())
}

// GET /users/{id}
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user")
	if !ok {
		return
	}
	user, err := s.store.UserByID(id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// PUT /users/{id}
func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user")
	if !ok {
		return
	}
	if id != currentUser(r) {
		httputil.WriteForbidden(w, "You can only update your own profile")
		return
	}
	var req model.UpdateUserPayload
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	user, err := s.store.UpdateUser(id, req)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// POST /users/{username}/follow
func (s *Server) follow(w http.ResponseWriter, r *http.Request) {
	pending, err := s.store.Follow(currentUser(r), chi.URLParam(r, "user"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if pending {
		httputil.WriteMessage(w, "Follow request sent")
		return
	}
	httputil.WriteMessage(w, "Successfully followed user")
}

// DELETE /users/{username}/unfollow
func (s *Server) unfollow(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Unfollow(currentUser(r), chi.URLParam(r, "user")); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	httputil.WriteMessage(w, "Successfully unfollowed user")
}

// GET /users/followers
func (s *Server) myFollowers(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.store.Followers(currentUser(r)))
}

// GET /users/following
func (s *Server) myFollowing(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.store.Following(currentUser(r)))
}

// GET /users/{username}/followers
func (s *Server) followersOf(w http.ResponseWriter, r *http.Request) {
	target, ok := s.visibleTarget(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.store.Followers(target.ID))
}

// GET /users/{username}/following
func (s *Server) followingOf(w http.ResponseWriter, r *http.Request) {
	target, ok := s.visibleTarget(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.store.Following(target.ID))
}

// visibleTarget resolves {user} and refuses private accounts the viewer does not
// follow.
func (s *Server) visibleTarget(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	target, err := s.store.UserByUsername(chi.URLParam(r, "user"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return model.User{}, false
	}
	viewer := currentUser(r)
	if target.PrivateAccount && target.ID != viewer && !s.store.IsFollowing(viewer, target.ID) {
		s.writeStoreError(w, r, ErrPrivateAccount)
		return model.User{}, false
	}
	return target, true
}

// GET /users/follow-requests
func (s *Server) followRequests(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.store.Requests(currentUser(r)))
}

// PATCH /users/follow/{username}/{action}
func (s *Server) respondFollowRequest(w http.ResponseWriter, r *http.Request) {
	action := model.FollowAction(chi.URLParam(r, "action"))
	if !action.Valid() {
		httputil.WriteBadRequest(w, "Action must be accept or reject")
		return
	}
	if err := s.store.RespondRequest(currentUser(r), chi.URLParam(r, "user"), action); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if action == model.FollowAccept {
		httputil.WriteMessage(w, "Follow request accepted")
		return
	}
	httputil.WriteMessage(w, "Follow request rejected")
}
