package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ministagram/internal/httputil"
	"ministagram/internal/model"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteBadRequest(w, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// currentUser is only called behind authMiddleware.
func currentUser(r *http.Request) int64 {
	id, _ := userIDFromContext(r.Context())
	return id
}

// writeStoreError maps store errors to the API's status codes.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var fe model.FieldErrors
	var ve model.ValidationError
	switch {
	case errors.As(err, &fe), errors.As(err, &ve):
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrPostNotFound),
		errors.Is(err, ErrCommentNotFound),
		errors.Is(err, ErrRequestNotFound),
		errors.Is(err, ErrChatNotFound),
		errors.Is(err, ErrNotFollowing):
		httputil.WriteNotFound(w, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		httputil.WriteUnauthorized(w, err.Error())
	case errors.Is(err, ErrNotOwner), errors.Is(err, ErrPrivateAccount):
		httputil.WriteForbidden(w, err.Error())
	case errors.Is(err, ErrUsernameExists),
		errors.Is(err, ErrAlreadyFollowing),
		errors.Is(err, ErrAlreadyRequested):
		httputil.WriteConflict(w, err.Error())
	case errors.Is(err, ErrCannotFollowSelf), errors.Is(err, ErrCannotMessageSelf):
		httputil.WriteBadRequest(w, err.Error())
	default:
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		httputil.WriteInternalError(w, "Something went wrong")
	}
}
