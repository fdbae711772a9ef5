package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/skills-dossier/internal/logger"
	"github.com/jonathan/skills-dossier/internal/server/middleware"
	"github.com/jonathan/skills-dossier/internal/types"
)

// meResponse is the body of GET /api/me.
type meResponse struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Roles    []string `json:"roles"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := s.userService.Me(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, meResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Roles:    user.Roles,
	})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	users := make([]*types.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].ToAPI())
	}
	writeJSON(w, r, http.StatusOK, users)
}

func (s *Server) handleSetUserRoles(w http.ResponseWriter, r *http.Request) {
	targetID := strings.TrimSpace(r.PathValue("id"))
	if targetID == "" {
		writeError(w, r, http.StatusBadRequest, "user id is required")
		return
	}

	var req types.UpdateRolesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	target, err := s.store.GetUser(r.Context(), targetID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if target == nil {
		writeServiceError(w, r, &ErrUserNotFound{UserID: targetID})
		return
	}

	roles := make([]types.Role, 0, len(req.Roles))
	for _, name := range req.Roles {
		roles = append(roles, types.Role(name))
	}
	if err := s.store.SetUserRoles(r.Context(), targetID, roles); err != nil {
		writeServiceError(w, r, err)
		return
	}

	callerID, _ := middleware.GetUserID(r)
	logger.Ctx(r.Context()).Info().
		Str("admin_id", callerID).
		Str("user_id", targetID).
		Strs("roles", req.Roles).
		Msg("user roles updated")

	updated, err := s.userService.Me(r.Context(), targetID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}
