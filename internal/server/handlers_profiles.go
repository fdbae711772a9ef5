package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/skills-dossier/internal/db"
	"github.com/jonathan/skills-dossier/internal/logger"
	"github.com/jonathan/skills-dossier/internal/server/middleware"
	"github.com/jonathan/skills-dossier/internal/types"
)

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	var payload types.ProfilePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.FullName) == "" {
		writeServiceError(w, r, &ErrValidation{Field: "full_name", Message: "required"})
		return
	}

	id, err := s.store.CreateProfile(r.Context(), userID, &payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logger.Ctx(r.Context()).Info().
		Str("profile_id", id.String()).
		Str("manager_id", userID).
		Int("experiences", len(payload.Experiences)).
		Msg("profile created")
	writeJSON(w, r, http.StatusCreated, map[string]string{"id": id.String()})
}

// handleListProfiles returns every dossier to admins and the caller's own
// dossiers to everyone else.
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	roles, err := s.store.ListUserRoles(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	filter := db.ProfileFilter{ManagerID: userID, All: types.CanListAllProfiles(roles)}
	profiles, err := s.store.ListProfiles(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profiles)
}
