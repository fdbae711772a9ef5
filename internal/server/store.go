package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/skills-dossier/internal/db"
	"github.com/jonathan/skills-dossier/internal/types"
)

// Store is the persistence the API needs. *db.DB implements it.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, id, email, fullName, passwordHash string) error
	GetUser(ctx context.Context, id string) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	ListUserRoles(ctx context.Context, userID string) ([]string, error)
	SetUserRoles(ctx context.Context, userID string, roles []types.Role) error
	ListUsers(ctx context.Context) ([]db.User, error)

	CreateProfile(ctx context.Context, managerID string, payload *types.ProfilePayload) (uuid.UUID, error)
	ListProfiles(ctx context.Context, filter db.ProfileFilter) ([]types.Profile, error)
}

var _ Store = (*db.DB)(nil)

// CVParser turns document text into a CandidateRecord.
// *parsing.Orchestrator implements it.
type CVParser interface {
	Parse(ctx context.Context, text string) (*types.CandidateRecord, error)
}
