package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/skills-dossier/internal/config"
	"github.com/jonathan/skills-dossier/internal/db"
	"github.com/jonathan/skills-dossier/internal/logger"
	"github.com/jonathan/skills-dossier/internal/types"
)

// UserService provides account registration and authentication.
type UserService struct {
	store          Store
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(store Store, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{store: store, passwordConfig: passwordConfig}
}

// Register creates an account keyed by the stable id of its email. New
// accounts hold no role, so they act as consultants.
func (s *UserService) Register(ctx context.Context, req *types.SignUpRequest) (*types.User, error) {
	email := db.NormalizeEmail(req.Email)
	id := db.StableUserID(email)

	existing, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, &ErrEmailAlreadyExists{Email: email}
	}

	if err := s.passwordConfig.CheckPassword(req.Password); err != nil {
		return nil, &ErrValidation{Field: "password", Message: err.Error()}
	}
	hash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		fullName, _, _ = strings.Cut(email, "@")
	}

	if err := s.store.CreateUser(ctx, id, email, fullName, hash); err != nil {
		if errors.Is(err, db.ErrDuplicateUser) {
			return nil, &ErrEmailAlreadyExists{Email: email}
		}
		return nil, err
	}

	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve created user: %w", err)
	}
	if user == nil {
		return nil, &ErrUserNotFound{UserID: id}
	}

	logger.Ctx(ctx).Info().Str("user_id", id).Msg("user registered")
	return user.ToAPI(), nil
}

// Login checks the credentials. Unknown emails and wrong passwords give the
// same error.
func (s *UserService) Login(ctx context.Context, req *types.SignInRequest) (*types.User, error) {
	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if user == nil || !s.passwordConfig.VerifyPassword(req.Password, user.PasswordHash) {
		logger.Ctx(ctx).Warn().Msg("sign-in rejected")
		return nil, &ErrInvalidCredentials{}
	}
	return user.ToAPI(), nil
}

// Me returns the caller's account with roles.
func (s *UserService) Me(ctx context.Context, userID string) (*types.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	return user.ToAPI(), nil
}

// EffectiveRole returns the caller's highest role tier.
func (s *UserService) EffectiveRole(ctx context.Context, userID string) (types.Role, error) {
	roles, err := s.store.ListUserRoles(ctx, userID)
	if err != nil {
		return "", err
	}
	return types.EffectiveRole(roles), nil
}
