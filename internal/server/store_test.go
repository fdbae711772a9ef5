package server

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/skills-dossier/internal/db"
	"github.com/jonathan/skills-dossier/internal/types"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*db.User
	roles    map[string][]string
	profiles []types.Profile
	pingErr  error
	failWith error
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*db.User{}, roles: map[string][]string{}}
}

func (m *memStore) Ping(context.Context) error { return m.pingErr }

func (m *memStore) CreateUser(_ context.Context, id, email, fullName, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for _, u := range m.users {
		if u.ID == id || u.Email == email {
			return db.ErrDuplicateUser
		}
	}
	m.users[id] = &db.User{ID: id, Email: email, FullName: fullName, PasswordHash: passwordHash, CreatedAt: time.Now()}
	return nil
}

func (m *memStore) lookup(match func(*db.User) bool) *db.User {
	for _, u := range m.users {
		if match(u) {
			cp := *u
			cp.Roles = append([]string{}, m.roles[u.ID]...)
			return &cp
		}
	}
	return nil
}

func (m *memStore) GetUser(_ context.Context, id string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(func(u *db.User) bool { return u.ID == id }), nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = db.NormalizeEmail(email)
	return m.lookup(func(u *db.User) bool { return u.Email == email }), nil
}

func (m *memStore) ListUserRoles(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.roles[userID]...), nil
}

func (m *memStore) SetUserRoles(_ context.Context, userID string, roles []types.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := []string{}
	for _, r := range roles {
		if !slices.Contains(names, string(r)) {
			names = append(names, string(r))
		}
	}
	m.roles[userID] = names
	return nil
}

func (m *memStore) ListUsers(context.Context) ([]db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.User{}
	for id := range m.users {
		out = append(out, *m.lookup(func(u *db.User) bool { return u.ID == id }))
	}
	slices.SortFunc(out, func(a, b db.User) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (m *memStore) CreateProfile(_ context.Context, managerID string, payload *types.ProfilePayload) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return uuid.Nil, m.failWith
	}
	p := types.Profile{
		ID:        uuid.New(),
		ManagerID: managerID,
		FullName:  payload.FullName,
		Roles:     types.NonBlank(payload.Roles),
		JobTitle:  payload.JobTitle(),
	}
	m.profiles = append([]types.Profile{p}, m.profiles...)
	return p.ID, nil
}

func (m *memStore) ListProfiles(_ context.Context, filter db.ProfileFilter) ([]types.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.Profile{}
	for _, p := range m.profiles {
		if filter.All || p.ManagerID == filter.ManagerID {
			out = append(out, p)
		}
	}
	return out, nil
}
