package workspace

import (
	"context"
	"sync"
)

// MemoryRepository is a map-backed Repository for tests and local runs.
type MemoryRepository struct {
	mu         sync.RWMutex
	workspaces map[string]Workspace
	members    map[string]map[string]Member // workspace_id -> user_id -> member
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		workspaces: make(map[string]Workspace),
		members:    make(map[string]map[string]Member),
	}
}

func (r *MemoryRepository) AddWorkspace(w Workspace) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workspaces[w.ID] = w
}

func (r *MemoryRepository) AddMember(m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.members[m.WorkspaceID] == nil {
		r.members[m.WorkspaceID] = make(map[string]Member)
	}
	r.members[m.WorkspaceID][m.UserID] = m
}

func (r *MemoryRepository) FindWorkspace(_ context.Context, id string) (Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.workspaces[id]
	if !ok {
		return Workspace{}, ErrNotFound
	}
	return w, nil
}

func (r *MemoryRepository) FindAcceptedMember(_ context.Context, workspaceID, userID string) (Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[workspaceID][userID]
	if !ok || !m.Accepted {
		return Member{}, ErrMemberNotFound
	}
	return m, nil
}
