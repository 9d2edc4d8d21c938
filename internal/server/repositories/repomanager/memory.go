package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. Data does not
// survive a restart.
type MemoryRepositoryManager struct {
	users    *users.MemoryRepository
	sessions *sessions.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:    users.NewMemoryRepository(),
		sessions: sessions.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *MemoryRepositoryManager) Sessions() sessions.Repository {
	return m.sessions
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *MemoryRepositoryManager) Close() error {
	return nil
}
