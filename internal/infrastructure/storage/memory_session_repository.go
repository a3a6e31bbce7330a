package storage

import (
	"context"
	"sync"

	"spacesight-bot/internal/domain/entity"
	"spacesight-bot/internal/domain/port"
)

// MemorySessionRepository in-memory хранилище сессий
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[int64]*entity.Session
}

// NewMemorySessionRepository создаёт новое in-memory хранилище
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[int64]*entity.Session),
	}
}

// Get возвращает снимок сессии, создаёт новую если не найдена
func (r *MemorySessionRepository) Get(ctx context.Context, chatID int64) (*entity.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	session, exists := r.sessions[chatID]
	if exists {
		snapshot := session.Clone()
		r.mu.RUnlock()
		return snapshot, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lookup(chatID).Clone(), nil
}

// Update применяет fn под блокировкой, чтобы чтение не видело половину изменений
func (r *MemorySessionRepository) Update(ctx context.Context, chatID int64, fn func(*entity.Session) error) (*entity.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session := r.lookup(chatID)
	if err := fn(session); err != nil {
		return nil, err
	}

	return session.Clone(), nil
}

// Len возвращает число сессий
func (r *MemorySessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// lookup вызывается под r.mu.Lock
func (r *MemorySessionRepository) lookup(chatID int64) *entity.Session {
	session, exists := r.sessions[chatID]
	if !exists {
		// Создаём новую сессию
		session = entity.NewSession(chatID)
		r.sessions[chatID] = session
	}
	return session
}

// Проверка реализации интерфейса
var _ port.SessionRepository = (*MemorySessionRepository)(nil)
