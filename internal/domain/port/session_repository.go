package port

import (
	"context"

	"spacesight-bot/internal/domain/entity"
)

// SessionRepository интерфейс хранилища сессий
type SessionRepository interface {
	// Get возвращает снимок сессии чата, создаёт новую если не найдена
	Get(ctx context.Context, chatID int64) (*entity.Session, error)

	// Update атомарно применяет fn к сессии чата и возвращает снимок после изменения.
	// Ошибка fn возвращается без снимка; изменения, сделанные fn до ошибки, остаются.
	Update(ctx context.Context, chatID int64, fn func(*entity.Session) error) (*entity.Session, error)
}
