package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"spacesight-bot/internal/domain/entity"
	"spacesight-bot/internal/domain/port"
	"spacesight-bot/internal/metrics"
)

type SessionService struct {
	repo    port.SessionRepository
	log     *zap.SugaredLogger
	metrics *metrics.Metrics
}

func NewSessionService(repo port.SessionRepository, log *zap.SugaredLogger, m *metrics.Metrics) *SessionService {
	return &SessionService{repo: repo, log: log, metrics: m}
}

func (s *SessionService) Get(ctx context.Context, chatID int64) (*entity.Session, error) {
	return s.repo.Get(ctx, chatID)
}

// SelectImage принимает выбранный файл. Пропускается любой image/* тип.
func (s *SessionService) SelectImage(ctx context.Context, chatID int64, img entity.ImageRef) (*entity.Session, error) {
	if img.IsZero() {
		s.log.Warnw("Please select an image first.", "chat_id", chatID)
		return nil, ErrNoImage
	}
	if img.MIMEType != "" && !entity.IsImageMIME(img.MIMEType) {
		s.log.Warnw("Rejected non-image file", "chat_id", chatID, "mime", img.MIMEType)
		return nil, ErrNotImage
	}

	return s.update(ctx, chatID, func(sess *entity.Session) {
		sess.SelectImage(img)
	})
}

// Clear сбрасывает рабочее место из любого состояния, журнал остаётся.
func (s *SessionService) Clear(ctx context.Context, chatID int64) (*entity.Session, error) {
	return s.update(ctx, chatID, (*entity.Session).Clear)
}

func (s *SessionService) Navigate(ctx context.Context, chatID int64, page entity.Page) (*entity.Session, error) {
	return s.update(ctx, chatID, func(sess *entity.Session) {
		sess.Page = page
	})
}

func (s *SessionService) SetTeamName(ctx context.Context, chatID int64, name string) (*entity.Session, error) {
	return s.update(ctx, chatID, func(sess *entity.Session) {
		sess.TeamName = strings.TrimSpace(name)
	})
}

func (s *SessionService) ZoomIn(ctx context.Context, chatID int64) (*entity.Session, error) {
	return s.update(ctx, chatID, (*entity.Session).ZoomIn)
}

func (s *SessionService) ZoomOut(ctx context.Context, chatID int64) (*entity.Session, error) {
	return s.update(ctx, chatID, (*entity.Session).ZoomOut)
}

func (s *SessionService) ToggleOverlays(ctx context.Context, chatID int64) (*entity.Session, error) {
	return s.update(ctx, chatID, (*entity.Session).ToggleOverlays)
}

// OpenObjectInfo открывает панель объекта вместо предыдущей.
func (s *SessionService) OpenObjectInfo(ctx context.Context, chatID int64, label string) (entity.ObjectInfo, error) {
	var info entity.ObjectInfo
	_, err := s.update(ctx, chatID, func(sess *entity.Session) {
		info = sess.OpenObjectInfo(label)
	})
	if err != nil {
		return entity.ObjectInfo{}, err
	}

	// Произвольные метки из /info не должны плодить серии.
	metricLabel := label
	if info.Info == entity.NoObjectInfo {
		metricLabel = "unknown"
	}
	s.metrics.ObjectInfo.WithLabelValues(metricLabel).Inc()
	return info, nil
}

func (s *SessionService) CloseObjectInfo(ctx context.Context, chatID int64) (*entity.Session, error) {
	return s.update(ctx, chatID, (*entity.Session).CloseObjectInfo)
}

// History возвращает журнал, новые записи первыми.
func (s *SessionService) History(ctx context.Context, chatID int64) ([]entity.HistoryEntry, error) {
	sess, err := s.repo.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return sess.History, nil
}

func (s *SessionService) update(ctx context.Context, chatID int64, fn func(*entity.Session)) (*entity.Session, error) {
	return s.repo.Update(ctx, chatID, func(sess *entity.Session) error {
		fn(sess)
		return nil
	})
}
