package app

import (
	"context"
	"errors"

	"spacesight-bot/internal/domain/entity"
	"spacesight-bot/internal/domain/port"
)

// Panel снимок сессии и отрисованное превью.
type Panel struct {
	Session *entity.Session
	Image   []byte
}

// PanelService отрисовывает панель результатов по снимку сессии.
type PanelService struct {
	sessions port.SessionRepository
	renderer port.OverlayRenderer
}

func NewPanelService(sessions port.SessionRepository, renderer port.OverlayRenderer) *PanelService {
	return &PanelService{sessions: sessions, renderer: renderer}
}

// Render рисует превью с учётом масштаба; рамки только если есть результат и они включены.
func (s *PanelService) Render(ctx context.Context, chatID int64) (*Panel, error) {
	sess, err := s.sessions.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if sess.Image == nil {
		return nil, ErrNoImage
	}
	if s.renderer == nil {
		return nil, errors.New("renderer is not configured")
	}

	img, err := s.renderer.Render(*sess.Image, sess.Result, entity.RenderOptions{
		Zoom:         sess.Zoom.Factor(),
		ShowOverlays: sess.ShowOverlays && sess.Result != nil,
	})
	if err != nil {
		return nil, err
	}

	return &Panel{Session: sess, Image: img}, nil
}
