package app

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	"spacesight-bot/internal/domain/entity"
	"spacesight-bot/internal/domain/port"
	"spacesight-bot/internal/metrics"
)

// DetectionService запускает детектор и ведёт журнал прогонов.
type DetectionService struct {
	sessions port.SessionRepository
	detector port.Detector
	log      *zap.SugaredLogger
	metrics  *metrics.Metrics
}

// NewDetectionService создаёт сервис детекции.
func NewDetectionService(sessions port.SessionRepository, detector port.Detector, log *zap.SugaredLogger, m *metrics.Metrics) *DetectionService {
	return &DetectionService{
		sessions: sessions,
		detector: detector,
		log:      log,
		metrics:  m,
	}
}

// Run выполняет один прогон: помечает сессию, ждёт детектор и записывает результат.
// Пока прогон идёт, повторный запуск отклоняется с ErrDetectionInProgress.
// Если за это время рабочее место очистили или сменили изображение, результат
// отбрасывается и возвращается ErrDiscarded.
func (s *DetectionService) Run(ctx context.Context, chatID int64) (*entity.Session, error) {
	if s.detector == nil {
		return nil, errors.New("detector is not configured")
	}

	var (
		img        entity.ImageRef
		generation uint64
	)
	_, err := s.sessions.Update(ctx, chatID, func(sess *entity.Session) error {
		if sess.Image == nil {
			return ErrNoImage
		}
		if sess.Detecting {
			return ErrDetectionInProgress
		}
		sess.Detecting = true
		sess.Result = nil
		sess.Summary = ""
		img = *sess.Image
		generation = sess.Generation
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNoImage) {
			s.log.Warnw("Please select an image first.", "chat_id", chatID)
		}
		return nil, err
	}

	s.metrics.ActiveDetecting.Inc()
	result, detectErr := s.detector.Detect(ctx, img)
	s.metrics.ActiveDetecting.Dec()

	// Снимаем флаг даже если исходный контекст уже отменён.
	session, err := s.sessions.Update(context.WithoutCancel(ctx), chatID, func(sess *entity.Session) error {
		if sess.Generation != generation {
			return ErrDiscarded
		}
		sess.Detecting = false
		if detectErr == nil {
			sess.Record(result)
		}
		return nil
	})

	switch {
	case errors.Is(err, ErrDiscarded):
		s.metrics.Detections.WithLabelValues(metrics.OutcomeDiscarded).Inc()
		s.log.Infow("Detection result discarded", "chat_id", chatID)
		return nil, err
	case err != nil:
		return nil, err
	case detectErr != nil:
		s.metrics.Detections.WithLabelValues(metrics.OutcomeFailed).Inc()
		s.log.Errorw("Error simulating detection", "chat_id", chatID, "error", detectErr)
		return nil, pkgerrors.Wrap(detectErr, "detect")
	}

	s.metrics.Detections.WithLabelValues(metrics.OutcomeOK).Inc()
	s.metrics.HistoryEntries.Inc()
	s.log.Infow("Detection completed",
		"chat_id", chatID,
		"detections", len(result.Detections),
		"history", len(session.History),
	)
	return session, nil
}
