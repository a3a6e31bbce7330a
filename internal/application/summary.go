package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"spacesight-bot/internal/domain/entity"
	"spacesight-bot/internal/domain/port"
	"spacesight-bot/internal/metrics"
)

// SummaryFallback показывается вместо сводки при любой ошибке генерации.
const SummaryFallback = "Failed to generate summary. Please try again."

// SummaryService просит генератор текста описать текущий результат.
type SummaryService struct {
	sessions   port.SessionRepository
	summarizer port.TextSummarizer
	log        *zap.SugaredLogger
	metrics    *metrics.Metrics
}

// NewSummaryService создаёт сервис сводок.
func NewSummaryService(sessions port.SessionRepository, summarizer port.TextSummarizer, log *zap.SugaredLogger, m *metrics.Metrics) *SummaryService {
	return &SummaryService{
		sessions:   sessions,
		summarizer: summarizer,
		log:        log,
		metrics:    m,
	}
}

// Generate делает один запрос без повторов. Ошибка генератора не возвращается:
// вместо текста в сессию пишется SummaryFallback.
func (s *SummaryService) Generate(ctx context.Context, chatID int64) (*entity.Session, error) {
	var (
		detections []entity.Detection
		generation uint64
		target     *entity.DetectionResult
	)
	_, err := s.sessions.Update(ctx, chatID, func(sess *entity.Session) error {
		if sess.Result == nil {
			return ErrNoResult
		}
		if sess.Summarizing {
			return ErrSummaryInProgress
		}
		sess.Summarizing = true
		detections = append([]entity.Detection(nil), sess.Result.Detections...)
		generation = sess.Generation
		target = sess.Result
		return nil
	})
	if err != nil {
		return nil, err
	}

	text, genErr := s.summarize(ctx, detections)
	outcome := metrics.OutcomeOK
	if genErr != nil {
		outcome = metrics.OutcomeFallback
		text = SummaryFallback
		if errors.Is(genErr, port.ErrMalformedSummary) {
			s.log.Errorw("Malformed summary response", "chat_id", chatID, "error", genErr)
		} else {
			s.log.Errorw("Error generating summary", "chat_id", chatID, "error", genErr)
		}
	}

	session, err := s.sessions.Update(context.WithoutCancel(ctx), chatID, func(sess *entity.Session) error {
		if sess.Generation != generation {
			return ErrDiscarded
		}
		sess.Summarizing = false
		// Пока ждали ответ, мог начаться новый прогон.
		if sess.Result != target {
			return ErrDiscarded
		}
		sess.Summary = text
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDiscarded) {
			outcome = metrics.OutcomeDiscarded
		}
		s.metrics.Summaries.WithLabelValues(outcome).Inc()
		return nil, err
	}

	s.metrics.Summaries.WithLabelValues(outcome).Inc()
	return session, nil
}

func (s *SummaryService) summarize(ctx context.Context, detections []entity.Detection) (string, error) {
	if s.summarizer == nil {
		return "", errors.New("summarizer is not configured")
	}
	return s.summarizer.Summarize(ctx, detections)
}
