package app

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"spacesight-bot/internal/domain/entity"
	"spacesight-bot/internal/domain/port"
	"spacesight-bot/internal/metrics"
)

// Report готовый PNG-отчёт
type Report struct {
	FileName string
	Data     []byte
}

// ReportService снимает панель результатов в PNG
type ReportService struct {
	sessions   port.SessionRepository
	renderer   port.OverlayRenderer
	rasterizer port.RasterizerLoader
	dateLayout string
	log        *zap.SugaredLogger
	metrics    *metrics.Metrics
}

// NewReportService создаёт сервис отчётов. dateLayout задаёт формат даты в имени файла.
func NewReportService(
	sessions port.SessionRepository,
	renderer port.OverlayRenderer,
	rasterizer port.RasterizerLoader,
	dateLayout string,
	log *zap.SugaredLogger,
	m *metrics.Metrics,
) *ReportService {
	if dateLayout == "" {
		dateLayout = "02.01.2006"
	}
	return &ReportService{
		sessions:   sessions,
		renderer:   renderer,
		rasterizer: rasterizer,
		dateLayout: dateLayout,
		log:        log,
		metrics:    m,
	}
}

// ReportFileName имя файла отчёта: SpaceSight_Report_<дата>.png
func ReportFileName(now time.Time, layout string) string {
	date := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "_").Replace(now.Format(layout))
	return "SpaceSight_Report_" + date + ".png"
}

// Export рисует текущую панель результатов. Ошибки логируются здесь;
// вызывающему остаётся молча ничего не отправить.
func (s *ReportService) Export(ctx context.Context, chatID int64, now time.Time) (*Report, error) {
	sess, err := s.sessions.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if sess.Result == nil {
		return nil, ErrNoResult
	}

	report, err := s.export(ctx, sess, now)
	if err != nil {
		s.metrics.Reports.WithLabelValues(metrics.OutcomeFailed).Inc()
		s.log.Errorw("Could not download report", "chat_id", chatID, "error", err)
		return nil, err
	}

	s.metrics.Reports.WithLabelValues(metrics.OutcomeOK).Inc()
	return report, nil
}

func (s *ReportService) export(ctx context.Context, sess *entity.Session, now time.Time) (*Report, error) {
	panel := entity.ReportPanel{
		TeamName: sess.TeamName,
		Result:   sess.Result,
		Summary:  sess.Summary,
	}

	if sess.Image != nil && s.renderer != nil {
		img, err := s.renderer.Render(*sess.Image, sess.Result, entity.RenderOptions{
			Zoom:         sess.Zoom.Factor(),
			ShowOverlays: sess.ShowOverlays,
		})
		if err != nil {
			return nil, errors.Wrap(err, "render preview")
		}
		panel.Image = img
	}

	if s.rasterizer == nil {
		return nil, errors.New("report rasterizer is not configured")
	}
	rasterizer, err := s.rasterizer.Load(ctx)
	if err != nil {
		return nil, err
	}

	data, err := rasterizer.Rasterize(ctx, panel)
	if err != nil {
		return nil, errors.Wrap(err, "rasterize panel")
	}

	return &Report{
		FileName: ReportFileName(now, s.dateLayout),
		Data:     data,
	}, nil
}
