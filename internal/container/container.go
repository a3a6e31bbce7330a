package container

import (
	"go.uber.org/zap"

	app "spacesight-bot/internal/application"
	"spacesight-bot/internal/domain/port"
	"spacesight-bot/internal/metrics"
)

// Deps внешние зависимости сервисов
type Deps struct {
	Sessions   port.SessionRepository
	Detector   port.Detector
	Summarizer port.TextSummarizer
	Renderer   port.OverlayRenderer
	Rasterizer port.RasterizerLoader

	ReportDateLayout string
	Log              *zap.SugaredLogger
	Metrics          *metrics.Metrics
}

type Container struct {
	SessionService   *app.SessionService
	DetectionService *app.DetectionService
	SummaryService   *app.SummaryService
	ReportService    *app.ReportService
	PanelService     *app.PanelService
}

func New(d Deps) *Container {
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	return &Container{
		SessionService:   app.NewSessionService(d.Sessions, d.Log, d.Metrics),
		DetectionService: app.NewDetectionService(d.Sessions, d.Detector, d.Log, d.Metrics),
		SummaryService:   app.NewSummaryService(d.Sessions, d.Summarizer, d.Log, d.Metrics),
		ReportService:    app.NewReportService(d.Sessions, d.Renderer, d.Rasterizer, d.ReportDateLayout, d.Log, d.Metrics),
		PanelService:     app.NewPanelService(d.Sessions, d.Renderer),
	}
}
