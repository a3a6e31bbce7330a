package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"spacesight-bot/config"
	telegram "spacesight-bot/internal/api"
	"spacesight-bot/internal/container"
	"spacesight-bot/internal/domain/port"
	"spacesight-bot/internal/infrastructure/gemini"
	"spacesight-bot/internal/infrastructure/report"
	"spacesight-bot/internal/infrastructure/storage"
	"spacesight-bot/internal/infrastructure/vision"
	"spacesight-bot/internal/logger"
	"spacesight-bot/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	err = run(cfg, logg)
	if err != nil {
		logg.Errorw("Bot stopped with error", "error", err)
	}
	_ = logg.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run собирает приложение и держит бота до сигнала. Все отложенные
// остановки выполняются до возврата, выход из процесса только в main.
func run(cfg *config.Config, logg *zap.SugaredLogger) error {
	if cfg.TelegramToken == "" {
		return errors.New("TELEGRAM_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logg.Infow("Metrics server is listening", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logg.Errorw("Metrics server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	renderer, err := newRenderer(cfg.RenderBackend, logg)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	// Шрифт отчёта грузится при первом экспорте
	rasterizer := report.NewCapability(report.FontLoader(cfg.ReportFontPath, report.DefaultOptions()))

	appContainer := container.New(container.Deps{
		Sessions:         storage.NewMemorySessionRepository(),
		Detector:         vision.NewSimulator(cfg.DetectionDelay),
		Summarizer:       gemini.NewClient(cfg.GeminiAPIURL, cfg.GeminiAPIKey, cfg.SummaryTimeout),
		Renderer:         renderer,
		Rasterizer:       rasterizer,
		ReportDateLayout: cfg.ReportDateLayout,
		Log:              logg,
		Metrics:          m,
	})

	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, logg)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	logg.Info("Bot is running...")
	if err := bot.Run(ctx); err != nil {
		return fmt.Errorf("run bot: %w", err)
	}
	logg.Info("Bot stopped")
	return nil
}

// newRenderer выбирает отрисовку рамок. Без сборки с тегом gocv остаётся gg.
func newRenderer(backend string, logg *zap.SugaredLogger) (port.OverlayRenderer, error) {
	if backend == "gocv" {
		r, err := vision.NewGoCVRenderer()
		if err == nil {
			return r, nil
		}
		logg.Warnw("OpenCV renderer unavailable, falling back to gg", "error", err)
	}
	return vision.NewOverlayRenderer()
}
