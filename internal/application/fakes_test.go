package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"spacesight-bot/internal/domain/entity"
	"spacesight-bot/internal/domain/port"
	"spacesight-bot/internal/infrastructure/storage"
	"spacesight-bot/internal/infrastructure/vision"
	"spacesight-bot/internal/metrics"
)

type deps struct {
	repo      *storage.MemorySessionRepository
	sessions  *SessionService
	detection *DetectionService
	metrics   *metrics.Metrics
}

func newDeps(t *testing.T, detector port.Detector) deps {
	t.Helper()
	repo := storage.NewMemorySessionRepository()
	log := zaptest.NewLogger(t).Sugar()
	m := metrics.New()
	return deps{
		repo:      repo,
		sessions:  NewSessionService(repo, log, m),
		detection: NewDetectionService(repo, detector, log, m),
		metrics:   m,
	}
}

func imageA() entity.ImageRef {
	return entity.ImageRef{FileID: "file-a", Name: "a.png", MIMEType: "image/png", Data: []byte("a")}
}

func imageB() entity.ImageRef {
	return entity.ImageRef{FileID: "file-b", Name: "b.jpg", MIMEType: "image/jpeg", Data: []byte("b")}
}

// blockingDetector отвечает только после release.
type blockingDetector struct {
	started chan struct{}
	release chan struct{}
	err     error
}

func newBlockingDetector() *blockingDetector {
	return &blockingDetector{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (d *blockingDetector) Detect(ctx context.Context, img entity.ImageRef) (*entity.DetectionResult, error) {
	d.started <- struct{}{}
	<-d.release
	if d.err != nil {
		return nil, d.err
	}
	return vision.CannedResult(time.Now()), nil
}

type failingDetector struct{}

func (failingDetector) Detect(context.Context, entity.ImageRef) (*entity.DetectionResult, error) {
	return nil, errors.New("unexpected exception")
}

type fakeSummarizer struct {
	mu      sync.Mutex
	text    string
	err     error
	calls   int
	got     []entity.Detection
	started chan struct{}
	release chan struct{}
}

func (f *fakeSummarizer) Summarize(ctx context.Context, detections []entity.Detection) (string, error) {
	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.got = detections
	return f.text, f.err
}

type fakeRenderer struct {
	mu   sync.Mutex
	opts []entity.RenderOptions
	err  error
}

func (f *fakeRenderer) Render(img entity.ImageRef, result *entity.DetectionResult, opts entity.RenderOptions) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte("rendered:"), img.Data...), nil
}

type fakeRasterizer struct {
	panel entity.ReportPanel
	err   error
}

func (f *fakeRasterizer) Rasterize(ctx context.Context, panel entity.ReportPanel) ([]byte, error) {
	f.panel = panel
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png"), nil
}

type fakeLoader struct {
	rasterizer *fakeRasterizer
	err        error
	loaded     bool
}

func (f *fakeLoader) Loaded() bool { return f.loaded }

func (f *fakeLoader) Load(ctx context.Context) (port.ReportRasterizer, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.loaded = true
	return f.rasterizer, nil
}
