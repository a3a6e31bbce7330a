package vision

import (
	"context"
	"errors"
	"time"

	"spacesight-bot/internal/domain/entity"
	"spacesight-bot/internal/domain/port"
)

// DefaultDetectionDelay задержка имитации инференса по умолчанию.
const DefaultDetectionDelay = 2 * time.Second

const detectedImageURL = "https://placehold.co/800x600/18181b/d4d4d8?text=Detected+Objects"

// Simulator имитирует вызов модели: ждёт фиксированную задержку
// и возвращает заготовленный ответ, не глядя на содержимое изображения.
type Simulator struct {
	Delay time.Duration
	now   func() time.Time
}

// NewSimulator создаёт имитатор с заданной задержкой.
func NewSimulator(delay time.Duration) *Simulator {
	return &Simulator{
		Delay: delay,
		now:   time.Now,
	}
}

// Detect ждёт задержку и возвращает заготовленный результат.
func (s *Simulator) Detect(ctx context.Context, img entity.ImageRef) (*entity.DetectionResult, error) {
	if img.IsZero() {
		return nil, errors.New("empty image")
	}

	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return CannedResult(s.now()), nil
}

// CannedResult заготовленный ответ детектора.
func CannedResult(ts time.Time) *entity.DetectionResult {
	return &entity.DetectionResult{
		Timestamp: ts,
		ImageURL:  detectedImageURL,
		Metrics: entity.Metrics{
			MAP:            "78.5%",
			Precision:      "85.2%",
			Recall:         "82.1%",
			InferenceSpeed: "45ms",
		},
		Detections: []entity.Detection{
			{ID: 1, Label: entity.LabelFireExtinguisher, Confidence: "94%", Box: entity.BoundingBox{X: "10%", Y: "20%", Width: "30%", Height: "25%"}},
			{ID: 2, Label: entity.LabelOxygenTank, Confidence: "88%", Box: entity.BoundingBox{X: "55%", Y: "40%", Width: "20%", Height: "40%"}},
			{ID: 3, Label: entity.LabelToolbox, Confidence: "92%", Box: entity.BoundingBox{X: "70%", Y: "10%", Width: "15%", Height: "30%"}},
		},
	}
}

var _ port.Detector = (*Simulator)(nil)
