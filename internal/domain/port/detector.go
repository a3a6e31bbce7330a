package port

import (
	"context"

	"spacesight-bot/internal/domain/entity"
)

// Detector интерфейс детектора объектов
type Detector interface {
	// Detect анализирует изображение и возвращает результат прогона
	Detect(ctx context.Context, img entity.ImageRef) (*entity.DetectionResult, error)
}

// OverlayRenderer рисует превью с рамками находок
type OverlayRenderer interface {
	// Render масштабирует превью и, если нужно, накладывает рамки
	Render(img entity.ImageRef, result *entity.DetectionResult, opts entity.RenderOptions) ([]byte, error)
}
