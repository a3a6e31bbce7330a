package port

import (
	"context"

	"spacesight-bot/internal/domain/entity"
)

// ReportRasterizer превращает панель результатов в PNG
type ReportRasterizer interface {
	Rasterize(ctx context.Context, panel entity.ReportPanel) ([]byte, error)
}

// RasterizerLoader лениво загружаемая возможность растеризации
type RasterizerLoader interface {
	// Loaded сообщает, загружена ли возможность
	Loaded() bool

	// Load загружает возможность при первом вызове и возвращает её
	Load(ctx context.Context) (ReportRasterizer, error)
}
