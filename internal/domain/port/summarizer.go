package port

import (
	"context"
	"errors"

	"spacesight-bot/internal/domain/entity"
)

// TextSummarizer интерфейс генератора текстовой сводки
type TextSummarizer interface {
	// Summarize пишет сводку по найденным объектам
	Summarize(ctx context.Context, detections []entity.Detection) (string, error)
}

// ErrMalformedSummary ответ генератора получен, но текста в нём нет
var ErrMalformedSummary = errors.New("summary response is malformed")
