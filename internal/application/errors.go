package app

import "errors"

var (
	ErrNoImage             = errors.New("image is not selected")
	ErrNotImage            = errors.New("file is not an image")
	ErrNoResult            = errors.New("detection result is not ready")
	ErrDetectionInProgress = errors.New("detection is already running")
	ErrSummaryInProgress   = errors.New("summary is already being generated")

	// ErrDiscarded прогон завершился после очистки или смены изображения.
	ErrDiscarded = errors.New("result discarded: workspace changed")
)
