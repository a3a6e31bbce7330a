//go:build !gocv
// +build !gocv

package vision

import (
	"errors"

	"spacesight-bot/internal/domain/entity"
)

// ErrGoCVDisabled сборка без тега gocv.
var ErrGoCVDisabled = errors.New("gocv build tag is not enabled")

// GoCVRenderer заглушка без OpenCV.
type GoCVRenderer struct {
	FontScale float64
	Thickness int
}

// NewGoCVRenderer возвращает ошибку, если сборка без тега gocv.
func NewGoCVRenderer() (*GoCVRenderer, error) {
	return nil, ErrGoCVDisabled
}

// Render возвращает ошибку, если сборка без тега gocv.
func (r *GoCVRenderer) Render(img entity.ImageRef, result *entity.DetectionResult, opts entity.RenderOptions) ([]byte, error) {
	_ = img
	_ = result
	_ = opts
	return nil, ErrGoCVDisabled
}
