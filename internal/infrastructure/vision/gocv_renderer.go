//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"

	"gocv.io/x/gocv"

	"spacesight-bot/internal/domain/entity"
	"spacesight-bot/internal/domain/port"
)

// GoCVRenderer рисует рамки средствами OpenCV.
type GoCVRenderer struct {
	FontScale float64
	Thickness int
}

// NewGoCVRenderer создаёт рендерер на OpenCV.
func NewGoCVRenderer() (*GoCVRenderer, error) {
	return &GoCVRenderer{FontScale: 0.5, Thickness: 2}, nil
}

// Render масштабирует кадр и рисует рамки с подписями.
func (r *GoCVRenderer) Render(img entity.ImageRef, result *entity.DetectionResult, opts entity.RenderOptions) ([]byte, error) {
	mat, err := decodeToMat(img.Data)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	factor := opts.Zoom
	if factor <= 0 {
		factor = 1
	}
	if side := maxInt(mat.Cols(), mat.Rows()); side > PreviewMaxSide {
		factor *= float64(PreviewMaxSide) / float64(side)
	}
	if factor != 1 {
		newW := maxInt(1, int(float64(mat.Cols())*factor))
		newH := maxInt(1, int(float64(mat.Rows())*factor))
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(newW, newH), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	if result != nil && opts.ShowOverlays {
		cyan := color.RGBA{R: 94, G: 234, B: 212, A: 255}
		black := color.RGBA{A: 255}
		for _, d := range result.Detections {
			rect, err := d.Box.Rect(mat.Cols(), mat.Rows())
			if err != nil {
				return nil, err
			}
			if rect.Empty() {
				continue
			}
			gocv.Rectangle(&mat, rect, cyan, r.Thickness)

			size := gocv.GetTextSize(d.Caption(), gocv.FontHersheySimplex, r.FontScale, 1)
			top := rect.Min.Y - size.Y - 6
			if top < 0 {
				top = rect.Min.Y
			}
			label := image.Rect(rect.Min.X, top, rect.Min.X+size.X+8, top+size.Y+6)
			gocv.Rectangle(&mat, label, cyan, -1)
			gocv.PutText(&mat, d.Caption(), image.Pt(label.Min.X+4, label.Max.Y-3), gocv.FontHersheySimplex, r.FontScale, black, 1)
		}
	}

	out, err := mat.ToImage()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: previewQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

var _ port.OverlayRenderer = (*GoCVRenderer)(nil)
