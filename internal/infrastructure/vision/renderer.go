package vision

import (
	"bytes"
	"image"
	_ "image/gif" // регистрация декодера
	"image/jpeg"
	_ "image/png" // регистрация декодера
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp" // регистрация декодера
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	_ "golang.org/x/image/tiff" // регистрация декодера
	_ "golang.org/x/image/webp" // регистрация декодера

	"spacesight-bot/internal/domain/entity"
	"spacesight-bot/internal/domain/port"
)

const (
	labelFontSize  = 12
	labelPaddingX  = 6
	labelPaddingY  = 2
	overlayStrokeW = 2

	// PreviewMaxSide длинная сторона превью до масштабирования.
	// При 2.0x кадр не больше 2560 пикселей.
	PreviewMaxSide = 1280
	previewQuality = 85
)

// OverlayRenderer рисует превью средствами gg: масштаб, рамки и подписи.
type OverlayRenderer struct {
	face font.Face
}

// NewOverlayRenderer создаёт рендерер со встроенным жирным шрифтом Go.
func NewOverlayRenderer() (*OverlayRenderer, error) {
	f, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "parse label font")
	}
	return &OverlayRenderer{
		face: truetype.NewFace(f, &truetype.Options{Size: labelFontSize}),
	}, nil
}

// Render уменьшает кадр до PreviewMaxSide, масштабирует на opts.Zoom,
// накладывает рамки, если они включены, и кодирует результат в JPEG.
func (r *OverlayRenderer) Render(img entity.ImageRef, result *entity.DetectionResult, opts entity.RenderOptions) ([]byte, error) {
	src, err := decodeImage(img.Data)
	if err != nil {
		return nil, err
	}

	base := resize.Thumbnail(PreviewMaxSide, PreviewMaxSide, src, resize.Bilinear)
	scaled := scaleImage(base, opts.Zoom)
	dc := gg.NewContextForImage(scaled)

	if result != nil && opts.ShowOverlays {
		for _, d := range result.Detections {
			if err := r.drawDetection(dc, d); err != nil {
				return nil, errors.Wrapf(err, "draw detection %d", d.ID)
			}
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dc.Image(), &jpeg.Options{Quality: previewQuality}); err != nil {
		return nil, errors.Wrap(err, "encode preview")
	}
	return buf.Bytes(), nil
}

// drawDetection рисует полупрозрачную рамку с подписью над ней.
func (r *OverlayRenderer) drawDetection(dc *gg.Context, d entity.Detection) error {
	rect, err := d.Box.Rect(dc.Width(), dc.Height())
	if err != nil {
		return err
	}
	if rect.Empty() {
		return nil
	}

	x, y := float64(rect.Min.X), float64(rect.Min.Y)
	w, h := float64(rect.Dx()), float64(rect.Dy())

	// Бирюзовая заливка 20% и сплошная обводка.
	dc.SetRGBA255(94, 234, 212, 51)
	dc.DrawRoundedRectangle(x, y, w, h, 4)
	dc.Fill()
	dc.SetRGB255(94, 234, 212)
	dc.SetLineWidth(overlayStrokeW)
	dc.DrawRoundedRectangle(x, y, w, h, 4)
	dc.Stroke()

	dc.SetFontFace(r.face)
	caption := d.Caption()
	tw, th := dc.MeasureString(caption)
	boxH := th + 2*labelPaddingY
	labelY := y - boxH
	if labelY < 0 {
		labelY = y
	}

	dc.SetRGB255(94, 234, 212)
	dc.DrawRoundedRectangle(x, labelY, tw+2*labelPaddingX, boxH, 4)
	dc.Fill()
	dc.SetRGB(0, 0, 0)
	dc.DrawString(caption, x+labelPaddingX, labelY+labelPaddingY+th)
	return nil
}

func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}
	return img, nil
}

// scaleImage меняет размер с сохранением пропорций; 1.0 возвращает исходник.
func scaleImage(src image.Image, factor float64) image.Image {
	if factor <= 0 || factor == 1 {
		return src
	}
	w := uint(math.Max(1, math.Round(float64(src.Bounds().Dx())*factor)))
	return resize.Resize(w, 0, src, resize.Bilinear)
}

var _ port.OverlayRenderer = (*OverlayRenderer)(nil)
