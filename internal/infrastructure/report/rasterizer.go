package report

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // регистрация декодера
	_ "image/png"  // регистрация декодера
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"

	"spacesight-bot/internal/domain/entity"
	"spacesight-bot/internal/domain/port"
)

// Options параметры снимка панели.
type Options struct {
	Scale      float64 // множитель разрешения
	Background string  // цвет фона, hex
	Width      float64 // ширина панели в логических пикселях
}

// DefaultOptions масштаб 2 и тёмный фон панели.
func DefaultOptions() Options {
	return Options{
		Scale:      2,
		Background: "#0f172a",
		Width:      480,
	}
}

const (
	padding     = 16.0
	titleSize   = 20.0
	headingSize = 15.0
	bodySize    = 12.0
	lineSpacing = 1.6
	sectionGap  = 14.0
)

// Rasterizer рисует панель результатов: превью, находки, метрики и сводку.
type Rasterizer struct {
	font *truetype.Font
	opts Options
}

// NewRasterizer создаёт растеризатор с готовым шрифтом.
func NewRasterizer(f *truetype.Font, opts Options) *Rasterizer {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Width <= 0 {
		opts.Width = DefaultOptions().Width
	}
	if opts.Background == "" {
		opts.Background = DefaultOptions().Background
	}
	return &Rasterizer{font: f, opts: opts}
}

func (r *Rasterizer) face(size float64) font.Face {
	return truetype.NewFace(r.font, &truetype.Options{Size: size * r.opts.Scale})
}

// Rasterize рисует панель и кодирует её в PNG.
func (r *Rasterizer) Rasterize(ctx context.Context, panel entity.ReportPanel) ([]byte, error) {
	if panel.Result == nil {
		return nil, errors.New("report panel has no detection result")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var preview image.Image
	if len(panel.Image) > 0 {
		img, _, err := image.Decode(bytes.NewReader(panel.Image))
		if err != nil {
			return nil, errors.Wrap(err, "decode panel image")
		}
		preview = img
	}

	s := r.opts.Scale
	inner := (r.opts.Width - 2*padding) * s
	titleFace, headingFace, bodyFace := r.face(titleSize), r.face(headingSize), r.face(bodySize)
	bodyLine := bodySize * s * lineSpacing
	headingLine := headingSize * s * lineSpacing

	metrics := []string{
		"mAP: " + panel.Result.Metrics.MAP,
		"Precision: " + panel.Result.Metrics.Precision,
		"Recall: " + panel.Result.Metrics.Recall,
		"Inference speed: " + panel.Result.Metrics.InferenceSpeed,
	}

	scratch := gg.NewContext(1, 1)
	scratch.SetFontFace(bodyFace)
	var summary []string
	if panel.Summary != "" {
		summary = scratch.WordWrap(panel.Summary, inner)
	}

	var previewH float64
	if preview != nil {
		b := preview.Bounds()
		previewH = inner * float64(b.Dy()) / float64(b.Dx())
	}

	height := padding*s + titleSize*s*lineSpacing + bodyLine
	if preview != nil {
		height += previewH + sectionGap*s
	}
	height += headingLine + float64(len(panel.Result.Detections))*bodyLine + sectionGap*s
	height += headingLine + float64(len(metrics))*bodyLine
	if len(summary) > 0 {
		height += sectionGap*s + headingLine + float64(len(summary))*bodyLine
	}
	height += padding * s

	dc := gg.NewContext(int(math.Ceil(r.opts.Width*s)), int(math.Ceil(height)))
	dc.SetHexColor(r.opts.Background)
	dc.Clear()

	x := padding * s
	y := padding * s

	dc.SetFontFace(titleFace)
	dc.SetRGB255(255, 255, 255)
	y += titleSize * s
	dc.DrawString("SpaceSight Report", x, y)
	y += titleSize * s * (lineSpacing - 1)

	dc.SetFontFace(bodyFace)
	dc.SetRGB255(156, 163, 175)
	y += bodyLine
	dc.DrawString(fmt.Sprintf("%s · %s", panel.TeamName, panel.Result.Timestamp.Format("2006-01-02 15:04:05")), x, y)

	if preview != nil {
		y += sectionGap * s
		b := preview.Bounds()
		k := inner / float64(b.Dx())
		dc.Push()
		dc.Translate(x, y)
		dc.Scale(k, k)
		dc.DrawImage(preview, 0, 0)
		dc.Pop()
		y += previewH
	}

	y += sectionGap * s
	y = r.section(dc, headingFace, bodyFace, "Detected Objects", detectionLines(panel.Result), x, y)
	y += sectionGap * s
	y = r.section(dc, headingFace, bodyFace, "Metrics", metrics, x, y)
	if len(summary) > 0 {
		y += sectionGap * s
		r.section(dc, headingFace, bodyFace, "AI Summary", summary, x, y)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(err, "encode report")
	}
	return buf.Bytes(), nil
}

// section рисует заголовок и строки, возвращает y под последней строкой.
func (r *Rasterizer) section(dc *gg.Context, heading, body font.Face, title string, lines []string, x, y float64) float64 {
	s := r.opts.Scale

	dc.SetFontFace(heading)
	dc.SetRGB255(255, 255, 255)
	y += headingSize * s * lineSpacing
	dc.DrawString(title, x, y)

	dc.SetFontFace(body)
	dc.SetRGB255(209, 213, 219)
	for _, line := range lines {
		y += bodySize * s * lineSpacing
		dc.DrawString(line, x, y)
	}
	return y
}

func detectionLines(res *entity.DetectionResult) []string {
	lines := make([]string, 0, len(res.Detections))
	for _, d := range res.Detections {
		lines = append(lines, d.Caption())
	}
	return lines
}

var _ port.ReportRasterizer = (*Rasterizer)(nil)
