package entity

import (
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"
)

// Названия объектов, которые умеет "находить" модель.
const (
	LabelFireExtinguisher = "Fire Extinguisher"
	LabelOxygenTank       = "Oxygen Tank"
	LabelToolbox          = "Toolbox"
)

// Labels возвращает словарь меток в порядке отображения.
func Labels() []string {
	return []string{LabelFireExtinguisher, LabelOxygenTank, LabelToolbox}
}

// Metrics агрегированные метрики прогона. Значения только для отображения.
type Metrics struct {
	MAP            string // mean average precision, например "78.5%"
	Precision      string // точность
	Recall         string // полнота
	InferenceSpeed string // время инференса, например "45ms"
}

// BoundingBox нормализованная рамка: координаты и размеры в процентах от кадра ("10%").
type BoundingBox struct {
	X      string
	Y      string
	Width  string
	Height string
}

// Fractions переводит проценты рамки в доли от 0 до 1.
func (b BoundingBox) Fractions() (x, y, w, h float64, err error) {
	if x, err = parsePercent(b.X); err != nil {
		return
	}
	if y, err = parsePercent(b.Y); err != nil {
		return
	}
	if w, err = parsePercent(b.Width); err != nil {
		return
	}
	h, err = parsePercent(b.Height)
	return
}

// Rect переводит рамку в пиксели для кадра width x height.
func (b BoundingBox) Rect(width, height int) (image.Rectangle, error) {
	x, y, w, h, err := b.Fractions()
	if err != nil {
		return image.Rectangle{}, err
	}

	fw, fh := float64(width), float64(height)
	r := image.Rect(
		int(x*fw),
		int(y*fh),
		int((x+w)*fw),
		int((y+h)*fh),
	)
	return r.Intersect(image.Rect(0, 0, width, height)), nil
}

func parsePercent(s string) (float64, error) {
	raw := strings.TrimSuffix(strings.TrimSpace(s), "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q: %w", s, err)
	}
	return v / 100, nil
}

// Detection одна найденная (сымитированная) находка на изображении.
type Detection struct {
	ID         int
	Label      string
	Confidence string // уверенность для отображения, например "94%"
	Box        BoundingBox
}

// Caption подпись рамки: "Toolbox (92%)".
func (d Detection) Caption() string {
	return fmt.Sprintf("%s (%s)", d.Label, d.Confidence)
}

// DetectionResult полный ответ одного прогона детектора.
// После создания не изменяется.
type DetectionResult struct {
	Timestamp  time.Time
	ImageURL   string // изображение с разметкой, которое "вернул сервер"
	Metrics    Metrics
	Detections []Detection
}

// Clone возвращает копию с собственным срезом находок.
func (r *DetectionResult) Clone() *DetectionResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Detections = append([]Detection(nil), r.Detections...)
	return &out
}

// Find ищет находку по метке.
func (r *DetectionResult) Find(label string) (Detection, bool) {
	if r == nil {
		return Detection{}, false
	}
	for _, d := range r.Detections {
		if d.Label == label {
			return d, true
		}
	}
	return Detection{}, false
}

// HistoryEntry запись журнала: результат и превью на момент прогона.
type HistoryEntry struct {
	Result      DetectionResult
	Preview     string
	PreviewKind PreviewKind
}
