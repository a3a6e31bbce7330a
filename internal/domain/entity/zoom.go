package entity

import "fmt"

// Zoom масштаб превью в десятых долях: 10 == 1.0x.
// Целое значение не накапливает ошибку при шаге 0.1.
type Zoom int

const (
	ZoomMin     Zoom = 5  // 0.5x
	ZoomMax     Zoom = 20 // 2.0x
	ZoomDefault Zoom = 10 // 1.0x
	zoomStep    Zoom = 1
)

// In увеличивает масштаб на шаг, не выходя за ZoomMax.
func (z Zoom) In() Zoom {
	return (z + zoomStep).Clamp()
}

// Out уменьшает масштаб на шаг, не выходя за ZoomMin.
func (z Zoom) Out() Zoom {
	return (z - zoomStep).Clamp()
}

// Clamp приводит масштаб к отрезку [ZoomMin, ZoomMax].
func (z Zoom) Clamp() Zoom {
	if z < ZoomMin {
		return ZoomMin
	}
	if z > ZoomMax {
		return ZoomMax
	}
	return z
}

// Factor множитель масштаба.
func (z Zoom) Factor() float64 {
	return float64(z.Clamp()) / 10
}

func (z Zoom) String() string {
	return fmt.Sprintf("%.1fx", z.Factor())
}
