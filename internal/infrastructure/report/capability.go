// Package report растеризует панель результатов в PNG-отчёт.
package report

import (
	"context"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"

	"spacesight-bot/internal/domain/port"
)

// LoadFunc загружает растеризатор.
type LoadFunc func(ctx context.Context) (port.ReportRasterizer, error)

// Capability лениво загружаемый растеризатор.
// Успешная загрузка запоминается; после ошибки следующий Load пробует снова.
type Capability struct {
	mu     sync.Mutex
	load   LoadFunc
	loaded port.ReportRasterizer
	loads  int
}

// NewCapability оборачивает функцию загрузки.
func NewCapability(load LoadFunc) *Capability {
	return &Capability{load: load}
}

// Loaded сообщает, загружен ли растеризатор.
func (c *Capability) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded != nil
}

// Loads сколько раз вызывалась функция загрузки.
func (c *Capability) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

// Load возвращает уже загруженный растеризатор или загружает его.
func (c *Capability) Load(ctx context.Context) (port.ReportRasterizer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded != nil {
		return c.loaded, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.loads++
	r, err := c.load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load report rasterizer")
	}
	if r == nil {
		return nil, errors.New("load report rasterizer: loader returned nil")
	}
	c.loaded = r
	return r, nil
}

// FontLoader загружает шрифт из fontPath, а при пустом пути берёт встроенный Go Regular.
func FontLoader(fontPath string, opts Options) LoadFunc {
	return func(ctx context.Context) (port.ReportRasterizer, error) {
		ttf := goregular.TTF
		if fontPath != "" {
			data, err := os.ReadFile(fontPath)
			if err != nil {
				return nil, errors.Wrapf(err, "read font %s", fontPath)
			}
			ttf = data
		}

		f, err := truetype.Parse(ttf)
		if err != nil {
			return nil, errors.Wrap(err, "parse font")
		}
		return NewRasterizer(f, opts), nil
	}
}

var _ port.RasterizerLoader = (*Capability)(nil)
