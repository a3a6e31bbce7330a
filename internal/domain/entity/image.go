package entity

import "strings"

// PreviewKind как изображение пришло в чат. Telegram не даёт отправить
// file_id документа методом sendPhoto, поэтому тип хранится рядом со ссылкой.
type PreviewKind string

const (
	PreviewPhoto    PreviewKind = "photo"
	PreviewDocument PreviewKind = "document"
)

// ImageRef выбранное пользователем изображение.
type ImageRef struct {
	FileID   string // идентификатор файла в Telegram, он же ссылка на превью
	Kind     PreviewKind
	Name     string
	MIMEType string
	Data     []byte
}

// IsZero сообщает, что изображения нет.
func (r ImageRef) IsZero() bool {
	return r.FileID == "" && len(r.Data) == 0
}

// PreviewRef ссылка, по которой превью можно показать повторно.
func (r ImageRef) PreviewRef() string {
	if r.FileID != "" {
		return r.FileID
	}
	return r.Name
}

// IsImageMIME пропускает любой image/* тип, как фильтр выбора файла.
func IsImageMIME(mime string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mime)), "image/")
}

// RenderOptions параметры отрисовки панели результатов.
type RenderOptions struct {
	Zoom         float64
	ShowOverlays bool
}

// ReportPanel содержимое области результатов для отчёта.
type ReportPanel struct {
	TeamName string
	Image    []byte // уже отрисованное превью с рамками
	Result   *DetectionResult
	Summary  string
}
