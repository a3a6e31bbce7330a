package entity

import "strings"

// Page текущая страница рабочего места
type Page string

const (
	PageHome    Page = "home"    // Главная: загрузка и результаты
	PageHistory Page = "history" // Журнал прогонов
	PageMetrics Page = "metrics" // Панель метрик модели
)

// ParsePage разбирает название страницы.
func ParsePage(s string) (Page, bool) {
	switch p := Page(strings.ToLower(strings.TrimSpace(s))); p {
	case PageHome, PageHistory, PageMetrics:
		return p, true
	}
	return "", false
}

// WorkflowState этап работы с текущим изображением
type WorkflowState string

const (
	StateIdle           WorkflowState = "idle"            // Ничего не выбрано
	StateImageSelected  WorkflowState = "image_selected"  // Изображение выбрано
	StateDetecting      WorkflowState = "detecting"       // Идёт детекция
	StateResultReady    WorkflowState = "result_ready"    // Есть результат
	StateSummaryPending WorkflowState = "summary_pending" // Ждём сводку
	StateSummaryReady   WorkflowState = "summary_ready"   // Сводка получена
)

// DefaultTeamName имя команды по умолчанию
const DefaultTeamName = "SpaceSight Team"

// Session состояние рабочего места одного чата
type Session struct {
	ChatID   int64 // Telegram Chat ID
	Page     Page
	TeamName string

	Image       *ImageRef // выбранное изображение
	Preview     string    // ссылка на превью выбранного изображения
	PreviewKind PreviewKind
	Result      *DetectionResult // результат текущего прогона
	Summary     string
	ObjectInfo  *ObjectInfo // открытая панель объекта

	Zoom         Zoom
	ShowOverlays bool

	Detecting   bool // идёт детекция
	Summarizing bool // идёт генерация сводки

	// Generation растёт при каждой смене изображения и очистке.
	// Прогон, начатый в другом поколении, отбрасывается.
	Generation uint64

	History []HistoryEntry // новые записи в начале
}

// NewSession создаёт сессию с начальным состоянием
func NewSession(chatID int64) *Session {
	return &Session{
		ChatID:       chatID,
		Page:         PageHome,
		TeamName:     DefaultTeamName,
		Zoom:         ZoomDefault,
		ShowOverlays: true,
	}
}

// Workflow вычисляет этап по полям сессии
func (s *Session) Workflow() WorkflowState {
	switch {
	case s.Detecting:
		return StateDetecting
	case s.Summarizing:
		return StateSummaryPending
	case s.Result != nil && s.Summary != "":
		return StateSummaryReady
	case s.Result != nil:
		return StateResultReady
	case s.Image != nil:
		return StateImageSelected
	default:
		return StateIdle
	}
}

// SelectImage запоминает новое изображение и сбрасывает результат, сводку и масштаб.
// Незавершённые прогоны для прежнего изображения бросаются.
func (s *Session) SelectImage(img ImageRef) {
	s.Image = &img
	s.Preview = img.PreviewRef()
	s.PreviewKind = img.Kind
	s.Result = nil
	s.Summary = ""
	s.Zoom = ZoomDefault
	s.Detecting = false
	s.Summarizing = false
	s.Generation++
}

// Clear возвращает рабочее место в исходное состояние. Журнал не трогается.
func (s *Session) Clear() {
	s.Image = nil
	s.Preview = ""
	s.PreviewKind = ""
	s.Result = nil
	s.Summary = ""
	s.Zoom = ZoomDefault
	s.ObjectInfo = nil
	s.Detecting = false
	s.Summarizing = false
	s.Generation++
}

// ToggleOverlays переключает видимость рамок
func (s *Session) ToggleOverlays() {
	s.ShowOverlays = !s.ShowOverlays
}

// ZoomIn увеличивает масштаб
func (s *Session) ZoomIn() {
	s.Zoom = s.Zoom.In()
}

// ZoomOut уменьшает масштаб
func (s *Session) ZoomOut() {
	s.Zoom = s.Zoom.Out()
}

// OpenObjectInfo открывает панель объекта вместо предыдущей
func (s *Session) OpenObjectInfo(label string) ObjectInfo {
	info := LookupObjectInfo(label)
	s.ObjectInfo = &info
	return info
}

// CloseObjectInfo закрывает панель объекта
func (s *Session) CloseObjectInfo() {
	s.ObjectInfo = nil
}

// Record делает результат текущим и добавляет его в начало журнала
func (s *Session) Record(result *DetectionResult) {
	s.Result = result
	entry := HistoryEntry{Result: *result.Clone(), Preview: s.Preview, PreviewKind: s.PreviewKind}
	s.History = append([]HistoryEntry{entry}, s.History...)
	s.Zoom = ZoomDefault
}

// Clone возвращает снимок сессии для чтения вне блокировки
func (s *Session) Clone() *Session {
	out := *s
	if s.Image != nil {
		img := *s.Image
		out.Image = &img
	}
	if s.ObjectInfo != nil {
		info := *s.ObjectInfo
		out.ObjectInfo = &info
	}
	out.History = append([]HistoryEntry(nil), s.History...)
	return &out
}
