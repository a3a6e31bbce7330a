package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "spacesight-bot/internal/application"
	"spacesight-bot/internal/container"
	"spacesight-bot/internal/domain/entity"
)

const (
	// historyLimit сколько последних прогонов показывает /history.
	historyLimit = 10
	// maxPhotoBytes предел sendPhoto; превью больше уходит документом.
	maxPhotoBytes = 10 << 20
)

// sender часть BotAPI, через которую бот отвечает.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// downloadFunc скачивает файл Telegram по идентификатору.
type downloadFunc func(ctx context.Context, fileID string) ([]byte, error)

// Bot представляет Telegram-бота рабочего места детекции
type Bot struct {
	tg       *tgbotapi.BotAPI
	api      sender
	download downloadFunc
	services *container.Container
	log      *zap.SugaredLogger
	now      func() time.Time

	wg sync.WaitGroup
}

// NewBot создаёт нового бота
func NewBot(token string, services *container.Container, log *zap.SugaredLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Infow("Authorized on account", "username", api.Self.UserName)

	b := newBot(api, services, log)
	b.tg = api
	b.download = b.downloadFile
	return b, nil
}

func newBot(api sender, services *container.Container, log *zap.SugaredLogger) *Bot {
	return &Bot{
		api:      api,
		services: services,
		log:      log,
		now:      time.Now,
	}
}

// Run запускает основной цикл обработки сообщений до отмены ctx.
func (b *Bot) Run(ctx context.Context) error {
	if b.tg == nil {
		return errors.New("telegram client is not configured")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tg.GetUpdatesChan(u)
	defer b.Wait()

	for {
		select {
		case <-ctx.Done():
			b.tg.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// Wait ждёт фоновые детекции и сводки.
func (b *Bot) Wait() {
	b.wg.Wait()
}

// HandleUpdate обрабатывает одно обновление
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, msg.Command(), strings.TrimSpace(msg.CommandArguments()))
		return
	}

	// Фото: берём максимальное разрешение
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		b.handleImage(ctx, chatID, entity.ImageRef{
			FileID:   photo.FileID,
			Kind:     entity.PreviewPhoto,
			Name:     "photo.jpg",
			MIMEType: "image/jpeg",
		})
		return
	}

	// Файл: пропускаем только изображения
	if msg.Document != nil {
		if !entity.IsImageMIME(msg.Document.MimeType) {
			b.sendMessage(chatID, msgNotImage)
			return
		}
		b.handleImage(ctx, chatID, entity.ImageRef{
			FileID:   msg.Document.FileID,
			Kind:     entity.PreviewDocument,
			Name:     msg.Document.FileName,
			MIMEType: msg.Document.MimeType,
		})
		return
	}

	b.sendMessage(chatID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, chatID int64, command, args string) {
	switch command {
	case "start", "home":
		b.showPage(ctx, chatID, entity.PageHome)
	case "history":
		b.showPage(ctx, chatID, entity.PageHistory)
	case "metrics":
		b.showPage(ctx, chatID, entity.PageMetrics)
	case "help":
		b.sendMessage(chatID, msgHelp)
	case "team":
		b.setTeamName(ctx, chatID, args)
	case "zoomin":
		b.handleAction(ctx, chatID, actionZoomIn, "")
	case "zoomout":
		b.handleAction(ctx, chatID, actionZoomOut, "")
	case actionDetect, actionClear, actionBoxes, actionSummary, actionReport, actionClose:
		b.handleAction(ctx, chatID, command, "")
	case actionInfo:
		if args == "" {
			b.sendMessage(chatID, msgInfoUsage)
			return
		}
		b.handleAction(ctx, chatID, actionInfo, args)
	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleCallback обрабатывает нажатие inline-кнопки
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Warnw("Error answering callback", "error", err)
	}
	if cb.Message == nil {
		return
	}

	chatID := cb.Message.Chat.ID
	action, arg := parseCallback(cb.Data)
	if action == actionPage {
		page, ok := entity.ParsePage(arg)
		if !ok {
			return
		}
		b.showPage(ctx, chatID, page)
		return
	}
	b.handleAction(ctx, chatID, action, arg)
}

// handleAction общая часть команд и кнопок рабочего места
func (b *Bot) handleAction(ctx context.Context, chatID int64, action, arg string) {
	svc := b.services.SessionService

	switch action {
	case actionDetect:
		b.startDetection(ctx, chatID)

	case actionClear:
		if _, err := svc.Clear(ctx, chatID); err != nil {
			b.log.Errorw("Error clearing session", "chat_id", chatID, "error", err)
			return
		}
		b.sendMessage(chatID, msgCleared)

	case actionBoxes:
		b.updatePanel(ctx, chatID, svc.ToggleOverlays)
	case actionZoomIn:
		b.updatePanel(ctx, chatID, svc.ZoomIn)
	case actionZoomOut:
		b.updatePanel(ctx, chatID, svc.ZoomOut)

	case actionSummary:
		b.startSummary(ctx, chatID)

	case actionReport:
		b.sendReport(ctx, chatID)

	case actionInfo:
		info, err := svc.OpenObjectInfo(ctx, chatID, arg)
		if err != nil {
			b.log.Errorw("Error opening object info", "chat_id", chatID, "error", err)
			return
		}
		b.sendHTML(chatID, objectInfoText(info), closeInfoKeyboard())

	case actionClose:
		if _, err := svc.CloseObjectInfo(ctx, chatID); err != nil {
			b.log.Errorw("Error closing object info", "chat_id", chatID, "error", err)
			return
		}
		b.sendMessage(chatID, msgInfoClosed)

	default:
		b.log.Warnw("Unknown action", "chat_id", chatID, "action", action)
	}
}

// handleImage скачивает выбранное изображение и показывает превью
func (b *Bot) handleImage(ctx context.Context, chatID int64, img entity.ImageRef) {
	data, err := b.download(ctx, img.FileID)
	if err != nil {
		b.log.Errorw("Error downloading image", "chat_id", chatID, "error", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}
	img.Data = data

	if _, err := b.services.SessionService.SelectImage(ctx, chatID, img); err != nil {
		switch {
		case errors.Is(err, app.ErrNotImage):
			b.sendMessage(chatID, msgNotImage)
		case errors.Is(err, app.ErrNoImage):
			b.sendMessage(chatID, msgSelectImageFirst)
		default:
			b.log.Errorw("Error selecting image", "chat_id", chatID, "error", err)
		}
		return
	}

	b.sendPanel(ctx, chatID)
}

// startDetection проверяет условия и запускает детекцию в фоне
func (b *Bot) startDetection(ctx context.Context, chatID int64) {
	sess, err := b.services.SessionService.Get(ctx, chatID)
	if err != nil {
		b.log.Errorw("Error getting session", "chat_id", chatID, "error", err)
		return
	}
	if sess.Image == nil {
		b.log.Warnw("Please select an image first.", "chat_id", chatID)
		b.sendMessage(chatID, msgSelectImageFirst)
		return
	}
	if sess.Detecting {
		b.sendMessage(chatID, msgDetectionRunning)
		return
	}

	b.sendMessage(chatID, msgDetecting)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		_, err := b.services.DetectionService.Run(ctx, chatID)
		switch {
		case err == nil:
			b.sendPanel(ctx, chatID)
		case errors.Is(err, app.ErrDiscarded):
			// рабочее место уже другое, показывать нечего
		case errors.Is(err, app.ErrDetectionInProgress):
			b.sendMessage(chatID, msgDetectionRunning)
		case errors.Is(err, app.ErrNoImage):
			b.sendMessage(chatID, msgSelectImageFirst)
		default:
			b.sendMessage(chatID, msgDetectionFailed)
		}
	}()
}

// startSummary запрашивает сводку в фоне
func (b *Bot) startSummary(ctx context.Context, chatID int64) {
	sess, err := b.services.SessionService.Get(ctx, chatID)
	if err != nil {
		b.log.Errorw("Error getting session", "chat_id", chatID, "error", err)
		return
	}
	if sess.Result == nil {
		b.sendMessage(chatID, msgNoResult)
		return
	}
	if sess.Summarizing {
		b.sendMessage(chatID, msgSummaryRunning)
		return
	}

	b.sendMessage(chatID, msgGeneratingSummary)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		sess, err := b.services.SummaryService.Generate(ctx, chatID)
		switch {
		case err == nil:
			b.sendHTML(chatID, summaryText(sess.Summary), nil)
		case errors.Is(err, app.ErrDiscarded):
			// сводка относилась к прежнему результату
		case errors.Is(err, app.ErrSummaryInProgress):
			b.sendMessage(chatID, msgSummaryRunning)
		case errors.Is(err, app.ErrNoResult):
			b.sendMessage(chatID, msgNoResult)
		default:
			b.log.Errorw("Error generating summary", "chat_id", chatID, "error", err)
		}
	}()
}

// sendReport отправляет PNG-отчёт документом. Сбой отрисовки пользователю не показывается.
func (b *Bot) sendReport(ctx context.Context, chatID int64) {
	report, err := b.services.ReportService.Export(ctx, chatID, b.now())
	if err != nil {
		if errors.Is(err, app.ErrNoResult) {
			b.sendMessage(chatID, msgNoResult)
		}
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: report.FileName, Bytes: report.Data})
	if _, err := b.api.Send(doc); err != nil {
		b.log.Errorw("Error sending report", "chat_id", chatID, "error", err)
	}
}

// updatePanel меняет состояние просмотра и перерисовывает превью
func (b *Bot) updatePanel(ctx context.Context, chatID int64, fn func(context.Context, int64) (*entity.Session, error)) {
	if _, err := fn(ctx, chatID); err != nil {
		b.log.Errorw("Error updating session", "chat_id", chatID, "error", err)
		return
	}
	b.sendPanel(ctx, chatID)
}

// sendPanel отправляет превью с рамками, подписью и кнопками
func (b *Bot) sendPanel(ctx context.Context, chatID int64) {
	panel, err := b.services.PanelService.Render(ctx, chatID)
	if err != nil {
		if errors.Is(err, app.ErrNoImage) {
			b.sendMessage(chatID, msgSelectImageFirst)
			return
		}
		b.log.Errorw("Error rendering panel", "chat_id", chatID, "error", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	file := tgbotapi.FileBytes{Name: "preview.jpg", Bytes: panel.Image}
	caption := panelCaption(panel.Session)
	markup := panelKeyboard(panel.Session)

	var out tgbotapi.Chattable
	if len(panel.Image) > maxPhotoBytes {
		doc := tgbotapi.NewDocument(chatID, file)
		doc.Caption = caption
		doc.ParseMode = tgbotapi.ModeHTML
		doc.ReplyMarkup = markup
		out = doc
	} else {
		photo := tgbotapi.NewPhoto(chatID, file)
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeHTML
		photo.ReplyMarkup = markup
		out = photo
	}
	if _, err := b.api.Send(out); err != nil {
		b.log.Errorw("Error sending panel", "chat_id", chatID, "size", len(panel.Image), "error", err)
		b.sendMessage(chatID, msgProcessingError)
	}
}

// showPage переключает страницу и отправляет её содержимое
func (b *Bot) showPage(ctx context.Context, chatID int64, page entity.Page) {
	sess, err := b.services.SessionService.Navigate(ctx, chatID, page)
	if err != nil {
		b.log.Errorw("Error navigating", "chat_id", chatID, "page", page, "error", err)
		return
	}

	switch page {
	case entity.PageHome:
		b.sendHTML(chatID, homeText(sess), navKeyboard())
	case entity.PageMetrics:
		b.sendHTML(chatID, metricsText(entity.DefaultConfusionMatrix()), navKeyboard())
	case entity.PageHistory:
		b.sendHistory(chatID, sess.History)
	}
}

// sendHistory отправляет последние записи журнала, новые первыми
func (b *Bot) sendHistory(chatID int64, history []entity.HistoryEntry) {
	if len(history) == 0 {
		b.sendHTML(chatID, msgEmptyHistory, navKeyboard())
		return
	}

	shown := history
	if len(shown) > historyLimit {
		shown = shown[:historyLimit]
	}

	for i, entry := range shown {
		caption := historyCaption(len(history)-i, entry)
		if entry.Preview == "" {
			b.sendHTML(chatID, caption, nil)
			continue
		}

		if _, err := b.api.Send(historyPreview(chatID, entry, caption)); err != nil {
			b.log.Errorw("Error sending history entry", "chat_id", chatID, "error", err)
		}
	}

	if len(history) > historyLimit {
		b.sendMessage(chatID, fmt.Sprintf("… and %d earlier runs", len(history)-historyLimit))
	}
}

// historyPreview отправляет превью тем же методом, которым файл пришёл в чат
func historyPreview(chatID int64, entry entity.HistoryEntry, caption string) tgbotapi.Chattable {
	file := tgbotapi.FileID(entry.Preview)
	if entry.PreviewKind == entity.PreviewDocument {
		doc := tgbotapi.NewDocument(chatID, file)
		doc.Caption = caption
		doc.ParseMode = tgbotapi.ModeHTML
		return doc
	}

	photo := tgbotapi.NewPhoto(chatID, file)
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	return photo
}

// setTeamName меняет имя команды на главной странице и в отчётах
func (b *Bot) setTeamName(ctx context.Context, chatID int64, name string) {
	if name == "" {
		sess, err := b.services.SessionService.Get(ctx, chatID)
		if err != nil {
			b.log.Errorw("Error getting session", "chat_id", chatID, "error", err)
			return
		}
		b.sendMessage(chatID, fmt.Sprintf("👥 Team: %s\nUsage: /team <name>", sess.TeamName))
		return
	}

	sess, err := b.services.SessionService.SetTeamName(ctx, chatID, name)
	if err != nil {
		b.log.Errorw("Error setting team name", "chat_id", chatID, "error", err)
		return
	}
	b.sendMessage(chatID, "👥 Team name set to "+sess.TeamName)
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	fileURL, err := b.tg.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Errorw("Error sending message", "chat_id", chatID, "error", err)
	}
}

// sendHTML отправляет сообщение с HTML-разметкой и необязательной клавиатурой
func (b *Bot) sendHTML(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Errorw("Error sending message", "chat_id", chatID, "error", err)
	}
}
