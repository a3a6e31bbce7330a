package telegram

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"spacesight-bot/internal/container"
	"spacesight-bot/internal/domain/entity"
	"spacesight-bot/internal/domain/port"
	"spacesight-bot/internal/infrastructure/report"
	"spacesight-bot/internal/infrastructure/storage"
	"spacesight-bot/internal/infrastructure/vision"
	"spacesight-bot/internal/metrics"
)

const testChatID int64 = 42

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeSender) photos() []tgbotapi.PhotoConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.PhotoConfig
	for _, c := range f.sent {
		if p, ok := c.(tgbotapi.PhotoConfig); ok {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeSender) documents() []tgbotapi.DocumentConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.DocumentConfig
	for _, c := range f.sent {
		if d, ok := c.(tgbotapi.DocumentConfig); ok {
			out = append(out, d)
		}
	}
	return out
}

func (f *fakeSender) lastPhoto(t *testing.T) tgbotapi.PhotoConfig {
	t.Helper()
	photos := f.photos()
	require.NotEmpty(t, photos)
	return photos[len(photos)-1]
}

type stubSummarizer struct {
	text string
}

func (s stubSummarizer) Summarize(ctx context.Context, detections []entity.Detection) (string, error) {
	return s.text, nil
}

type testBot struct {
	bot       *Bot
	api       *fakeSender
	repo      *storage.MemorySessionRepository
	downloads int
}

// oversizedRenderer отдаёт превью больше предела sendPhoto.
type oversizedRenderer struct{}

func (oversizedRenderer) Render(entity.ImageRef, *entity.DetectionResult, entity.RenderOptions) ([]byte, error) {
	return make([]byte, maxPhotoBytes+1), nil
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()

	renderer, err := vision.NewOverlayRenderer()
	require.NoError(t, err)
	return newTestBotWithRenderer(t, renderer)
}

func newTestBotWithRenderer(t *testing.T, renderer port.OverlayRenderer) *testBot {
	t.Helper()

	repo := storage.NewMemorySessionRepository()
	log := zaptest.NewLogger(t).Sugar()
	services := container.New(container.Deps{
		Sessions:         repo,
		Detector:         vision.NewSimulator(0),
		Summarizer:       stubSummarizer{text: "All safety equipment is in place."},
		Renderer:         renderer,
		Rasterizer:       report.NewCapability(report.FontLoader("", report.DefaultOptions())),
		ReportDateLayout: "02.01.2006",
		Log:              log,
		Metrics:          metrics.New(),
	})

	api := &fakeSender{}
	tb := &testBot{api: api, repo: repo}
	tb.bot = newBot(api, services, log)
	tb.bot.now = func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }
	tb.bot.download = func(ctx context.Context, fileID string) ([]byte, error) {
		tb.downloads++
		return testPNG(t), nil
	}
	return tb
}

func (tb *testBot) handle(u tgbotapi.Update) {
	tb.bot.HandleUpdate(context.Background(), u)
	tb.bot.Wait()
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 80, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 80; x++ {
			img.Set(x, y, color.RGBA{R: 24, G: 24, B: 27, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func commandUpdate(text string) tgbotapi.Update {
	cmd, _, _ := strings.Cut(text, " ")
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: testChatID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func photoUpdate(fileID string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: testChatID},
		Photo: []tgbotapi.PhotoSize{
			{FileID: fileID + "-small", Width: 90, Height: 90},
			{FileID: fileID, Width: 800, Height: 600},
		},
	}}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: testChatID}},
	}}
}

func TestBot_PhotoShowsPanel(t *testing.T) {
	tb := newTestBot(t)

	tb.handle(photoUpdate("file-1"))

	photo := tb.api.lastPhoto(t)
	require.Contains(t, photo.Caption, "Run detection")
	keyboard, ok := photo.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, keyboard.InlineKeyboard, 1)

	sess, err := tb.repo.Get(context.Background(), testChatID)
	require.NoError(t, err)
	require.Equal(t, "file-1", sess.Image.FileID)
	require.Equal(t, entity.StateImageSelected, sess.Workflow())
}

func TestBot_DocumentMustBeImage(t *testing.T) {
	tb := newTestBot(t)

	tb.handle(tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: testChatID},
		Document: &tgbotapi.Document{FileID: "doc-1", FileName: "notes.pdf", MimeType: "application/pdf"},
	}})

	require.Equal(t, []string{msgNotImage}, tb.api.texts())
	require.Zero(t, tb.downloads)
}

func TestBot_ImageDocumentAccepted(t *testing.T) {
	tb := newTestBot(t)

	tb.handle(tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: testChatID},
		Document: &tgbotapi.Document{FileID: "doc-1", FileName: "deck.webp", MimeType: "image/webp"},
	}})

	require.Equal(t, 1, tb.downloads)
	require.Contains(t, tb.api.lastPhoto(t).Caption, "deck.webp")
}

func TestBot_DetectWithoutImage(t *testing.T) {
	tb := newTestBot(t)
	core, logs := observer.New(zapcore.WarnLevel)
	tb.bot.log = zap.New(core).Sugar()

	tb.handle(commandUpdate("/detect"))

	require.Equal(t, []string{msgSelectImageFirst}, tb.api.texts())
	require.Equal(t, 1, logs.FilterMessage("Please select an image first.").Len())
}

func TestBot_OversizedPanelSentAsDocument(t *testing.T) {
	tb := newTestBotWithRenderer(t, oversizedRenderer{})

	tb.handle(photoUpdate("file-1"))

	require.Empty(t, tb.api.photos())
	docs := tb.api.documents()
	require.Len(t, docs, 1)
	require.Contains(t, docs[0].Caption, "Run detection")
	_, ok := docs[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
}

func TestBot_DetectShowsResult(t *testing.T) {
	tb := newTestBot(t)

	tb.handle(photoUpdate("file-1"))
	tb.handle(callbackUpdate(actionDetect))

	require.Contains(t, tb.api.texts(), msgDetecting)
	caption := tb.api.lastPhoto(t).Caption
	require.Contains(t, caption, "Fire Extinguisher — 94%")
	require.Contains(t, caption, "mAP: 78.5%")
	require.Contains(t, caption, "Zoom 1.0x")

	sess, err := tb.repo.Get(context.Background(), testChatID)
	require.NoError(t, err)
	require.Len(t, sess.History, 1)
	require.Equal(t, "file-1", sess.History[0].Preview)
	require.False(t, sess.Detecting)
}

func TestBot_ZoomAndBoxes(t *testing.T) {
	tb := newTestBot(t)

	tb.handle(photoUpdate("file-1"))
	tb.handle(commandUpdate("/detect"))
	tb.handle(commandUpdate("/zoomin"))
	require.Contains(t, tb.api.lastPhoto(t).Caption, "Zoom 1.1x")

	tb.handle(callbackUpdate(actionBoxes))
	require.Contains(t, tb.api.lastPhoto(t).Caption, "Boxes off")
}

func TestBot_Summary(t *testing.T) {
	tb := newTestBot(t)

	tb.handle(commandUpdate("/summary"))
	require.Equal(t, []string{msgNoResult}, tb.api.texts())

	tb.handle(photoUpdate("file-1"))
	tb.handle(commandUpdate("/detect"))
	tb.handle(callbackUpdate(actionSummary))

	texts := tb.api.texts()
	require.Contains(t, texts, msgGeneratingSummary)
	require.Contains(t, texts[len(texts)-1], "All safety equipment is in place.")
}

func TestBot_Report(t *testing.T) {
	tb := newTestBot(t)

	tb.handle(photoUpdate("file-1"))
	tb.handle(commandUpdate("/detect"))
	tb.handle(callbackUpdate(actionReport))

	docs := tb.api.documents()
	require.Len(t, docs, 1)
	file, ok := docs[0].File.(tgbotapi.FileBytes)
	require.True(t, ok)
	require.Equal(t, "SpaceSight_Report_17.10.2026.png", file.Name)
	require.NotEmpty(t, file.Bytes)
	require.NotEmpty(t, tb.api.requests)
}

func TestBot_ObjectInfo(t *testing.T) {
	tb := newTestBot(t)

	tb.handle(callbackUpdate(callbackData(actionInfo, entity.LabelToolbox)))
	texts := tb.api.texts()
	require.Len(t, texts, 1)
	require.Contains(t, texts[0], "Contains essential tools")

	tb.handle(commandUpdate("/info Space Pen"))
	texts = tb.api.texts()
	require.Contains(t, texts[len(texts)-1], entity.NoObjectInfo)

	tb.handle(callbackUpdate(actionClose))
	sess, err := tb.repo.Get(context.Background(), testChatID)
	require.NoError(t, err)
	require.Nil(t, sess.ObjectInfo)
}

func TestBot_HistoryPage(t *testing.T) {
	tb := newTestBot(t)

	tb.handle(commandUpdate("/history"))
	require.Equal(t, []string{msgEmptyHistory}, tb.api.texts())

	tb.handle(photoUpdate("file-1"))
	tb.handle(commandUpdate("/detect"))
	tb.handle(callbackUpdate(callbackData(actionPage, string(entity.PageHistory))))

	photo := tb.api.lastPhoto(t)
	require.Equal(t, tgbotapi.FileID("file-1"), photo.File)
	require.Contains(t, photo.Caption, "Detection 1")
	require.Contains(t, photo.Caption, "Recall: 82.1%")
}

func TestBot_HistoryResendsDocumentAsDocument(t *testing.T) {
	tb := newTestBot(t)

	tb.handle(tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: testChatID},
		Document: &tgbotapi.Document{FileID: "doc-file-id", FileName: "deck.png", MimeType: "image/png"},
	}})
	tb.handle(commandUpdate("/detect"))
	photosBefore := len(tb.api.photos())

	tb.handle(commandUpdate("/history"))

	require.Len(t, tb.api.photos(), photosBefore)
	docs := tb.api.documents()
	require.Len(t, docs, 1)
	require.Equal(t, tgbotapi.FileID("doc-file-id"), docs[0].File)
	require.Contains(t, docs[0].Caption, "Detection 1")
}

func TestBot_ClearKeepsHistory(t *testing.T) {
	tb := newTestBot(t)

	tb.handle(photoUpdate("file-1"))
	tb.handle(commandUpdate("/detect"))
	tb.handle(commandUpdate("/clear"))

	sess, err := tb.repo.Get(context.Background(), testChatID)
	require.NoError(t, err)
	require.Equal(t, entity.StateIdle, sess.Workflow())
	require.Len(t, sess.History, 1)
}

func TestBot_PagesAndTeam(t *testing.T) {
	tb := newTestBot(t)

	tb.handle(commandUpdate("/team Orbit <Crew>"))
	tb.handle(commandUpdate("/start"))
	texts := tb.api.texts()
	require.Contains(t, texts[len(texts)-1], "Orbit &lt;Crew&gt;")
	require.Contains(t, texts[len(texts)-1], "Let your ideas take flight")

	tb.handle(commandUpdate("/metrics"))
	texts = tb.api.texts()
	require.Contains(t, texts[len(texts)-1], "<pre>")

	sess, err := tb.repo.Get(context.Background(), testChatID)
	require.NoError(t, err)
	require.Equal(t, entity.PageMetrics, sess.Page)
}

func TestBot_UnknownInput(t *testing.T) {
	tb := newTestBot(t)

	tb.handle(commandUpdate("/launch"))
	tb.handle(tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: testChatID}, Text: "hello"}})

	require.Equal(t, []string{msgUnknownCommand, msgSendPhoto}, tb.api.texts())
}

func TestParseCallback(t *testing.T) {
	action, arg := parseCallback(callbackData(actionInfo, entity.LabelOxygenTank))
	require.Equal(t, actionInfo, action)
	require.Equal(t, entity.LabelOxygenTank, arg)

	action, arg = parseCallback(actionDetect)
	require.Equal(t, actionDetect, action)
	require.Empty(t, arg)
}
