package telegram

import (
	"fmt"
	"html"
	"strings"

	"spacesight-bot/internal/domain/entity"
)

const (
	msgHelp = `ℹ️ How to use SpaceSight:

1️⃣ Send a photo (or an image file)
2️⃣ Press "Run detection" or send /detect
3️⃣ Inspect the boxes, zoom, ask for an AI summary or download a report

📋 Commands:
/detect — run detection on the selected image
/clear — reset the workspace
/boxes — show or hide bounding boxes
/zoomin, /zoomout — change the preview scale
/summary — AI summary of the detections
/info <label> — object details
/close — close object details
/report — download a PNG report
/history — detection history
/metrics — model metrics dashboard
/home — home page
/team <name> — set the team name`

	msgSendPhoto         = "📸 Send an image to start detection."
	msgNotImage          = "⚠️ Please send an image file."
	msgSelectImageFirst  = "📸 Please select an image first."
	msgDetecting         = "⏳ Detecting..."
	msgDetectionRunning  = "⏳ Detection is already running."
	msgDetectionFailed   = "⚠️ Detection failed. Please try again."
	msgNoResult          = "ℹ️ Run a detection first."
	msgGeneratingSummary = "✨ Generating summary..."
	msgSummaryRunning    = "✨ Summary is already being generated."
	msgCleared           = "🧹 Workspace cleared. Send a new image to start again."
	msgInfoClosed        = "Object details closed."
	msgUnknownCommand    = "❓ Unknown command. Use /help."
	msgEmptyHistory      = "No detection history yet. Run a detection from the Home page!"
	msgInfoUsage         = "Usage: /info <label>"
	msgProcessingError   = "⚠️ Could not read the image. Please try another one."
)

type feature struct {
	Title       string
	Description string
}

var features = []feature{
	{"Autonomous Operation", "Automated detection of critical objects without human intervention."},
	{"High Precision", "Accurate and reliable identification of objects."},
	{"Real-time Inference", "Ultra-fast processing speed for time-sensitive tasks."},
	{"Seamless Integration", "Easy to integrate with existing space station systems."},
	{"Robust Performance", "Maintains high performance under challenging conditions."},
	{"Digital Twin Simulation", "Trained using high-fidelity synthetic data."},
}

// homeText главная страница: заголовок, команда и ключевые возможности.
func homeText(sess *entity.Session) string {
	var b strings.Builder
	b.WriteString("🚀 <b>SpaceSight</b>\n\n")
	b.WriteString("<b>Let your ideas take flight</b>\n")
	b.WriteString("Harnessing the power of AI to ensure operational safety in space stations.\n")
	b.WriteString("<i>\"In space we race with code and grace\"</i>\n\n")
	fmt.Fprintf(&b, "👥 <b>%s</b>\n\n", html.EscapeString(sess.TeamName))
	b.WriteString("<b>Key Features</b>\n")
	for _, f := range features {
		fmt.Fprintf(&b, "• <b>%s</b> — %s\n", f.Title, f.Description)
	}
	b.WriteString("\n")
	b.WriteString(msgSendPhoto)
	return b.String()
}

// panelCaption подпись к превью: находки, метрики и состояние управления.
func panelCaption(sess *entity.Session) string {
	var b strings.Builder
	if sess.Image != nil && sess.Image.Name != "" {
		fmt.Fprintf(&b, "🖼 %s\n", html.EscapeString(sess.Image.Name))
	}

	if sess.Result == nil {
		b.WriteString("Press \"Run detection\" to analyse this image.")
		return b.String()
	}

	b.WriteString("\n<b>Detected Objects</b>\n")
	for _, d := range sess.Result.Detections {
		fmt.Fprintf(&b, "• %s — %s\n", html.EscapeString(d.Label), d.Confidence)
	}

	m := sess.Result.Metrics
	b.WriteString("\n<b>Metrics</b>\n")
	fmt.Fprintf(&b, "mAP: %s · Precision: %s · Recall: %s · Speed: %s\n", m.MAP, m.Precision, m.Recall, m.InferenceSpeed)

	boxes := "on"
	if !sess.ShowOverlays {
		boxes = "off"
	}
	fmt.Fprintf(&b, "\n🔍 Zoom %s · Boxes %s", sess.Zoom, boxes)
	return b.String()
}

func summaryText(summary string) string {
	return "✨ <b>AI Summary</b>\n\n" + html.EscapeString(summary)
}

func objectInfoText(info entity.ObjectInfo) string {
	return fmt.Sprintf("🔎 <b>Object Details</b>\n\n<b>%s</b>\n%s", html.EscapeString(info.Label), html.EscapeString(info.Info))
}

// historyCaption подпись записи журнала.
func historyCaption(index int, entry entity.HistoryEntry) string {
	m := entry.Result.Metrics
	return fmt.Sprintf(
		"<b>Detection %d</b>\n%s\n\n<b>Metrics:</b>\nmAP: %s\nPrecision: %s\nRecall: %s",
		index,
		entry.Result.Timestamp.Local().Format("02.01.2006 15:04:05"),
		m.MAP, m.Precision, m.Recall,
	)
}

// metricsText страница метрик: матрица ошибок и оценки по классам.
func metricsText(m entity.ConfusionMatrix) string {
	short := map[string]string{
		entity.LabelFireExtinguisher: "FE",
		entity.LabelOxygenTank:       "OT",
		entity.LabelToolbox:          "TB",
	}
	abbr := func(label string) string {
		if s, ok := short[label]; ok {
			return s
		}
		return label
	}

	var b strings.Builder
	b.WriteString("📊 <b>Model Metrics Dashboard</b>\n\n<b>Confusion Matrix</b>\n<pre>")
	fmt.Fprintf(&b, "%-9s", "true\\pred")
	for _, label := range m.Labels {
		fmt.Fprintf(&b, "%6s", abbr(label))
	}
	b.WriteString("\n")
	for i, label := range m.Labels {
		fmt.Fprintf(&b, "%-9s", abbr(label))
		for j := range m.Labels {
			fmt.Fprintf(&b, "%6d", m.Counts[i][j])
		}
		b.WriteString("\n")
	}
	b.WriteString("</pre>\n")

	for _, label := range m.Labels {
		fmt.Fprintf(&b, "%s = %s\n", abbr(label), label)
	}

	b.WriteString("\n<b>Per-class scores</b>\n")
	for _, s := range m.Scores() {
		fmt.Fprintf(&b, "• %s: precision %.1f%%, recall %.1f%%\n", s.Label, s.Precision*100, s.Recall*100)
	}
	return b.String()
}
