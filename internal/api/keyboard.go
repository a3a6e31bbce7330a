package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"spacesight-bot/internal/domain/entity"
)

// Действия кнопок и команд
const (
	actionDetect  = "detect"
	actionClear   = "clear"
	actionBoxes   = "boxes"
	actionZoomIn  = "zoom_in"
	actionZoomOut = "zoom_out"
	actionSummary = "summary"
	actionReport  = "report"
	actionInfo    = "info"
	actionClose   = "close"
	actionPage    = "page"
)

// callbackData собирает данные кнопки вида "info:Toolbox".
func callbackData(action, arg string) string {
	if arg == "" {
		return action
	}
	return action + ":" + arg
}

// parseCallback обратная операция к callbackData.
func parseCallback(data string) (action, arg string) {
	action, arg, _ = strings.Cut(data, ":")
	return action, arg
}

// panelKeyboard кнопки под превью, набор зависит от этапа работы.
func panelKeyboard(sess *entity.Session) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 Run detection", actionDetect),
			tgbotapi.NewInlineKeyboardButtonData("🧹 Clear", actionClear),
		),
	}

	if sess.Result != nil {
		boxes := "🔲 Hide boxes"
		if !sess.ShowOverlays {
			boxes = "🔳 Show boxes"
		}
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(boxes, actionBoxes),
				tgbotapi.NewInlineKeyboardButtonData("➖", actionZoomOut),
				tgbotapi.NewInlineKeyboardButtonData("➕", actionZoomIn),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✨ AI Summary", actionSummary),
				tgbotapi.NewInlineKeyboardButtonData("📄 Download report", actionReport),
			),
		)

		var info []tgbotapi.InlineKeyboardButton
		for _, d := range sess.Result.Detections {
			info = append(info, tgbotapi.NewInlineKeyboardButtonData("ℹ️ "+d.Label, callbackData(actionInfo, d.Label)))
		}
		if len(info) > 0 {
			rows = append(rows, info)
		}
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// navKeyboard переход между страницами.
func navKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Home", callbackData(actionPage, string(entity.PageHome))),
			tgbotapi.NewInlineKeyboardButtonData("📜 History", callbackData(actionPage, string(entity.PageHistory))),
			tgbotapi.NewInlineKeyboardButtonData("📊 Metrics", callbackData(actionPage, string(entity.PageMetrics))),
		),
	)
}

func closeInfoKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖️ Close", actionClose),
		),
	)
}
