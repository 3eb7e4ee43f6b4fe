package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const themeCallbackPrefix = "theme:"

var quickThemes = []string{"dracula", "monokai", "github", "nord", "solarized-dark", "catppuccin-mocha"}

// Buttons for the common themes, two per row.
func makeThemeKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(quickThemes); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(quickThemes[i], themeCallbackPrefix+quickThemes[i]),
		}
		if i+1 < len(quickThemes) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(quickThemes[i+1], themeCallbackPrefix+quickThemes[i+1]))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// parseCodeMessage extracts the code from a message. A fenced block wins
// over the raw text and its info string becomes the language.
func parseCodeMessage(text string) (code, lang string) {
	start := strings.Index(text, "```")
	if start < 0 {
		return strings.Trim(text, "\n"), ""
	}
	rest := text[start+3:]
	end := strings.Index(rest, "```")
	if end < 0 {
		end = len(rest)
	}
	block := rest[:end]
	info, body, found := strings.Cut(block, "\n")
	if !found {
		return strings.TrimSpace(block), ""
	}
	return strings.Trim(body, "\n"), strings.TrimSpace(info)
}
