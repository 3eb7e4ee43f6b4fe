package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"inkify/api/internal/score"
)

const detectTop = 5

func (r *Router) HandleCommand(ctx context.Context, m *tgbotapi.Message) {
	cid := m.Chat.ID
	args := strings.TrimSpace(m.CommandArguments())
	switch m.Command() {
	case "start", "help":
		r.send(cid, "Send me code and I will reply with a highlighted image.\n"+
			"Wrap it in ```lang fences to pick the language.\n"+
			"Commands: /theme [name], /detect <code>, /languages")
	case "theme":
		r.onTheme(ctx, cid, args)
	case "detect":
		r.onDetect(ctx, cid, args)
	case "languages":
		r.SendResult(cid, strings.Join(r.Svc.Languages(), ", "))
	default:
		r.send(cid, "Unknown command. Try /start")
	}
}

func (r *Router) onTheme(ctx context.Context, chatID int64, name string) {
	if name == "" {
		msg := tgbotapi.NewMessage(chatID, "Current theme: "+r.themeFor(ctx, chatID)+"\nPick one or send /theme <name>.")
		msg.ReplyMarkup = makeThemeKeyboard()
		r.sendMsg(msg)
		return
	}
	r.applyTheme(ctx, chatID, name)
}

func (r *Router) onDetect(ctx context.Context, chatID int64, text string) {
	code, _ := parseCodeMessage(text)
	if code == "" {
		r.send(chatID, "Usage: /detect <code>")
		return
	}
	ranked, err := r.Svc.Detect(ctx, code)
	if err != nil {
		r.SendError(chatID, err)
		return
	}
	r.send(chatID, formatRanking(score.Top(ranked, detectTop)))
}

func formatRanking(rs []score.Result) string {
	if len(rs) == 0 {
		return "No guesses."
	}
	var b strings.Builder
	for i, res := range rs {
		fmt.Fprintf(&b, "%d. %s: %.1f\n", i+1, res.Label, res.Score)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Router) sendMsg(msg tgbotapi.MessageConfig) {
	_, _ = r.Bot.Send(msg)
}
