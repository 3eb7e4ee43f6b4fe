// Package telegram is the bot front end: text messages are code, replies are
// rendered images.
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"inkify/api/internal/analytics"
	"inkify/api/internal/apperr"
	"inkify/api/internal/pipeline"
	"inkify/api/internal/render"
	"inkify/api/internal/request"
	"inkify/api/internal/store"
	"inkify/api/internal/util"
)

const maxMessage = 3900

// Sender is the part of *tgbotapi.BotAPI the router uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Router struct {
	Bot     Sender
	Svc     *pipeline.Service
	Prefs   *store.PrefRepo // optional
	Tracker analytics.Tracker
	Log     *zap.Logger

	themes chatThemes
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(ctx, *upd.CallbackQuery)
		return
	}
	if upd.Message == nil || upd.Message.Chat == nil {
		return
	}
	if upd.Message.IsCommand() {
		r.HandleCommand(ctx, upd.Message)
		return
	}
	if strings.TrimSpace(upd.Message.Text) != "" {
		r.renderCode(ctx, upd.Message.Chat.ID, upd.Message.Text)
	}
}

func (r *Router) renderCode(ctx context.Context, chatID int64, text string) {
	code, lang := parseCodeMessage(text)
	q := request.Query{Code: code}
	if lang != "" {
		q.Language = &lang
	}
	th := r.themeFor(ctx, chatID)
	q.Theme = &th

	started := time.Now()
	res, err := r.Svc.Generate(ctx, q, render.FormatSVG)
	hit := analytics.Hit{
		Path:     "/telegram",
		Event:    "generation",
		Source:   "telegram",
		ChatID:   chatID,
		Format:   string(render.FormatSVG),
		Duration: time.Since(started),
	}
	if err != nil {
		hit.ErrorKind = string(apperr.KindOf(err))
		r.track(ctx, hit)
		r.SendError(chatID, err)
		return
	}
	hit.Syntax, hit.Tier, hit.Theme, hit.Bytes = res.Language, string(res.Tier), res.Theme, len(res.Data)
	r.track(ctx, hit)

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "code.svg", Bytes: res.Data})
	doc.Caption = fmt.Sprintf("%s (%s) · %s", res.Language, res.Tier, res.Theme)
	if _, err := r.Bot.Send(doc); err != nil {
		r.logger().Warn("send document", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		r.logger().Warn("send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// SendResult sends text, truncated to fit a message.
func (r *Router) SendResult(chatID int64, text string) {
	if len(text) > maxMessage {
		text = util.TruncateUTF8(text, maxMessage) + "…"
	}
	r.send(chatID, text)
}

func (r *Router) SendError(chatID int64, err error) {
	if apperr.IsClientError(apperr.KindOf(err)) {
		r.send(chatID, "⚠️ "+err.Error())
		return
	}
	r.logger().Error("bot request failed", zap.Int64("chat_id", chatID), zap.Error(err))
	r.send(chatID, "❌ Something went wrong: "+err.Error())
}

func (r *Router) track(ctx context.Context, h analytics.Hit) {
	if r.Tracker != nil {
		r.Tracker.Track(ctx, h)
	}
}

func (r *Router) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}
