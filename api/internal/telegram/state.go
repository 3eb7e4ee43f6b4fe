package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"inkify/api/internal/request"
	"inkify/api/internal/store"
)

// chatThemes caches each chat's theme: chatID -> string.
type chatThemes struct{ m sync.Map }

func (c *chatThemes) load(chatID int64) (string, bool) {
	v, ok := c.m.Load(chatID)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

func (c *chatThemes) store(chatID int64, name string) { c.m.Store(chatID, name) }

func (r *Router) themeFor(ctx context.Context, chatID int64) string {
	if name, ok := r.themes.load(chatID); ok {
		return name
	}
	if r.Prefs != nil {
		name, err := r.Prefs.Theme(ctx, chatID)
		switch {
		case err == nil:
			r.themes.store(chatID, name)
			return name
		case !errors.Is(err, store.ErrNotFound):
			r.logger().Warn("load chat theme", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
	return request.DefaultTheme
}

func (r *Router) applyTheme(ctx context.Context, chatID int64, name string) {
	canonical, ok := lookupTheme(r.Svc.Themes(), name)
	if !ok {
		r.send(chatID, "Unknown theme `"+name+"`. See /theme for a few options.")
		return
	}
	r.themes.store(chatID, canonical)
	if r.Prefs != nil {
		if err := r.Prefs.SetTheme(ctx, chatID, canonical); err != nil {
			r.logger().Warn("save chat theme", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
	r.send(chatID, "✅ Theme: "+canonical)
}

// lookupTheme matches name case-insensitively against the known themes.
func lookupTheme(names []string, name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}
