// Package analytics records page views and events. Tracking is best effort:
// failures are logged and never reach the caller.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"inkify/api/internal/store"
)

// Hit is a page view when Event is empty, a named event otherwise.
type Hit struct {
	Path     string
	Event    string
	Hostname string
	Language string
	Referrer string
	Screen   string
	UA       string
	Data     map[string]any

	// Filled for render events; used by the store tracker.
	Source    string
	ChatID    int64
	Syntax    string
	Tier      string
	Theme     string
	Format    string
	Bytes     int
	Duration  time.Duration
	ErrorKind string
}

type Tracker interface {
	Track(ctx context.Context, h Hit)
}

type Nop struct{}

func (Nop) Track(context.Context, Hit) {}

// Multi fans a hit out to every tracker in order.
type Multi []Tracker

func (m Multi) Track(ctx context.Context, h Hit) {
	for _, t := range m {
		t.Track(ctx, h)
	}
}

// FromRequest copies the headers the Umami payload carries.
func FromRequest(r *http.Request) Hit {
	return Hit{
		Path:     r.URL.Path,
		Hostname: r.Host,
		Language: r.Header.Get("Accept-Language"),
		Referrer: r.Header.Get("Referer"),
		Screen:   r.Header.Get("Screen"),
		UA:       r.UserAgent(),
	}
}

const defaultUA = "Mozilla/5.0 (compatible; inkify)"

// Umami posts hits to <base>/api/send.
type Umami struct {
	BaseURL   string
	WebsiteID string
	httpc     *http.Client
	log       *zap.Logger
}

func NewUmami(baseURL, websiteID string, log *zap.Logger) *Umami {
	if log == nil {
		log = zap.NewNop()
	}
	return &Umami{
		BaseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		WebsiteID: strings.TrimSpace(websiteID),
		httpc:     &http.Client{Timeout: 5 * time.Second},
		log:       log,
	}
}

type umamiPayload struct {
	Website  string         `json:"website"`
	Hostname string         `json:"hostname,omitempty"`
	Language string         `json:"language,omitempty"`
	Referrer string         `json:"referrer,omitempty"`
	Screen   string         `json:"screen,omitempty"`
	URL      string         `json:"url"`
	Name     string         `json:"name,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

func (u *Umami) Track(ctx context.Context, h Hit) {
	if err := u.send(ctx, h); err != nil {
		u.log.Warn("umami track failed", zap.String("path", h.Path), zap.Error(err))
	}
}

func (u *Umami) send(ctx context.Context, h Hit) error {
	body := map[string]any{
		"type": "event",
		"payload": umamiPayload{
			Website:  u.WebsiteID,
			Hostname: h.Hostname,
			Language: h.Language,
			Referrer: h.Referrer,
			Screen:   h.Screen,
			URL:      h.Path,
			Name:     h.Event,
			Data:     h.Data,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.BaseURL+"/api/send", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	ua := h.UA
	if ua == "" {
		ua = defaultUA
	}
	req.Header.Set("User-Agent", ua)

	resp, err := u.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("umami %d: %s", resp.StatusCode, string(x))
	}
	return nil
}

// Store writes named events to the event table; page views are skipped.
type Store struct {
	Repo *store.EventRepo
	Log  *zap.Logger
}

func (s Store) Track(ctx context.Context, h Hit) {
	if h.Event == "" {
		return
	}
	src := h.Source
	if src == "" {
		src = "http"
	}
	err := s.Repo.Insert(ctx, store.Event{
		Source:     src,
		Kind:       h.Event,
		ChatID:     h.ChatID,
		Language:   h.Syntax,
		Tier:       h.Tier,
		Theme:      h.Theme,
		Format:     h.Format,
		Bytes:      h.Bytes,
		DurationMS: h.Duration.Milliseconds(),
		ErrorKind:  h.ErrorKind,
	})
	if err != nil && s.Log != nil {
		s.Log.Warn("event insert failed", zap.String("event", h.Event), zap.Error(err))
	}
}
