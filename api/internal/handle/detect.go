package handle

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"inkify/api/internal/analytics"
	"inkify/api/internal/apperr"
	"inkify/api/internal/score"
)

const defaultDeadline = 30 * time.Second

// requestDeadline honours X-Request-Timeout (header) or timeoutSec (query),
// both in seconds.
func requestDeadline(r *http.Request) time.Duration {
	deadline := defaultDeadline
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	return deadline
}

// Detect returns the classifier's ranking for ?code=. ?top=N trims the
// list for display; the ranking itself is always complete.
func (h *Handle) Detect(w http.ResponseWriter, r *http.Request) {
	if !onlyGET(w, r) {
		return
	}
	q := r.URL.Query()
	code := q.Get("code")
	if code == "" {
		h.writeErr(w, r, apperr.New(apperr.MissingCode, "code parameter is required"))
		return
	}
	top := 0
	if raw := q.Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeErr(w, r, apperr.New(apperr.InvalidParameter, "invalid top `"+raw+"`"))
			return
		}
		top = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestDeadline(r))
	defer cancel()

	started := time.Now()
	ranked, err := h.svc.Detect(ctx, code)
	hit := analytics.FromRequest(r)
	hit.Event = "detection"
	hit.Duration = time.Since(started)
	if err != nil {
		hit.ErrorKind = string(apperr.KindOf(err))
		h.tracker.Track(r.Context(), hit)
		h.writeErr(w, r, err)
		return
	}
	if len(ranked) > 0 {
		hit.Syntax = ranked[0].Label
	}
	h.tracker.Track(r.Context(), hit)

	ranked = score.Top(ranked, top)
	if ranked == nil {
		ranked = []score.Result{}
	}
	writeJSON(w, http.StatusOK, ranked)
}
