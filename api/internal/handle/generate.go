package handle

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"inkify/api/internal/analytics"
	"inkify/api/internal/apperr"
	"inkify/api/internal/render"
	"inkify/api/internal/request"
)

// Generate renders the query to an image document.
func (h *Handle) Generate(w http.ResponseWriter, r *http.Request) {
	if !onlyGET(w, r) {
		return
	}
	h.tracker.Track(r.Context(), analytics.FromRequest(r))

	values := r.URL.Query()
	q, err := request.FromValues(values)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	format, err := render.ParseFormat(values.Get("format"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestDeadline(r))
	defer cancel()

	started := time.Now()
	res, err := h.svc.Generate(ctx, q, format)
	hit := analytics.FromRequest(r)
	hit.Event = "generation"
	hit.Format = string(format)
	hit.Duration = time.Since(started)
	if err != nil {
		hit.ErrorKind = string(apperr.KindOf(err))
		h.tracker.Track(r.Context(), hit)
		h.writeErr(w, r, err)
		return
	}
	hit.Syntax = res.Language
	hit.Tier = string(res.Tier)
	hit.Theme = res.Theme
	hit.Bytes = len(res.Data)
	hit.Data = map[string]any{"language": res.Language, "tier": string(res.Tier), "theme": res.Theme, "format": string(format)}
	h.tracker.Track(r.Context(), hit)

	w.Header().Set("Content-Type", res.MediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("X-Inkify-Language", res.Language)
	w.Header().Set("X-Inkify-Detection", string(res.Tier))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		h.log.Warn("write response", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
	}
}
