package handle

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"inkify/api/internal/analytics"
	"inkify/api/internal/apperr"
	"inkify/api/internal/pipeline"
)

type Handle struct {
	svc     *pipeline.Service
	tracker analytics.Tracker
	log     *zap.Logger
}

func New(svc *pipeline.Service, tracker analytics.Tracker, log *zap.Logger) *Handle {
	if tracker == nil {
		tracker = analytics.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handle{
		svc:     svc,
		tracker: tracker,
		log:     log,
	}
}

// Routes registers every endpoint on a new mux wrapped in request logging.
func (h *Handle) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.Healthz)
	mux.HandleFunc("/themes", h.Themes)
	mux.HandleFunc("/languages", h.Languages)
	mux.HandleFunc("/generate", h.Generate)
	mux.HandleFunc("/detect", h.Detect)
	mux.HandleFunc("/", h.Help)
	return h.withRequestLog(mux)
}

// writeJSON encodes before committing the status, so an unencodable value
// becomes a 500 rather than a truncated 200.
func writeJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		code = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(map[string]string{"error": "encode response: " + err.Error(), "kind": string(apperr.EncodeFailure)})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(k apperr.Kind) int {
	switch {
	case apperr.IsClientError(k):
		return http.StatusBadRequest
	case k == apperr.ClassifierUnavailable:
		return http.StatusServiceUnavailable
	case k == apperr.ClassifierInferenceFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handle) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	msg := "internal error"
	var e *apperr.Error
	if errors.As(err, &e) {
		msg = e.Message
		// client errors carry their parse cause; server causes stay in the log
		if apperr.IsClientError(kind) && e.Cause != nil {
			msg = e.Error()
		}
	}
	if status >= 500 {
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.String("kind", string(kind)), zap.Error(err))
	} else {
		h.log.Info("request rejected", zap.String("path", r.URL.Path), zap.String("kind", string(kind)), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": msg, "kind": string(kind)})
}

func onlyGET(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "GET only"})
		return false
	}
	return true
}
