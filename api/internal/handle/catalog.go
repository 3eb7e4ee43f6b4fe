package handle

import (
	"net/http"

	"inkify/api/internal/analytics"
)

var help = map[string]any{
	"message": "Inkify turns source code into highlighted images.",
	"routes": map[string]any{
		"GET /":          "This help text. Always 200, usable as an up check.",
		"GET /healthz":   "Liveness probe.",
		"GET /themes":    "Available theme names.",
		"GET /languages": "Languages that can be highlighted.",
		"GET /detect":    "Ranked language guesses for ?code=..., capped by optional ?top=N.",
		"GET /generate": map[string]any{
			"description": "Render code to an image.",
			"parameters": map[string]string{
				"code":               "The code to render. Required.",
				"language":           "Language token. Optional, guessed when absent.",
				"theme":              "Theme name or style file. Optional, defaults to Dracula.",
				"font":               "Fonts as Name[=Size];... Optional.",
				"highlight_lines":    "Lines to highlight as N;A-B;... Optional.",
				"background":         "Background colour. Optional, defaults to transparent.",
				"background_image":   "URL of an image for the padding area. Optional.",
				"shadow_color":       "Shadow colour. Optional, defaults to transparent.",
				"tab_width":          "Tab width. Optional, defaults to 4.",
				"line_pad":           "Line padding. Optional, defaults to 2.",
				"line_offset":        "First line number. Optional, defaults to 1.",
				"window_title":       "Window title. Optional.",
				"no_line_number":     "Hide line numbers. Optional, defaults to false.",
				"no_round_corner":    "Square corners. Optional, defaults to false.",
				"no_window_controls": "Hide window controls. Optional, defaults to false.",
				"shadow_blur_radius": "Shadow blur radius. Optional, defaults to 0.",
				"shadow_offset_x":    "Shadow x offset. Optional, defaults to 0.",
				"shadow_offset_y":    "Shadow y offset. Optional, defaults to 0.",
				"pad_horiz":          "Horizontal padding. Optional, defaults to 80.",
				"pad_vert":           "Vertical padding. Optional, defaults to 100.",
				"format":             "svg or html. Optional, defaults to svg.",
			},
		},
	},
}

func (h *Handle) Help(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if !onlyGET(w, r) {
		return
	}
	h.tracker.Track(r.Context(), analytics.FromRequest(r))
	writeJSON(w, http.StatusOK, help)
}

func (h *Handle) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handle) Themes(w http.ResponseWriter, r *http.Request) {
	if !onlyGET(w, r) {
		return
	}
	h.tracker.Track(r.Context(), analytics.FromRequest(r))
	writeJSON(w, http.StatusOK, h.svc.Themes())
}

func (h *Handle) Languages(w http.ResponseWriter, r *http.Request) {
	if !onlyGET(w, r) {
		return
	}
	h.tracker.Track(r.Context(), analytics.FromRequest(r))
	writeJSON(w, http.StatusOK, h.svc.Languages())
}
