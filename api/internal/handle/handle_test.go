package handle

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkify/api/internal/analytics"
	"inkify/api/internal/apperr"
	"inkify/api/internal/classifier"
	"inkify/api/internal/pipeline"
	"inkify/api/internal/score"
)

type stubModel struct {
	scores map[string]float64
	err    error
}

func (s stubModel) Loaded() bool { return true }

func (s stubModel) Infer(context.Context, string) (map[string]float64, error) {
	return s.scores, s.err
}

type recorder struct{ hits []analytics.Hit }

func (r *recorder) Track(_ context.Context, h analytics.Hit) { r.hits = append(r.hits, h) }

func server(model classifier.Model, tr analytics.Tracker) http.Handler {
	return New(pipeline.New(pipeline.Deps{Model: model}), tr, nil).Routes()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func errBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHelpAndHealth(t *testing.T) {
	h := server(nil, nil)

	rec := get(t, h, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/generate")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = get(t, h, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogs(t *testing.T) {
	h := server(nil, nil)

	var themes []string
	rec := get(t, h, "/themes")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &themes))
	assert.Contains(t, themes, "dracula")

	var langs []string
	rec = get(t, h, "/languages")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &langs))
	assert.Contains(t, langs, "Go")
}

func TestGenerate(t *testing.T) {
	tr := &recorder{}
	h := server(nil, tr)

	rec := get(t, h, "/generate?language=go&code="+url.QueryEscape("package main"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Go", rec.Header().Get("X-Inkify-Language"))
	assert.Equal(t, "explicit", rec.Header().Get("X-Inkify-Detection"))
	assert.True(t, strings.Contains(rec.Body.String(), "<svg"))

	require.Len(t, tr.hits, 2)
	assert.Empty(t, tr.hits[0].Event)
	assert.Equal(t, "generation", tr.hits[1].Event)
	assert.Equal(t, "Go", tr.hits[1].Syntax)

	rec = get(t, h, "/generate?format=html&code=x")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestGenerateErrors(t *testing.T) {
	h := server(nil, nil)
	tests := []struct {
		target string
		status int
		kind   apperr.Kind
	}{
		{"/generate", http.StatusBadRequest, apperr.MissingCode},
		{"/generate?code=&theme=nope", http.StatusBadRequest, apperr.MissingCode},
		{"/generate?code=x&language=klingon", http.StatusBadRequest, apperr.InvalidLanguage},
		{"/generate?code=x&tab_width=wide", http.StatusBadRequest, apperr.InvalidParameter},
		{"/generate?code=x&format=png", http.StatusBadRequest, apperr.InvalidParameter},
		{"/generate?code=x&shadow_color=nope", http.StatusBadRequest, apperr.InvalidColor},
	}
	for _, tt := range tests {
		rec := get(t, h, tt.target)
		assert.Equal(t, tt.status, rec.Code, tt.target)
		assert.Equal(t, string(tt.kind), errBody(t, rec)["kind"], tt.target)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/generate?code=x", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDetect(t *testing.T) {
	h := server(stubModel{scores: map[string]float64{"Go": -1, "Rust": -3, "C": -2}}, nil)

	var got []score.Result
	rec := get(t, h, "/detect?code=x")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []score.Result{{Label: "Go", Score: 100}, {Label: "C", Score: 50}, {Label: "Rust", Score: 0}}, got)

	rec = get(t, h, "/detect?code=x&top=1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)

	rec = get(t, h, "/detect?code=x&top=-2")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetectErrors(t *testing.T) {
	rec := get(t, server(nil, nil), "/detect?code=x")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, string(apperr.ClassifierUnavailable), errBody(t, rec)["kind"])

	rec = get(t, server(stubModel{err: errors.New("boom")}, nil), "/detect?code=x")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = get(t, server(nil, nil), "/detect")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorBodyCarriesCause(t *testing.T) {
	rec := get(t, server(nil, nil), "/generate?code=x&shadow_color=%23zz")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := errBody(t, rec)
	assert.Equal(t, string(apperr.InvalidColor), body["kind"])
	assert.Contains(t, body["error"], "invalid color: `#zz`: ")
}

func TestWriteJSONUnencodable(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, []score.Result{{Label: "Go", Score: math.NaN()}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, string(apperr.EncodeFailure), errBody(t, rec)["kind"])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(apperr.InvalidTheme))
	assert.Equal(t, http.StatusInternalServerError, statusFor(apperr.RenderFailure))
	assert.Equal(t, http.StatusInternalServerError, statusFor(apperr.EncodeFailure))
	assert.Equal(t, http.StatusInternalServerError, statusFor(""))
}

func TestRequestDeadline(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/detect?timeoutSec=5", nil)
	assert.Equal(t, 5e9, float64(requestDeadline(r)))
	r.Header.Set("X-Request-Timeout", "2")
	assert.Equal(t, 2e9, float64(requestDeadline(r)))
	assert.Equal(t, defaultDeadline, requestDeadline(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestRequestIDPropagates(t *testing.T) {
	h := server(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
