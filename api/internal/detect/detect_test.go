package detect

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkify/api/internal/apperr"
	"inkify/api/internal/classifier"
	"inkify/api/internal/request"
	"inkify/api/internal/syntax"
)

type stubModel struct {
	loaded bool
	scores map[string]float64
	err    error
	calls  int
}

func (s *stubModel) Loaded() bool { return s.loaded }

func (s *stubModel) Infer(context.Context, string) (map[string]float64, error) {
	s.calls++
	return s.scores, s.err
}

func conf(code string, lang ...string) request.RenderConfig {
	c := request.Default()
	c.Code = code
	if len(lang) > 0 {
		c.Language = &lang[0]
	}
	return c
}

func TestExplicitWins(t *testing.T) {
	m := &stubModel{loaded: true, scores: map[string]float64{"Python": -1}}
	d := New(syntax.NewChroma(), m, nil)

	res, err := d.Resolve(context.Background(), conf("#!/usr/bin/env python\nprint(1)", "rust"))
	require.NoError(t, err)
	assert.Equal(t, TierExplicit, res.Tier)
	assert.Equal(t, "Rust", res.Syntax.Name())
	assert.Zero(t, m.calls)
}

func TestExplicitUnknownIsTerminal(t *testing.T) {
	m := &stubModel{loaded: true, scores: map[string]float64{"Python": -1}}
	d := New(syntax.NewChroma(), m, nil)

	_, err := d.Resolve(context.Background(), conf("#!/usr/bin/env python\nprint(1)", "klingon"))
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidLanguage, apperr.KindOf(err))
	assert.Zero(t, m.calls)
}

func TestFirstLineSkipsClassifier(t *testing.T) {
	m := &stubModel{loaded: true, scores: map[string]float64{"Go": -1}}
	d := New(syntax.NewChroma(), m, nil)

	res, err := d.Resolve(context.Background(), conf("#!/usr/bin/env python\nprint(1)"))
	require.NoError(t, err)
	assert.Equal(t, TierFirstLine, res.Tier)
	assert.Equal(t, "Python", res.Syntax.Name())
	assert.Zero(t, m.calls)
}

func TestClassifierTier(t *testing.T) {
	m := &stubModel{loaded: true, scores: map[string]float64{"Go": -3, "Rust": -1, "C": -7}}
	d := New(syntax.NewChroma(), m, nil)

	res, err := d.Resolve(context.Background(), conf("fn main() {}"))
	require.NoError(t, err)
	assert.Equal(t, TierClassifier, res.Tier)
	assert.Equal(t, "Rust", res.Syntax.Name())
	assert.Equal(t, 1, m.calls)
}

func TestClassifierLinguistLabel(t *testing.T) {
	m := &stubModel{loaded: true, scores: map[string]float64{"Shell": -1}}
	d := New(syntax.NewChroma(), m, nil)

	res, err := d.Resolve(context.Background(), conf("echo hi"))
	require.NoError(t, err)
	assert.Equal(t, TierClassifier, res.Tier)
	assert.Equal(t, "Bash", res.Syntax.Name())
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name  string
		model classifier.Model
	}{
		{"nil model", nil},
		{"not loaded", &stubModel{}},
		{"inference error", &stubModel{loaded: true, err: errors.New("boom")}},
		{"empty scores", &stubModel{loaded: true, scores: map[string]float64{}}},
		{"unknown label", &stubModel{loaded: true, scores: map[string]float64{"NotALanguage": 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(syntax.NewChroma(), tt.model, nil)
			res, err := d.Resolve(context.Background(), conf("some words"))
			require.NoError(t, err)
			assert.Equal(t, TierFallback, res.Tier)
			assert.Equal(t, syntax.DefaultToken, res.Syntax.Name())
		})
	}
}

func TestReport(t *testing.T) {
	m := &stubModel{loaded: true, scores: map[string]float64{"Go": -2, "Rust": -4, "C": -3}}
	d := New(syntax.NewChroma(), m, nil)

	got, err := d.Report(context.Background(), "package main")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Go", got[0].Label)
	assert.Equal(t, 100.0, got[0].Score)
	assert.Equal(t, 50.0, got[1].Score)
	assert.Equal(t, "Rust", got[2].Label)
	assert.Equal(t, 0.0, got[2].Score)
}

func TestReportErrors(t *testing.T) {
	d := New(syntax.NewChroma(), nil, nil)
	_, err := d.Report(context.Background(), "x")
	assert.Equal(t, apperr.ClassifierUnavailable, apperr.KindOf(err))

	_, err = d.Report(context.Background(), "")
	assert.Equal(t, apperr.MissingCode, apperr.KindOf(err))

	boom := errors.New("boom")
	d = New(syntax.NewChroma(), &stubModel{loaded: true, err: boom}, nil)
	_, err = d.Report(context.Background(), "x")
	assert.Equal(t, apperr.ClassifierInferenceFailure, apperr.KindOf(err))
	assert.ErrorIs(t, err, boom)
}
