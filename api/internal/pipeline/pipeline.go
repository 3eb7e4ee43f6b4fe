// Package pipeline runs a render request end to end: resolve the query,
// detect the language, resolve the theme, render.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"inkify/api/internal/classifier"
	"inkify/api/internal/detect"
	"inkify/api/internal/render"
	"inkify/api/internal/request"
	"inkify/api/internal/score"
	"inkify/api/internal/syntax"
	"inkify/api/internal/theme"
)

type Service struct {
	syntaxes syntax.DB
	themes   theme.DB
	resolver *request.Resolver
	detector *detect.Detector
	renderer render.Engine
	log      *zap.Logger
}

type Deps struct {
	Syntax   syntax.DB
	Themes   theme.DB
	Model    classifier.Model
	Fetcher  request.Fetcher
	Renderer render.Engine
	Log      *zap.Logger
}

// New fills in chroma-backed databases and renderer for nil fields.
func New(d Deps) *Service {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Syntax == nil {
		d.Syntax = syntax.NewChroma()
	}
	if d.Themes == nil {
		d.Themes = theme.NewChroma()
	}
	if d.Renderer == nil {
		d.Renderer = render.NewChroma()
	}
	return &Service{
		syntaxes: d.Syntax,
		themes:   d.Themes,
		resolver: request.NewResolver(d.Fetcher, d.Log),
		detector: detect.New(d.Syntax, d.Model, d.Log),
		renderer: d.Renderer,
		log:      d.Log,
	}
}

type Result struct {
	render.Output
	Language string
	Tier     detect.Tier
	Theme    string
}

func (s *Service) Generate(ctx context.Context, q request.Query, format render.Format) (Result, error) {
	start := time.Now()
	conf, err := s.resolver.Resolve(ctx, q)
	if err != nil {
		return Result{}, err
	}
	res, err := s.detector.Resolve(ctx, conf)
	if err != nil {
		return Result{}, err
	}
	th, err := theme.Resolve(s.themes, conf.Theme)
	if err != nil {
		return Result{}, err
	}
	out, err := s.renderer.Render(render.Input{
		Config: conf,
		Syntax: res.Syntax,
		Theme:  th,
		Format: format,
	})
	if err != nil {
		return Result{}, err
	}

	s.log.Info("generated",
		zap.String("language", res.Syntax.Name()),
		zap.String("tier", string(res.Tier)),
		zap.String("theme", th.Name()),
		zap.String("format", string(format)),
		zap.Int("bytes", len(out.Data)),
		zap.Duration("took", time.Since(start)),
	)
	return Result{
		Output:   out,
		Language: res.Syntax.Name(),
		Tier:     res.Tier,
		Theme:    th.Name(),
	}, nil
}

// Detect returns the full normalised classifier ranking for code.
func (s *Service) Detect(ctx context.Context, code string) ([]score.Result, error) {
	return s.detector.Report(ctx, code)
}

func (s *Service) Languages() []string { return s.syntaxes.ListAll() }

func (s *Service) Themes() []string { return s.themes.Names() }
