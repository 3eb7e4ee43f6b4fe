// Package detect decides which syntax definition applies to a request by
// walking an ordered list of strategies: the explicit language, the first
// line of the code, and finally the statistical classifier.
package detect

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"inkify/api/internal/apperr"
	"inkify/api/internal/classifier"
	"inkify/api/internal/request"
	"inkify/api/internal/score"
	"inkify/api/internal/syntax"
)

// Tier names the strategy that produced a resolution.
type Tier string

const (
	TierExplicit   Tier = "explicit"
	TierFirstLine  Tier = "first_line"
	TierClassifier Tier = "classifier"
	TierFallback   Tier = "fallback"
)

type Resolution struct {
	Syntax syntax.Handle
	Tier   Tier
}

// Strategy is one detection tier. A miss is (zero, false, nil); a non-nil
// error stops detection.
type Strategy interface {
	Name() Tier
	Attempt(ctx context.Context, conf request.RenderConfig) (syntax.Handle, bool, error)
}

type Detector struct {
	db         syntax.DB
	model      classifier.Model
	strategies []Strategy
	log        *zap.Logger
}

// New wires the standard tiers. A nil model behaves as an unloaded one.
func New(db syntax.DB, model classifier.Model, log *zap.Logger) *Detector {
	if model == nil {
		model = classifier.Unavailable{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Detector{
		db:    db,
		model: model,
		strategies: []Strategy{
			Explicit{DB: db},
			FirstLine{DB: db},
			Classify{DB: db, Model: model, Log: log},
		},
		log: log,
	}
}

// Resolve returns the first strategy hit, or the default syntax with tier
// fallback. Only an explicit, unknown language makes it fail.
func (d *Detector) Resolve(ctx context.Context, conf request.RenderConfig) (Resolution, error) {
	for _, s := range d.strategies {
		h, ok, err := s.Attempt(ctx, conf)
		if err != nil {
			return Resolution{}, err
		}
		if ok {
			d.log.Debug("language resolved", zap.String("tier", string(s.Name())), zap.String("syntax", h.Name()))
			return Resolution{Syntax: h, Tier: s.Name()}, nil
		}
	}
	return Resolution{Syntax: d.db.Default(), Tier: TierFallback}, nil
}

// Report runs the classifier on code and returns the full normalised
// ranking.
func (d *Detector) Report(ctx context.Context, code string) ([]score.Result, error) {
	if code == "" {
		return nil, apperr.New(apperr.MissingCode, "code parameter is required")
	}
	if !d.model.Loaded() {
		return nil, apperr.New(apperr.ClassifierUnavailable, "language classifier is not available")
	}
	raw, err := d.model.Infer(ctx, code)
	if err != nil {
		if errors.Is(err, classifier.ErrNotLoaded) {
			return nil, apperr.Wrap(apperr.ClassifierUnavailable, err, "language classifier is not available")
		}
		return nil, apperr.Wrap(apperr.ClassifierInferenceFailure, err, "language classification failed")
	}
	return score.Normalize(raw), nil
}

type Explicit struct{ DB syntax.DB }

func (Explicit) Name() Tier { return TierExplicit }

func (e Explicit) Attempt(_ context.Context, conf request.RenderConfig) (syntax.Handle, bool, error) {
	if conf.Language == nil {
		return syntax.Handle{}, false, nil
	}
	h, ok := e.DB.FindByToken(*conf.Language)
	if !ok {
		return syntax.Handle{}, false, apperr.New(apperr.InvalidLanguage, "unsupported language `"+*conf.Language+"`")
	}
	return h, true, nil
}

type FirstLine struct{ DB syntax.DB }

func (FirstLine) Name() Tier { return TierFirstLine }

func (f FirstLine) Attempt(_ context.Context, conf request.RenderConfig) (syntax.Handle, bool, error) {
	line, _, _ := strings.Cut(conf.Code, "\n")
	h, ok := f.DB.FindByFirstLine(line)
	return h, ok, nil
}

// languageMapper is implemented by databases that understand the
// classifier's label vocabulary better than FindByToken does.
type languageMapper interface {
	FromLanguage(lang string) (syntax.Handle, bool)
}

// Classify never fails: any classifier problem is a miss.
type Classify struct {
	DB    syntax.DB
	Model classifier.Model
	Log   *zap.Logger
}

func (Classify) Name() Tier { return TierClassifier }

func (c Classify) Attempt(ctx context.Context, conf request.RenderConfig) (syntax.Handle, bool, error) {
	if c.Model == nil || !c.Model.Loaded() {
		return syntax.Handle{}, false, nil
	}
	raw, err := c.Model.Infer(ctx, conf.Code)
	if err != nil {
		c.logger().Warn("classifier inference failed", zap.Error(err))
		return syntax.Handle{}, false, nil
	}
	best, ok := score.Best(raw)
	if !ok {
		return syntax.Handle{}, false, nil
	}
	if m, ok := c.DB.(languageMapper); ok {
		if h, ok := m.FromLanguage(best.Label); ok {
			return h, true, nil
		}
	}
	h, ok := c.DB.FindByToken(best.Label)
	if !ok {
		c.logger().Debug("classifier label has no syntax", zap.String("label", best.Label))
	}
	return h, ok, nil
}

func (c Classify) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}
