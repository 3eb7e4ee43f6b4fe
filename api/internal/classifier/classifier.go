// Package classifier holds the statistical language models used as the last
// detection tier. A model maps text to raw per-language scores; higher is
// more likely. Scores are not normalised here.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotLoaded   = errors.New("classifier: model not loaded")
	ErrPoolClosed  = errors.New("classifier: pool closed")
	ErrEmptyResult = errors.New("classifier: empty result")
)

type Model interface {
	Loaded() bool
	Infer(ctx context.Context, text string) (map[string]float64, error)
}

// Unavailable is the model used when nothing is configured.
type Unavailable struct{}

func (Unavailable) Loaded() bool { return false }

func (Unavailable) Infer(context.Context, string) (map[string]float64, error) {
	return nil, ErrNotLoaded
}

// New picks a model by name: "bayes", "gemini" or "none".
func New(name string, opt Options) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "bayes":
		b := NewBayes(opt.Labels)
		if len(opt.Labels) == 0 && opt.Accept != nil {
			b.keep(opt.Accept)
		}
		return b, nil
	case "gemini":
		g := NewGemini(opt.GeminiAPIKey, opt.GeminiModel, opt.Labels)
		g.Accept = opt.Accept
		return g, nil
	case "none", "off":
		return Unavailable{}, nil
	default:
		return nil, fmt.Errorf("unknown classifier %q", name)
	}
}

type Options struct {
	// Labels restricts the candidate languages; empty means all known.
	Labels []string
	// Accept narrows the default candidates when Labels is empty, e.g. to
	// languages that can actually be rendered.
	Accept       func(label string) bool
	GeminiAPIKey string
	GeminiModel  string
}
