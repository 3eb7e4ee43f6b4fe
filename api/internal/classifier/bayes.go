package classifier

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/go-enry/go-enry/v2/data"
)

// Bayes is a naive Bayes classifier over the token frequency tables that
// go-enry ships with (trained on the linguist samples corpus). A label's raw
// score is its log prior plus the summed log likelihood of every token.
type Bayes struct {
	priors  map[string]float64
	tokens  map[string]map[string]float64
	unknown float64
	labels  []string
}

// NewBayes restricts inference to labels when given; names are matched
// case-insensitively and unknown ones are ignored. An empty (or fully
// unknown) list keeps every language in the tables.
func NewBayes(labels []string) *Bayes {
	return newBayes(data.LanguagesLogProbabilities, data.TokensLogProbabilities, float64(data.TokensTotal), labels)
}

func newBayes(priors map[string]float64, tokens map[string]map[string]float64, total float64, labels []string) *Bayes {
	b := &Bayes{
		priors: priors,
		tokens: tokens,
	}
	if total > 0 {
		b.unknown = math.Log(1 / total)
	}

	byLower := make(map[string]string, len(priors))
	for name := range priors {
		byLower[strings.ToLower(name)] = name
	}
	seen := map[string]bool{}
	for _, l := range labels {
		if name, ok := byLower[strings.ToLower(strings.TrimSpace(l))]; ok && !seen[name] {
			seen[name] = true
			b.labels = append(b.labels, name)
		}
	}
	if len(b.labels) == 0 {
		for name := range priors {
			b.labels = append(b.labels, name)
		}
	}
	sort.Strings(b.labels)
	return b
}

func (b *Bayes) Loaded() bool { return len(b.priors) > 0 }

// keep drops candidate labels rejected by accept.
func (b *Bayes) keep(accept func(string) bool) {
	kept := b.labels[:0]
	for _, l := range b.labels {
		if accept(l) {
			kept = append(kept, l)
		}
	}
	b.labels = kept
}

// Labels returns the candidate languages in sorted order.
func (b *Bayes) Labels() []string { return append([]string(nil), b.labels...) }

func (b *Bayes) Infer(ctx context.Context, text string) (map[string]float64, error) {
	if !b.Loaded() {
		return nil, ErrNotLoaded
	}
	toks := Tokenize(text)
	out := make(map[string]float64, len(b.labels))
	for i, label := range b.labels {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		s := b.priors[label]
		freq := b.tokens[label]
		for _, t := range toks {
			if p, ok := freq[t]; ok {
				s += p
			} else {
				s += b.unknown
			}
		}
		out[label] = s
	}
	return out, nil
}
