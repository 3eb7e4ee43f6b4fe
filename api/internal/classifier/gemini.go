package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"inkify/api/internal/util"
)

const DefaultGeminiModel = "gemini-2.0-flash"

const geminiSystem = `You identify the programming language of a source code snippet.
Return ONLY a JSON object whose keys are language names and whose values are
natural-log probabilities (numbers <= 0) that the snippet is written in that
language. Include at most 10 languages, most likely first. No prose.`

// Gemini asks a Gemini model for per-language log probabilities. It is
// loaded only when an API key is configured.
type Gemini struct {
	APIKey string
	Model  string
	Labels []string
	// Accept filters answers when Labels is empty.
	Accept func(label string) bool
}

func NewGemini(apiKey, model string, labels []string) *Gemini {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{
		APIKey: strings.TrimSpace(apiKey),
		Model:  model,
		Labels: labels,
	}
}

func (g *Gemini) Loaded() bool { return g.APIKey != "" }

func (g *Gemini) Infer(ctx context.Context, text string) (map[string]float64, error) {
	if g.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return nil, err
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.Model)
	if m == nil {
		return nil, fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	sys := geminiSystem
	if len(g.Labels) > 0 {
		sys += "\nOnly use these language names: " + strings.Join(g.Labels, ", ") + "."
	}
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(sys)}}

	resp, err := m.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini classify: %w", err)
	}
	txt := firstText(resp)
	if txt == "" {
		return nil, fmt.Errorf("gemini classify: %w", ErrEmptyResult)
	}
	return g.parseScores(txt)
}

// parseScores reads the model's JSON answer, dropping non-finite values and
// labels outside the configured candidates.
func (g *Gemini) parseScores(txt string) (map[string]float64, error) {
	txt = util.StripCodeFences(strings.TrimSpace(txt))
	var raw map[string]float64
	if err := json.Unmarshal([]byte(txt), &raw); err != nil {
		return nil, fmt.Errorf("gemini classify: bad JSON: %w", err)
	}

	allowed := map[string]string{}
	for _, l := range g.Labels {
		allowed[strings.ToLower(l)] = l
	}
	out := make(map[string]float64, len(raw))
	for label, s := range raw {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			continue
		}
		label = strings.TrimSpace(label)
		if len(allowed) > 0 {
			name, ok := allowed[strings.ToLower(label)]
			if !ok {
				continue
			}
			label = name
		} else if g.Accept != nil && !g.Accept(label) {
			continue
		}
		if label != "" {
			out[label] = s
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("gemini classify: %w", ErrEmptyResult)
	}
	return out, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
