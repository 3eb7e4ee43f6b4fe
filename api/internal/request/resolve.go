package request

import (
	"context"

	"go.uber.org/zap"

	"inkify/api/internal/apperr"
	"inkify/api/internal/field"
)

// Fetcher downloads a remote background image.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type Resolver struct {
	fetch Fetcher
	log   *zap.Logger
}

// NewResolver builds a Resolver. A nil fetcher disables background images.
func NewResolver(f Fetcher, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{fetch: f, log: log}
}

// Resolve overlays every supplied field of q onto Default(). A malformed
// field aborts the whole resolution; a failed background fetch does not.
func (r *Resolver) Resolve(ctx context.Context, q Query) (RenderConfig, error) {
	if q.Code == "" {
		return RenderConfig{}, apperr.New(apperr.MissingCode, "code parameter is required")
	}

	conf := Default()
	conf.Code = q.Code
	conf.Language = q.Language
	conf.WindowTitle = q.WindowTitle
	if q.Theme != nil {
		conf.Theme = *q.Theme
	}

	if q.Font != nil {
		fonts, err := field.ParseFontList(*q.Font)
		if err != nil {
			return RenderConfig{}, err
		}
		conf.Font = fonts
	}
	if q.HighlightLines != nil {
		lines, err := field.ParseLineSet(*q.HighlightLines)
		if err != nil {
			return RenderConfig{}, err
		}
		conf.HighlightLines = lines
	}
	if q.ShadowColor != nil {
		c, err := field.ParseColor(*q.ShadowColor)
		if err != nil {
			return RenderConfig{}, err
		}
		conf.ShadowColor = c
	}
	if q.Background != nil {
		c, err := field.ParseColor(*q.Background)
		if err != nil {
			return RenderConfig{}, err
		}
		conf.Background = c
	}

	setIf(&conf.TabWidth, q.TabWidth)
	setIf(&conf.LinePad, q.LinePad)
	setIf(&conf.LineOffset, q.LineOffset)
	setIf(&conf.PadHoriz, q.PadHoriz)
	setIf(&conf.PadVert, q.PadVert)
	setIf(&conf.NoLineNumber, q.NoLineNumber)
	setIf(&conf.NoRoundCorner, q.NoRoundCorner)
	setIf(&conf.NoWindowControls, q.NoWindowControls)
	setIf(&conf.ShadowBlurRadius, q.ShadowBlurRadius)
	setIf(&conf.ShadowOffsetX, q.ShadowOffsetX)
	setIf(&conf.ShadowOffsetY, q.ShadowOffsetY)

	if q.BackgroundImage != nil && *q.BackgroundImage != "" {
		conf.BackgroundImage = r.fetchBackground(ctx, *q.BackgroundImage)
	}
	return conf, nil
}

func (r *Resolver) fetchBackground(ctx context.Context, url string) []byte {
	if r.fetch == nil {
		r.log.Warn("background image ignored: no fetch client", zap.String("url", url))
		return nil
	}
	img, err := r.fetch.Get(ctx, url)
	if err != nil {
		r.log.Warn("background image fetch failed, using solid background",
			zap.String("url", url), zap.Error(err))
		return nil
	}
	return img
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
