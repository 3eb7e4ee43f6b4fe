package request

import (
	"net/url"
	"strconv"
	"strings"

	"inkify/api/internal/apperr"
)

// Query mirrors the /generate query surface. Nil means "not supplied".
type Query struct {
	Code string

	Language        *string
	Theme           *string
	Font            *string
	HighlightLines  *string
	Background      *string
	BackgroundImage *string
	ShadowColor     *string
	WindowTitle     *string

	TabWidth   *uint8
	LinePad    *uint32
	LineOffset *uint32
	PadHoriz   *uint32
	PadVert    *uint32

	NoLineNumber     *bool
	NoRoundCorner    *bool
	NoWindowControls *bool

	ShadowBlurRadius *float32
	ShadowOffsetX    *int32
	ShadowOffsetY    *int32
}

// FromValues maps URL query values onto a Query. An empty code is reported
// before any other field is looked at.
func FromValues(v url.Values) (Query, error) {
	q := Query{Code: v.Get("code")}
	if q.Code == "" {
		return Query{}, apperr.New(apperr.MissingCode, "code parameter is required")
	}

	q.Language = optString(v, "language")
	q.Theme = optString(v, "theme")
	q.Font = optString(v, "font")
	q.HighlightLines = optString(v, "highlight_lines")
	q.Background = optString(v, "background")
	q.BackgroundImage = optString(v, "background_image")
	q.ShadowColor = optString(v, "shadow_color")
	q.WindowTitle = optString(v, "window_title")

	p := scalarParser{v: v}
	q.TabWidth = p.readUint8("tab_width")
	q.LinePad = p.readUint32("line_pad")
	q.LineOffset = p.readUint32("line_offset")
	q.PadHoriz = p.readUint32("pad_horiz")
	q.PadVert = p.readUint32("pad_vert")
	q.NoLineNumber = p.readBool("no_line_number")
	q.NoRoundCorner = p.readBool("no_round_corner")
	q.NoWindowControls = p.readBool("no_window_controls")
	q.ShadowBlurRadius = p.readFloat32("shadow_blur_radius")
	q.ShadowOffsetX = p.readInt32("shadow_offset_x")
	q.ShadowOffsetY = p.readInt32("shadow_offset_y")
	if p.err != nil {
		return Query{}, p.err
	}
	return q, nil
}

func optString(v url.Values, key string) *string {
	if !v.Has(key) {
		return nil
	}
	s := v.Get(key)
	return &s
}

// scalarParser keeps the first parse failure so FromValues reads as a flat list.
type scalarParser struct {
	v   url.Values
	err error
}

func (p *scalarParser) raw(key string) (string, bool) {
	if p.err != nil || !p.v.Has(key) {
		return "", false
	}
	return strings.TrimSpace(p.v.Get(key)), true
}

func (p *scalarParser) fail(key, raw string, err error) {
	p.err = apperr.Wrap(apperr.InvalidParameter, err, "invalid "+key+" `"+raw+"`")
}

func (p *scalarParser) readUint8(key string) *uint8 {
	raw, ok := p.raw(key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		p.fail(key, raw, err)
		return nil
	}
	v := uint8(n)
	return &v
}

func (p *scalarParser) readUint32(key string) *uint32 {
	raw, ok := p.raw(key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		p.fail(key, raw, err)
		return nil
	}
	v := uint32(n)
	return &v
}

func (p *scalarParser) readInt32(key string) *int32 {
	raw, ok := p.raw(key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		p.fail(key, raw, err)
		return nil
	}
	v := int32(n)
	return &v
}

func (p *scalarParser) readFloat32(key string) *float32 {
	raw, ok := p.raw(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		p.fail(key, raw, err)
		return nil
	}
	v := float32(f)
	return &v
}

// readBool accepts the strconv forms plus a bare flag ("?no_line_number").
func (p *scalarParser) readBool(key string) *bool {
	raw, ok := p.raw(key)
	if !ok {
		return nil
	}
	if raw == "" {
		v := true
		return &v
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw, err)
		return nil
	}
	return &b
}
