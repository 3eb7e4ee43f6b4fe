// Package request turns the loosely typed query surface of a render request
// into a fully resolved RenderConfig.
package request

import (
	"inkify/api/internal/field"
)

const (
	DefaultTheme      = "Dracula"
	DefaultTabWidth   = 4
	DefaultLinePad    = 2
	DefaultLineOffset = 1
	DefaultPadHoriz   = 80
	DefaultPadVert    = 100
)

// RenderConfig is a fully resolved render request.
type RenderConfig struct {
	Code     string  `json:"code"`
	Language *string `json:"language,omitempty"`
	Theme    string  `json:"theme"`

	Font           field.FontSpec `json:"font,omitempty"`
	HighlightLines field.LineSet  `json:"highlight_lines,omitempty"`

	LinePad    uint32 `json:"line_pad"`
	LineOffset uint32 `json:"line_offset"`
	TabWidth   uint8  `json:"tab_width"`
	PadHoriz   uint32 `json:"pad_horiz"`
	PadVert    uint32 `json:"pad_vert"`

	WindowTitle      *string `json:"window_title,omitempty"`
	NoLineNumber     bool    `json:"no_line_number"`
	NoRoundCorner    bool    `json:"no_round_corner"`
	NoWindowControls bool    `json:"no_window_controls"`

	ShadowColor      field.Color `json:"shadow_color"`
	ShadowBlurRadius float32     `json:"shadow_blur_radius"`
	ShadowOffsetX    int32       `json:"shadow_offset_x"`
	ShadowOffsetY    int32       `json:"shadow_offset_y"`

	Background      field.Color `json:"background"`
	BackgroundImage []byte      `json:"-"`
}

// Default returns the configuration every request starts from. Code is empty
// and must be supplied.
func Default() RenderConfig {
	return RenderConfig{
		Theme:       DefaultTheme,
		LinePad:     DefaultLinePad,
		LineOffset:  DefaultLineOffset,
		TabWidth:    DefaultTabWidth,
		PadHoriz:    DefaultPadHoriz,
		PadVert:     DefaultPadVert,
		ShadowColor: field.Transparent,
		Background:  field.Transparent,
	}
}

// HasBackgroundImage reports whether the padding area uses fetched image bytes
// instead of the solid background colour.
func (c RenderConfig) HasBackgroundImage() bool { return len(c.BackgroundImage) > 0 }
