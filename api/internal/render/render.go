// Package render turns resolved code, syntax and theme into an image
// document using chroma's formatters.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/formatters/svg"

	"inkify/api/internal/apperr"
	"inkify/api/internal/request"
	"inkify/api/internal/syntax"
	"inkify/api/internal/theme"
	"inkify/api/internal/util"
)

type Format string

const (
	FormatSVG  Format = "svg"
	FormatHTML Format = "html"
)

func (f Format) MediaType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "image/svg+xml"
	}
}

// ParseFormat maps the "format" query value; empty means svg.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatSVG:
		return FormatSVG, nil
	case FormatHTML:
		return FormatHTML, nil
	default:
		return "", apperr.New(apperr.InvalidParameter, "invalid format `"+s+"`")
	}
}

type Input struct {
	Config request.RenderConfig
	Syntax syntax.Handle
	Theme  theme.Handle
	Format Format
}

type Output struct {
	Data      []byte
	MediaType string
}

type Engine interface {
	Render(in Input) (Output, error)
}

// Chroma renders svg and html documents.
type Chroma struct{}

func NewChroma() *Chroma { return &Chroma{} }

func (c *Chroma) Render(in Input) (Output, error) {
	if in.Syntax.IsZero() || in.Theme.IsZero() {
		return Output{}, apperr.New(apperr.RenderFailure, "render: syntax and theme are required")
	}
	lexer := chroma.Coalesce(in.Syntax.Lexer())
	code := in.Config.Code
	if in.Format != FormatHTML {
		code = expandTabs(code, int(in.Config.TabWidth))
	}
	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return Output{}, apperr.Wrap(apperr.RenderFailure, err, "render: tokenise failed")
	}

	var buf bytes.Buffer
	switch in.Format {
	case FormatHTML:
		err = writeHTML(&buf, in, it)
	default:
		err = svg.New(svg.FontFamily(fontFamily(in.Config))).Format(&buf, in.Theme.Style(), it)
	}
	if err != nil {
		return Output{}, apperr.Wrap(apperr.EncodeFailure, err, "render: encode failed")
	}
	return Output{Data: buf.Bytes(), MediaType: in.Format.MediaType()}, nil
}

func writeHTML(buf *bytes.Buffer, in Input, it chroma.Iterator) error {
	conf := in.Config
	f := chromahtml.New(
		chromahtml.Standalone(false),
		chromahtml.WithLineNumbers(!conf.NoLineNumber),
		chromahtml.BaseLineNumber(int(conf.LineOffset)),
		chromahtml.HighlightLines(highlightRanges(conf)),
		chromahtml.TabWidth(int(conf.TabWidth)),
	)

	title := ""
	if conf.WindowTitle != nil {
		title = *conf.WindowTitle
	}
	fmt.Fprintf(buf, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head>\n", html.EscapeString(title))
	fmt.Fprintf(buf, "<body style=\"margin:0;padding:%dpx %dpx;background-color:%s%s\">\n",
		conf.PadVert, conf.PadHoriz, conf.Background, backgroundImage(conf))

	radius := "8px"
	if conf.NoRoundCorner {
		radius = "0"
	}
	fmt.Fprintf(buf, "<div style=\"font-family:%s;line-height:%d;border-radius:%s;overflow:hidden;box-shadow:%dpx %dpx %gpx %s\">\n",
		html.EscapeString(fontFamily(conf)), conf.LinePad+1, radius,
		conf.ShadowOffsetX, conf.ShadowOffsetY, conf.ShadowBlurRadius, conf.ShadowColor)
	if !conf.NoWindowControls || title != "" {
		writeTitleBar(buf, conf, title)
	}
	if err := f.Format(buf, in.Theme.Style(), it); err != nil {
		return err
	}
	buf.WriteString("</div>\n</body></html>\n")
	return nil
}

func writeTitleBar(buf *bytes.Buffer, conf request.RenderConfig, title string) {
	buf.WriteString("<div style=\"padding:8px 12px\">")
	if !conf.NoWindowControls {
		for _, c := range []string{"#ff5f56", "#ffbd2e", "#27c93f"} {
			fmt.Fprintf(buf, "<span style=\"display:inline-block;width:12px;height:12px;margin-right:6px;border-radius:50%%;background:%s\"></span>", c)
		}
	}
	if title != "" {
		fmt.Fprintf(buf, "<span>%s</span>", html.EscapeString(title))
	}
	buf.WriteString("</div>\n")
}

func backgroundImage(conf request.RenderConfig) string {
	if !conf.HasBackgroundImage() {
		return ""
	}
	mime := util.SniffImage(conf.BackgroundImage)
	if mime == "" {
		return ""
	}
	url := util.MakeDataURL(mime, base64.StdEncoding.EncodeToString(conf.BackgroundImage))
	return ";background-image:url(" + url + ");background-size:cover"
}

func fontFamily(conf request.RenderConfig) string {
	families := conf.Font.Families()
	families = append(families, "monospace")
	return strings.Join(families, ", ")
}

// highlightRanges converts 1-based code lines into the displayed line
// numbers chroma compares against.
func highlightRanges(conf request.RenderConfig) [][2]int {
	if len(conf.HighlightLines) == 0 {
		return nil
	}
	shift := int(conf.LineOffset) - 1
	out := make([][2]int, 0, len(conf.HighlightLines))
	for _, n := range conf.HighlightLines {
		out = append(out, [2]int{int(n) + shift, int(n) + shift})
	}
	return out
}

func expandTabs(s string, width int) string {
	if width <= 0 || !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := width - col%width
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}
