package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkify/api/internal/apperr"
	"inkify/api/internal/field"
	"inkify/api/internal/request"
	"inkify/api/internal/syntax"
	"inkify/api/internal/theme"
)

func input(t *testing.T, code string, format Format) Input {
	t.Helper()
	h, ok := syntax.NewChroma().FindByToken("go")
	require.True(t, ok)
	th, err := theme.Resolve(theme.NewChroma(), request.DefaultTheme)
	require.NoError(t, err)

	conf := request.Default()
	conf.Code = code
	return Input{Config: conf, Syntax: h, Theme: th, Format: format}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatSVG, "svg": FormatSVG, "HTML": FormatHTML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("png")
	assert.Equal(t, apperr.InvalidParameter, apperr.KindOf(err))
}

func TestRenderSVG(t *testing.T) {
	in := input(t, "package main\n\nfunc main() {\n\tprintln(1)\n}\n", FormatSVG)
	in.Config.Font = field.FontSpec{{Name: "Hack", Size: 26}}

	out, err := NewChroma().Render(in)
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", out.MediaType)
	doc := string(out.Data)
	assert.Contains(t, doc, "<svg")
	assert.Contains(t, doc, "Hack, monospace")
	assert.Contains(t, doc, "package")
}

func TestRenderHTML(t *testing.T) {
	in := input(t, "a := 1\nb := 2\nc := 3\n", FormatHTML)
	title := "main.go <x>"
	in.Config.WindowTitle = &title
	in.Config.HighlightLines = field.LineSet{2}
	in.Config.Background = field.Color{R: 0xff, A: 0xff}

	out, err := NewChroma().Render(in)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.MediaType, "text/html"))
	doc := string(out.Data)
	assert.Contains(t, doc, "<!DOCTYPE html>")
	assert.Contains(t, doc, "main.go &lt;x&gt;")
	assert.Contains(t, doc, "background-color:#ff0000ff")
	assert.Contains(t, doc, "padding:100px 80px")
}

func TestRenderHTMLBackgroundImage(t *testing.T) {
	in := input(t, "x := 1", FormatHTML)
	in.Config.BackgroundImage = []byte("\x89PNG\r\n\x1a\n....")

	out, err := NewChroma().Render(in)
	require.NoError(t, err)
	assert.Contains(t, string(out.Data), "url(data:image/png;base64,")
}

func TestRenderRequiresHandles(t *testing.T) {
	_, err := NewChroma().Render(Input{Format: FormatSVG})
	assert.Equal(t, apperr.RenderFailure, apperr.KindOf(err))
}

func TestHighlightRanges(t *testing.T) {
	conf := request.Default()
	conf.HighlightLines = field.LineSet{1, 3, 3}
	conf.LineOffset = 10
	assert.Equal(t, [][2]int{{10, 10}, {12, 12}, {12, 12}}, highlightRanges(conf))

	conf.HighlightLines = nil
	assert.Nil(t, highlightRanges(conf))
}

func TestExpandTabs(t *testing.T) {
	assert.Equal(t, "    x", expandTabs("\tx", 4))
	assert.Equal(t, "ab  x\n    y", expandTabs("ab\tx\n\ty", 4))
	assert.Equal(t, "\tx", expandTabs("\tx", 0))
}
