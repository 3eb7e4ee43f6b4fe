package request

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inkify/api/internal/apperr"
	"inkify/api/internal/field"
)

type stubFetcher struct {
	body  []byte
	err   error
	calls int
}

func (s *stubFetcher) Get(_ context.Context, _ string) ([]byte, error) {
	s.calls++
	return s.body, s.err
}

func TestDefault(t *testing.T) {
	d := Default()
	assert.Equal(t, "Dracula", d.Theme)
	assert.Equal(t, uint8(4), d.TabWidth)
	assert.Equal(t, uint32(2), d.LinePad)
	assert.Equal(t, uint32(1), d.LineOffset)
	assert.Equal(t, uint32(80), d.PadHoriz)
	assert.Equal(t, uint32(100), d.PadVert)
	assert.Equal(t, field.Transparent, d.Background)
	assert.Equal(t, field.Transparent, d.ShadowColor)
	assert.Nil(t, d.Font)
	assert.Nil(t, d.HighlightLines)
	assert.False(t, d.HasBackgroundImage())
}

func TestFromValuesMissingCodeWins(t *testing.T) {
	v := url.Values{
		"tab_width":       {"not-a-number"},
		"font":            {"Hack=oops"},
		"highlight_lines": {"x"},
	}
	_, err := FromValues(v)
	require.Error(t, err)
	assert.Equal(t, apperr.MissingCode, apperr.KindOf(err))

	v.Set("code", "")
	_, err = FromValues(v)
	assert.Equal(t, apperr.MissingCode, apperr.KindOf(err))
}

func TestFromValuesScalars(t *testing.T) {
	v := url.Values{
		"code":               {"x := 1"},
		"tab_width":          {"8"},
		"line_pad":           {"3"},
		"shadow_offset_x":    {"-5"},
		"shadow_blur_radius": {"2.5"},
		"no_line_number":     {"true"},
		"no_round_corner":    {""},
	}
	q, err := FromValues(v)
	require.NoError(t, err)
	require.NotNil(t, q.TabWidth)
	assert.Equal(t, uint8(8), *q.TabWidth)
	assert.Equal(t, uint32(3), *q.LinePad)
	assert.Equal(t, int32(-5), *q.ShadowOffsetX)
	assert.Equal(t, float32(2.5), *q.ShadowBlurRadius)
	assert.True(t, *q.NoLineNumber)
	assert.True(t, *q.NoRoundCorner)
	assert.Nil(t, q.NoWindowControls)
	assert.Nil(t, q.Language)
}

func TestFromValuesRejectsBadScalar(t *testing.T) {
	for key, raw := range map[string]string{
		"tab_width":      "300",
		"line_offset":    "-1",
		"no_line_number": "maybe",
		"pad_vert":       "1.5",
	} {
		_, err := FromValues(url.Values{"code": {"a"}, key: {raw}})
		require.Error(t, err, key)
		assert.Equal(t, apperr.InvalidParameter, apperr.KindOf(err), key)
		assert.Contains(t, err.Error(), key)
	}
}

func TestResolveOverlaysFields(t *testing.T) {
	q, err := FromValues(url.Values{
		"code":            {"fn main() {}"},
		"language":        {"rs"},
		"theme":           {"monokai"},
		"font":            {"Hack;SimSun=31"},
		"highlight_lines": {"1-3;5"},
		"background":      {"#ffffff"},
		"shadow_color":    {"#00000080"},
		"window_title":    {"main.rs"},
		"pad_horiz":       {"10"},
	})
	require.NoError(t, err)

	conf, err := NewResolver(nil, zap.NewNop()).Resolve(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, "fn main() {}", conf.Code)
	require.NotNil(t, conf.Language)
	assert.Equal(t, "rs", *conf.Language)
	assert.Equal(t, "monokai", conf.Theme)
	assert.Equal(t, field.FontSpec{{Name: "Hack", Size: 26}, {Name: "SimSun", Size: 31}}, conf.Font)
	assert.Equal(t, field.LineSet{1, 2, 3, 5}, conf.HighlightLines)
	assert.Equal(t, field.Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, conf.Background)
	assert.Equal(t, field.Color{A: 0x80}, conf.ShadowColor)
	assert.Equal(t, "main.rs", *conf.WindowTitle)
	assert.Equal(t, uint32(10), conf.PadHoriz)
	// untouched defaults
	assert.Equal(t, uint32(100), conf.PadVert)
	assert.Equal(t, uint8(4), conf.TabWidth)
}

func TestResolveAbortsOnMalformedField(t *testing.T) {
	r := NewResolver(nil, nil)
	bad := "not-a-color"
	_, err := r.Resolve(context.Background(), Query{Code: "x", Background: &bad})
	assert.Equal(t, apperr.InvalidColor, apperr.KindOf(err))

	font := "Hack=abc"
	_, err = r.Resolve(context.Background(), Query{Code: "x", Font: &font})
	assert.Equal(t, apperr.InvalidFont, apperr.KindOf(err))

	_, err = r.Resolve(context.Background(), Query{})
	assert.Equal(t, apperr.MissingCode, apperr.KindOf(err))
}

func TestResolveBackgroundImage(t *testing.T) {
	bgURL := "https://example.com/bg.png"

	ok := &stubFetcher{body: []byte{0x89, 'P', 'N', 'G'}}
	conf, err := NewResolver(ok, nil).Resolve(context.Background(), Query{Code: "x", BackgroundImage: &bgURL})
	require.NoError(t, err)
	assert.True(t, conf.HasBackgroundImage())
	assert.Equal(t, 1, ok.calls)

	failing := &stubFetcher{err: errors.New("dial tcp: timeout")}
	conf, err = NewResolver(failing, nil).Resolve(context.Background(), Query{Code: "x", BackgroundImage: &bgURL})
	require.NoError(t, err, "fetch failures must not fail the request")
	assert.False(t, conf.HasBackgroundImage())
	assert.Equal(t, field.Transparent, conf.Background)
}
