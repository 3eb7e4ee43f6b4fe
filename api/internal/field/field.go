// Package field parses the composite string fields of a render request:
// font lists, highlighted line ranges and colours.
package field

import (
	"math"
	"strconv"
	"strings"

	"inkify/api/internal/apperr"
)

const (
	DefaultFontSize = 26.0

	// MaxLineSetSize bounds the expansion of highlight ranges.
	MaxLineSetSize = 100_000
)

type Font struct {
	Name string  `json:"name"`
	Size float64 `json:"size"`
}

// FontSpec is ordered by glyph fallback priority.
type FontSpec []Font

// Families returns the font names in priority order.
func (f FontSpec) Families() []string {
	out := make([]string, 0, len(f))
	for _, font := range f {
		out = append(out, font.Name)
	}
	return out
}

// LineSet holds 1-based line numbers in expansion order. Duplicates are kept.
type LineSet []uint32

// ParseFontList parses "Hack; SimSun=31" into an ordered font list.
func ParseFontList(s string) (FontSpec, error) {
	var out FontSpec
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, "=")
		if len(parts) > 2 {
			return nil, apperr.Newf(apperr.InvalidFont, "invalid font: `%s`", entry)
		}
		name := strings.TrimSpace(parts[0])
		if name == "" {
			return nil, apperr.Newf(apperr.InvalidFont, "invalid font: `%s` has no name", entry)
		}
		size := DefaultFontSize
		if len(parts) == 2 {
			raw := strings.TrimSpace(parts[1])
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, apperr.Wrap(apperr.InvalidFont, err, "invalid font size `"+raw+"`")
			}
			if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
				return nil, apperr.Newf(apperr.InvalidFont, "invalid font size `%s`: must be positive", raw)
			}
			size = v
		}
		out = append(out, Font{Name: name, Size: size})
	}
	return out, nil
}

// ParseLineSet parses "1-3; 5" into [1 2 3 5]. A descending range expands to nothing.
func ParseLineSet(s string) (LineSet, error) {
	out := LineSet{}
	for _, token := range strings.Split(s, ";") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		bounds := strings.Split(token, "-")
		if len(bounds) > 2 {
			return nil, apperr.Newf(apperr.InvalidLineRange, "invalid line range `%s`", token)
		}
		nums := make([]uint32, 0, 2)
		for _, b := range bounds {
			n, err := parseLine(b)
			if err != nil {
				return nil, err
			}
			nums = append(nums, n)
		}
		if len(nums) == 1 {
			out = append(out, nums[0])
			continue
		}
		from, to := nums[0], nums[1]
		if from > to {
			continue
		}
		if len(out)+int(to-from)+1 > MaxLineSetSize {
			return nil, apperr.Newf(apperr.InvalidLineRange, "line range `%s` selects more than %d lines", token, MaxLineSetSize)
		}
		for i := from; ; i++ {
			out = append(out, i)
			if i == to {
				break
			}
		}
	}
	return out, nil
}

func parseLine(raw string) (uint32, error) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperr.Wrap(apperr.InvalidLineRange, err, "invalid line number `"+raw+"`")
	}
	if n == 0 {
		return 0, apperr.New(apperr.InvalidLineRange, "line numbers start at 1")
	}
	return uint32(n), nil
}
