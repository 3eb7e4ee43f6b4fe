// Package score ranks raw classifier output.
package score

import (
	"math"
	"sort"
)

// DegenerateScore is assigned to every label when all raw scores are equal:
// each of them is as good as the best.
const DegenerateScore = 100.0

type Result struct {
	Label string  `json:"language"`
	Score float64 `json:"score"`
}

// Normalize rescales raw scores onto [0,100] (best = 100, worst = 0) and
// sorts them by score descending, then label ascending. NaN scores are
// dropped; -Inf and +Inf pin to 0 and 100. The full list is returned.
func Normalize(raw map[string]float64) []Result {
	out := make([]Result, 0, len(raw))
	lo, hi := math.Inf(1), math.Inf(-1)
	for label, s := range raw {
		if math.IsNaN(s) {
			continue
		}
		if !math.IsInf(s, 0) {
			lo = math.Min(lo, s)
			hi = math.Max(hi, s)
		}
		out = append(out, Result{Label: label, Score: s})
	}

	for i := range out {
		s := out[i].Score
		switch {
		case math.IsInf(s, 1):
			out[i].Score = 100
		case math.IsInf(s, -1):
			out[i].Score = 0
		case hi == lo:
			out[i].Score = DegenerateScore
		case s == hi:
			out[i].Score = 100
		case s == lo:
			out[i].Score = 0
		default:
			// halved so hi-lo cannot overflow to +Inf; only the extremes
			// may sit on 0 or 100
			v := (s/2 - lo/2) / (hi/2 - lo/2) * 100
			out[i].Score = math.Min(math.Max(v, math.SmallestNonzeroFloat64), math.Nextafter(100, 0))
		}
	}
	sortResults(out)
	return out
}

// Best returns the label with the highest raw score; ties go to the
// smallest label.
func Best(raw map[string]float64) (Result, bool) {
	var best Result
	found := false
	for label, s := range raw {
		if math.IsNaN(s) {
			continue
		}
		if !found || s > best.Score || (s == best.Score && label < best.Label) {
			best = Result{Label: label, Score: s}
			found = true
		}
	}
	return best, found
}

// Ranked sorts raw scores without rescaling them.
func Ranked(raw map[string]float64) []Result {
	out := make([]Result, 0, len(raw))
	for label, s := range raw {
		if !math.IsNaN(s) {
			out = append(out, Result{Label: label, Score: s})
		}
	}
	sortResults(out)
	return out
}

// Top caps a ranked list for presentation; n <= 0 keeps everything.
func Top(results []Result, n int) []Result {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}

func sortResults(rs []Result) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Score != rs[j].Score {
			return rs[i].Score > rs[j].Score
		}
		return rs[i].Label < rs[j].Label
	})
}
