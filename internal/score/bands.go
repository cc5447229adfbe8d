package score

import (
	"math"

	"github.com/ppiankov/veracity/internal/model"
)

// Level maps a component total score onto its bands. Bands are checked in
// order; the first whose floor the score reaches wins. A score below every
// floor falls into the last band.
func Level(bands []model.Band, total float64) (string, float64) {
	if len(bands) == 0 {
		return model.LevelNotApplicable, 1.0
	}
	for _, b := range bands {
		if total >= b.Min {
			return b.Level, b.Multiplier
		}
	}
	last := bands[len(bands)-1]
	return last.Level, last.Multiplier
}

// Round rounds v to the given number of decimal places
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0 // no negative zero in reports
	}
	return r
}

// Clamp01 limits v to [0, 1]
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
