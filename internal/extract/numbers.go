package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Year range shared by year extraction and number filtering
const (
	MinYear = 1000
	MaxYear = 2999
)

// NumberToken matches one number as written in text: a thousands-grouped
// integer ("200,000"), or an integer with an optional decimal point or a
// one- or two-digit decimal comma ("9,81")
const NumberToken = `\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+|,\d{1,2})?`

// maxNumberDigits guards against accidental huge-integer matches
const maxNumberDigits = 10

var (
	yearRe      = regexp.MustCompile(`\b[12]\d{3}\b`)
	thousandsRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})+`)
	numberRe    = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	groupedRe   = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)
)

// ParseNumber reads a token matched by NumberToken. Commas in a
// thousands-grouped token are separators, any other comma is a decimal comma.
func ParseNumber(token string) (float64, bool) {
	if groupedRe.MatchString(token) {
		token = strings.ReplaceAll(token, ",", "")
	} else {
		token = strings.Replace(token, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(token, 64)
	return v, err == nil
}

// Years returns the distinct 4-digit years in [MinYear, MaxYear], first-seen order
func Years(text string) []int {
	var years []int
	seen := make(map[int]bool)
	for _, m := range yearRe.FindAllString(text, -1) {
		y, err := strconv.Atoi(m)
		if err != nil || y < MinYear || y > MaxYear || seen[y] {
			continue
		}
		seen[y] = true
		years = append(years, y)
	}
	return years
}

// Numbers returns the distinct non-year numbers in text, first-seen order.
// Thousands-grouped tokens ("8,849") are parsed first and blanked out of a
// scratch copy; remaining integers and decimals follow. A comma between
// digits that is not a thousands group is read as a decimal comma ("9,81").
func Numbers(text string) []float64 {
	var out []float64
	seen := make(map[float64]bool)
	add := func(token string) {
		digits := strings.NewReplacer(",", "", ".", "").Replace(token)
		if len(digits) > maxNumberDigits {
			return
		}
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return
		}
		if v >= MinYear && v <= MaxYear {
			return
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	scratch := []byte(text)
	for _, loc := range thousandsRe.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && isDigitOrSep(text[start-1]) {
			continue
		}
		if end < len(text) && isDigit(text[end]) {
			continue
		}
		add(strings.ReplaceAll(text[start:end], ",", ""))
		for i := start; i < end; i++ {
			scratch[i] = ' '
		}
	}

	for _, m := range numberRe.FindAllString(string(scratch), -1) {
		add(strings.Replace(m, ",", ".", 1))
	}

	return out
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isDigitOrSep(b byte) bool {
	return isDigit(b) || b == ',' || b == '.'
}
