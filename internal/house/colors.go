package house

import (
	"regexp"
	"strings"

	"golang.org/x/image/colornames"
)

// FallbackGradient is used whenever a house carries a colour the browser
// would not understand.
const FallbackGradient = "white, black"

var (
	colourSeparator = regexp.MustCompile(`(?i) and |, `)
	hexColour       = regexp.MustCompile(`^#([0-9a-f]{3}|[0-9a-f]{4}|[0-9a-f]{6}|[0-9a-f]{8})$`)
	funcColour      = regexp.MustCompile(`^(rgb|rgba|hsl|hsla)\(\s*[-+0-9.%deg]+(\s*[,/ ]\s*[-+0-9.%deg]+){2,3}\s*\)$`)
)

// SplitColours turns an upstream colour string such as "Scarlet and Gold" or
// "blue, bronze" into lower-cased colour names.
func SplitColours(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := colourSeparator.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.ToLower(strings.TrimSpace(p)))
	}
	return out
}

// IsValidColor reports whether c is a CSS colour value: a named colour,
// a hex literal or rgb()/hsl() notation.
func IsValidColor(c string) bool {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return false
	}
	if _, ok := colornames.Map[c]; ok {
		return true
	}
	switch c {
	case "transparent", "currentcolor", "rebeccapurple":
		return true
	}
	return hexColour.MatchString(c) || funcColour.MatchString(c)
}

// Gradient returns the CSS gradient stop list for colors, or FallbackGradient
// unless every colour validates.
func Gradient(colors []string) string {
	if len(colors) == 0 {
		return FallbackGradient
	}
	for _, c := range colors {
		if !IsValidColor(c) {
			return FallbackGradient
		}
	}
	return strings.Join(colors, ", ")
}
