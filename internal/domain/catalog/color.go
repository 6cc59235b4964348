package catalog

import (
	"strings"

	"github.com/gosimple/slug"
)

// Color is a canonical color with an optional hex code.
// Hex is nil when the color is not in the reference table.
type Color struct {
	Name string  `json:"name"`
	Slug string  `json:"slug"`
	Hex  *string `json:"hex"`
}

type colorRef struct {
	name string
	hex  string
}

// colorTable maps color slugs to their canonical name and hex code
var colorTable = map[string]colorRef{
	"black":          {"Black", "#000000"},
	"white":          {"White", "#FFFFFF"},
	"navy":           {"Navy", "#1F2A44"},
	"royal":          {"Royal", "#1D4F91"},
	"red":            {"Red", "#C8102E"},
	"cardinal":       {"Cardinal", "#8A1538"},
	"maroon":         {"Maroon", "#5C2333"},
	"forest-green":   {"Forest Green", "#204C39"},
	"kelly-green":    {"Kelly Green", "#00A550"},
	"military-green": {"Military Green", "#5E6B4A"},
	"orange":         {"Orange", "#F4633A"},
	"gold":           {"Gold", "#FFB81C"},
	"yellow":         {"Yellow", "#FBDD40"},
	"purple":         {"Purple", "#4F2D7F"},
	"pink":           {"Pink", "#F5B6CD"},
	"light-blue":     {"Light Blue", "#A4C8E1"},
	"carolina-blue":  {"Carolina Blue", "#7BAFD4"},
	"sport-grey":     {"Sport Grey", "#9B9B9B"},
	"heather-grey":   {"Heather Grey", "#A7A8AA"},
	"dark-heather":   {"Dark Heather", "#4B4B4B"},
	"charcoal":       {"Charcoal", "#4A4A4A"},
	"ash":            {"Ash", "#D6D6D3"},
	"natural":        {"Natural", "#F0E6D2"},
	"sand":           {"Sand", "#D7C7A9"},
	"brown":          {"Brown", "#5B3A29"},
	"olive":          {"Olive", "#6B6B3A"},
}

// colorAliases folds spelling variants onto table slugs
var colorAliases = map[string]string{
	"blk":           "black",
	"wht":           "white",
	"navy-blue":     "navy",
	"royal-blue":    "royal",
	"grey":          "heather-grey",
	"gray":          "heather-grey",
	"heather-gray":  "heather-grey",
	"athletic-grey": "heather-grey",
	"sport-gray":    "sport-grey",
	"dark-grey":     "charcoal",
	"dark-gray":     "charcoal",
	"forest":        "forest-green",
	"kelly":         "kelly-green",
	"military":      "military-green",
	"army":          "military-green",
	"cream":         "natural",
	"ecru":          "natural",
	"burgundy":      "maroon",
	"wine":          "maroon",
}

// NormalizeColor canonicalizes a supplier color name. Known colors resolve to
// their reference name and hex; unknown colors pass through as a slug with a
// nil hex.
func NormalizeColor(raw string) Color {
	s := slug.Make(strings.TrimSpace(raw))
	if s == "" {
		return Color{}
	}
	if alias, ok := colorAliases[s]; ok {
		s = alias
	}
	if ref, ok := colorTable[s]; ok {
		hex := ref.hex
		return Color{Name: ref.name, Slug: s, Hex: &hex}
	}
	return Color{Name: strings.TrimSpace(raw), Slug: s}
}

// HasHex reports whether the color resolved against the reference table
func (c Color) HasHex() bool {
	return c.Hex != nil
}
