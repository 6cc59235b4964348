package catalog

import (
	"regexp"
	"strings"
)

// Size is a canonical garment size
type Size string

const (
	SizeXXS  Size = "XXS"
	SizeXS   Size = "XS"
	SizeS    Size = "S"
	SizeM    Size = "M"
	SizeL    Size = "L"
	SizeXL   Size = "XL"
	Size2XL  Size = "2XL"
	Size3XL  Size = "3XL"
	Size4XL  Size = "4XL"
	Size5XL  Size = "5XL"
	Size6XL  Size = "6XL"
	SizeOSFA Size = "OSFA"
)

// sizeOrder is the display order of the canonical sizes
var sizeOrder = []Size{SizeXXS, SizeXS, SizeS, SizeM, SizeL, SizeXL, Size2XL, Size3XL, Size4XL, Size5XL, Size6XL, SizeOSFA}

var sizeAliases = map[string]Size{
	"xxs":            SizeXXS,
	"2xs":            SizeXXS,
	"xxsmall":        SizeXXS,
	"xs":             SizeXS,
	"xsmall":         SizeXS,
	"extrasmall":     SizeXS,
	"s":              SizeS,
	"sm":             SizeS,
	"small":          SizeS,
	"m":              SizeM,
	"md":             SizeM,
	"med":            SizeM,
	"medium":         SizeM,
	"l":              SizeL,
	"lg":             SizeL,
	"large":          SizeL,
	"xl":             SizeXL,
	"xlarge":         SizeXL,
	"extralarge":     SizeXL,
	"xxl":            Size2XL,
	"2xl":            Size2XL,
	"xxlarge":        Size2XL,
	"2xlarge":        Size2XL,
	"2extralarge":    Size2XL,
	"xxxl":           Size3XL,
	"3xl":            Size3XL,
	"xxxlarge":       Size3XL,
	"3xlarge":        Size3XL,
	"3extralarge":    Size3XL,
	"xxxxl":          Size4XL,
	"4xl":            Size4XL,
	"4xlarge":        Size4XL,
	"5xl":            Size5XL,
	"5xlarge":        Size5XL,
	"6xl":            Size6XL,
	"6xlarge":        Size6XL,
	"osfa":           SizeOSFA,
	"os":             SizeOSFA,
	"onesize":        SizeOSFA,
	"onesizefits":    SizeOSFA,
	"onesizefitsall": SizeOSFA,
	"adjustable":     SizeOSFA,
}

var sizeNoise = regexp.MustCompile(`[\s\-_./]+`)

// NormalizeSize canonicalizes a free-text size token ("Extra Large", "X-Large", "xl").
// The second return value is false when the token is not a known size; the
// token is then returned upper-cased so youth and numeric sizes survive.
func NormalizeSize(raw string) (Size, bool) {
	key := sizeNoise.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "")
	if key == "" {
		return "", false
	}
	if s, ok := sizeAliases[key]; ok {
		return s, true
	}
	return Size(strings.ToUpper(strings.TrimSpace(raw))), false
}

// IsValid reports whether the size is one of the canonical enum values
func (s Size) IsValid() bool {
	for _, known := range sizeOrder {
		if s == known {
			return true
		}
	}
	return false
}

// String returns the string representation of Size
func (s Size) String() string {
	return string(s)
}

// SortSizes orders sizes from smallest to largest; unknown sizes keep their
// relative order after the canonical ones.
func SortSizes(sizes []Size) []Size {
	rank := make(map[Size]int, len(sizeOrder))
	for i, s := range sizeOrder {
		rank[s] = i
	}
	out := make([]Size, 0, len(sizes))
	var unknown []Size
	for _, s := range sizeOrder {
		for _, in := range sizes {
			if in == s {
				out = append(out, s)
				break
			}
		}
	}
	for _, in := range sizes {
		if _, ok := rank[in]; !ok {
			unknown = append(unknown, in)
		}
	}
	return append(out, unknown...)
}
