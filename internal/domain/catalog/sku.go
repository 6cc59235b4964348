package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

const skuHashLength = 4

// GenerateVariantSKU builds the internal SKU of a variant from its brand,
// the supplier base style and the canonical color and size. The result only
// depends on its inputs, so re-normalizing the same variant yields the same SKU.
//
// Layout: BRAND-BASE-COLOR-SIZE-HASH, e.g. "ASC-5001-BLA-XL-7c1e". The short
// hash covers the full tuple and keeps SKUs unique when color codes collide.
func GenerateVariantSKU(brand, baseSKU string, color Color, size Size) string {
	prefix := brandPrefix(brand)
	base := skuSegment(baseSKU)
	colorCode := colorSegment(color)
	sizeCode := skuSegment(string(size))

	h := sha256.New()
	for _, part := range []string{prefix, base, color.Slug, sizeCode} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	sum := hex.EncodeToString(h.Sum(nil))[:skuHashLength]

	parts := []string{prefix, base}
	if colorCode != "" {
		parts = append(parts, colorCode)
	}
	if sizeCode != "" {
		parts = append(parts, sizeCode)
	}
	parts = append(parts, sum)
	return strings.Join(parts, "-")
}

// brandPrefix is the first three letters or digits of the brand, upper-cased
func brandPrefix(brand string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(brand) {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			continue
		}
		b.WriteRune(r)
		if b.Len() == 3 {
			break
		}
	}
	if b.Len() == 0 {
		return "GEN"
	}
	return b.String()
}

// colorSegment abbreviates each word of the color slug to three letters,
// using at most two words: "heather-grey" -> "HEAGRE".
func colorSegment(c Color) string {
	words := strings.Split(c.Slug, "-")
	var b strings.Builder
	for i, w := range words {
		if i == 2 {
			break
		}
		if len(w) > 3 {
			w = w[:3]
		}
		b.WriteString(strings.ToUpper(w))
	}
	return b.String()
}

func skuSegment(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		if r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
