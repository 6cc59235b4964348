package catalog

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MatchCandidate is a suggested cross-supplier identity for a product.
// Candidates are suggestions only; nothing is merged automatically.
type MatchCandidate struct {
	Product        UnifiedProduct `json:"product"`
	Score          float64        `json:"score"`
	NameScore      float64        `json:"nameScore"`
	CategoryScore  float64        `json:"categoryScore"`
	BrandAgreement bool           `json:"brandAgreement"`
}

// MatcherConfig tunes the fuzzy matcher
type MatcherConfig struct {
	// Threshold is the minimum combined score (0..1) for a candidate
	Threshold float64
	// RequireBrand rejects candidates whose normalized brands differ
	RequireBrand bool
	// NameWeight and CategoryWeight must sum to 1
	NameWeight     float64
	CategoryWeight float64
}

// DefaultMatcherConfig returns the conservative defaults used by sync
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		Threshold:      0.82,
		RequireBrand:   true,
		NameWeight:     0.8,
		CategoryWeight: 0.2,
	}
}

// Matcher suggests cross-supplier product matches by comparing normalized
// name, brand and category strings.
type Matcher struct {
	config MatcherConfig
}

// NewMatcher creates a matcher; zero weights fall back to the defaults
func NewMatcher(cfg MatcherConfig) *Matcher {
	def := DefaultMatcherConfig()
	if cfg.NameWeight == 0 && cfg.CategoryWeight == 0 {
		cfg.NameWeight = def.NameWeight
		cfg.CategoryWeight = def.CategoryWeight
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	return &Matcher{config: cfg}
}

// Compare scores one pair of products
func (m *Matcher) Compare(a, b UnifiedProduct) MatchCandidate {
	nameScore := Similarity(stripBrand(a.Name, a.Brand), stripBrand(b.Name, b.Brand))
	categoryScore := 0.0
	if NormalizeCategory(a.Category) == NormalizeCategory(b.Category) {
		categoryScore = 1
	}
	return MatchCandidate{
		Product:        b,
		NameScore:      nameScore,
		CategoryScore:  categoryScore,
		BrandAgreement: foldText(a.Brand) != "" && foldText(a.Brand) == foldText(b.Brand),
		Score:          m.config.NameWeight*nameScore + m.config.CategoryWeight*categoryScore,
	}
}

// FindCandidates returns the products in pool that may be the same logical
// product as target, best match first. Products from the target's own
// supplier are skipped.
func (m *Matcher) FindCandidates(target UnifiedProduct, pool []UnifiedProduct) []MatchCandidate {
	var out []MatchCandidate
	for _, p := range pool {
		if p.SupplierID == target.SupplierID {
			continue
		}
		c := m.Compare(target, p)
		if m.config.RequireBrand && !c.BrandAgreement {
			continue
		}
		if c.Score < m.config.Threshold {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Similarity returns a 0..1 score for two strings after folding case,
// accents and punctuation: 1 - levenshtein/maxLen.
func Similarity(a, b string) float64 {
	fa, fb := foldText(a), foldText(b)
	if fa == "" && fb == "" {
		return 1
	}
	ra, rb := []rune(fa), []rune(fb)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	return 1 - float64(levenshtein(ra, rb))/float64(maxLen)
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldText lower-cases, strips accents and collapses punctuation to single spaces
func foldText(s string) string {
	folded, _, err := transform.String(accentStripper, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// stripBrand removes a leading brand name so "Gildan Heavy Cotton Tee" and
// "Heavy Cotton Tee" compare on the product words
func stripBrand(name, brand string) string {
	fn, fb := foldText(name), foldText(brand)
	if fb != "" && strings.HasPrefix(fn, fb+" ") {
		return strings.TrimPrefix(fn, fb+" ")
	}
	return fn
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
