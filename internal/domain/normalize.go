package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed typos.yaml
var defaultTypos []byte

// wordPattern matches a maximal word: letters and digits with optional
// internal apostrophes ("what's"). Everything between words is preserved.
var (
	wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:'[\p{L}\p{N}]+)*`)
	wholeWord   = regexp.MustCompile(`^[\p{L}\p{N}]+(?:'[\p{L}\p{N}]+)*$`)
)

// Normalizer corrects common misspellings of domain terms, whole word and
// case-insensitively. It is safe for concurrent use.
type Normalizer struct {
	corrections map[string]string
}

type typoFile struct {
	Corrections map[string]string `yaml:"corrections"`
}

// NewNormalizer builds a Normalizer from a misspelling -> canonical map.
// Keys are matched case-insensitively. A canonical word that is itself a key,
// or that is not a single word, is rejected so that normalization stays idempotent.
func NewNormalizer(corrections map[string]string) (*Normalizer, error) {
	m := make(map[string]string, len(corrections))
	for typo, canonical := range corrections {
		typo = strings.ToLower(strings.TrimSpace(typo))
		canonical = strings.ToLower(strings.TrimSpace(canonical))
		if !wholeWord.MatchString(typo) {
			return nil, fmt.Errorf("misspelling %q is not a single word", typo)
		}
		if !wholeWord.MatchString(canonical) {
			return nil, fmt.Errorf("correction %q for %q is not a single word", canonical, typo)
		}
		if typo == canonical {
			return nil, fmt.Errorf("misspelling %q maps to itself", typo)
		}
		m[typo] = canonical
	}
	for typo, canonical := range m {
		if _, ok := m[canonical]; ok {
			return nil, fmt.Errorf("correction %q for %q is also listed as a misspelling", canonical, typo)
		}
	}
	return &Normalizer{corrections: m}, nil
}

// LoadNormalizer decodes a YAML dictionary with a top-level "corrections" map.
func LoadNormalizer(r io.Reader) (*Normalizer, error) {
	var f typoFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode typo dictionary: %w", err)
	}
	return NewNormalizer(f.Corrections)
}

// DefaultNormalizer returns a Normalizer over the embedded dictionary.
func DefaultNormalizer() *Normalizer {
	n, err := LoadNormalizer(bytes.NewReader(defaultTypos))
	if err != nil {
		panic(fmt.Sprintf("embedded typo dictionary: %v", err))
	}
	return n
}

// Normalize returns raw with every known misspelling replaced.
func (n *Normalizer) Normalize(raw string) string {
	out, _ := n.Correct(raw)
	return out
}

// Correct is Normalize that also reports whether anything changed.
func (n *Normalizer) Correct(raw string) (string, bool) {
	if raw == "" || len(n.corrections) == 0 {
		return raw, false
	}
	changed := false
	out := wordPattern.ReplaceAllStringFunc(raw, func(word string) string {
		canonical, ok := n.corrections[strings.ToLower(word)]
		if !ok {
			return word
		}
		fixed := matchCase(word, canonical)
		if fixed != word {
			changed = true
		}
		return fixed
	})
	return out, changed
}

// Len returns the number of known misspellings.
func (n *Normalizer) Len() int {
	return len(n.corrections)
}

// matchCase applies the casing pattern of original to the lowercase canonical word.
// Casers are stateful, so a fresh one is built per call.
func matchCase(original, canonical string) string {
	hasUpper, hasLower := false, false
	for _, r := range original {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	switch {
	case hasUpper && !hasLower:
		return cases.Upper(language.Und).String(canonical)
	case startsUpper(original):
		return cases.Title(language.Und).String(canonical)
	default:
		return canonical
	}
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
