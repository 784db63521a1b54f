package match

import (
	"regexp"
	"strings"
)

var (
	nameSeparators = regexp.MustCompile(`[\s&.(),/-]+`)

	// Removed in this order, each across the whole string.
	legalSuffixes = []string{"limited", "ltd", "industries", "industry", "enterprises", "corp"}
)

// NormalizeName reduces a company or stock name to a comparison key so that
// legal-entity variants ("Acme Industries Ltd.", "ACME") collapse together.
// The key is lossy and only meant for equality and containment checks.
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}
	key := strings.ToLower(name)
	key = strings.ReplaceAll(key, "+", " ")
	for {
		next := stripName(key)
		if next == key {
			return next
		}
		key = next
	}
}

// stripName applies one pass of suffix removal and separator collapsing.
// Removals can splice new suffixes together ("l td", "corcorpp"), so
// NormalizeName repeats passes until the key is stable.
func stripName(key string) string {
	for _, suffix := range legalSuffixes {
		key = strings.ReplaceAll(key, suffix, "")
	}
	key = nameSeparators.ReplaceAllString(key, "")
	return strings.TrimSpace(key)
}
