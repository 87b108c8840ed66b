package importer

import "strings"

// knownPrefixes are the organizational prefixes the POS export prepends to
// store names, in priority order. Only the first match is stripped.
var knownPrefixes = []string{
	"GRUPO TCW SAS - THE CHEESE WHEEL - ",
	"GRUPO TCW SAS - ",
	"THE CHEESE WHEEL - ",
	"TCW - ",
}

// CleanStoreName trims the raw store name and removes one known
// organizational prefix, matched case-insensitively at the start of the
// string. Empty input yields an empty string.
func CleanStoreName(storeName string) string {
	cleaned := strings.TrimSpace(storeName)
	if cleaned == "" {
		return ""
	}

	for _, prefix := range knownPrefixes {
		if len(cleaned) >= len(prefix) && strings.EqualFold(cleaned[:len(prefix)], prefix) {
			cleaned = cleaned[len(prefix):]
			break
		}
	}

	return strings.TrimSpace(cleaned)
}
