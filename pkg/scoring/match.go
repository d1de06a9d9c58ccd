package scoring

import "strings"

// MatchKeywords returns the keywords found in text as case-insensitive
// substrings, in configured order.
func MatchKeywords(text string, keywords []string) []string {
	matched := []string{}
	if text == "" {
		return matched
	}

	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}
