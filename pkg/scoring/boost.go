package scoring

import (
	"strings"

	"github.com/bowr/streamear/pkg/model"
)

const (
	MaxBoost = 0.5

	perArticleBoost  = 0.1
	countedArticles  = 5
	trustedBoost     = 0.2
	trustedThreshold = 2
)

// DefaultTrustedSources is used when no allow-list is configured
var DefaultTrustedSources = []string{"bloomberg", "reuters", "wsj", "cnbc", "marketwatch"}

// NewsBoost scores the articles found for one keyword. Each article adds 0.1
// up to five articles, two or more trusted sources add 0.2, and the result
// is capped at MaxBoost.
func NewsBoost(articles []*model.Article, trusted []string) float64 {
	if len(articles) == 0 {
		return 0
	}

	boost := perArticleBoost * float64(min(len(articles), countedArticles))
	if countTrusted(articles, trusted) >= trustedThreshold {
		boost += trustedBoost
	}
	return Round2(clamp(boost, 0, MaxBoost))
}

func countTrusted(articles []*model.Article, trusted []string) int {
	hits := 0
	for _, a := range articles {
		if a == nil {
			continue
		}
		if IsTrustedSource(a.SourceName, trusted) {
			hits++
		}
	}
	return hits
}

// IsTrustedSource matches any allow-list entry as a case-insensitive substring
func IsTrustedSource(name string, trusted []string) bool {
	lower := strings.ToLower(name)
	for _, t := range trusted {
		if t == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}
