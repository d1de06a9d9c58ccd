package scoring_test

import (
	"strings"
	"testing"
	"time"

	"github.com/bowr/streamear/pkg/model"
	"github.com/bowr/streamear/pkg/scoring"
	"github.com/m-mizutani/gt"
)

func TestMatchKeywords(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		keywords []string
		expected []string
	}{
		{"case insensitive", "Prices moved after OPEC met", []string{"oil", "opec"}, []string{"opec"}},
		{"configured order kept", "opec said oil supply", []string{"oil", "opec"}, []string{"oil", "opec"}},
		{"substring match", "the spoiled batch", []string{"oil"}, []string{"oil"}},
		{"empty text", "", []string{"oil"}, []string{}},
		{"empty keywords", "oil everywhere", nil, []string{}},
		{"empty keyword ignored", "anything", []string{""}, []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := scoring.MatchKeywords(tc.text, tc.keywords)
			gt.A(t, got).Length(len(tc.expected))
			for i := range tc.expected {
				gt.Equal(t, got[i], tc.expected[i])
			}
		})
	}
}

func TestMatchKeywordsSubset(t *testing.T) {
	keywords := []string{"fed", "rate", "cut", "inflation", "jobs"}
	text := "The FED signalled a Rate path while INFLATION cooled"

	got := scoring.MatchKeywords(text, keywords)
	last := -1
	for _, kw := range got {
		idx := -1
		for i, k := range keywords {
			if k == kw {
				idx = i
			}
		}
		gt.True(t, idx > last)
		last = idx
		gt.True(t, strings.Contains(strings.ToLower(text), kw))
	}
	gt.A(t, got).Length(3)
}

func TestDetectionConfidence(t *testing.T) {
	gt.Equal(t, scoring.DetectionConfidence(0), 0.1)
	gt.Equal(t, scoring.DetectionConfidence(1), 0.4)
	gt.Equal(t, scoring.DetectionConfidence(3), 0.6)
	gt.Equal(t, scoring.DetectionConfidence(5), 0.8)
	gt.Equal(t, scoring.DetectionConfidence(6), 0.9)
	gt.Equal(t, scoring.DetectionConfidence(7), 0.95)
	gt.Equal(t, scoring.DetectionConfidence(100), 0.95)

	prev := 0.0
	for k := 0; k < 20; k++ {
		c := scoring.DetectionConfidence(k)
		gt.True(t, c >= 0.1 && c <= 0.95)
		gt.True(t, c >= prev)
		prev = c
	}
}

func TestReevaluatedConfidence(t *testing.T) {
	for _, base := range []float64{0, 0.1, 0.25, 0.5, 0.75, 0.9, 1} {
		for _, boost := range []float64{0, 0.1, 0.2, 0.3, 0.5} {
			got := scoring.ReevaluatedConfidence(base, boost)
			gt.True(t, got <= 1.0)
			gt.Equal(t, got, scoring.Round2(min(base+boost, 1.0)))
		}
	}

	// summed boosts across keywords can exceed a single cap
	gt.Equal(t, scoring.ReevaluatedConfidence(0.4, 0.9), 1.0)
}

func articlesFrom(sources ...string) []*model.Article {
	articles := make([]*model.Article, 0, len(sources))
	for _, s := range sources {
		articles = append(articles, &model.Article{SourceName: s})
	}
	return articles
}

func TestNewsBoost(t *testing.T) {
	trusted := scoring.DefaultTrustedSources

	testCases := []struct {
		name     string
		articles []*model.Article
		expected float64
	}{
		{"no articles", nil, 0},
		{"one article", articlesFrom("Some Blog"), 0.1},
		{"count capped at five", articlesFrom("a", "b", "c", "d", "e", "f", "g"), 0.5},
		{"single trusted source gets no bonus", articlesFrom("Reuters", "b"), 0.2},
		{"two trusted sources", articlesFrom("Reuters", "CNBC"), 0.4},
		{"trusted plus others capped", articlesFrom("reuters", "cnbc", "x", "y", "z"), 0.5},
		{"substring of source name", articlesFrom("Bloomberg.com", "The WSJ Online"), 0.4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, scoring.NewsBoost(tc.articles, trusted), tc.expected)
		})
	}
}

func TestNewsBoostCustomAllowList(t *testing.T) {
	articles := articlesFrom("Local Gazette", "local gazette weekend", "Reuters")
	gt.Equal(t, scoring.NewsBoost(articles, []string{"gazette"}), 0.5)
	gt.Equal(t, scoring.NewsBoost(articles, nil), 0.3)
}

func TestClassifyDetection(t *testing.T) {
	testCases := []struct {
		confidence float64
		expected   model.Status
	}{
		{1.0, model.StatusBlooming},
		{0.8, model.StatusBlooming},
		{0.79999, model.StatusSprouting},
		{0.6, model.StatusSprouting},
		{0.59, model.StatusPlanted},
		{0.4, model.StatusPlanted},
		{0.39, model.StatusDormant},
		{0.25, model.StatusDormant},
		{0.2, model.StatusDormant},
		{0.19999, model.StatusDiscarded},
		{0.1, model.StatusDiscarded},
		{0, model.StatusDiscarded},
	}

	for _, tc := range testCases {
		gt.Equal(t, scoring.ClassifyDetection(tc.confidence), tc.expected)
	}
}

func TestClassifyReevaluation(t *testing.T) {
	testCases := []struct {
		name       string
		confidence float64
		age        time.Duration
		current    model.Status
		expected   model.Status
	}{
		{"promote to blooming", 0.8, time.Hour, model.StatusPlanted, model.StatusBlooming},
		{"promote to sprouting", 0.6, time.Hour, model.StatusPlanted, model.StatusSprouting},
		{"demote from sprouting is not possible in middle band", 0.5, 48 * time.Hour, model.StatusSprouting, model.StatusSprouting},
		{"middle band old seed unchanged", 0.5, 30 * time.Hour, model.StatusPlanted, model.StatusPlanted},
		{"low and old is discarded", 0.25, 25 * time.Hour, model.StatusPlanted, model.StatusDiscarded},
		{"low and young unchanged", 0.25, 23 * time.Hour, model.StatusPlanted, model.StatusPlanted},
		{"exactly 24 hours unchanged", 0.1, 24 * time.Hour, model.StatusPlanted, model.StatusPlanted},
		{"0.3 is not low", 0.3, 72 * time.Hour, model.StatusPlanted, model.StatusPlanted},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, scoring.ClassifyReevaluation(tc.confidence, tc.age, tc.current), tc.expected)
		})
	}
}

func TestDetectionScenario(t *testing.T) {
	matched := scoring.MatchKeywords("Ministers from OPEC gathered today", []string{"oil", "opec"})
	gt.A(t, matched).Length(1)
	gt.Equal(t, matched[0], "opec")

	confidence := scoring.DetectionConfidence(len(matched))
	gt.Equal(t, confidence, 0.4)
	gt.Equal(t, scoring.ClassifyDetection(confidence), model.StatusPlanted)
}
