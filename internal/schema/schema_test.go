package schema

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"veillellm/internal/domain"
)

func validRankedJSON() string {
	var ideas []string
	for i := 1; i <= 5; i++ {
		ideas = append(ideas, fmt.Sprintf(`{
			"rank": %d,
			"title": "Idea %d",
			"source_url": "https://example.org/%d",
			"impact_score": %d,
			"justification": "solid",
			"next_action": "build a prototype"
		}`, i, i, i, 10-i))
	}
	return fmt.Sprintf(`{"top_ideas": [%s], "reflection": "good batch"}`, strings.Join(ideas, ","))
}

func TestDecodeAnalyzedArticleSet(t *testing.T) {
	t.Parallel()

	data := `{
		"articles": [{
			"title": "New attention variant",
			"url": "https://example.org/a",
			"source": "example",
			"published_at": "2025-11-08",
			"summary": "A cheaper attention mechanism.",
			"category": "breakthrough",
			"relevance_score": 9
		}],
		"processed_at": "2025-11-08T09:00:00Z"
	}`

	set, err := DecodeAnalyzedArticleSet([]byte(data))
	if err != nil {
		t.Fatalf("decode returned error: %v", err)
	}
	if len(set.Articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(set.Articles))
	}
	if set.Articles[0].Category != domain.CategoryBreakthrough {
		t.Fatalf("unexpected category: %s", set.Articles[0].Category)
	}
	if set.Articles[0].RelevanceScore != 9 {
		t.Fatalf("unexpected score: %d", set.Articles[0].RelevanceScore)
	}
}

func TestDecodeAnalyzedArticleSetDefaultsProcessedAt(t *testing.T) {
	t.Parallel()

	data := `{"articles": []}`
	set, err := DecodeAnalyzedArticleSet([]byte(data))
	if err != nil {
		t.Fatalf("decode returned error: %v", err)
	}
	if set.ProcessedAt == "" {
		t.Fatal("expected processed_at to be defaulted")
	}
}

func TestDecodeAnalyzedArticleSetRejectsBadCategory(t *testing.T) {
	t.Parallel()

	data := `{
		"articles": [{
			"title": "t", "url": "u", "source": "s", "published_at": "2025-11-08", "summary": "s",
			"category": "revolutionary",
			"relevance_score": 5
		}]
	}`

	_, err := DecodeAnalyzedArticleSet([]byte(data))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != "articles[0].category" {
		t.Fatalf("unexpected field: %s", vErr.Field)
	}
}

func TestScoreRangeEnforced(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		score string
	}{
		{"too high", "11"},
		{"negative", "-1"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			data := fmt.Sprintf(`{
				"articles": [{
					"title": "t", "url": "u", "source": "s", "published_at": "2025-11-08", "summary": "s",
					"category": "trend",
					"relevance_score": %s
				}]
			}`, tc.score)

			_, err := DecodeAnalyzedArticleSet([]byte(data))
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(vErr.Reason, "0..10") {
				t.Fatalf("reason should mention range: %s", vErr.Reason)
			}
		})
	}
}

func TestNumericStringCoercion(t *testing.T) {
	t.Parallel()

	data := `{
		"articles": [{
			"title": "t", "url": "u", "source": "s", "published_at": "2025-11-08", "summary": "s",
			"category": "update",
			"relevance_score": "7"
		}]
	}`

	set, err := DecodeAnalyzedArticleSet([]byte(data))
	if err != nil {
		t.Fatalf("numeric string should coerce: %v", err)
	}
	if set.Articles[0].RelevanceScore != 7 {
		t.Fatalf("unexpected score: %d", set.Articles[0].RelevanceScore)
	}
}

func TestNonIntegerScoreRejected(t *testing.T) {
	t.Parallel()

	data := `{
		"articles": [{
			"title": "t", "url": "u", "source": "s", "published_at": "2025-11-08", "summary": "s",
			"category": "update",
			"relevance_score": 7.5
		}]
	}`

	if _, err := DecodeAnalyzedArticleSet([]byte(data)); err == nil {
		t.Fatal("expected error for fractional score")
	}
}

func TestDecodeIdeaSetKeepsSelfReportedTotal(t *testing.T) {
	t.Parallel()

	data := `{
		"ideas": [{
			"title": "t", "description": "d",
			"source_article_url": "https://example.org",
			"innovation_type": "tooling",
			"impact_score": 8, "difficulty_score": 3,
			"use_cases": ["a", "b"],
			"rationale": "because"
		}],
		"total_extracted": 12
	}`

	set, err := DecodeIdeaSet([]byte(data))
	if err != nil {
		t.Fatalf("decode returned error: %v", err)
	}
	if set.TotalExtracted != 12 {
		t.Fatalf("total_extracted should be kept as reported, got %d", set.TotalExtracted)
	}
	if len(set.Ideas) != 1 {
		t.Fatalf("expected 1 idea, got %d", len(set.Ideas))
	}
}

func TestDecodeRankedIdeaSet(t *testing.T) {
	t.Parallel()

	set, err := DecodeRankedIdeaSet([]byte(validRankedJSON()))
	if err != nil {
		t.Fatalf("decode returned error: %v", err)
	}
	if len(set.TopIdeas) != 5 {
		t.Fatalf("expected 5 ideas, got %d", len(set.TopIdeas))
	}
	if set.Reflection != "good batch" {
		t.Fatalf("unexpected reflection: %q", set.Reflection)
	}
}

func TestDecodeRankedIdeaSetRejectsWrongCount(t *testing.T) {
	t.Parallel()

	var ideas []string
	for i := 1; i <= 4; i++ {
		ideas = append(ideas, fmt.Sprintf(
			`{"rank": %d, "title": "t", "source_url": "u", "impact_score": 5, "justification": "j", "next_action": "n"}`, i))
	}
	data := fmt.Sprintf(`{"top_ideas": [%s], "reflection": "r"}`, strings.Join(ideas, ","))

	_, err := DecodeRankedIdeaSet([]byte(data))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(vErr.Reason, "got 4") {
		t.Fatalf("reason should mention actual count: %s", vErr.Reason)
	}
}

func TestDecodeRankedIdeaSetRejectsDuplicateRank(t *testing.T) {
	t.Parallel()

	var ideas []string
	for i := 1; i <= 5; i++ {
		rank := i
		if rank == 5 {
			rank = 4
		}
		ideas = append(ideas, fmt.Sprintf(
			`{"rank": %d, "title": "t", "source_url": "u", "impact_score": 5, "justification": "j", "next_action": "n"}`, rank))
	}
	data := fmt.Sprintf(`{"top_ideas": [%s], "reflection": "r"}`, strings.Join(ideas, ","))

	_, err := DecodeRankedIdeaSet([]byte(data))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(vErr.Reason, "duplicate") {
		t.Fatalf("reason should mention duplicate rank: %s", vErr.Reason)
	}
}

func TestDecodeAnalyzedArticleSetRequiredFields(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload string
		field   string
	}{
		{
			"missing source",
			`{"articles": [{"title": "t", "url": "u", "published_at": "2025-11-08", "summary": "s", "category": "trend", "relevance_score": 5}]}`,
			"articles[0].source",
		},
		{
			"missing published_at",
			`{"articles": [{"title": "t", "url": "u", "source": "s", "summary": "s", "category": "trend", "relevance_score": 5}]}`,
			"articles[0].published_at",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeAnalyzedArticleSet([]byte(tc.payload))
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tc.field {
				t.Fatalf("expected violation at %s, got %s", tc.field, vErr.Field)
			}
		})
	}
}

func TestDecodeIdeaSetRequiredFields(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload string
		field   string
	}{
		{
			"missing innovation_type",
			`{"ideas": [{"title": "t", "description": "d", "source_article_url": "u", "impact_score": 5, "difficulty_score": 3, "use_cases": ["a"], "rationale": "r"}]}`,
			"ideas[0].innovation_type",
		},
		{
			"missing use_cases",
			`{"ideas": [{"title": "t", "description": "d", "source_article_url": "u", "innovation_type": "tooling", "impact_score": 5, "difficulty_score": 3, "rationale": "r"}]}`,
			"ideas[0].use_cases",
		},
		{
			"missing rationale",
			`{"ideas": [{"title": "t", "description": "d", "source_article_url": "u", "innovation_type": "tooling", "impact_score": 5, "difficulty_score": 3, "use_cases": ["a"]}]}`,
			"ideas[0].rationale",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeIdeaSet([]byte(tc.payload))
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tc.field {
				t.Fatalf("expected violation at %s, got %s", tc.field, vErr.Field)
			}
		})
	}
}

func TestDecodeRankedIdeaSetRequiredFields(t *testing.T) {
	t.Parallel()

	entry := func(rank int, omit string) string {
		fields := map[string]string{
			"rank":          fmt.Sprintf(`"rank": %d`, rank),
			"title":         `"title": "t"`,
			"source_url":    `"source_url": "u"`,
			"impact_score":  `"impact_score": 5`,
			"justification": `"justification": "j"`,
			"next_action":   `"next_action": "n"`,
		}
		delete(fields, omit)
		parts := make([]string, 0, len(fields))
		for _, name := range []string{"rank", "title", "source_url", "impact_score", "justification", "next_action"} {
			if f, ok := fields[name]; ok {
				parts = append(parts, f)
			}
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}

	for _, omit := range []string{"source_url", "next_action"} {
		omit := omit
		t.Run("missing "+omit, func(t *testing.T) {
			t.Parallel()
			var ideas []string
			for i := 1; i <= 5; i++ {
				ideas = append(ideas, entry(i, omit))
			}
			data := fmt.Sprintf(`{"top_ideas": [%s], "reflection": "r"}`, strings.Join(ideas, ","))

			_, err := DecodeRankedIdeaSet([]byte(data))
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != "top_ideas[0]."+omit {
				t.Fatalf("expected violation at top_ideas[0].%s, got %s", omit, vErr.Field)
			}
		})
	}
}

func TestDecodeTranslatedIdeaSetRequiresSourceURL(t *testing.T) {
	t.Parallel()

	data := `{"explained": [{"rank": 1, "title_english": "t", "explanation": "e"}]}`

	_, err := DecodeTranslatedIdeaSet([]byte(data))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != "explained[0].source_url" {
		t.Fatalf("expected violation at explained[0].source_url, got %s", vErr.Field)
	}
}

func TestDecodeTranslatedIdeaSetRejectsRankOutOfRange(t *testing.T) {
	t.Parallel()

	data := `{"explained": [{"rank": 6, "title_english": "t", "explanation": "e", "source_url": "u"}]}`

	_, err := DecodeTranslatedIdeaSet([]byte(data))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(vErr.Reason, "1..5") {
		t.Fatalf("reason should mention rank range: %s", vErr.Reason)
	}
}
