// Package schema decodes raw model JSON into typed stage records,
// enforcing the pipeline's structural contracts: required fields,
// enum membership, integer scores in 0..10 and ranks in 1..5.
// Validation fails fast on the first violation; no partial record is
// ever returned.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"veillellm/internal/domain"
)

// ValidationError reports the first contract violation found in a
// model's JSON output.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema violation at %s: %s", e.Field, e.Reason)
}

func violation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// flexInt accepts a JSON number or a numeric string, but only integral
// values. Models occasionally quote their scores; anything beyond that
// coercion is rejected.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 1 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("not an integer: %s", data)
	}
	*f = flexInt(n)
	return nil
}

func checkScore(field string, v flexInt) error {
	if v < 0 || v > 10 {
		return violation(field, "score %d outside range 0..10", int(v))
	}
	return nil
}

func checkRank(field string, v flexInt) error {
	if v < 1 || v > 5 {
		return violation(field, "rank %d outside range 1..5", int(v))
	}
	return nil
}

func checkRequired(field, v string) error {
	if v == "" {
		return violation(field, "required field is missing or empty")
	}
	return nil
}

func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return &ValidationError{Field: "$", Reason: err.Error()}
	}
	return nil
}

type analyzedArticleWire struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Source         string  `json:"source"`
	PublishedAt    string  `json:"published_at"`
	Summary        string  `json:"summary"`
	Category       string  `json:"category"`
	RelevanceScore flexInt `json:"relevance_score"`
}

type analyzedSetWire struct {
	Articles    []analyzedArticleWire `json:"articles"`
	ProcessedAt string                `json:"processed_at"`
}

var validCategories = map[string]domain.Category{
	"breakthrough": domain.CategoryBreakthrough,
	"trend":        domain.CategoryTrend,
	"update":       domain.CategoryUpdate,
	"application":  domain.CategoryApplication,
}

// DecodeAnalyzedArticleSet validates analysis-stage output. A missing
// processed_at timestamp is defaulted to now.
func DecodeAnalyzedArticleSet(data []byte) (domain.AnalyzedArticleSet, error) {
	var wire analyzedSetWire
	if err := decode(data, &wire); err != nil {
		return domain.AnalyzedArticleSet{}, err
	}

	if wire.Articles == nil {
		return domain.AnalyzedArticleSet{}, violation("articles", "required field is missing")
	}

	out := domain.AnalyzedArticleSet{
		Articles:    make([]domain.AnalyzedArticle, 0, len(wire.Articles)),
		ProcessedAt: wire.ProcessedAt,
	}
	if out.ProcessedAt == "" {
		out.ProcessedAt = time.Now().Format(time.RFC3339)
	}

	for i, a := range wire.Articles {
		field := func(name string) string { return fmt.Sprintf("articles[%d].%s", i, name) }

		if err := checkRequired(field("title"), a.Title); err != nil {
			return domain.AnalyzedArticleSet{}, err
		}
		if err := checkRequired(field("url"), a.URL); err != nil {
			return domain.AnalyzedArticleSet{}, err
		}
		if err := checkRequired(field("source"), a.Source); err != nil {
			return domain.AnalyzedArticleSet{}, err
		}
		if err := checkRequired(field("published_at"), a.PublishedAt); err != nil {
			return domain.AnalyzedArticleSet{}, err
		}
		if err := checkRequired(field("summary"), a.Summary); err != nil {
			return domain.AnalyzedArticleSet{}, err
		}
		category, ok := validCategories[a.Category]
		if !ok {
			return domain.AnalyzedArticleSet{}, violation(field("category"),
				"%q is not one of breakthrough|trend|update|application", a.Category)
		}
		if err := checkScore(field("relevance_score"), a.RelevanceScore); err != nil {
			return domain.AnalyzedArticleSet{}, err
		}

		out.Articles = append(out.Articles, domain.AnalyzedArticle{
			Title:          a.Title,
			URL:            a.URL,
			Source:         a.Source,
			PublishedAt:    a.PublishedAt,
			Summary:        a.Summary,
			Category:       category,
			RelevanceScore: int(a.RelevanceScore),
		})
	}

	return out, nil
}

type ideaWire struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	SourceArticleURL string   `json:"source_article_url"`
	InnovationType   string   `json:"innovation_type"`
	ImpactScore      flexInt  `json:"impact_score"`
	DifficultyScore  flexInt  `json:"difficulty_score"`
	UseCases         []string `json:"use_cases"`
	Rationale        string   `json:"rationale"`
}

type ideaSetWire struct {
	Ideas          []ideaWire `json:"ideas"`
	TotalExtracted flexInt    `json:"total_extracted"`
}

// DecodeIdeaSet validates extraction-stage output. total_extracted is
// accepted as the model reported it and is not compared to len(ideas).
func DecodeIdeaSet(data []byte) (domain.IdeaSet, error) {
	var wire ideaSetWire
	if err := decode(data, &wire); err != nil {
		return domain.IdeaSet{}, err
	}

	if wire.Ideas == nil {
		return domain.IdeaSet{}, violation("ideas", "required field is missing")
	}

	out := domain.IdeaSet{
		Ideas:          make([]domain.Idea, 0, len(wire.Ideas)),
		TotalExtracted: int(wire.TotalExtracted),
	}

	for i, idea := range wire.Ideas {
		field := func(name string) string { return fmt.Sprintf("ideas[%d].%s", i, name) }

		if err := checkRequired(field("title"), idea.Title); err != nil {
			return domain.IdeaSet{}, err
		}
		if err := checkRequired(field("description"), idea.Description); err != nil {
			return domain.IdeaSet{}, err
		}
		if err := checkRequired(field("source_article_url"), idea.SourceArticleURL); err != nil {
			return domain.IdeaSet{}, err
		}
		if err := checkRequired(field("innovation_type"), idea.InnovationType); err != nil {
			return domain.IdeaSet{}, err
		}
		if err := checkScore(field("impact_score"), idea.ImpactScore); err != nil {
			return domain.IdeaSet{}, err
		}
		if err := checkScore(field("difficulty_score"), idea.DifficultyScore); err != nil {
			return domain.IdeaSet{}, err
		}
		if idea.UseCases == nil {
			return domain.IdeaSet{}, violation(field("use_cases"), "required field is missing")
		}
		if err := checkRequired(field("rationale"), idea.Rationale); err != nil {
			return domain.IdeaSet{}, err
		}

		out.Ideas = append(out.Ideas, domain.Idea{
			Title:            idea.Title,
			Description:      idea.Description,
			SourceArticleURL: idea.SourceArticleURL,
			InnovationType:   idea.InnovationType,
			ImpactScore:      int(idea.ImpactScore),
			DifficultyScore:  int(idea.DifficultyScore),
			UseCases:         idea.UseCases,
			Rationale:        idea.Rationale,
		})
	}

	return out, nil
}

type rankedIdeaWire struct {
	Rank          flexInt `json:"rank"`
	Title         string  `json:"title"`
	SourceURL     string  `json:"source_url"`
	ImpactScore   flexInt `json:"impact_score"`
	Justification string  `json:"justification"`
	NextAction    string  `json:"next_action"`
}

type rankedSetWire struct {
	TopIdeas   []rankedIdeaWire `json:"top_ideas"`
	Reflection string           `json:"reflection"`
}

const topIdeaCount = 5

// DecodeRankedIdeaSet validates ranking-stage output: exactly five
// entries whose ranks form a permutation of 1..5.
func DecodeRankedIdeaSet(data []byte) (domain.RankedIdeaSet, error) {
	var wire rankedSetWire
	if err := decode(data, &wire); err != nil {
		return domain.RankedIdeaSet{}, err
	}

	if wire.TopIdeas == nil {
		return domain.RankedIdeaSet{}, violation("top_ideas", "required field is missing")
	}
	if len(wire.TopIdeas) != topIdeaCount {
		return domain.RankedIdeaSet{}, violation("top_ideas",
			"expected exactly %d entries, got %d", topIdeaCount, len(wire.TopIdeas))
	}

	out := domain.RankedIdeaSet{
		TopIdeas:   make([]domain.RankedIdea, 0, topIdeaCount),
		Reflection: wire.Reflection,
	}

	seenRanks := map[int]bool{}
	for i, idea := range wire.TopIdeas {
		field := func(name string) string { return fmt.Sprintf("top_ideas[%d].%s", i, name) }

		if err := checkRank(field("rank"), idea.Rank); err != nil {
			return domain.RankedIdeaSet{}, err
		}
		if seenRanks[int(idea.Rank)] {
			return domain.RankedIdeaSet{}, violation(field("rank"), "duplicate rank %d", int(idea.Rank))
		}
		seenRanks[int(idea.Rank)] = true

		if err := checkRequired(field("title"), idea.Title); err != nil {
			return domain.RankedIdeaSet{}, err
		}
		if err := checkRequired(field("source_url"), idea.SourceURL); err != nil {
			return domain.RankedIdeaSet{}, err
		}
		if err := checkRequired(field("justification"), idea.Justification); err != nil {
			return domain.RankedIdeaSet{}, err
		}
		if err := checkRequired(field("next_action"), idea.NextAction); err != nil {
			return domain.RankedIdeaSet{}, err
		}
		if err := checkScore(field("impact_score"), idea.ImpactScore); err != nil {
			return domain.RankedIdeaSet{}, err
		}

		out.TopIdeas = append(out.TopIdeas, domain.RankedIdea{
			Rank:          int(idea.Rank),
			Title:         idea.Title,
			SourceURL:     idea.SourceURL,
			ImpactScore:   int(idea.ImpactScore),
			Justification: idea.Justification,
			NextAction:    idea.NextAction,
		})
	}

	return out, nil
}

type translatedIdeaWire struct {
	Rank         flexInt `json:"rank"`
	TitleEnglish string  `json:"title_english"`
	Explanation  string  `json:"explanation"`
	SourceURL    string  `json:"source_url"`
}

type translatedSetWire struct {
	Explained []translatedIdeaWire `json:"explained"`
}

// DecodeTranslatedIdeaSet validates translation-stage output.
func DecodeTranslatedIdeaSet(data []byte) (domain.TranslatedIdeaSet, error) {
	var wire translatedSetWire
	if err := decode(data, &wire); err != nil {
		return domain.TranslatedIdeaSet{}, err
	}

	if wire.Explained == nil {
		return domain.TranslatedIdeaSet{}, violation("explained", "required field is missing")
	}

	out := domain.TranslatedIdeaSet{
		Explained: make([]domain.TranslatedIdea, 0, len(wire.Explained)),
	}

	for i, idea := range wire.Explained {
		field := func(name string) string { return fmt.Sprintf("explained[%d].%s", i, name) }

		if err := checkRank(field("rank"), idea.Rank); err != nil {
			return domain.TranslatedIdeaSet{}, err
		}
		if err := checkRequired(field("title_english"), idea.TitleEnglish); err != nil {
			return domain.TranslatedIdeaSet{}, err
		}
		if err := checkRequired(field("explanation"), idea.Explanation); err != nil {
			return domain.TranslatedIdeaSet{}, err
		}
		if err := checkRequired(field("source_url"), idea.SourceURL); err != nil {
			return domain.TranslatedIdeaSet{}, err
		}

		out.Explained = append(out.Explained, domain.TranslatedIdea{
			Rank:         int(idea.Rank),
			TitleEnglish: idea.TitleEnglish,
			Explanation:  idea.Explanation,
			SourceURL:    idea.SourceURL,
		})
	}

	return out, nil
}
