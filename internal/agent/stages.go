package agent

import (
	"context"
	"fmt"
	"strings"

	"veillellm/internal/domain"
	"veillellm/internal/schema"
)

// Stage identifiers used in errors and progress logs.
const (
	StageAnalyze   = "analyze"
	StageExtract   = "extract_ideas"
	StageRank      = "rank_ideas"
	StageTranslate = "translate"
)

// Stage temperatures: conservative analysis, exploratory extraction,
// balanced ranking, and the highest for natural dialect text.
const (
	analyzeTemperature   = 0.5
	extractTemperature   = 0.7
	rankTemperature      = 0.6
	translateTemperature = 0.8
)

// Analyze runs the first stage: summarize, categorize and score the
// raw articles.
func (r *Runner) Analyze(ctx context.Context, articles []domain.RawArticle) (domain.AnalyzedArticleSet, error) {
	var sb strings.Builder
	for i, a := range articles {
		fmt.Fprintf(&sb, "Article %d:\nTitle: %s\nSource: %s\nPublished: %s\nURL: %s\nDescription: %s\n\n",
			i+1, a.Title, a.Source, a.PublishedAt, a.URL, a.Description)
	}

	prompt := fmt.Sprintf("%s\n\nHere are the articles to analyze:\n\n%s", analyzePrompt, sb.String())
	return runStage(ctx, r, StageAnalyze, prompt, analyzeTemperature, schema.DecodeAnalyzedArticleSet)
}

// ExtractIdeas runs the second stage: pull actionable ideas out of the
// analyzed articles.
func (r *Runner) ExtractIdeas(ctx context.Context, analyzed domain.AnalyzedArticleSet) (domain.IdeaSet, error) {
	var sb strings.Builder
	for i, a := range analyzed.Articles {
		fmt.Fprintf(&sb, "Article %d:\nTitle: %s\nCategory: %s\nRelevance Score: %d/10\nSummary: %s\nURL: %s\n\n",
			i+1, a.Title, a.Category, a.RelevanceScore, a.Summary, a.URL)
	}

	prompt := fmt.Sprintf("%s\n\nHere are the analyzed articles:\n\n%s", extractPrompt, sb.String())
	return runStage(ctx, r, StageExtract, prompt, extractTemperature, schema.DecodeIdeaSet)
}

// RankIdeas runs the third stage: validate the ideas and keep the top
// five, ranked.
func (r *Runner) RankIdeas(ctx context.Context, ideas domain.IdeaSet) (domain.RankedIdeaSet, error) {
	var sb strings.Builder
	for i, idea := range ideas.Ideas {
		fmt.Fprintf(&sb, "Idea %d:\nTitle: %s\nDescription: %s\nInnovation Type: %s\nImpact Score: %d/10\nDifficulty: %d/10\nUse Cases: %s\nRationale: %s\nSource: %s\n\n",
			i+1, idea.Title, idea.Description, idea.InnovationType, idea.ImpactScore,
			idea.DifficultyScore, strings.Join(idea.UseCases, ", "), idea.Rationale, idea.SourceArticleURL)
	}

	prompt := fmt.Sprintf("%s\n\nHere are the extracted ideas:\n\n%s", rankPrompt, sb.String())
	return runStage(ctx, r, StageRank, prompt, rankTemperature, schema.DecodeRankedIdeaSet)
}

// Translate runs the fourth stage: rewrite the top-five explanations
// in the target dialect.
func (r *Runner) Translate(ctx context.Context, ranked domain.RankedIdeaSet) (domain.TranslatedIdeaSet, error) {
	var sb strings.Builder
	for _, idea := range ranked.TopIdeas {
		fmt.Fprintf(&sb, "Idea #%d:\nTitle: %s\nImpact Score: %d/10\nJustification: %s\nNext Action: %s\nSource URL: %s\n\n",
			idea.Rank, idea.Title, idea.ImpactScore, idea.Justification, idea.NextAction, idea.SourceURL)
	}

	prompt := fmt.Sprintf("%s\n\nHere are the top 5 ideas to translate:\n\n%s", translatePrompt, sb.String())
	return runStage(ctx, r, StageTranslate, prompt, translateTemperature, schema.DecodeTranslatedIdeaSet)
}
