package usecase

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"veillellm/internal/domain"
)

var rankDecorations = [5]string{"🥇", "🥈", "🥉", "4️⃣", "5️⃣"}

// formatMessage renders the translated top five as a Markdown message,
// in rank order 1..5.
func formatMessage(translated domain.TranslatedIdeaSet, now time.Time) string {
	ideas := make([]domain.TranslatedIdea, len(translated.Explained))
	copy(ideas, translated.Explained)
	sort.Slice(ideas, func(i, j int) bool { return ideas[i].Rank < ideas[j].Rank })

	parts := []string{
		"🚀 *TOP 5 IDÉES LLM/AI - AUJOURD'HUI*",
		"",
		"Voici les 5 idées les plus intéressantes du moment:",
		"",
	}

	for _, idea := range ideas {
		decoration := ""
		if idea.Rank >= 1 && idea.Rank <= 5 {
			decoration = rankDecorations[idea.Rank-1]
		}
		parts = append(parts,
			fmt.Sprintf("%s *%s*", decoration, idea.TitleEnglish),
			idea.Explanation,
			fmt.Sprintf("🔗 [Source](%s)", idea.SourceURL),
			"",
		)
	}

	parts = append(parts,
		"---",
		"💡 *Veille LLM Agent System*",
		fmt.Sprintf("📅 %s", now.Format("02/01/2006 à 15:04")),
	)

	return strings.Join(parts, "\n")
}

// formatFailureNotice renders the best-effort failure notification.
func formatFailureNotice(run domain.PipelineRun) string {
	return fmt.Sprintf(
		"⚠️ *ERREUR - Veille LLM*\n\nLe pipeline a échoué:\n%s\n\nExecution ID: %s\nTimestamp: %s",
		run.ErrorMessage,
		run.ExecutionID,
		run.CompletedAt.Format("02/01/2006 à 15:04"),
	)
}
