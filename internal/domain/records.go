package domain

import "time"

// Category buckets an analyzed article by technical significance.
type Category string

const (
	CategoryBreakthrough Category = "breakthrough"
	CategoryTrend        Category = "trend"
	CategoryUpdate       Category = "update"
	CategoryApplication  Category = "application"
)

// RawArticle is article metadata as fetched from a news provider,
// before any model has looked at it.
type RawArticle struct {
	Title       string
	URL         string
	Source      string
	PublishedAt string
	Description string
}

// AnalyzedArticle is a news article after the analysis stage scored
// and categorized it.
type AnalyzedArticle struct {
	Title          string
	URL            string
	Source         string
	PublishedAt    string
	Summary        string
	Category       Category
	RelevanceScore int
}

// AnalyzedArticleSet is the full output of the analysis stage.
type AnalyzedArticleSet struct {
	Articles    []AnalyzedArticle
	ProcessedAt string
}

// Idea is an actionable idea extracted from the analyzed articles.
type Idea struct {
	Title            string
	Description      string
	SourceArticleURL string
	InnovationType   string
	ImpactScore      int
	DifficultyScore  int
	UseCases         []string
	Rationale        string
}

// IdeaSet is the full output of the extraction stage. TotalExtracted
// is self-reported by the model and is not cross-checked against
// len(Ideas).
type IdeaSet struct {
	Ideas          []Idea
	TotalExtracted int
}

// RankedIdea is one of the five ideas the ranking stage kept.
type RankedIdea struct {
	Rank          int
	Title         string
	SourceURL     string
	ImpactScore   int
	Justification string
	NextAction    string
}

// RankedIdeaSet holds exactly five ranked ideas plus the model's
// reflection on its selection.
type RankedIdeaSet struct {
	TopIdeas   []RankedIdea
	Reflection string
}

// TranslatedIdea is a ranked idea with its explanation rewritten in
// the target dialect.
type TranslatedIdea struct {
	Rank         int
	TitleEnglish string
	Explanation  string
	SourceURL    string
}

// TranslatedIdeaSet is the full output of the translation stage.
type TranslatedIdeaSet struct {
	Explained []TranslatedIdea
}

// RunStatus enumerates pipeline execution lifecycle states.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// PipelineRun records a single pipeline execution from start to its
// terminal transition. It is owned by the orchestrator and persisted
// to history exactly once, on the terminal transition.
type PipelineRun struct {
	ExecutionID     string    `json:"execution_id"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at,omitzero"`
	Status          RunStatus `json:"status"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	ArticlesFetched int       `json:"articles_fetched"`
	IdeasExtracted  int       `json:"ideas_extracted"`
	DeliverySent    bool      `json:"delivery_sent"`
}
