package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"veillellm/internal/domain"
	"veillellm/internal/source"
)

// RSS fetches articles from configured feed URLs. Feed descriptions
// frequently carry HTML markup; it is stripped before the text is
// handed to the pipeline.
type RSS struct {
	parser *gofeed.Parser
}

var _ source.Provider = (*RSS)(nil)

// NewRSS builds the feed-backed provider.
func NewRSS() *RSS {
	return &RSS{parser: gofeed.NewParser()}
}

// Name identifies the strategy inside the registry.
func (r *RSS) Name() string {
	return "rss"
}

// Fetch pulls every configured feed, keeps items inside the time
// window that match at least one keyword, and trims to the limit.
func (r *RSS) Fetch(ctx context.Context, req source.Request) ([]domain.RawArticle, error) {
	if len(req.Feeds) == 0 {
		return nil, fmt.Errorf("no feeds configured for rss provider")
	}

	var all []domain.RawArticle
	for _, feedURL := range req.Feeds {
		feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
		}

		for _, item := range feed.Items {
			published := publishedTime(item)
			if !req.Since.IsZero() && published.Before(req.Since) {
				continue
			}
			if !matchesKeywords(item, req.Keywords) {
				continue
			}

			all = append(all, domain.RawArticle{
				Title:       item.Title,
				URL:         item.Link,
				Source:      feed.Title,
				PublishedAt: published.Format(time.RFC3339),
				Description: stripHTML(item.Description),
			})
		}
	}

	if req.Limit > 0 && len(all) > req.Limit {
		all = all[:req.Limit]
	}
	return all, nil
}

func publishedTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Now().UTC()
}

func matchesKeywords(item *gofeed.Item, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	haystack := strings.ToLower(item.Title + " " + item.Description)
	for _, kw := range keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func stripHTML(text string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(doc.Text())
}
