package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"veillellm/internal/domain"
	"veillellm/internal/source"
)

const (
	theNewsAPIBaseURL = "https://api.thenewsapi.com/v1/news/all"

	// Free-tier pagination behaves erratically; cap the walk.
	maxPages = 10
)

// TheNewsAPI fetches recent articles from TheNewsAPI.com, paging until
// the requested limit is reached.
type TheNewsAPI struct {
	apiToken string
	baseURL  string
	client   *http.Client
}

var _ source.Provider = (*TheNewsAPI)(nil)

// NewTheNewsAPI wires an HTTP client; client defaults to a 30s timeout.
func NewTheNewsAPI(apiToken string, client *http.Client) *TheNewsAPI {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &TheNewsAPI{apiToken: apiToken, baseURL: theNewsAPIBaseURL, client: client}
}

// Name identifies the strategy inside the registry.
func (t *TheNewsAPI) Name() string {
	return "thenewsapi"
}

// Fetch walks result pages within the requested time window and trims
// the aggregate to the requested limit.
func (t *TheNewsAPI) Fetch(ctx context.Context, req source.Request) ([]domain.RawArticle, error) {
	if req.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", req.Limit)
	}

	var all []domain.RawArticle
	for page := 1; len(all) < req.Limit && page <= maxPages; page++ {
		pageURL, err := t.buildPageURL(req, page)
		if err != nil {
			return nil, err
		}

		articles, err := t.fetchPage(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(articles) == 0 {
			break
		}
		all = append(all, articles...)
	}

	if len(all) > req.Limit {
		all = all[:req.Limit]
	}
	return all, nil
}

func (t *TheNewsAPI) buildPageURL(req source.Request, page int) (string, error) {
	parsed, err := url.Parse(t.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %s: %w", t.baseURL, err)
	}

	query := parsed.Query()
	query.Set("api_token", t.apiToken)
	query.Set("search", strings.Join(req.Keywords, " OR "))
	query.Set("language", "en")
	query.Set("published_after", req.Since.Format("2006-01-02"))
	query.Set("published_before", req.Until.Format("2006-01-02"))
	query.Set("limit", strconv.Itoa(req.Limit))
	query.Set("sort", "published_at")
	query.Set("page", strconv.Itoa(page))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (t *TheNewsAPI) fetchPage(ctx context.Context, pageURL string) ([]domain.RawArticle, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thenewsapi returned %s", resp.Status)
	}

	var payload struct {
		Data []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Source      string `json:"source"`
			PublishedAt string `json:"published_at"`
			Description string `json:"description"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	articles := make([]domain.RawArticle, 0, len(payload.Data))
	for _, item := range payload.Data {
		articles = append(articles, domain.RawArticle{
			Title:       item.Title,
			URL:         item.URL,
			Source:      item.Source,
			PublishedAt: item.PublishedAt,
			Description: item.Description,
		})
	}
	return articles, nil
}
