package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bowr/streamear/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

const newsAPIBaseURL = "https://newsapi.org/v2"

// News searches recent news coverage for a keyword
type News interface {
	Search(ctx context.Context, keyword string) ([]*model.Article, error)
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// NewsAPI implements News with the newsapi.org "everything" endpoint
type NewsAPI struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

// NewsAPIOption is a functional option for NewsAPI
type NewsAPIOption func(*NewsAPI)

// WithNewsBaseURL overrides the API endpoint
func WithNewsBaseURL(baseURL string) NewsAPIOption {
	return func(n *NewsAPI) {
		n.baseURL = baseURL
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(client *http.Client) NewsAPIOption {
	return func(n *NewsAPI) {
		n.httpClient = client
	}
}

// NewNewsAPI creates a NewsAPI client
func NewNewsAPI(apiKey string, opts ...NewsAPIOption) *NewsAPI {
	n := &NewsAPI{
		apiKey:   apiKey,
		baseURL:  newsAPIBaseURL,
		language: "en",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Search returns the newest articles mentioning keyword
func (n *NewsAPI) Search(ctx context.Context, keyword string) ([]*model.Article, error) {
	q := url.Values{}
	q.Set("q", keyword)
	q.Set("language", n.language)
	q.Set("sortBy", "publishedAt")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/everything?"+q.Encode(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("X-Api-Key", n.apiKey)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send request", goerr.V("keyword", keyword))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, goerr.New("news API returned error",
			goerr.V("status", resp.StatusCode),
			goerr.V("keyword", keyword),
			goerr.V("body", string(body)))
	}

	var result newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, goerr.Wrap(err, "failed to decode response", goerr.V("keyword", keyword))
	}
	if result.Status != "" && result.Status != "ok" {
		return nil, goerr.New("news API reported failure",
			goerr.V("code", result.Code), goerr.V("message", result.Message))
	}

	articles := make([]*model.Article, 0, len(result.Articles))
	for _, a := range result.Articles {
		articles = append(articles, &model.Article{
			SourceName:  a.Source.Name,
			Title:       a.Title,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}
