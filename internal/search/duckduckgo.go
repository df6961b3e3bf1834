package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const defaultDuckDuckGoURL = "https://api.duckduckgo.com/"

// DuckDuckGoProvider queries the DuckDuckGo Instant Answer API. It needs no
// API key, which makes it the default primary provider.
type DuckDuckGoProvider struct {
	baseURL string
	client  *http.Client
}

// NewDuckDuckGoProvider creates the provider. baseURL may be empty for the
// public endpoint; the client's timeout is owned by the gateway's context.
func NewDuckDuckGoProvider(baseURL string, client *http.Client) *DuckDuckGoProvider {
	if baseURL == "" {
		baseURL = defaultDuckDuckGoURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &DuckDuckGoProvider{baseURL: baseURL, client: client}
}

func (p *DuckDuckGoProvider) Name() string { return "duckduckgo" }

// ddgResponse mirrors the subset of the Instant Answer payload we consume.
type ddgResponse struct {
	Heading       string     `json:"Heading"`
	AbstractText  string     `json:"AbstractText"`
	AbstractURL   string     `json:"AbstractURL"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

// ddgTopic is either a leaf topic or a named group of topics.
type ddgTopic struct {
	Text     string     `json:"Text"`
	FirstURL string     `json:"FirstURL"`
	Topics   []ddgTopic `json:"Topics"`
}

func (p *DuckDuckGoProvider) Search(ctx context.Context, query string, max int) ([]Result, error) {
	endpoint := fmt.Sprintf("%s?q=%s&format=json&no_html=1&skip_disambig=1",
		p.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo: unexpected status %d", resp.StatusCode)
	}

	var payload ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("duckduckgo: decode: %w", err)
	}

	var results []Result
	if payload.AbstractText != "" {
		results = append(results, Result{
			Title:   payload.Heading,
			URL:     payload.AbstractURL,
			Snippet: payload.AbstractText,
		})
	}
	results = appendTopics(results, payload.RelatedTopics, max)

	if len(results) > max {
		results = results[:max]
	}
	return results, nil
}

// appendTopics flattens the nested related-topic tree in document order.
func appendTopics(results []Result, topics []ddgTopic, max int) []Result {
	for _, topic := range topics {
		if len(results) >= max {
			break
		}
		if len(topic.Topics) > 0 {
			results = appendTopics(results, topic.Topics, max)
			continue
		}
		if topic.Text == "" || topic.FirstURL == "" {
			continue
		}
		results = append(results, Result{
			Title:   topicTitle(topic.Text),
			URL:     topic.FirstURL,
			Snippet: topic.Text,
		})
	}
	return results
}

// topicTitle shortens a topic text into a title-ish first clause.
func topicTitle(text string) string {
	for i, r := range text {
		if r == '-' || r == '–' {
			if i > 1 {
				return trimSpaceRight(text[:i])
			}
		}
	}
	if len(text) > 80 {
		return text[:80]
	}
	return text
}

func trimSpaceRight(s string) string {
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}
