package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// SearxProvider queries a SearxNG instance's JSON API. Configured with the
// instance base URL; used as the secondary provider when one is available.
type SearxProvider struct {
	baseURL string
	client  *http.Client
}

func NewSearxProvider(baseURL string, client *http.Client) *SearxProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &SearxProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (p *SearxProvider) Name() string { return "searx" }

type searxResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

func (p *SearxProvider) Search(ctx context.Context, query string, max int) ([]Result, error) {
	if p.baseURL == "" {
		return nil, fmt.Errorf("searx: no instance configured")
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json", p.baseURL, url.QueryEscape(query))
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
		return nil, fmt.Errorf("searx: unexpected status %d", resp.StatusCode)
	}

	var payload searxResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("searx: decode: %w", err)
	}

	results := make([]Result, 0, len(payload.Results))
	for _, r := range payload.Results {
		if len(results) >= max {
			break
		}
		results = append(results, Result{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return results, nil
}
