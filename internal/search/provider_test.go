package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDuckDuckGo_ParsesInstantAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "go language" {
			t.Errorf("query param = %q", got)
		}
		w.Write([]byte(`{
			"Heading": "Go (programming language)",
			"AbstractText": "Go is a statically typed language.",
			"AbstractURL": "https://en.wikipedia.org/wiki/Go",
			"RelatedTopics": [
				{"Text": "Goroutine - lightweight thread", "FirstURL": "https://example.com/goroutine"},
				{"Topics": [{"Text": "Gopher - mascot", "FirstURL": "https://example.com/gopher"}]}
			]
		}`))
	}))
	defer srv.Close()

	p := NewDuckDuckGoProvider(srv.URL+"/", srv.Client())
	results, err := p.Search(context.Background(), "go language", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Title != "Go (programming language)" {
		t.Errorf("abstract should rank first, got %q", results[0].Title)
	}
	if results[1].Title != "Goroutine" {
		t.Errorf("topic title should be trimmed at the dash, got %q", results[1].Title)
	}
	if results[2].URL != "https://example.com/gopher" {
		t.Errorf("nested topics should be flattened, got %q", results[2].URL)
	}
}

func TestDuckDuckGo_EmptyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"AbstractText": "", "RelatedTopics": []}`))
	}))
	defer srv.Close()

	p := NewDuckDuckGoProvider(srv.URL+"/", srv.Client())
	results, err := p.Search(context.Background(), "gibberish", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestDuckDuckGo_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewDuckDuckGoProvider(srv.URL+"/", srv.Client())
	if _, err := p.Search(context.Background(), "q", 5); err == nil {
		t.Error("expected error for 502")
	}
}

func TestSearx_ParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [
			{"title": "A", "url": "https://a", "content": "first"},
			{"title": "B", "url": "https://b", "content": "second"},
			{"title": "C", "url": "https://c", "content": "third"}
		]}`))
	}))
	defer srv.Close()

	p := NewSearxProvider(srv.URL, srv.Client())
	results, err := p.Search(context.Background(), "q", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("max should cap results, got %d", len(results))
	}
	if results[0].Snippet != "first" {
		t.Errorf("provider order must be preserved, got %q first", results[0].Snippet)
	}
}

func TestSearx_Unconfigured(t *testing.T) {
	p := NewSearxProvider("", nil)
	if _, err := p.Search(context.Background(), "q", 5); err == nil {
		t.Error("expected error when no instance is configured")
	}
}
