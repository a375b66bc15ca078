package linkpreview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/net/html"

	"pulse/pkg/logging"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>Fallback Title</title>
<meta property="og:title" content="OpenGraph Title">
<meta property="og:description" content="A description">
<meta property="og:image" content="/cover.png">
<meta property="og:site_name" content="Example Site">
<link rel="icon" href="/favicon.ico">
</head>
<body>hello</body>
</html>`

func TestParseDocument(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	meta := parseDocument(doc, "https://example.com/post")

	if meta.title == nil || *meta.title != "OpenGraph Title" {
		t.Fatalf("title: %+v", meta.title)
	}
	if meta.description == nil || *meta.description != "A description" {
		t.Fatalf("description: %+v", meta.description)
	}
	if meta.imageURL == nil || *meta.imageURL != "https://example.com/cover.png" {
		t.Fatalf("image not resolved: %+v", meta.imageURL)
	}
	if meta.faviconURL == nil || *meta.faviconURL != "https://example.com/favicon.ico" {
		t.Fatalf("favicon not resolved: %+v", meta.faviconURL)
	}
	if meta.siteName == nil || *meta.siteName != "Example Site" {
		t.Fatalf("site name: %+v", meta.siteName)
	}
}

func TestParseDocument_TitleFallback(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<html><head><title>Just a Title</title></head></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	meta := parseDocument(doc, "https://example.com")
	if meta.title == nil || *meta.title != "Just a Title" {
		t.Fatalf("title fallback: %+v", meta.title)
	}
}

func TestExtractDomain(t *testing.T) {
	cases := map[string]string{
		"https://www.example.com/page": "example.com",
		"https://blog.example.io":      "blog.example.io",
		"not a url":                    "not a url",
	}
	for in, want := range cases {
		if got := extractDomain(in); got != want {
			t.Fatalf("extractDomain(%q) = %q, want %q", in, got, want)
		}
	}
}

func previewColumns() []string {
	return []string{"id", "url", "title", "description", "image_url", "favicon_url", "site_name", "created_at", "updated_at"}
}

func TestFetch_FreshCacheSkipsHTTP(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	svc := NewService(db, logging.NewLogger())

	now := time.Now()
	mock.ExpectQuery("SELECT id, url, title").
		WithArgs("https://example.com").
		WillReturnRows(sqlmock.NewRows(previewColumns()).
			AddRow("lp1", "https://example.com", "Cached", nil, nil, nil, "example.com", now, now))

	p, err := svc.Fetch(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title == nil || *p.Title != "Cached" {
		t.Fatalf("expected cached preview, got %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	svc := NewService(db, logging.NewLogger())
	if _, err := svc.Fetch(context.Background(), "not a url"); err == nil || err.Error() != "Invalid URL." {
		t.Fatalf("expected Invalid URL. error, got %v", err)
	}
}

func TestFetch_StaleCacheRefetches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	svc := NewService(db, logging.NewLogger())

	stale := time.Now().Add(-48 * time.Hour)
	now := time.Now()
	mock.ExpectQuery("SELECT id, url, title").
		WithArgs(server.URL).
		WillReturnRows(sqlmock.NewRows(previewColumns()).
			AddRow("lp1", server.URL, "Old", nil, nil, nil, "old", stale, stale))
	mock.ExpectQuery("INSERT INTO link_previews").
		WillReturnRows(sqlmock.NewRows(previewColumns()).
			AddRow("lp1", server.URL, "OpenGraph Title", "A description", server.URL+"/cover.png", server.URL+"/favicon.ico", "Example Site", stale, now))

	p, err := svc.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title == nil || *p.Title != "OpenGraph Title" {
		t.Fatalf("expected refreshed preview, got %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestScrape_UnreachableHostFallsBackToDomain(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	svc := NewService(db, logging.NewLogger())
	meta := svc.scrape(context.Background(), "https://localhost.invalid/nope")
	if meta.title == nil || *meta.title != "localhost.invalid" {
		t.Fatalf("expected domain placeholder, got %+v", meta.title)
	}
}
