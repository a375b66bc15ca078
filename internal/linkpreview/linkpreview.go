// Package linkpreview resolves URLs shared in posts to OpenGraph
// metadata, cached in the link_previews table for 24 hours.
package linkpreview

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"

	"pulse/pkg/logging"
	"pulse/pkg/models"
)

// CacheDuration is how long a stored preview stays fresh
const CacheDuration = 24 * time.Hour

const fetchTimeout = 10 * time.Second

// Service fetches and caches link previews
type Service struct {
	db     *sql.DB
	client *resty.Client
	logger logging.Logger
	sf     singleflight.Group
}

func NewService(db *sql.DB, logger logging.Logger) *Service {
	client := resty.New().
		SetTimeout(fetchTimeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetHeader("User-Agent", "pulse-linkpreview/1.0")

	return &Service{
		db:     db,
		client: client,
		logger: logger,
	}
}

// Get returns the cached preview for rawURL, or nil when none exists.
func (s *Service) Get(ctx context.Context, rawURL string) (*models.LinkPreview, error) {
	var p models.LinkPreview
	err := s.db.QueryRowContext(ctx,
		`SELECT id, url, title, description, image_url, favicon_url, site_name, created_at, updated_at
		 FROM link_previews WHERE url = $1`, rawURL).
		Scan(&p.ID, &p.URL, &p.Title, &p.Description, &p.ImageURL, &p.FaviconURL, &p.SiteName, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Fetch returns a fresh preview for rawURL: the cached row when it is
// younger than CacheDuration, otherwise the result of a live fetch.
// Concurrent fetches of the same URL collapse into one request.
func (s *Service) Fetch(ctx context.Context, rawURL string) (*models.LinkPreview, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("Invalid URL.")
	}

	cached, err := s.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if cached != nil && time.Since(cached.UpdatedAt) < CacheDuration {
		return cached, nil
	}

	result, err, _ := s.sf.Do(rawURL, func() (interface{}, error) {
		return s.refresh(ctx, rawURL)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.LinkPreview), nil
}

type metadata struct {
	title       *string
	description *string
	imageURL    *string
	faviconURL  *string
	siteName    *string
}

func (s *Service) refresh(ctx context.Context, rawURL string) (*models.LinkPreview, error) {
	meta := s.scrape(ctx, rawURL)
	return s.upsert(ctx, rawURL, meta)
}

// scrape fetches and parses the page. Any failure degrades to a
// domain-name placeholder rather than an error, matching what gets
// shown when a site blocks preview bots.
func (s *Service) scrape(ctx context.Context, rawURL string) metadata {
	resp, err := s.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(rawURL)
	if err != nil {
		s.logger.WithError(err).WithField("url", rawURL).Warn("Link preview fetch failed")
		return placeholder(rawURL)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		s.logger.WithFields(logging.Fields{
			"url":    rawURL,
			"status": resp.StatusCode(),
		}).Warn("Link preview fetch returned non-2xx")
		return placeholder(rawURL)
	}

	doc, err := html.Parse(body)
	if err != nil {
		s.logger.WithError(err).WithField("url", rawURL).Warn("Link preview parse failed")
		return placeholder(rawURL)
	}

	meta := parseDocument(doc, rawURL)
	if meta.title == nil {
		domain := extractDomain(rawURL)
		meta.title = &domain
	}
	if meta.siteName == nil {
		domain := extractDomain(rawURL)
		meta.siteName = &domain
	}
	return meta
}

func (s *Service) upsert(ctx context.Context, rawURL string, meta metadata) (*models.LinkPreview, error) {
	var p models.LinkPreview
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO link_previews (url, title, description, image_url, favicon_url, site_name)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (url) DO UPDATE SET
		   title = EXCLUDED.title,
		   description = EXCLUDED.description,
		   image_url = EXCLUDED.image_url,
		   favicon_url = EXCLUDED.favicon_url,
		   site_name = EXCLUDED.site_name,
		   updated_at = now()
		 RETURNING id, url, title, description, image_url, favicon_url, site_name, created_at, updated_at`,
		rawURL, meta.title, meta.description, meta.imageURL, meta.faviconURL, meta.siteName).
		Scan(&p.ID, &p.URL, &p.Title, &p.Description, &p.ImageURL, &p.FaviconURL, &p.SiteName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func placeholder(rawURL string) metadata {
	domain := extractDomain(rawURL)
	return metadata{title: &domain, siteName: &domain}
}

func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// parseDocument walks the HTML tree collecting OpenGraph properties,
// the <title> text and the first icon link.
func parseDocument(doc *html.Node, baseURL string) metadata {
	var meta metadata
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				property := attr(n, "property")
				if property == "" {
					property = attr(n, "name")
				}
				content := attr(n, "content")
				if content != "" {
					c := content
					switch property {
					case "og:title":
						meta.title = &c
					case "og:description", "description":
						if meta.description == nil || property == "og:description" {
							meta.description = &c
						}
					case "og:image":
						if u := absolute(baseURL, c); u != "" {
							meta.imageURL = &u
						}
					case "og:site_name":
						meta.siteName = &c
					}
				}
			case "title":
				if meta.title == nil && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					t := strings.TrimSpace(n.FirstChild.Data)
					if t != "" {
						meta.title = &t
					}
				}
			case "link":
				rel := strings.ToLower(attr(n, "rel"))
				if meta.faviconURL == nil && strings.Contains(rel, "icon") {
					if u := absolute(baseURL, attr(n, "href")); u != "" {
						meta.faviconURL = &u
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return meta
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func absolute(baseURL, ref string) string {
	if ref == "" {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
