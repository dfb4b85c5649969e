// Package sitecheck inspects a brand website for the structured data it already
// publishes.
package sitecheck

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const ldJSONType = "application/ld+json"

// Checker fetches pages and lists their JSON-LD @type values
type Checker struct {
	client *resty.Client
}

// NewChecker creates a new site checker
func NewChecker(timeout time.Duration) *Checker {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", "GEO-Audit/1.0 (+structured data check)")
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &Checker{client: client}
}

// SchemaTypes returns the set of schema.org types declared in the page's
// ld+json blocks. Blocks that are not valid JSON are ignored.
func (c *Checker) SchemaTypes(ctx context.Context, pageURL string) (map[string]bool, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html").
		Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetching %s returned status %d", pageURL, resp.StatusCode())
	}

	doc, err := html.Parse(strings.NewReader(string(resp.Body())))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML of %s: %w", pageURL, err)
	}

	types := make(map[string]bool)
	for _, block := range ldJSONBlocks(doc) {
		var data any
		if err := json.Unmarshal([]byte(block), &data); err != nil {
			logrus.Debugf("Skipping invalid ld+json block on %s: %v", pageURL, err)
			continue
		}
		collectTypes(data, types)
	}

	logrus.Debugf("Found %d schema types on %s", len(types), pageURL)
	return types, nil
}

func ldJSONBlocks(n *html.Node) []string {
	var blocks []string

	if n.Type == html.ElementNode && n.Data == "script" && isLDJSON(n) {
		var text strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				text.WriteString(c.Data)
			}
		}
		if body := strings.TrimSpace(text.String()); body != "" {
			blocks = append(blocks, body)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		blocks = append(blocks, ldJSONBlocks(c)...)
	}

	return blocks
}

func isLDJSON(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key == "type" && strings.EqualFold(strings.TrimSpace(attr.Val), ldJSONType) {
			return true
		}
	}
	return false
}

// collectTypes walks a decoded JSON-LD value, including @graph arrays and nested
// objects
func collectTypes(v any, types map[string]bool) {
	switch value := v.(type) {
	case []any:
		for _, item := range value {
			collectTypes(item, types)
		}
	case map[string]any:
		switch t := value["@type"].(type) {
		case string:
			types[t] = true
		case []any:
			for _, item := range t {
				if s, ok := item.(string); ok {
					types[s] = true
				}
			}
		}
		for key, child := range value {
			if key == "@type" || key == "@context" {
				continue
			}
			collectTypes(child, types)
		}
	}
}
