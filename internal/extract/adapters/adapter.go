// Package adapters pulls the verifiable article text out of fetched pages,
// with site-specific handling where a generic walk picks up too much chrome.
package adapters

import (
	"fmt"
	"strings"

	"github.com/ppiankov/veracity/internal/extract"
	"golang.org/x/net/html"
)

// Article is the text an adapter extracted from a page
type Article struct {
	Title      string
	Text       string
	Paragraphs int
}

// Adapter defines the interface for domain-specific extractors
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter can handle the given URL/content
	CanHandle(url string, contentType string) bool

	// Extract returns the article text of the HTML document
	Extract(doc *html.Node, url string) (Article, error)
}

// Registry manages domain adapters
type Registry struct {
	adapters []Adapter
	generic  Adapter
}

// NewRegistry creates a new adapter registry
func NewRegistry() *Registry {
	registry := &Registry{
		adapters: make([]Adapter, 0),
	}

	// Register built-in adapters
	registry.Register(NewWikipediaAdapter())

	// Set generic adapter as fallback
	registry.generic = NewGenericAdapter()

	return registry
}

// Register registers a new adapter
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter finds the best adapter for the given URL and content type
func (r *Registry) FindAdapter(url string, contentType string) Adapter {
	for _, adapter := range r.adapters {
		if adapter.CanHandle(url, contentType) {
			return adapter
		}
	}

	return r.generic
}

// Extract parses htmlContent and runs the adapter chosen for url. The
// adapter name is returned for the report.
func (r *Registry) Extract(htmlContent, url, contentType string) (Article, string, error) {
	adapter := r.FindAdapter(url, contentType)

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return Article{}, adapter.Name(), fmt.Errorf("parse html: %w", err)
	}

	article, err := adapter.Extract(doc, url)
	if err != nil {
		return Article{}, adapter.Name(), fmt.Errorf("%s adapter: %w", adapter.Name(), err)
	}
	if article.Title == "" {
		article.Title = pageTitle(doc)
	}
	return article, adapter.Name(), nil
}

// BaseAdapter provides common functionality for adapters
type BaseAdapter struct{}

// ExtractText extracts visible text content below a node
func (b *BaseAdapter) ExtractText(n *html.Node) string {
	return extract.NodeText(n)
}

// HasClass checks if a node has a specific CSS class
func (b *BaseAdapter) HasClass(n *html.Node, className string) bool {
	if n.Type != html.ElementNode {
		return false
	}

	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, class := range strings.Fields(attr.Val) {
				if class == className {
					return true
				}
			}
		}
	}
	return false
}

// GetAttribute gets an attribute value from a node
func (b *BaseAdapter) GetAttribute(n *html.Node, attrKey string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrKey {
			return attr.Val
		}
	}
	return ""
}

// FindAll finds all nodes matching a predicate, without descending into
// matched nodes
func (b *BaseAdapter) FindAll(n *html.Node, predicate func(*html.Node) bool) []*html.Node {
	var results []*html.Node

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if predicate(node) {
			results = append(results, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return results
}

// FindFirst finds the first node matching a predicate
func (b *BaseAdapter) FindFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	var result *html.Node

	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if predicate(node) {
			result = node
			return true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	walk(n)
	return result
}

// joinParagraphs keeps non-empty paragraph texts, one per line
func joinParagraphs(texts []string) (string, int) {
	kept := texts[:0]
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, "\n"), len(kept)
}

// pageTitle prefers og:title over <title>
func pageTitle(doc *html.Node) string {
	var b BaseAdapter
	meta := b.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "meta" && b.GetAttribute(n, "property") == "og:title"
	})
	if meta != nil {
		if content := strings.TrimSpace(b.GetAttribute(meta, "content")); content != "" {
			return content
		}
	}
	return extract.Title(doc)
}
