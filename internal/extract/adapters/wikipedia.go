package adapters

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// WikipediaAdapter extracts article prose from Wikipedia pages
type WikipediaAdapter struct {
	BaseAdapter
	stopSections []string
	skipClasses  []string
}

// NewWikipediaAdapter creates a new Wikipedia adapter
func NewWikipediaAdapter() *WikipediaAdapter {
	return &WikipediaAdapter{
		stopSections: []string{
			"references", "external links", "see also", "further reading", "notes",
			"bibliografia", "przypisy", "linki zewnętrzne", "zobacz też",
		},
		skipClasses: []string{
			"infobox", "navbox", "reference", "mw-editsection", "reflist", "thumb", "hatnote",
		},
	}
}

// Name returns the adapter name
func (a *WikipediaAdapter) Name() string {
	return "wikipedia"
}

// CanHandle checks if this is a Wikipedia URL
func (a *WikipediaAdapter) CanHandle(rawURL string, contentType string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "wikipedia.org" || strings.HasSuffix(host, ".wikipedia.org")
}

// Extract collects the paragraphs of the main content up to the first
// reference-style section, without citation markers or infoboxes
func (a *WikipediaAdapter) Extract(doc *html.Node, rawURL string) (Article, error) {
	// 1. Find the main content area
	content := a.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "div" &&
			(a.HasClass(n, "mw-parser-output") || a.GetAttribute(n, "id") == "mw-content-text")
	})
	if content == nil {
		content = doc
	}

	// 2. Walk paragraphs in document order until a stop section
	var texts []string
	stopped := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if stopped || n.Type != html.ElementNode && n.Type != html.DocumentNode {
			return
		}
		if a.skip(n) {
			return
		}
		if n.Data == "h2" && a.isStopSection(n) {
			stopped = true
			return
		}
		if n.Data == "p" {
			texts = append(texts, a.paragraphText(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(content)

	// 3. Title from the first heading
	title := ""
	if h1 := a.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "h1"
	}); h1 != nil {
		title = a.ExtractText(h1)
	}

	text, count := joinParagraphs(texts)
	return Article{Title: title, Text: text, Paragraphs: count}, nil
}

// paragraphText drops citation markers such as [1] inside a paragraph
func (a *WikipediaAdapter) paragraphText(p *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (a.skip(n) || skipElement(n.Data)) {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(p)
	return strings.Join(parts, " ")
}

func (a *WikipediaAdapter) skip(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if n.Data == "table" || n.Data == "style" || n.Data == "script" {
		return true
	}
	for _, class := range a.skipClasses {
		if a.HasClass(n, class) {
			return true
		}
	}
	return false
}

func (a *WikipediaAdapter) isStopSection(h *html.Node) bool {
	heading := strings.ToLower(a.paragraphText(h))
	for _, s := range a.stopSections {
		if heading == s {
			return true
		}
	}
	return false
}

func skipElement(tag string) bool {
	return tag == "sup" || tag == "style" || tag == "script"
}
