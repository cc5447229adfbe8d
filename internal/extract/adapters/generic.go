package adapters

import (
	"golang.org/x/net/html"
)

// chromeElements hold navigation and page furniture, not article text
var chromeElements = map[string]bool{
	"nav":    true,
	"header": true,
	"footer": true,
	"aside":  true,
	"form":   true,
	"button": true,
}

// GenericAdapter is the fallback adapter for unknown domains
type GenericAdapter struct {
	BaseAdapter
}

// NewGenericAdapter creates a new generic adapter
func NewGenericAdapter() *GenericAdapter {
	return &GenericAdapter{}
}

// Name returns the adapter name
func (a *GenericAdapter) Name() string {
	return "generic"
}

// CanHandle always returns true (fallback adapter)
func (a *GenericAdapter) CanHandle(url string, contentType string) bool {
	return true
}

// Extract reads paragraphs and headings from <article>, then <main>, then
// the whole document, skipping navigation chrome. A page without paragraphs
// falls back to all its visible text.
func (a *GenericAdapter) Extract(doc *html.Node, url string) (Article, error) {
	root := doc
	for _, tag := range []string{"article", "main"} {
		if n := a.FindFirst(doc, isElement(tag)); n != nil {
			root = n
			break
		}
	}

	blocks := a.FindAll(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		if chromeElements[n.Data] {
			return true
		}
		switch n.Data {
		case "p", "h1", "h2", "h3", "li", "blockquote":
			return true
		}
		return false
	})

	var texts []string
	for _, n := range blocks {
		if chromeElements[n.Data] {
			continue
		}
		texts = append(texts, a.ExtractText(n))
	}

	text, count := joinParagraphs(texts)
	if count == 0 {
		text = a.ExtractText(root)
	}
	return Article{Text: text, Paragraphs: count}, nil
}

func isElement(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}
