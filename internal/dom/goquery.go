package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

type selection struct {
	sel *goquery.Selection
}

// Parse reads an HTML document.
func Parse(r io.Reader) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return FromSelection(doc.Selection), nil
}

// ParseString is Parse for an in-memory page.
func ParseString(s string) (Node, error) {
	return Parse(strings.NewReader(s))
}

// FromSelection wraps an existing goquery selection.
func FromSelection(sel *goquery.Selection) Node {
	return selection{sel: sel}
}

func (s selection) Find(selector string) []Node {
	found := s.sel.Find(selector)
	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, el *goquery.Selection) {
		nodes = append(nodes, selection{sel: el})
	})
	return nodes
}

func (s selection) OwnText() []string {
	var texts []string
	s.sel.Contents().Each(func(_ int, c *goquery.Selection) {
		if len(c.Nodes) > 0 && c.Nodes[0].Type == html.TextNode {
			texts = append(texts, c.Nodes[0].Data)
		}
	})
	return texts
}

func (s selection) Text() string {
	return s.sel.Text()
}

func (s selection) Attr(name string) (string, bool) {
	return s.sel.Attr(name)
}
