// Package dom describes the DOM query capability the scraper depends on and
// provides a goquery-backed implementation of it.
package dom

import "strings"

// Node is a matched element. Find is the single query operation; the other
// methods read the element itself.
type Node interface {
	// Find returns descendants matching a CSS selector, in document order.
	Find(selector string) []Node
	// OwnText returns the element's direct child text nodes, unmodified.
	OwnText() []string
	// Text returns the combined text of the element and its descendants.
	Text() string
	Attr(name string) (string, bool)
}

// Texts returns the direct text nodes of every match, in document order.
func Texts(n Node, selector string) []string {
	var out []string
	for _, match := range n.Find(selector) {
		out = append(out, match.OwnText()...)
	}
	return out
}

// FirstText returns the first non-blank direct text node among the matches.
func FirstText(n Node, selector string) (string, bool) {
	for _, text := range Texts(n, selector) {
		if strings.TrimSpace(text) != "" {
			return text, true
		}
	}
	return "", false
}

// CellText reads only the first match. A missing or blank cell reports false
// even when later matches carry text.
func CellText(n Node, selector string) (string, bool) {
	matches := n.Find(selector)
	if len(matches) == 0 {
		return "", false
	}
	for _, text := range matches[0].OwnText() {
		if strings.TrimSpace(text) != "" {
			return text, true
		}
	}
	return "", false
}

// FirstAttr returns the attribute of the first match that carries it.
func FirstAttr(n Node, selector, name string) (string, bool) {
	for _, match := range n.Find(selector) {
		if v, ok := match.Attr(name); ok {
			return v, true
		}
	}
	return "", false
}
