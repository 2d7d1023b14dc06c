package render

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// injectHeadingAnchors wraps the contents of every heading element carrying an
// id in a self-referencing anchor, enabling deep links from rendered pages.
func injectHeadingAnchors(fragment string) (string, error) {
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		wrapHeadings(n)
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func wrapHeadings(n *html.Node) {
	if n.Type == html.ElementNode && isHeading(n.DataAtom) {
		if id, ok := attrValue(n, "id"); ok && id != "" {
			wrapInAnchor(n, id)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		wrapHeadings(c)
	}
}

func isHeading(a atom.Atom) bool {
	switch a {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func attrValue(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// wrapInAnchor moves all heading children under a new <a href="#id"> node.
func wrapInAnchor(heading *html.Node, id string) {
	anchor := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.A,
		Data:     "a",
		Attr:     []html.Attribute{{Key: "href", Val: "#" + id}},
	}

	for heading.FirstChild != nil {
		child := heading.FirstChild
		heading.RemoveChild(child)
		anchor.AppendChild(child)
	}
	heading.AppendChild(anchor)
}
