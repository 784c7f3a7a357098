package page

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// contentDivID is the element the article body lives in on a rendered
// MediaWiki page.
const contentDivID = "mw-content-text"

// SpliceBody replaces the article body of a fully rendered page with the
// given HTML fragment, leaving the rest of the page (chrome, styles,
// scripts) untouched. The shell is parsed and re-serialized with a unique
// placeholder standing in for the body, so the fragment itself never goes
// through a parse cycle.
func SpliceBody(shell, body string) (string, error) {
	placeholder := "wikimirror-placeholder-" + uuid.NewString()
	withPlaceholder, err := replaceChildrenWithText(shell, contentDivID, placeholder)
	if err != nil {
		return "", err
	}
	return strings.Replace(withPlaceholder, placeholder, body, 1), nil
}

// replaceChildrenWithText parses doc, replaces the children of the element
// with the given id by a single text node, and re-serializes.
func replaceChildrenWithText(doc, id, text string) (string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("parse shell html: %w", err)
	}

	node := findByID(root, id)
	if node == nil {
		return "", fmt.Errorf("no element with id %q in shell", id)
	}
	for node.FirstChild != nil {
		node.RemoveChild(node.FirstChild)
	}
	node.AppendChild(&html.Node{Type: html.TextNode, Data: text})

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return "", fmt.Errorf("serialize shell html: %w", err)
	}
	return buf.String(), nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}
