// internal/instrument/htmlnode.go
package instrument

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// HTMLNode adapts a parsed golang.org/x/net/html element to Node.
type HTMLNode struct {
	n *html.Node
}

var _ Node = HTMLNode{}

// WrapHTML wraps an element node. Non-element nodes are wrapped as-is and report no tag.
func WrapHTML(n *html.Node) HTMLNode { return HTMLNode{n: n} }

func (h HTMLNode) Raw() *html.Node { return h.n }

func (h HTMLNode) TagName() string {
	if h.n == nil || h.n.Type != html.ElementNode {
		return ""
	}
	return strings.ToUpper(h.n.Data)
}

func (h HTMLNode) Attr(name string) string {
	if h.n == nil {
		return ""
	}
	return htmlquery.SelectAttr(h.n, name)
}

func (h HTMLNode) Classes() []string {
	return strings.Fields(h.Attr("class"))
}

func (h HTMLNode) InsideNav() bool {
	for p := h.n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "nav" {
			return true
		}
	}
	return false
}

func (h HTMLNode) IsBody() bool {
	return h.TagName() == "BODY"
}

// Text collapses whitespace runs the way rendered text does.
func (h HTMLNode) Text() string {
	if h.n == nil {
		return ""
	}
	return strings.Join(strings.Fields(htmlquery.InnerText(h.n)), " ")
}

// AncestorChain returns n followed by its element ancestors, nearest first, ready for
// Classify.
func AncestorChain(n *html.Node) []Node {
	var chain []Node
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			chain = append(chain, WrapHTML(p))
		}
	}
	return chain
}
