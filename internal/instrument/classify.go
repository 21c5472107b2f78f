// internal/instrument/classify.go
package instrument

import (
	"strings"
	"time"

	"github.com/xkilldash9x/navscribe/api/schemas"
)

// MaxAncestorSteps bounds the walk from the click target towards the document body.
const MaxAncestorSteps = 5

var (
	interactiveRoles = map[string]struct{}{"button": {}, "link": {}, "menuitem": {}, "tab": {}}
	navClasses       = map[string]struct{}{"nav": {}, "menu": {}, "link": {}}
)

// Node is the slice of a DOM element the click heuristic needs. It mirrors what the
// in-page listener reads off a live element.
type Node interface {
	// TagName returns the upper-case element name, as element.tagName reports it.
	TagName() string
	// Attr returns the attribute value, or "" when the attribute is absent.
	Attr(name string) string
	Classes() []string
	// InsideNav reports whether the element is, or sits inside, a <nav> landmark.
	InsideNav() bool
	IsBody() bool
	// Text returns the element's rendered text content.
	Text() string
}

// Classify picks the element a click should be attributed to. chain starts at the
// click target and continues through its ancestors, nearest first.
//
// The walk stops at the first qualifying element. Reaching the body (or running out
// of ancestors) discards the click; after MaxAncestorSteps steps the current
// ancestor is taken as-is.
func Classify(chain []Node) (Node, bool) {
	for step, n := range chain {
		if n == nil || n.IsBody() {
			return nil, false
		}
		if step == MaxAncestorSteps || qualifies(n) {
			return n, true
		}
	}
	return nil, false
}

func qualifies(n Node) bool {
	switch n.TagName() {
	case "A", "BUTTON":
		return true
	}
	if n.InsideNav() {
		return true
	}
	if _, ok := interactiveRoles[strings.ToLower(n.Attr("role"))]; ok {
		return true
	}
	for _, c := range n.Classes() {
		if _, ok := navClasses[c]; ok {
			return true
		}
	}
	return false
}

// ResolveText returns the first non-blank of: visible text, aria-label, title, alt,
// class name. Falls back to schemas.UnnamedElement. The result is trimmed and capped
// at schemas.MaxElementTextLen runes.
func ResolveText(n Node) string {
	candidates := []string{
		n.Text(),
		n.Attr("aria-label"),
		n.Attr("title"),
		n.Attr("alt"),
		strings.Join(n.Classes(), " "),
	}
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return schemas.Truncate(c, schemas.MaxElementTextLen)
		}
	}
	return schemas.UnnamedElement
}

// NewCapturedEvent builds the event the listener would record for a click on n.
// The timestamp uses the listener's millisecond ISO-8601 layout.
func NewCapturedEvent(n Node, pageURL string, at time.Time) schemas.CapturedEvent {
	href := ""
	if n.TagName() == "A" {
		href = n.Attr("href")
	}
	return schemas.CapturedEvent{
		Text:       ResolveText(n),
		Tag:        string(schemas.TagFromDOM(n.TagName())),
		PageURL:    pageURL,
		TargetHref: href,
		CSSClass:   n.Attr("class"),
		DOMID:      n.Attr("id"),
		CapturedAt: at.UTC().Format(ListenerTimeLayout),
	}
}

// ListenerTimeLayout matches Date.prototype.toISOString.
const ListenerTimeLayout = "2006-01-02T15:04:05.000Z"
