package schemas

import (
	"strings"
	"time"
	"unicode/utf8"
)

// ElementTag classifies the element a click resolved to.
type ElementTag string

const (
	TagLink      ElementTag = "LINK"
	TagButton    ElementTag = "BUTTON"
	TagNav       ElementTag = "NAV"
	TagListItem  ElementTag = "LIST_ITEM"
	TagContainer ElementTag = "CONTAINER"
)

// TagFromDOM maps a DOM tag name (as reported by element.tagName) to an ElementTag.
// Anything that isn't a link, button, nav or list item is reported as a container.
func TagFromDOM(tagName string) ElementTag {
	switch strings.ToUpper(strings.TrimSpace(tagName)) {
	case "A":
		return TagLink
	case "BUTTON":
		return TagButton
	case "NAV":
		return TagNav
	case "LI":
		return TagListItem
	default:
		return TagContainer
	}
}

// Limits applied to captured and finalized data.
const (
	MaxElementTextLen = 100
	MaxDescriptionLen = 200
	FallbackTextLen   = 50

	// UnnamedElement is the last link in the text resolution chain.
	UnnamedElement = "Unnamed Element"

	// RecordTimeLayout is the second-precision layout used for NavigationRecord.Timestamp.
	RecordTimeLayout = "2006-01-02 15:04:05"

	// identitySeparator joins the identity components.
	identitySeparator = "_"
)

// -- Captured Events (in-page, transient) --

// CapturedEvent is a raw click observation produced by the page listener,
// before deduplication or annotation. JSON keys match the in-page log layout.
type CapturedEvent struct {
	Text       string `json:"text"`
	Tag        string `json:"tag"`
	PageURL    string `json:"url"`
	TargetHref string `json:"href"`
	CSSClass   string `json:"className"`
	DOMID      string `json:"id"`
	CapturedAt string `json:"timestamp"`
}

// ElementTag returns the normalized tag of the captured element. The listener
// reports raw DOM tag names; already-normalized values pass through.
func (e CapturedEvent) ElementTag() ElementTag {
	switch ElementTag(e.Tag) {
	case TagLink, TagButton, TagNav, TagListItem, TagContainer:
		return ElementTag(e.Tag)
	}
	return TagFromDOM(e.Tag)
}

// Identity derives the deduplication key for the event. Two clicks with the same
// text, page, target and captured timestamp are the same interaction.
func (e CapturedEvent) Identity() EventIdentity {
	return EventIdentity(strings.Join([]string{e.Text, e.PageURL, e.TargetHref, e.CapturedAt}, identitySeparator))
}

// DisplayURL is the URL a record reports: the link target when present, otherwise the page.
func (e CapturedEvent) DisplayURL() string {
	if e.TargetHref != "" {
		return e.TargetHref
	}
	return e.PageURL
}

// ElementName is the record-facing name of the element.
func (e CapturedEvent) ElementName() string {
	name := Truncate(strings.TrimSpace(e.Text), MaxElementTextLen)
	if name == "" {
		return UnnamedElement
	}
	return name
}

// EventIdentity is the key used to deduplicate captured events across poll cycles.
type EventIdentity string

// -- Navigation Records (durable) --

// NavigationRecord is the finalized, annotated representation of one distinct
// navigation action. It is immutable once created.
type NavigationRecord struct {
	Timestamp   string `json:"timestamp"`
	ElementName string `json:"element_name"`
	URL         string `json:"url"`
	Description string `json:"description"`

	// Identity links the record back to the interaction it was built from.
	Identity EventIdentity `json:"-"`
}

// NewNavigationRecord builds a record from a captured event and its description,
// applying the length limits.
func NewNavigationRecord(ev CapturedEvent, description string, at time.Time) NavigationRecord {
	return NavigationRecord{
		Timestamp:   at.Format(RecordTimeLayout),
		ElementName: ev.ElementName(),
		URL:         ev.DisplayURL(),
		Description: Truncate(description, MaxDescriptionLen),
		Identity:    ev.Identity(),
	}
}

// PollResult reports the outcome of one poll cycle.
type PollResult struct {
	NewEntries   int `json:"new_entries"`
	TotalEntries int `json:"total_entries"`
}

// SessionState is the state of the session controller.
type SessionState string

const (
	SessionIdle   SessionState = "idle"
	SessionActive SessionState = "active"
)

// SessionStatus is a point-in-time snapshot of the session.
type SessionStatus struct {
	State        SessionState `json:"state"`
	SessionID    string       `json:"session_id,omitempty"`
	StartURL     string       `json:"start_url,omitempty"`
	StartedAt    *time.Time   `json:"started_at,omitempty"`
	TotalEntries int          `json:"total_entries"`
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
