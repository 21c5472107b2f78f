// internal/annotate/generator.go
package annotate

import (
	"context"
	"fmt"
	"strings"

	"github.com/xkilldash9x/navscribe/api/schemas"
)

// Request is a single description request sent to a generator.
type Request struct {
	SystemPrompt string
	UserPrompt   string
}

// Generator produces free-form text for a prompt. Implementations may fail for any
// reason; the Adapter absorbs the failure.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) { return f(ctx, req) }

const systemPrompt = "You describe user interface elements for a navigation history report. " +
	"Answer with a single plain sentence, no markdown."

// BuildRequest renders the description prompt for one captured element.
func BuildRequest(text string, tag schemas.ElementTag, url string) Request {
	var b strings.Builder
	b.WriteString("Analyze this navigation element and provide a brief, professional description (max 100 chars):\n\n")
	fmt.Fprintf(&b, "Element Text: %s\n", text)
	fmt.Fprintf(&b, "Element Type: %s\n", tag)
	fmt.Fprintf(&b, "Page URL: %s\n\n", url)
	b.WriteString("Describe what this element does or where it leads. Be concise and clear.")
	return Request{SystemPrompt: systemPrompt, UserPrompt: b.String()}
}

// FallbackDescription is used whenever no generated description is available.
func FallbackDescription(text string) string {
	return "Navigation element: " + schemas.Truncate(text, schemas.FallbackTextLen)
}
