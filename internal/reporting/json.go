// internal/reporting/json.go
package reporting

import (
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/navscribe/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONEncoder renders the records as an indented JSON document.
type JSONEncoder struct{}

type jsonReport struct {
	GeneratedAt  time.Time                  `json:"generated_at"`
	TotalEntries int                        `json:"total_entries"`
	Entries      []schemas.NavigationRecord `json:"entries"`
}

func (JSONEncoder) Extension() string   { return FormatJSON }
func (JSONEncoder) ContentType() string { return "application/json" }

func (JSONEncoder) Encode(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		GeneratedAt:  report.GeneratedAt,
		TotalEntries: len(report.Records),
		Entries:      report.Records,
	})
}
