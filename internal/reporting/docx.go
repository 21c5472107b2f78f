// internal/reporting/docx.go
package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/xkilldash9x/navscribe/api/schemas"
	"github.com/xkilldash9x/navscribe/internal/reporting/wordml"
)

const (
	// ReportTitle heads the Word export.
	ReportTitle = "Navigation History Report"

	urlColor      = "0000FF"
	separatorRule = 80
)

// DOCXEncoder renders the Word report: a title block, then one section per record.
type DOCXEncoder struct{}

func (DOCXEncoder) Extension() string { return FormatDOCX }

func (DOCXEncoder) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

func (DOCXEncoder) Encode(w io.Writer, report Report) error {
	doc := wordml.New()
	doc.Title = ReportTitle
	doc.Creator = "navscribe"
	doc.Created = report.GeneratedAt

	separator := strings.Repeat("_", separatorRule)

	doc.Heading(ReportTitle, 0)
	doc.Text("Generated: " + report.GeneratedAt.Format(schemas.RecordTimeLayout))
	doc.Text(fmt.Sprintf("Total Entries: %d", len(report.Records)))
	doc.Text(separator)

	for i, rec := range report.Records {
		doc.Heading(fmt.Sprintf("Entry #%d", i+1), 2)
		doc.Paragraph(label("Timestamp: "), wordml.Run{Text: rec.Timestamp})
		doc.Paragraph(label("Element Name: "), wordml.Run{Text: rec.ElementName})
		doc.Paragraph(label("URL: "), wordml.Run{Text: rec.URL, Color: urlColor})
		doc.Paragraph(label("AI Description: "), wordml.Run{Text: rec.Description})
		doc.Text(separator)
	}
	return doc.Write(w)
}

func label(s string) wordml.Run { return wordml.Run{Text: s, Bold: true} }
