// Package wordml builds minimal WordprocessingML (.docx) packages: a single document
// part with a small style sheet, enough for Word and LibreOffice to open.
package wordml

import (
	"archive/zip"
	"fmt"
	"io"
	"time"

	"github.com/beevik/etree"
)

// Namespaces and relationship types of the parts written here.
const (
	NSMain          = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NSContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
	NSRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	NSCoreProps     = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"

	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"

	ctMain      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ctStyles    = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	ctCoreProps = "application/vnd.openxmlformats-package.core-properties+xml"
	ctRels      = "application/vnd.openxmlformats-package.relationships+xml"
)

// Part names inside the package.
const (
	PartContentTypes = "[Content_Types].xml"
	PartRootRels     = "_rels/.rels"
	PartDocument     = "word/document.xml"
	PartDocumentRels = "word/_rels/document.xml.rels"
	PartStyles       = "word/styles.xml"
	PartCoreProps    = "docProps/core.xml"
)

// Run is a span of text sharing one formatting.
type Run struct {
	Text string
	Bold bool
	// Color is an RGB hex value such as "0000FF".
	Color string
}

// Document accumulates body paragraphs.
type Document struct {
	// Title and Creator go into the package's core properties.
	Title   string
	Creator string
	Created time.Time

	body       *etree.Element
	paragraphs int
}

// New creates an empty document.
func New() *Document {
	return &Document{body: etree.NewElement("w:body")}
}

// Heading adds a heading paragraph. Level 0 is the centered document title; levels 1
// through 3 map to Heading1..Heading3.
func (d *Document) Heading(text string, level int) {
	var style string
	switch {
	case level <= 0:
		style = "Title"
	case level > 3:
		style = "Heading3"
	default:
		style = fmt.Sprintf("Heading%d", level)
	}
	p := d.newParagraph()
	ppr := p.CreateElement("w:pPr")
	setVal(ppr.CreateElement("w:pStyle"), style)
	if level <= 0 {
		setVal(ppr.CreateElement("w:jc"), "center")
	}
	appendRun(p, Run{Text: text})
}

// Paragraph adds a body paragraph made of runs.
func (d *Document) Paragraph(runs ...Run) {
	p := d.newParagraph()
	for _, r := range runs {
		appendRun(p, r)
	}
}

// Text adds a plain paragraph.
func (d *Document) Text(text string) {
	d.Paragraph(Run{Text: text})
}

// Paragraphs counts the paragraphs added so far, headings included.
func (d *Document) Paragraphs() int { return d.paragraphs }

func (d *Document) newParagraph() *etree.Element {
	d.paragraphs++
	return d.body.CreateElement("w:p")
}

func appendRun(p *etree.Element, r Run) {
	run := p.CreateElement("w:r")
	if r.Bold || r.Color != "" {
		rpr := run.CreateElement("w:rPr")
		if r.Bold {
			rpr.CreateElement("w:b")
		}
		if r.Color != "" {
			setVal(rpr.CreateElement("w:color"), r.Color)
		}
	}
	t := run.CreateElement("w:t")
	// Keep leading and trailing spaces, e.g. after a "Label: " run.
	t.CreateAttr("xml:space", "preserve")
	t.SetText(r.Text)
}

func setVal(el *etree.Element, v string) {
	el.CreateAttr("w:val", v)
}

// Write packages the document into a zip archive on w. The document can still be
// extended and written again afterwards.
func (d *Document) Write(w io.Writer) error {
	body := d.body.Copy()
	sect := body.CreateElement("w:sectPr")
	pg := sect.CreateElement("w:pgSz")
	pg.CreateAttr("w:w", "12240")
	pg.CreateAttr("w:h", "15840")
	mar := sect.CreateElement("w:pgMar")
	for _, side := range []string{"top", "right", "bottom", "left"} {
		mar.CreateAttr("w:"+side, "1440")
	}

	main := newXMLDocument()
	root := main.CreateElement("w:document")
	root.CreateAttr("xmlns:w", NSMain)
	root.AddChild(body)

	parts := []struct {
		name string
		doc  *etree.Document
	}{
		{PartContentTypes, contentTypes()},
		{PartRootRels, relationships(
			relationship{"rId1", relOfficeDocument, PartDocument},
			relationship{"rId2", relCoreProps, PartCoreProps},
		)},
		{PartDocument, main},
		{PartDocumentRels, relationships(relationship{"rId1", relStyles, "styles.xml"})},
		{PartStyles, styles()},
		{PartCoreProps, d.coreProperties()},
	}

	zw := zip.NewWriter(w)
	for _, part := range parts {
		fw, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", part.name, err)
		}
		if _, err := part.doc.WriteTo(fw); err != nil {
			return fmt.Errorf("failed to write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize docx archive: %w", err)
	}
	return nil
}

func newXMLDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	return doc
}

func contentTypes() *etree.Document {
	doc := newXMLDocument()
	types := doc.CreateElement("Types")
	types.CreateAttr("xmlns", NSContentTypes)

	def := func(ext, ct string) {
		el := types.CreateElement("Default")
		el.CreateAttr("Extension", ext)
		el.CreateAttr("ContentType", ct)
	}
	override := func(part, ct string) {
		el := types.CreateElement("Override")
		el.CreateAttr("PartName", "/"+part)
		el.CreateAttr("ContentType", ct)
	}
	def("rels", ctRels)
	def("xml", "application/xml")
	override(PartDocument, ctMain)
	override(PartStyles, ctStyles)
	override(PartCoreProps, ctCoreProps)
	return doc
}

type relationship struct {
	id, typ, target string
}

func relationships(rels ...relationship) *etree.Document {
	doc := newXMLDocument()
	root := doc.CreateElement("Relationships")
	root.CreateAttr("xmlns", NSRelationships)
	for _, r := range rels {
		el := root.CreateElement("Relationship")
		el.CreateAttr("Id", r.id)
		el.CreateAttr("Type", r.typ)
		el.CreateAttr("Target", r.target)
	}
	return doc
}

func (d *Document) coreProperties() *etree.Document {
	doc := newXMLDocument()
	root := doc.CreateElement("cp:coreProperties")
	root.CreateAttr("xmlns:cp", NSCoreProps)
	root.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	root.CreateAttr("xmlns:dcterms", "http://purl.org/dc/terms/")
	root.CreateAttr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")
	if d.Title != "" {
		root.CreateElement("dc:title").SetText(d.Title)
	}
	if d.Creator != "" {
		root.CreateElement("dc:creator").SetText(d.Creator)
	}
	if !d.Created.IsZero() {
		created := root.CreateElement("dcterms:created")
		created.CreateAttr("xsi:type", "dcterms:W3CDTF")
		created.SetText(d.Created.UTC().Format(time.RFC3339))
	}
	return doc
}

// styles defines the paragraph styles Heading and Title refer to.
func styles() *etree.Document {
	doc := newXMLDocument()
	root := doc.CreateElement("w:styles")
	root.CreateAttr("xmlns:w", NSMain)

	defaults := root.CreateElement("w:docDefaults").
		CreateElement("w:rPrDefault").
		CreateElement("w:rPr")
	fonts := defaults.CreateElement("w:rFonts")
	fonts.CreateAttr("w:ascii", "Calibri")
	fonts.CreateAttr("w:hAnsi", "Calibri")
	setVal(defaults.CreateElement("w:sz"), "22")

	paragraphStyle := func(id, name string, size int, bold bool, color string) {
		s := root.CreateElement("w:style")
		s.CreateAttr("w:type", "paragraph")
		s.CreateAttr("w:styleId", id)
		setVal(s.CreateElement("w:name"), name)
		if id != "Normal" {
			setVal(s.CreateElement("w:basedOn"), "Normal")
			setVal(s.CreateElement("w:next"), "Normal")
			spacing := s.CreateElement("w:pPr").CreateElement("w:spacing")
			spacing.CreateAttr("w:before", "240")
			spacing.CreateAttr("w:after", "120")
		}
		rpr := s.CreateElement("w:rPr")
		if bold {
			rpr.CreateElement("w:b")
		}
		if color != "" {
			setVal(rpr.CreateElement("w:color"), color)
		}
		if size > 0 {
			setVal(rpr.CreateElement("w:sz"), fmt.Sprint(size))
		}
	}
	paragraphStyle("Normal", "Normal", 0, false, "")
	paragraphStyle("Title", "Title", 56, false, "17365D")
	paragraphStyle("Heading1", "heading 1", 32, true, "365F91")
	paragraphStyle("Heading2", "heading 2", 26, true, "4F81BD")
	paragraphStyle("Heading3", "heading 3", 22, true, "4F81BD")
	return doc
}
