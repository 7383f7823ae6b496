package resume

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"github.com/mitchellh/mapstructure"
)

// Parser produces a Record from a resume document. name is the document's
// file name or URI and is only used for diagnostics.
type Parser interface {
	Parse(ctx context.Context, r io.Reader, name string) (Record, error)
}

// TextParser reads plain text resumes.
type TextParser struct{}

func (TextParser) Parse(_ context.Context, r io.Reader, name string) (Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Record{}, fmt.Errorf("read resume %q: %w", name, err)
	}
	return ParseSections(string(data)), nil
}

// RecordParser reads an already structured record from JSON with the keys
// education_details, experience_details and skill. Unknown keys are ignored.
type RecordParser struct{}

func (RecordParser) Parse(_ context.Context, r io.Reader, name string) (Record, error) {
	var raw map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Record{}, fmt.Errorf("decode resume record %q: %w", name, err)
	}

	var rec Record
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &rec,
	})
	if err != nil {
		return Record{}, fmt.Errorf("create record decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Record{}, fmt.Errorf("decode resume record %q: %w", name, err)
	}

	return rec, nil
}

type documentParser interface {
	Parse(ctx context.Context, reader io.Reader, opts ...einoParser.Option) ([]*schema.Document, error)
}

// PDFParser extracts the text layer of a PDF and splits it into sections.
type PDFParser struct {
	parser documentParser
}

// NewPDFParser creates a parser that reads the whole PDF as a single document.
func NewPDFParser(ctx context.Context) (*PDFParser, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		return nil, fmt.Errorf("create pdf parser: %w", err)
	}
	return &PDFParser{parser: p}, nil
}

func (p *PDFParser) Parse(ctx context.Context, r io.Reader, name string) (Record, error) {
	docs, err := p.parser.Parse(ctx, r, einoParser.WithURI(name))
	if err != nil {
		return Record{}, fmt.Errorf("extract text from %q: %w", name, err)
	}

	pages := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		pages = append(pages, doc.Content)
	}

	return ParseSections(strings.Join(pages, "\n")), nil
}

// Load parses the resume at path, picking a parser by file extension:
// .pdf documents, .json records, anything else as plain text.
func Load(ctx context.Context, path string) (Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return Record{}, fmt.Errorf("open resume: %w", err)
	}
	defer f.Close()

	var parser Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		pdfParser, err := NewPDFParser(ctx)
		if err != nil {
			return Record{}, err
		}
		parser = pdfParser
	case ".json":
		parser = RecordParser{}
	default:
		parser = TextParser{}
	}

	return parser.Parse(ctx, f, path)
}
