package resume

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
)

type fakeDocumentParser struct {
	docs []*schema.Document
	err  error
	read string
}

func (f *fakeDocumentParser) Parse(_ context.Context, r io.Reader, _ ...einoParser.Option) ([]*schema.Document, error) {
	data, _ := io.ReadAll(r)
	f.read = string(data)
	return f.docs, f.err
}

func TestPDFParserJoinsDocuments(t *testing.T) {
	fake := &fakeDocumentParser{docs: []*schema.Document{
		{Content: "EDUCATION\nBSc"},
		nil,
		{Content: "SKILLS\nGo"},
	}}
	p := &PDFParser{parser: fake}

	rec, err := p.Parse(context.Background(), strings.NewReader("%PDF-1.7"), "cv.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.read != "%PDF-1.7" {
		t.Fatalf("expected pdf bytes to reach the parser, got %q", fake.read)
	}
	if rec.Education != "BSc\n" || rec.Skill != "Go\n" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestPDFParserWrapsErrors(t *testing.T) {
	boom := errors.New("broken xref table")
	p := &PDFParser{parser: &fakeDocumentParser{err: boom}}

	_, err := p.Parse(context.Background(), strings.NewReader(""), "cv.pdf")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped parser error, got %v", err)
	}
}

func TestRecordParser(t *testing.T) {
	input := `{"education_details": "BSc", "experience_details": "5 years", "skill": "go", "name": "ignored"}`

	rec, err := RecordParser{}.Parse(context.Background(), strings.NewReader(input), "resume.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != (Record{Education: "BSc", Experience: "5 years", Skill: "go"}) {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestLoadPicksParserByExtension(t *testing.T) {
	dir := t.TempDir()

	textPath := filepath.Join(dir, "resume.txt")
	if err := os.WriteFile(textPath, []byte("Skills\nGo\n"), 0o600); err != nil {
		t.Fatalf("write resume: %v", err)
	}
	jsonPath := filepath.Join(dir, "resume.json")
	if err := os.WriteFile(jsonPath, []byte(`{"skill": "Rust"}`), 0o600); err != nil {
		t.Fatalf("write resume: %v", err)
	}

	rec, err := Load(context.Background(), textPath)
	if err != nil {
		t.Fatalf("load text resume: %v", err)
	}
	if rec.Skill != "Go\n" {
		t.Fatalf("unexpected text record: %+v", rec)
	}

	rec, err = Load(context.Background(), jsonPath)
	if err != nil {
		t.Fatalf("load json resume: %v", err)
	}
	if rec.Skill != "Rust" {
		t.Fatalf("unexpected json record: %+v", rec)
	}

	if _, err := Load(context.Background(), filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
