package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-assistant/internal/embedding"
	"github.com/spigell/resume-assistant/internal/index"
	logging "github.com/spigell/resume-assistant/internal/logger"
	"github.com/spigell/resume-assistant/internal/matching"
)

func TestDefaultConfig(t *testing.T) {
	config, err := getConfig()
	if err != nil {
		t.Fatalf("get config: %v", err)
	}

	if config.Corpus.Path != "final_cleaned.csv" {
		t.Fatalf("unexpected corpus path %q", config.Corpus.Path)
	}
	if config.Index.Backend != indexBackendFile || config.Index.Path != index.DefaultPath {
		t.Fatalf("unexpected index config %+v", config.Index)
	}
	if config.Matching.TopK != matching.DefaultTopK || config.Matching.TopMatches != matching.DefaultTopMatches || config.Matching.BatchSize != embedding.DefaultBatchSize {
		t.Fatalf("unexpected matching config %+v", config.Matching)
	}
	if config.Embedding.Provider != embeddingLocal || config.Embedding.Cache.Enabled {
		t.Fatalf("unexpected embedding config %+v", config.Embedding)
	}
	if config.AI.Gemini.MaxRetries != 3 {
		t.Fatalf("unexpected gemini retries %d", config.AI.Gemini.MaxRetries)
	}
}

func TestNewEmbeddingProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *EmbeddingConfig
		model   string
		dim     int
		wantErr bool
	}{
		{name: "nil config is local", cfg: nil, model: embedding.HashingModel, dim: embedding.DefaultHashingDimension},
		{name: "local with dimension", cfg: &EmbeddingConfig{Provider: "local", Dimension: 64}, model: embedding.HashingModel, dim: 64},
		{
			name:  "memory cache keeps model",
			cfg:   &EmbeddingConfig{Provider: "LOCAL", Cache: &CacheConfig{Enabled: true, Backend: cacheBackendMemory}},
			model: embedding.HashingModel,
			dim:   embedding.DefaultHashingDimension,
		},
		{name: "unknown provider", cfg: &EmbeddingConfig{Provider: "word2vec"}, wantErr: true},
		{name: "unknown cache", cfg: &EmbeddingConfig{Cache: &CacheConfig{Enabled: true, Backend: "memcached"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, done, err := newEmbeddingProvider(context.Background(), tt.cfg, nil)
			defer done()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Model() != tt.model || p.Dimension() != tt.dim {
				t.Fatalf("got %s/%d, want %s/%d", p.Model(), p.Dimension(), tt.model, tt.dim)
			}
		})
	}
}

func TestNewIndexStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.index")
	store, err := newIndexStore(&IndexConfig{Backend: "file", Path: path})
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	if store.Location() != path {
		t.Fatalf("unexpected location %q", store.Location())
	}

	if _, err := newIndexStore(&IndexConfig{Backend: indexBackendMinIO}); err == nil {
		t.Fatal("expected error for minio backend without settings")
	}
	if _, err := newIndexStore(&IndexConfig{Backend: "ftp"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestNewTextGeneratorRejectsUnknownProvider(t *testing.T) {
	if _, err := newTextGenerator(context.Background(), &AIConfig{Provider: "llama"}, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestPrintReport(t *testing.T) {
	report := matching.ATSReport{
		MatchedJob: "Data Scientist",
		ATSScore:   93.5,
		TopMatches: []matching.Result{
			{JobName: "Data Scientist", Score: 93.5, Details: matching.Details{Education: "BSc", Skill: "python"}},
		},
	}

	var text bytes.Buffer
	if err := printReport(&text, report, outputText); err != nil {
		t.Fatalf("text: %v", err)
	}
	for _, want := range []string{"Best match: Data Scientist", "ATS score: 93.50", "1. Data Scientist (93.50)", "skills: python"} {
		if !strings.Contains(text.String(), want) {
			t.Fatalf("text output %q is missing %q", text.String(), want)
		}
	}

	var raw bytes.Buffer
	if err := printReport(&raw, matching.CustomReport{ATSScore: 71.25}, outputJSON); err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded map[string]float64
	if err := json.Unmarshal(raw.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["ats_score"] != 71.25 {
		t.Fatalf("unexpected json %s", raw.String())
	}

	if err := printReport(&raw, report, "yaml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestJobDescription(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jd.txt")
	if err := os.WriteFile(path, []byte("  Go developer with Kafka  \n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cmd := &cobra.Command{Use: "match"}
	cmd.Flags().String("jd-file", "", "")
	cmd.Flags().String("jd", "", "")

	if jd, err := jobDescription(cmd); err != nil || jd != "" {
		t.Fatalf("expected corpus mode, got %q (%v)", jd, err)
	}

	_ = cmd.Flags().Set("jd", "   ")
	if jd, _ := jobDescription(cmd); jd != "" {
		t.Fatalf("blank description must mean corpus mode, got %q", jd)
	}

	_ = cmd.Flags().Set("jd-file", path)
	if jd, err := jobDescription(cmd); err != nil || jd != "Go developer with Kafka" {
		t.Fatalf("unexpected description %q (%v)", jd, err)
	}
}

type stubGenerator struct{ model string }

func (stubGenerator) Generate(context.Context, string) (string, error) { return "", nil }

func (g stubGenerator) Model() string { return g.model }

func TestGeneratorLoggerTagsProviderAndModel(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	generatorLogger(zap.New(core), &AIConfig{Provider: " OpenAI "}, stubGenerator{model: "gpt-4o-mini"}).Info("ping")
	generatorLogger(zap.New(core), nil, stubGenerator{model: "gemini-2.5-pro"}).Info("ping")

	entries := observed.All()
	if got := entries[0].ContextMap(); got[logging.FieldProvider] != "openai" || got[logging.FieldModel] != "gpt-4o-mini" {
		t.Fatalf("unexpected fields %v", got)
	}
	if got := entries[1].ContextMap(); got[logging.FieldProvider] != "gemini" {
		t.Fatalf("empty provider must default to gemini, got %v", got)
	}
}

func TestLoadResumeWarnsWithoutSections(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "letter.txt")
	if err := os.WriteFile(plain, []byte("Dear hiring manager,\nplease consider me."), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	structured := filepath.Join(dir, "cv.txt")
	if err := os.WriteFile(structured, []byte("SKILL\nGo, Kafka\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	rec, err := loadResume(context.Background(), plain, logger)
	if err != nil || !rec.IsEmpty() {
		t.Fatalf("expected empty record, got %+v (%v)", rec, err)
	}
	if observed.FilterMessage("resume has no EDUCATION, EXPERIENCE or SKILL sections").Len() != 1 {
		t.Fatalf("expected warning, got %v", observed.All())
	}

	rec, err = loadResume(context.Background(), structured, logger)
	if err != nil || rec.IsEmpty() {
		t.Fatalf("expected skills to be parsed, got %+v (%v)", rec, err)
	}
	if observed.Len() != 1 {
		t.Fatalf("unexpected extra logs %v", observed.All())
	}

	if _, err := loadResume(context.Background(), filepath.Join(dir, "absent.pdf"), logger); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestVersionCommand(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		expect string
	}{
		{name: "full", args: []string{"version"}, expect: "resume-assistant version: unknown\n"},
		{name: "short", args: []string{"version", "--short"}, expect: "unknown\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetArgs(tt.args)
			t.Cleanup(func() {
				rootCmd.SetOut(nil)
				rootCmd.SetArgs(nil)
				_ = versionCmd.Flags().Set("short", "false")
			})

			if err := rootCmd.Execute(); err != nil {
				t.Fatalf("execute: %v", err)
			}
			if out.String() != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, out.String())
			}
		})
	}
}
