package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/matching"
	"github.com/spigell/resume-assistant/internal/resume"
)

const (
	outputText = "text"
	outputJSON = "json"
)

var matchCmd = &cobra.Command{
	Use:   "match [resume]",
	Short: "Score a resume against the job corpus or a job description",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		logger, config, done := bootstrap(ctx, "match")
		defer done()

		jd, err := jobDescription(cmd)
		if err != nil {
			logger.Fatal("failed to read job description", zap.Error(err))
		}
		output, _ := cmd.Flags().GetString("output")

		rec, err := loadResume(ctx, args[0], logger)
		if err != nil {
			logger.Fatal("failed to load resume", zap.Error(err), zap.String("path", args[0]))
		}

		engine, closeEngine, err := newEngine(ctx, config, logger, false)
		if err != nil {
			logger.Fatal("failed to start matching engine", zap.Error(err))
		}
		defer closeEngine()

		report, err := score(ctx, engine, rec, jd)
		if err != nil {
			logger.Fatal("failed to score resume", zap.Error(err))
		}

		if err := printReport(os.Stdout, report, output); err != nil {
			logger.Fatal("failed to print report", zap.Error(err))
		}
	},
}

func init() {
	matchCmd.Flags().String("jd-file", "", "score against the job description in this file instead of the corpus")
	matchCmd.Flags().String("jd", "", "score against this job description text instead of the corpus")
	matchCmd.Flags().StringP("output", "o", outputText, "output format: text or json")

	rootCmd.AddCommand(matchCmd)
}

// loadResume parses the resume file and warns when none of its sections could
// be found, since every score is then computed from an empty profile.
func loadResume(ctx context.Context, path string, logger *zap.Logger) (resume.Record, error) {
	rec, err := resume.Load(ctx, path)
	if err != nil {
		return resume.Record{}, err
	}
	if rec.IsEmpty() {
		logger.Warn("resume has no EDUCATION, EXPERIENCE or SKILL sections", zap.String("path", path))
	}
	return rec, nil
}

// jobDescription returns the custom job description if one was given. Blank
// descriptions mean corpus mode.
func jobDescription(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("jd-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}
	jd, _ := cmd.Flags().GetString("jd")
	return strings.TrimSpace(jd), nil
}

func score(ctx context.Context, engine *matching.Engine, rec resume.Record, jd string) (any, error) {
	if jd != "" {
		return engine.CustomATSScore(ctx, rec, jd)
	}
	return engine.ATSScore(ctx, rec)
}

func printReport(w io.Writer, report any, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case outputText, "":
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}

	switch r := report.(type) {
	case matching.CustomReport:
		_, err := fmt.Fprintf(w, "ATS score against the job description: %.2f\n", r.ATSScore)
		return err
	case matching.ATSReport:
		if _, err := fmt.Fprintf(w, "Best match: %s\nATS score: %.2f\n", r.MatchedJob, r.ATSScore); err != nil {
			return err
		}
		if len(r.TopMatches) == 0 {
			return nil
		}
		if _, err := fmt.Fprintln(w, "Top matches:"); err != nil {
			return err
		}
		for i, m := range r.TopMatches {
			if _, err := fmt.Fprintf(w, "%d. %s (%.2f)\n   education: %s\n   skills: %s\n", i+1, m.JobName, m.Score, m.Details.Education, m.Details.Skill); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown report type %T", report)
	}
}
