package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/interview"
	"github.com/spigell/resume-assistant/internal/matching"
)

const (
	PromptTechnicalRound = "Technical round"
	PromptHRRound        = "HR round"
	PromptExit           = "Exit"
)

var errExit = errors.New("exit requested")

var interviewCmd = &cobra.Command{
	Use:   "interview [resume]",
	Short: "Match a resume and run a mock technical and HR interview for the role",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		logger, config, done := bootstrap(ctx, "interview")
		defer done()

		jd, err := jobDescription(cmd)
		if err != nil {
			logger.Fatal("failed to read job description", zap.Error(err))
		}

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
		if err := printReport(cmd.OutOrStdout(), report, outputText); err != nil {
			logger.Fatal("failed to print report", zap.Error(err))
		}

		role := interview.CustomRole
		if r, ok := report.(matching.ATSReport); ok {
			role = r.MatchedJob
		}

		generator, err := newTextGenerator(ctx, config.AI, logger)
		if err != nil {
			logger.Fatal("failed to create text generator", zap.Error(err))
		}

		session, err := interview.New(generator, generatorLogger(logger, config.AI, generator)).Start(ctx, role)
		if err != nil {
			logger.Fatal("failed to prepare interview questions", zap.Error(err))
		}

		if err := runInterview(ctx, session); err != nil && !errors.Is(err, errExit) {
			logger.Fatal("interview failed", zap.Error(err))
		}
	},
}

func init() {
	interviewCmd.Flags().String("jd-file", "", "interview for the job description in this file instead of the best corpus match")
	interviewCmd.Flags().String("jd", "", "interview for this job description text instead of the best corpus match")

	rootCmd.AddCommand(interviewCmd)
}

func runInterview(ctx context.Context, session *interview.Session) error {
	fmt.Printf("Interview for role: %s\n", session.Role)

	for {
		roundPrompt := promptui.Select{
			Label: "Choose a round and press ENTER",
			Items: []string{PromptTechnicalRound, PromptHRRound, PromptExit},
		}

		_, selected, err := roundPrompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return errExit
			}
			return err
		}

		switch selected {
		case PromptTechnicalRound:
			err = runRound(ctx, session, interview.RoundTechnical, "Q")
		case PromptHRRound:
			err = runRound(ctx, session, interview.RoundHR, "HR Q")
		case PromptExit:
			return errExit
		}
		if err != nil {
			return err
		}
	}
}

func runRound(ctx context.Context, session *interview.Session, round interview.Round, label string) error {
	state := session.Rounds[round]
	if state.Submitted {
		fmt.Printf("\nFeedback:\n%s\n\n", state.Feedback)
		return nil
	}
	if len(state.Questions) == 0 {
		fmt.Println("No questions were generated for this round.")
		return nil
	}

	for i, question := range state.Questions {
		answerPrompt := promptui.Prompt{
			Label: fmt.Sprintf("%s%d: %s", label, i+1, question),
		}
		answer, err := answerPrompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return errExit
			}
			return err
		}
		if err := session.Answer(round, i, answer); err != nil {
			return err
		}
	}

	feedback, err := session.Submit(ctx, round)
	if err != nil {
		return err
	}
	fmt.Printf("\nFeedback:\n%s\n\n", feedback)
	return nil
}
