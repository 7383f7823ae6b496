package interview

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/logger"
)

// RoundState holds one round's questions, the candidate's answers and the
// model's feedback once submitted.
type RoundState struct {
	Round     Round
	Questions []string
	Answers   []string
	Feedback  string
	Submitted bool
}

// Session is one candidate's pass through both rounds. It lives in memory only.
type Session struct {
	ID     string
	Role   string
	Rounds map[Round]*RoundState

	interviewer *Interviewer
	logger      *zap.Logger
}

// ErrAlreadySubmitted is returned when answers for a round are submitted twice.
var ErrAlreadySubmitted = errors.New("answers already submitted")

// Start generates questions for both rounds. role is the matched job name, or
// CustomRole when matching against a job description.
func (i *Interviewer) Start(ctx context.Context, role string) (*Session, error) {
	s := &Session{
		ID:          uuid.NewString(),
		Role:        role,
		Rounds:      make(map[Round]*RoundState, 2),
		interviewer: i,
	}
	s.logger = logger.WithFields(i.logger, zap.String(logger.FieldSessionID, s.ID))

	for _, round := range []Round{RoundTechnical, RoundHR} {
		questions, err := i.Questions(ctx, round, role)
		if err != nil {
			return nil, err
		}
		s.Rounds[round] = &RoundState{
			Round:     round,
			Questions: questions,
			Answers:   make([]string, len(questions)),
		}
	}

	s.logger.Info("interview session started", zap.String("role", role))
	return s, nil
}

// Answer records the answer to question n (zero based) of round.
func (s *Session) Answer(round Round, n int, answer string) error {
	state, ok := s.Rounds[round]
	if !ok {
		return errors.New("unknown interview round")
	}
	if state.Submitted {
		return ErrAlreadySubmitted
	}
	if n < 0 || n >= len(state.Answers) {
		return errors.New("question number out of range")
	}
	state.Answers[n] = answer
	return nil
}

// Submit sends the round's answers for evaluation and stores the feedback.
func (s *Session) Submit(ctx context.Context, round Round) (string, error) {
	state, ok := s.Rounds[round]
	if !ok {
		return "", errors.New("unknown interview round")
	}
	if state.Submitted {
		return state.Feedback, ErrAlreadySubmitted
	}

	feedback, err := s.interviewer.Evaluate(ctx, round, state.Questions, state.Answers)
	if err != nil {
		return "", err
	}

	state.Feedback = feedback
	state.Submitted = true
	s.logger.Info("round evaluated", zap.String("round", string(round)))
	return feedback, nil
}
