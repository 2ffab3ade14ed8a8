package app

import (
	"context"
	"log/slog"
	"net/url"

	"quizlink-service/internal/domain"
)

// QuizRepository loads parsed quizzes (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, name string) (domain.Quiz, error)
}

// AnswerStores hands out the answer store belonging to one browser.
type AnswerStores interface {
	ForClient(clientID string) AnswerStore
}

// QuizService contains the quiz use cases the shells call into.
type QuizService struct {
	quizzes QuizRepository
	nav     *Navigator
	log     *slog.Logger
}

func NewQuizService(quizzes QuizRepository, nav *Navigator, log *slog.Logger) *QuizService {
	if log == nil {
		log = slog.Default()
	}
	return &QuizService{quizzes: quizzes, nav: nav, log: log}
}

// Load resolves a quiz by name. Every failure (empty name, fetch error,
// malformed document) is reported the same way: as no quiz.
func (s *QuizService) Load(ctx context.Context, name string) (*domain.Quiz, bool) {
	if name == "" {
		return nil, false
	}
	quiz, err := s.quizzes.GetQuiz(ctx, name)
	if err != nil {
		s.log.Debug("quiz unavailable", "testName", name)
		return nil, false
	}
	return &quiz, true
}

// View loads the quiz named by the query and derives the state to render.
func (s *QuizService) View(ctx context.Context, query url.Values) State {
	quiz, _ := s.Load(ctx, query.Get(ParamTestName))
	return s.nav.Derive(query, quiz)
}

// Answer records an answer for the named quiz and returns the next query
// together with the state it derives to.
func (s *QuizService) Answer(ctx context.Context, store AnswerStore, name string, questionIdx, answerIdx int) (url.Values, State, error) {
	quiz, ok := s.Load(ctx, name)
	if !ok {
		return nil, State{View: ViewNoQuiz}, domain.ErrQuizNotFound
	}

	next, err := s.nav.Submit(ctx, store, *quiz, questionIdx, answerIdx)
	if err != nil {
		return nil, State{View: ViewNoQuiz}, err
	}
	s.log.Debug("answer recorded", "testName", name, "question", questionIdx, "answer", answerIdx)

	// Re-derive from the new URL, as a browser would after pushing it.
	return next, s.nav.Derive(next, quiz), nil
}

// Navigator exposes the state machine for shells that already hold a quiz.
func (s *QuizService) Navigator() *Navigator {
	return s.nav
}
