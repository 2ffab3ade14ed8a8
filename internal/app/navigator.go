package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"quizlink-service/internal/domain"
	"quizlink-service/internal/integrity"
)

// URL query parameters. Together they are the whole navigation protocol.
const (
	ParamTestName   = "testName"
	ParamIndex      = "index"
	ParamResult     = "result"
	ParamResultRand = "result-rand"
	ParamResultHash = "result-hash"
)

// View names which screen a State selects.
type View int

const (
	ViewNoQuiz View = iota
	ViewQuestion
	ViewResult
)

func (v View) String() string {
	switch v {
	case ViewQuestion:
		return "question"
	case ViewResult:
		return "result"
	default:
		return "empty"
	}
}

func (v View) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// State is the view derived from a URL and the loaded quiz.
type State struct {
	View     View             `json:"view"`
	QuizName string           `json:"testName,omitempty"`
	Question *domain.Question `json:"question,omitempty"`
	Score    int              `json:"score"`
	Total    int              `json:"total,omitempty"`
}

// AnswerStore is per-browser key-value persistence. Values are JSON strings.
type AnswerStore interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
}

// Navigator derives the current view and computes transitions.
type Navigator struct {
	codec *integrity.Codec
}

func NewNavigator(codec *integrity.Codec) *Navigator {
	return &Navigator{codec: codec}
}

// Derive maps query parameters and the loaded quiz (nil while loading or when
// absent) to a State. It has no side effects.
func (n *Navigator) Derive(query url.Values, quiz *domain.Quiz) State {
	if quiz == nil {
		return State{View: ViewNoQuiz}
	}

	// A verified result wins over any index parameter.
	token := integrity.Token{
		Result: query.Get(ParamResult),
		Rand:   query.Get(ParamResultRand),
		Hash:   query.Get(ParamResultHash),
	}
	if score, ok := n.codec.Score(token); ok {
		return State{View: ViewResult, QuizName: quiz.Name, Score: score, Total: quiz.Len()}
	}

	question, ok := quiz.Question(parseIndex(query.Get(ParamIndex)))
	if !ok {
		return State{View: ViewNoQuiz}
	}
	return State{View: ViewQuestion, QuizName: quiz.Name, Question: &question, Total: quiz.Len()}
}

// Submit records answerIdx for question questionIdx in the browser's answer
// record and returns the query of the next state: the following question, or a
// signed result once the last question has been answered.
func (n *Navigator) Submit(ctx context.Context, store AnswerStore, quiz domain.Quiz, questionIdx, answerIdx int) (url.Values, error) {
	if _, ok := quiz.Question(questionIdx); !ok {
		return nil, domain.ErrQuestionNotFound
	}

	record, err := loadRecord(ctx, store, quiz)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	record[questionIdx] = answerIdx

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	if err := store.SetItem(ctx, quiz.Name, string(data)); err != nil {
		return nil, fmt.Errorf("save answers: %w", err)
	}

	next := url.Values{}
	next.Set(ParamTestName, quiz.Name)
	if questionIdx+1 < quiz.Len() {
		next.Set(ParamIndex, strconv.Itoa(questionIdx+1))
		return next, nil
	}

	token := n.codec.ComputeToken(Score(quiz, record))
	next.Set(ParamResult, token.Result)
	next.Set(ParamResultRand, token.Rand)
	next.Set(ParamResultHash, token.Hash)
	return next, nil
}

// Score counts the questions whose recorded answer matches the correct one.
func Score(quiz domain.Quiz, record []int) int {
	correct := 0
	for i, q := range quiz.Questions {
		if i < len(record) && record[i] == q.CorrectAnswerIdx {
			correct++
		}
	}
	return correct
}

// Answers returns the stored answer record for quiz, zero-filled when absent.
func Answers(ctx context.Context, store AnswerStore, quiz domain.Quiz) ([]int, error) {
	return loadRecord(ctx, store, quiz)
}

// loadRecord never returns a record shorter than the quiz. An undecodable
// stored value is treated as absent.
func loadRecord(ctx context.Context, store AnswerStore, quiz domain.Quiz) ([]int, error) {
	record := make([]int, quiz.Len())

	raw, ok, err := store.GetItem(ctx, quiz.Name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return record, nil
	}

	var stored []int
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return record, nil
	}
	if len(stored) < len(record) {
		copy(record, stored)
		return record, nil
	}
	return stored, nil
}

// parseIndex treats a missing or non-numeric index as the first question.
func parseIndex(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
