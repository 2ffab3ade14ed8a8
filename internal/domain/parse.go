package domain

import (
	"fmt"
	"math"
	"strconv"
)

// Field names of the quiz JSON document.
const (
	fieldQuestions     = "questions"
	fieldQuestion      = "question"
	fieldAnswers       = "answers"
	fieldCorrectAnswer = "correctAnswerIndex"
)

// ParseQuiz builds a Quiz from a decoded JSON object. It reports false when the
// document has no questions list; malformed questions are dropped individually.
//
// Each surviving question is numbered by its position among the survivors, so
// Question.Index always matches its slot in Quiz.Questions.
func ParseQuiz(name string, raw map[string]any) (Quiz, bool) {
	rawList, ok := raw[fieldQuestions]
	if !ok || rawList == nil {
		return Quiz{}, false
	}
	items, ok := rawList.([]any)
	if !ok {
		return Quiz{}, false
	}

	questions := make([]Question, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		question, ok := ParseQuestion(len(questions), obj)
		if !ok {
			continue
		}
		questions = append(questions, question)
	}
	return Quiz{Name: name, Questions: questions}, true
}

// ParseQuestion builds a Question at the given ordinal. The prompt, answers and
// correct answer index must all be present; their JSON kinds are coerced leniently.
// A correct answer index that is not an integer becomes -1, which no answer matches.
func ParseQuestion(ordinal int, raw map[string]any) (Question, bool) {
	prompt, okPrompt := present(raw, fieldQuestion)
	answers, okAnswers := present(raw, fieldAnswers)
	correct, okCorrect := present(raw, fieldCorrectAnswer)
	if !okPrompt || !okAnswers || !okCorrect {
		return Question{}, false
	}

	return Question{
		Index:            ordinal,
		Prompt:           asText(prompt),
		Answers:          asTextList(answers),
		CorrectAnswerIdx: asInt(correct),
	}, true
}

func present(raw map[string]any, key string) (any, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func asText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func asTextList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, asText(item))
	}
	return out
}

func asInt(v any) int {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t != math.Trunc(t) {
			return -1
		}
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
	}
	return -1
}
