package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizlink-service/internal/domain"
)

func decode(t *testing.T, doc string) map[string]any {
	t.Helper()
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &raw))
	return raw
}

func TestParseQuizKeepsSourceOrder(t *testing.T) {
	raw := decode(t, `{
		"questions": [
			{"question": "2+2?", "answers": ["3", "4"], "correctAnswerIndex": 1},
			{"question": "Capital of France?", "answers": ["Paris", "Rome", "Oslo"], "correctAnswerIndex": 0},
			{"question": "Sky colour?", "answers": ["green", "blue"], "correctAnswerIndex": 1}
		]
	}`)

	quiz, ok := domain.ParseQuiz("demo", raw)
	require.True(t, ok)
	assert.Equal(t, "demo", quiz.Name)
	require.Equal(t, 3, quiz.Len())

	for i, q := range quiz.Questions {
		assert.Equal(t, i, q.Index)
	}
	assert.Equal(t, "2+2?", quiz.Questions[0].Prompt)
	assert.Equal(t, []string{"Paris", "Rome", "Oslo"}, quiz.Questions[1].Answers)
	assert.Equal(t, 1, quiz.Questions[2].CorrectAnswerIdx)
}

func TestParseQuizWithoutQuestionsIsAbsent(t *testing.T) {
	cases := map[string]string{
		"missing":  `{"title": "nothing here"}`,
		"null":     `{"questions": null}`,
		"not list": `{"questions": {"question": "x"}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := domain.ParseQuiz("demo", decode(t, doc))
			assert.False(t, ok)
		})
	}
}

func TestParseQuizDropsMalformedQuestions(t *testing.T) {
	raw := decode(t, `{
		"questions": [
			{"answers": ["a", "b"], "correctAnswerIndex": 0},
			{"question": "kept first", "answers": ["a", "b"], "correctAnswerIndex": 1},
			{"question": "no answers", "correctAnswerIndex": 1},
			"not an object",
			{"question": "no index", "answers": ["a"]},
			{"question": "kept second", "answers": ["x", "y"], "correctAnswerIndex": 0}
		]
	}`)

	quiz, ok := domain.ParseQuiz("demo", raw)
	require.True(t, ok)
	require.Equal(t, 2, quiz.Len())
	assert.Less(t, quiz.Len(), len(raw["questions"].([]any)))

	assert.Equal(t, "kept first", quiz.Questions[0].Prompt)
	assert.Equal(t, 0, quiz.Questions[0].Index)
	assert.Equal(t, "kept second", quiz.Questions[1].Prompt)
	assert.Equal(t, 1, quiz.Questions[1].Index)
	for _, q := range quiz.Questions {
		assert.NotNil(t, q.Answers)
	}
}

func TestParseQuestionRequiresAllFields(t *testing.T) {
	_, ok := domain.ParseQuestion(0, map[string]any{"question": "q", "answers": []any{"a"}})
	assert.False(t, ok)

	_, ok = domain.ParseQuestion(0, map[string]any{"question": nil, "answers": []any{"a"}, "correctAnswerIndex": 0.0})
	assert.False(t, ok)

	q, ok := domain.ParseQuestion(4, map[string]any{"question": "q", "answers": []any{"a", "b"}, "correctAnswerIndex": 1.0})
	require.True(t, ok)
	assert.Equal(t, domain.Question{Index: 4, Prompt: "q", Answers: []string{"a", "b"}, CorrectAnswerIdx: 1}, q)
}

func TestParseQuestionCoercesLoosely(t *testing.T) {
	q, ok := domain.ParseQuestion(0, map[string]any{
		"question":           42.0,
		"answers":            "not a list",
		"correctAnswerIndex": "2",
	})
	require.True(t, ok)
	assert.Equal(t, "42", q.Prompt)
	assert.Empty(t, q.Answers)
	assert.Equal(t, 2, q.CorrectAnswerIdx)

	q, ok = domain.ParseQuestion(0, map[string]any{
		"question":           "q",
		"answers":            []any{"a"},
		"correctAnswerIndex": 0.5,
	})
	require.True(t, ok)
	assert.Equal(t, -1, q.CorrectAnswerIdx)
}

func TestQuizQuestionBounds(t *testing.T) {
	quiz := domain.Quiz{Name: "demo", Questions: []domain.Question{{Index: 0, Prompt: "only"}}}

	_, ok := quiz.Question(-1)
	assert.False(t, ok)
	_, ok = quiz.Question(1)
	assert.False(t, ok)
	q, ok := quiz.Question(0)
	require.True(t, ok)
	assert.Equal(t, "only", q.Prompt)

	reloaded := quiz.Reload()
	assert.Equal(t, quiz, reloaded)
}
