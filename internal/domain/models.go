package domain

// Question is a single multiple-choice prompt. Index is its ordinal within the
// owning Quiz and drives navigation and scoring.
type Question struct {
	Index            int      `json:"index"`
	Prompt           string   `json:"question"`
	Answers          []string `json:"answers"`
	CorrectAnswerIdx int      `json:"correctAnswerIndex"`
}

// Quiz is an ordered, immutable set of questions identified by Name.
// Name doubles as the answer-record storage key and the testName URL parameter.
type Quiz struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// Len returns the number of questions.
func (q Quiz) Len() int {
	return len(q.Questions)
}

// Question returns the question at ordinal i, if any.
func (q Quiz) Question(i int) (Question, bool) {
	if i < 0 || i >= len(q.Questions) {
		return Question{}, false
	}
	return q.Questions[i], true
}

// Reload returns a new Quiz value with the same name and questions.
// Shells use it to force a refresh without touching data.
func (q Quiz) Reload() Quiz {
	return Quiz{Name: q.Name, Questions: q.Questions}
}
