package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz document could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuiz is returned by loaders when a document does not have the quiz shape.
	ErrInvalidQuiz = errors.New("invalid quiz document")
	// ErrQuestionNotFound indicates a submitted question ordinal is out of range.
	ErrQuestionNotFound = errors.New("question not found")
)
