// Package files serves quiz documents from a directory of <name>.json files,
// the same layout the static site publishes under /quiz/.
package files

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"quizlink-service/internal/domain"
)

// QuizLoader reads <dir>/<name>.json.
type QuizLoader struct {
	dir string
}

func NewQuizLoader(dir string) *QuizLoader {
	return &QuizLoader{dir: dir}
}

// LoadDocument decodes the named document. Names that would escape the
// directory are reported as not found.
func (l *QuizLoader) LoadDocument(_ context.Context, name string) (map[string]any, error) {
	data, err := l.Raw(name)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode quiz %s: %w", name, err)
	}
	return doc, nil
}

// Raw returns the document bytes as stored on disk.
func (l *QuizLoader) Raw(name string) ([]byte, error) {
	if !validName(name) {
		return nil, domain.ErrQuizNotFound
	}
	data, err := os.ReadFile(filepath.Join(l.dir, name+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read quiz %s: %w", name, err)
	}
	return data, nil
}

// Names lists the quizzes available in the directory, sorted.
func (l *QuizLoader) Names() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}
