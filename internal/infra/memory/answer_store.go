package memory

import (
	"context"
	"sync"

	"quizlink-service/internal/app"
)

// AnswerStores keeps every browser's answer records in process memory.
// Records are lost on restart.
type AnswerStores struct {
	mu      sync.RWMutex
	records map[string]map[string]string
}

func NewAnswerStores() *AnswerStores {
	return &AnswerStores{
		records: make(map[string]map[string]string),
	}
}

// ForClient returns the store scoped to one browser id.
func (s *AnswerStores) ForClient(clientID string) app.AnswerStore {
	return &answerStore{parent: s, clientID: clientID}
}

type answerStore struct {
	parent   *AnswerStores
	clientID string
}

func (a *answerStore) GetItem(_ context.Context, key string) (string, bool, error) {
	a.parent.mu.RLock()
	defer a.parent.mu.RUnlock()
	value, ok := a.parent.records[a.clientID][key]
	return value, ok, nil
}

func (a *answerStore) SetItem(_ context.Context, key, value string) error {
	a.parent.mu.Lock()
	defer a.parent.mu.Unlock()
	items, ok := a.parent.records[a.clientID]
	if !ok {
		items = make(map[string]string)
		a.parent.records[a.clientID] = items
	}
	items[key] = value
	return nil
}
