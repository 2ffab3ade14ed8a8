package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	Name      string         `bun:"name,pk"`
	Document  map[string]any `bun:"document,type:jsonb,notnull"`
	UpdatedAt time.Time      `bun:"updated_at,notnull"`
}

// Importer upserts quiz documents into the quizzes table.
type Importer struct {
	db  *bun.DB
	now func() time.Time
}

func NewImporter(db *bun.DB) *Importer {
	return &Importer{db: db, now: time.Now}
}

// Upsert stores doc under name, replacing any previous document.
func (i *Importer) Upsert(ctx context.Context, name string, doc map[string]any) error {
	row := &quizRow{Name: name, Document: doc, UpdatedAt: i.now()}
	_, err := i.db.NewInsert().
		Model(row).
		On("CONFLICT (name) DO UPDATE").
		Set("document = EXCLUDED.document").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert quiz %s: %w", name, err)
	}
	return nil
}
