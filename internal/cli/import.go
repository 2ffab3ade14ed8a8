package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"quizlink-service/internal/config"
	"quizlink-service/internal/infra/files"
	"quizlink-service/internal/infra/postgres"
)

// NewImportCmd copies the quiz directory into Postgres.
func NewImportCmd(configPath *string) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert every <name>.json of the quiz directory into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), *configPath, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "quiz directory (defaults to quiz.dir from config)")
	return cmd
}

func runImport(ctx context.Context, configPath, dir string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := setupLogger(cfg)
	if dir == "" {
		dir = cfg.Quiz.Dir
	}

	if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
		return err
	}
	db, err := openBun(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	loader := files.NewQuizLoader(dir)
	names, err := loader.Names()
	if err != nil {
		return fmt.Errorf("list quizzes: %w", err)
	}

	importer := postgres.NewImporter(db)
	for _, name := range names {
		doc, err := loader.LoadDocument(ctx, name)
		if err != nil {
			log.Warn("skipping quiz", "testName", name, "err", err)
			continue
		}
		if err := importer.Upsert(ctx, name, doc); err != nil {
			return err
		}
		log.Info("quiz imported", "testName", name)
	}
	return nil
}
