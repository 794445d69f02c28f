package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-autopilot/infrastructure/database/postgres/migrations"
)

const migrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// Migrate aplica, em ordem de nome, os arquivos .sql embutidos que ainda não
// constam em schema_migrations. Cada arquivo roda na sua própria transação.
func Migrate(ctx context.Context, conn Conn) ([]string, error) {
	if _, err := conn.ExecContext(ctx, migrationsTable); err != nil {
		return nil, fmt.Errorf("erro ao criar tabela de migrações: %w", err)
	}

	names, err := fs.Glob(migrations.Files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("erro ao listar migrações: %w", err)
	}
	sort.Strings(names)

	applied := make([]string, 0)
	for _, name := range names {
		version := strings.TrimSuffix(name, ".sql")

		var exists bool
		err := conn.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", version,
		).Scan(&exists)
		if err != nil {
			return applied, fmt.Errorf("erro ao consultar migração %s: %w", version, err)
		}
		if exists {
			continue
		}

		body, err := migrations.Files.ReadFile(name)
		if err != nil {
			return applied, fmt.Errorf("erro ao ler migração %s: %w", name, err)
		}

		err = conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(body)); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("erro ao aplicar migração %s: %w", version, err)
		}

		logrus.WithField("version", version).Info("Migração aplicada")
		applied = append(applied, version)
	}

	return applied, nil
}
