package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type paramsRepository struct {
	db *DB
}

func NewParamsRepository(db *DB) *paramsRepository {
	return &paramsRepository{db: db}
}

func (r *paramsRepository) All(ctx context.Context) (map[string]string, error) {
	var rows []struct {
		Key   string `db:"chave"`
		Value string `db:"valor"`
	}
	if err := sqlx.SelectContext(ctx, r.db, &rows, `SELECT chave, valor FROM params`); err != nil {
		return nil, fmt.Errorf("failed to list params: %w", err)
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

func (r *paramsRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO params (chave, valor)
		VALUES ($1, $2)
		ON CONFLICT (chave) DO UPDATE SET valor = EXCLUDED.valor
	`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set param %s: %w", key, err)
	}
	return nil
}
