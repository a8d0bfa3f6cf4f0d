package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clinvita/clinstock/internal/domain"
	"github.com/jmoiron/sqlx"
)

type demandRepository struct {
	db *DB
}

func NewDemandRepository(db *DB) *demandRepository {
	return &demandRepository{db: db}
}

// ReplaceAll deletes and reinserts both aggregates in one transaction. The
// rebuild emits complete state, so a wholesale swap is the only write shape
// that cannot leave stale buckets behind.
func (r *demandRepository) ReplaceAll(ctx context.Context, daily []domain.DailyDemand, monthly []domain.MonthlyDemand) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM demanda_diaria`); err != nil {
			return fmt.Errorf("failed to clear daily demand: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM demanda_mensal`); err != nil {
			return fmt.Errorf("failed to clear monthly demand: %w", err)
		}

		dailyStmt, err := tx.PrepareContext(ctx,
			`INSERT INTO demanda_diaria (data, codigo, unidade, qtd_total) VALUES ($1, $2, $3, $4)`)
		if err != nil {
			return fmt.Errorf("failed to prepare daily insert: %w", err)
		}
		defer dailyStmt.Close()
		for _, d := range daily {
			if _, err := dailyStmt.ExecContext(ctx, d.Date, d.Code, d.Unit, d.Quantity); err != nil {
				return fmt.Errorf("failed to insert daily demand: %w", err)
			}
		}

		monthlyStmt, err := tx.PrepareContext(ctx,
			`INSERT INTO demanda_mensal (ano_mes, codigo, unidade, qtd_total) VALUES ($1, $2, $3, $4)`)
		if err != nil {
			return fmt.Errorf("failed to prepare monthly insert: %w", err)
		}
		defer monthlyStmt.Close()
		for _, m := range monthly {
			if _, err := monthlyStmt.ExecContext(ctx, m.YearMonth, m.Code, m.Unit, m.Quantity); err != nil {
				return fmt.Errorf("failed to insert monthly demand: %w", err)
			}
		}

		return nil
	})
}

func (r *demandRepository) GetDaily(ctx context.Context) ([]domain.DailyDemand, error) {
	query := `
		SELECT data, codigo, unidade, qtd_total
		FROM demanda_diaria
		ORDER BY data, codigo, unidade
	`
	var rows []domain.DailyDemand
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list daily demand: %w", err)
	}
	return rows, nil
}

func (r *demandRepository) GetMonthly(ctx context.Context) ([]domain.MonthlyDemand, error) {
	query := `
		SELECT ano_mes, codigo, unidade, qtd_total
		FROM demanda_mensal
		ORDER BY ano_mes, codigo, unidade
	`
	var rows []domain.MonthlyDemand
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list monthly demand: %w", err)
	}
	return rows, nil
}
