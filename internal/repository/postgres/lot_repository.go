package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clinvita/clinstock/internal/domain"
	"github.com/jmoiron/sqlx"
)

type lotRepository struct {
	db *DB
}

func NewLotRepository(db *DB) *lotRepository {
	return &lotRepository{db: db}
}

// ReplaceSnapshots swaps the whole lot snapshot table for the freshly
// imported state. Snapshots describe current physical stock, so partial
// updates would mix two points in time.
func (r *lotRepository) ReplaceSnapshots(ctx context.Context, lots []domain.LotSnapshot) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM estoque_lote_snapshot`); err != nil {
			return fmt.Errorf("failed to clear lot snapshots: %w", err)
		}

		query := `
			INSERT INTO estoque_lote_snapshot (
				codigo, lote, qtd_apresentacao_raw, qtd_unidade_raw,
				data_entrada, data_validade,
				qtd_apres_num, qtd_apres_un, qtd_unid_num, qtd_unid_un
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare lot insert: %w", err)
		}
		defer stmt.Close()

		for _, l := range lots {
			_, err := stmt.ExecContext(ctx,
				l.Code, l.Lot, l.RawPresentationQty, l.RawClinicalQty,
				l.EntryDate, l.ExpiryDate,
				l.PresentationQty, l.PresentationUnit, l.ClinicalQty, l.ClinicalUnit,
			)
			if err != nil {
				return fmt.Errorf("failed to insert lot snapshot: %w", err)
			}
		}
		return nil
	})
}

func (r *lotRepository) GetSnapshots(ctx context.Context) ([]domain.LotSnapshot, error) {
	query := `
		SELECT id, codigo, lote, qtd_apresentacao_raw, qtd_unidade_raw,
		       data_entrada, data_validade,
		       qtd_apres_num, qtd_apres_un, qtd_unid_num, qtd_unid_un
		FROM estoque_lote_snapshot
		ORDER BY codigo, lote
	`
	var lots []domain.LotSnapshot
	if err := sqlx.SelectContext(ctx, r.db, &lots, query); err != nil {
		return nil, fmt.Errorf("failed to list lot snapshots: %w", err)
	}
	return lots, nil
}
