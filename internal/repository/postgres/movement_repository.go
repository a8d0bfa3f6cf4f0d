package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clinvita/clinstock/internal/domain"
	"github.com/jmoiron/sqlx"
)

type movementRepository struct {
	db *DB
}

func NewMovementRepository(db *DB) *movementRepository {
	return &movementRepository{db: db}
}

func (r *movementRepository) InsertEntries(ctx context.Context, entries []domain.EntryRecord) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO entrada (
				data_entrada, codigo, quantidade_raw, lote, data_validade,
				valor_unitario, nota_fiscal, representante, responsavel, pago
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare entry insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			_, err := stmt.ExecContext(ctx,
				e.EntryDate, e.Code, e.RawQuantity, e.Lot, e.ExpiryDate,
				e.UnitValue, e.Invoice, e.Agent, e.Responsible, e.Paid,
			)
			if err != nil {
				return fmt.Errorf("failed to insert entry: %w", err)
			}
		}
		return nil
	})
}

func (r *movementRepository) InsertExits(ctx context.Context, exits []domain.ExitRecord) error {
	if len(exits) == 0 {
		return nil
	}
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO saida (
				data_saida, codigo, quantidade_raw, lote, data_validade,
				custo, paciente, responsavel, descarte_flag
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare exit insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range exits {
			_, err := stmt.ExecContext(ctx,
				e.ExitDate, e.Code, e.RawQuantity, e.Lot, e.ExpiryDate,
				e.Cost, e.Patient, e.Responsible, e.Discarded,
			)
			if err != nil {
				return fmt.Errorf("failed to insert exit: %w", err)
			}
		}
		return nil
	})
}

func (r *movementRepository) GetEntries(ctx context.Context) ([]domain.EntryRecord, error) {
	query := `
		SELECT id, data_entrada, codigo, quantidade_raw, lote, data_validade,
		       valor_unitario, nota_fiscal, representante, responsavel, pago
		FROM entrada
		ORDER BY id
	`
	var entries []domain.EntryRecord
	if err := sqlx.SelectContext(ctx, r.db, &entries, query); err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

func (r *movementRepository) GetExits(ctx context.Context) ([]domain.ExitRecord, error) {
	query := `
		SELECT id, data_saida, codigo, quantidade_raw, lote, data_validade,
		       custo, paciente, responsavel, descarte_flag
		FROM saida
		ORDER BY id
	`
	var exits []domain.ExitRecord
	if err := sqlx.SelectContext(ctx, r.db, &exits, query); err != nil {
		return nil, fmt.Errorf("failed to list exits: %w", err)
	}
	return exits, nil
}
