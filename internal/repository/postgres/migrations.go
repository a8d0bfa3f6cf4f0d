package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// migrations are applied in order inside a single transaction each. The
// schema keeps the Portuguese table and column names the clinic's sheets and
// operators already use.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS produto (
		codigo            TEXT PRIMARY KEY,
		nome              TEXT NOT NULL DEFAULT '',
		categoria         TEXT NOT NULL DEFAULT '',
		controle_lotes    BOOLEAN NOT NULL DEFAULT FALSE,
		controle_validade BOOLEAN NOT NULL DEFAULT FALSE,
		lote_min          DOUBLE PRECISION,
		lote_mult         DOUBLE PRECISION,
		quantidade_minima DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS dim_consumo (
		codigo               TEXT PRIMARY KEY REFERENCES produto(codigo),
		tipo_consumo         TEXT NOT NULL,
		unidade_apresentacao TEXT NOT NULL DEFAULT '',
		unidade_clinica      TEXT NOT NULL DEFAULT '',
		fator_conversao      DOUBLE PRECISION,
		via_aplicacao        TEXT NOT NULL DEFAULT '',
		observacao           TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS entrada (
		id             BIGSERIAL PRIMARY KEY,
		data_entrada   TEXT NOT NULL DEFAULT '',
		codigo         TEXT NOT NULL,
		quantidade_raw TEXT NOT NULL DEFAULT '',
		lote           TEXT NOT NULL DEFAULT '',
		data_validade  TEXT NOT NULL DEFAULT '',
		valor_unitario TEXT NOT NULL DEFAULT '',
		nota_fiscal    TEXT NOT NULL DEFAULT '',
		representante  TEXT NOT NULL DEFAULT '',
		responsavel    TEXT NOT NULL DEFAULT '',
		pago           BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS saida (
		id             BIGSERIAL PRIMARY KEY,
		data_saida     TEXT NOT NULL DEFAULT '',
		codigo         TEXT NOT NULL,
		quantidade_raw TEXT NOT NULL DEFAULT '',
		lote           TEXT NOT NULL DEFAULT '',
		data_validade  TEXT NOT NULL DEFAULT '',
		custo          TEXT NOT NULL DEFAULT '',
		paciente       TEXT NOT NULL DEFAULT '',
		responsavel    TEXT NOT NULL DEFAULT '',
		descarte_flag  BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS estoque_lote_snapshot (
		id                   BIGSERIAL PRIMARY KEY,
		codigo               TEXT NOT NULL,
		lote                 TEXT NOT NULL DEFAULT '',
		qtd_apresentacao_raw TEXT NOT NULL DEFAULT '',
		qtd_unidade_raw      TEXT NOT NULL DEFAULT '',
		data_entrada         TEXT NOT NULL DEFAULT '',
		data_validade        TEXT NOT NULL DEFAULT '',
		qtd_apres_num        DOUBLE PRECISION,
		qtd_apres_un         TEXT NOT NULL DEFAULT '',
		qtd_unid_num         DOUBLE PRECISION,
		qtd_unid_un          TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS demanda_diaria (
		data      TEXT NOT NULL,
		codigo    TEXT NOT NULL,
		unidade   TEXT NOT NULL,
		qtd_total DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (data, codigo, unidade)
	)`,
	`CREATE TABLE IF NOT EXISTS demanda_mensal (
		ano_mes   TEXT NOT NULL,
		codigo    TEXT NOT NULL,
		unidade   TEXT NOT NULL,
		qtd_total DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (ano_mes, codigo, unidade)
	)`,
	`CREATE TABLE IF NOT EXISTS params (
		chave TEXT PRIMARY KEY,
		valor TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_saida_codigo ON saida (codigo)`,
	`CREATE INDEX IF NOT EXISTS idx_entrada_codigo ON entrada (codigo)`,
	`CREATE INDEX IF NOT EXISTS idx_lote_codigo ON estoque_lote_snapshot (codigo)`,
}

// Migrate brings the schema up to the current version. Applied versions are
// tracked in schema_migrations so reruns are no-ops.
func Migrate(ctx context.Context, db *DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		return fmt.Errorf("could not create schema_migrations: %w", err)
	}

	var current int
	if err := db.GetContext(ctx, &current, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return fmt.Errorf("could not read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		stmt := migrations[i]
		err := db.WithTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration %d failed: %w", version, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
				return fmt.Errorf("could not record migration %d: %w", version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		log.Info().Int("version", version).Msg("applied migration")
	}

	return nil
}
