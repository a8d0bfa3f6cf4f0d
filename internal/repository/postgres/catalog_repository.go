package postgres

import (
	"context"
	"fmt"

	"github.com/clinvita/clinstock/internal/domain"
	"github.com/jmoiron/sqlx"
)

type catalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) UpsertProduct(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO produto (
			codigo, nome, categoria, controle_lotes, controle_validade,
			lote_min, lote_mult, quantidade_minima
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (codigo)
		DO UPDATE SET
			nome = EXCLUDED.nome,
			categoria = EXCLUDED.categoria,
			controle_lotes = EXCLUDED.controle_lotes,
			controle_validade = EXCLUDED.controle_validade,
			lote_min = EXCLUDED.lote_min,
			lote_mult = EXCLUDED.lote_mult,
			quantidade_minima = EXCLUDED.quantidade_minima
	`
	_, err := r.db.ExecContext(ctx, query,
		p.Code, p.Name, p.Category, p.TrackLots, p.TrackExpiry,
		p.LotMinimum, p.LotMultiple, p.MinQuantity,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

func (r *catalogRepository) UpsertDimension(ctx context.Context, d *domain.ConsumptionDimension) error {
	query := `
		INSERT INTO dim_consumo (
			codigo, tipo_consumo, unidade_apresentacao, unidade_clinica,
			fator_conversao, via_aplicacao, observacao
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (codigo)
		DO UPDATE SET
			tipo_consumo = EXCLUDED.tipo_consumo,
			unidade_apresentacao = EXCLUDED.unidade_apresentacao,
			unidade_clinica = EXCLUDED.unidade_clinica,
			fator_conversao = EXCLUDED.fator_conversao,
			via_aplicacao = EXCLUDED.via_aplicacao,
			observacao = EXCLUDED.observacao
	`
	_, err := r.db.ExecContext(ctx, query,
		d.Code, d.ConsumptionType, d.PresentationUnit, d.ClinicalUnit,
		d.ConversionFactor, d.Route, d.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert consumption dimension: %w", err)
	}
	return nil
}

func (r *catalogRepository) GetProducts(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT codigo, nome, categoria, controle_lotes, controle_validade,
		       lote_min, lote_mult, quantidade_minima
		FROM produto
		ORDER BY codigo
	`
	var products []domain.Product
	if err := sqlx.SelectContext(ctx, r.db, &products, query); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r *catalogRepository) GetDimensions(ctx context.Context) (map[string]domain.ConsumptionDimension, error) {
	query := `
		SELECT codigo, tipo_consumo, unidade_apresentacao, unidade_clinica,
		       fator_conversao, via_aplicacao, observacao
		FROM dim_consumo
	`
	var dims []domain.ConsumptionDimension
	if err := sqlx.SelectContext(ctx, r.db, &dims, query); err != nil {
		return nil, fmt.Errorf("failed to list consumption dimensions: %w", err)
	}

	byCode := make(map[string]domain.ConsumptionDimension, len(dims))
	for _, d := range dims {
		byCode[d.Code] = d
	}
	return byCode, nil
}
