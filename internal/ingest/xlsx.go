package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/clinvita/clinstock/internal/domain"
)

// Table is the first sheet of an XLSX file: a header row plus data rows.
// Column lookup is by normalized header name, so sheets survive cosmetic
// renames like "Código" vs "codigo".
type Table struct {
	cols map[string]int
	Rows [][]string
}

// LoadTable reads the first sheet of an XLSX file.
func LoadTable(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file %s has no sheets", path)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	defer rows.Close()

	t := &Table{cols: make(map[string]int)}
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", path, err)
		}
		if len(t.cols) == 0 {
			for i, col := range record {
				t.cols[normalizeColumnName(col)] = i
			}
			continue
		}
		t.Rows = append(t.Rows, record)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in %s: %w", path, err)
	}
	if len(t.cols) == 0 {
		return nil, fmt.Errorf("xlsx file %s has no header row", path)
	}

	return t, nil
}

// Get returns the trimmed cell under the named column, or "" when the column
// is absent or the row is short.
func (t *Table) Get(row []string, col string) string {
	idx, ok := t.cols[normalizeColumnName(col)]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// HasColumn reports whether the sheet declares the named column.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.cols[normalizeColumnName(col)]
	return ok
}

// normalizeColumnName folds case, trims, strips the accents that appear in
// the clinic's sheets and collapses separators to single underscores.
func normalizeColumnName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	replacer := strings.NewReplacer(
		"á", "a", "à", "a", "ã", "a", "â", "a",
		"é", "e", "ê", "e",
		"í", "i",
		"ó", "o", "õ", "o", "ô", "o",
		"ú", "u", "ü", "u",
		"ç", "c",
	)
	s = replacer.Replace(s)

	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// LoadCatalog reads the product catalog sheet into products and their
// consumption dimensions. Rows without a code are skipped.
func LoadCatalog(path string) ([]domain.Product, []domain.ConsumptionDimension, error) {
	t, err := LoadTable(path)
	if err != nil {
		return nil, nil, err
	}
	if !t.HasColumn("codigo") {
		return nil, nil, fmt.Errorf("catalog sheet %s is missing the codigo column", path)
	}

	var products []domain.Product
	var dims []domain.ConsumptionDimension
	for _, row := range t.Rows {
		code := t.Get(row, "codigo")
		if code == "" {
			continue
		}

		p := domain.Product{
			Code:        code,
			Name:        t.Get(row, "nome"),
			Category:    t.Get(row, "categoria"),
			LotMinimum:  parseOptionalFloat(t.Get(row, "lote_min")),
			LotMultiple: parseOptionalFloat(t.Get(row, "lote_mult")),
			MinQuantity: parseOptionalFloat(t.Get(row, "quantidade_minima")),
		}
		if v, ok := ParseBool01(t.Get(row, "controle_lotes")); ok {
			p.TrackLots = v
		}
		if v, ok := ParseBool01(t.Get(row, "controle_validade")); ok {
			p.TrackExpiry = v
		}
		products = append(products, p)

		consumptionType := t.Get(row, "tipo_consumo")
		if consumptionType == "" {
			continue
		}
		dims = append(dims, domain.ConsumptionDimension{
			Code:             code,
			ConsumptionType:  domain.ConsumptionType(strings.ToLower(consumptionType)),
			PresentationUnit: strings.ToUpper(t.Get(row, "unidade_apresentacao")),
			ClinicalUnit:     strings.ToUpper(t.Get(row, "unidade_clinica")),
			ConversionFactor: parseOptionalFloat(t.Get(row, "fator_conversao")),
			Route:            t.Get(row, "via_aplicacao"),
			Notes:            t.Get(row, "observacao"),
		})
	}

	return products, dims, nil
}

// LoadEntries reads the entries sheet. Each row is one stock entry; rows
// carrying lot quantities also produce a lot snapshot on both unit scales.
func LoadEntries(path string) ([]domain.EntryRecord, []domain.LotSnapshot, error) {
	t, err := LoadTable(path)
	if err != nil {
		return nil, nil, err
	}
	if !t.HasColumn("codigo") {
		return nil, nil, fmt.Errorf("entries sheet %s is missing the codigo column", path)
	}

	var entries []domain.EntryRecord
	var lots []domain.LotSnapshot
	for _, row := range t.Rows {
		code := t.Get(row, "codigo")
		if code == "" {
			continue
		}

		e := domain.EntryRecord{
			EntryDate:   t.Get(row, "data_entrada"),
			Code:        code,
			RawQuantity: t.Get(row, "quantidade"),
			Lot:         t.Get(row, "lote"),
			ExpiryDate:  t.Get(row, "data_validade"),
			UnitValue:   t.Get(row, "valor_unitario"),
			Invoice:     t.Get(row, "nota_fiscal"),
			Agent:       t.Get(row, "representante"),
			Responsible: t.Get(row, "responsavel"),
		}
		if v, ok := ParseBool01(t.Get(row, "pago")); ok {
			e.Paid = &v
		}
		entries = append(entries, e)

		rawPresent := t.Get(row, "qtd_apresentacao")
		rawClinical := t.Get(row, "qtd_unidade")
		if rawPresent == "" && rawClinical == "" {
			continue
		}
		lot := domain.LotSnapshot{
			Code:               code,
			Lot:                e.Lot,
			RawPresentationQty: rawPresent,
			RawClinicalQty:     rawClinical,
			EntryDate:          e.EntryDate,
			ExpiryDate:         e.ExpiryDate,
		}
		if q, ok := ParseQuantity(rawPresent); ok {
			lot.PresentationQty = &q.Amount
			lot.PresentationUnit = q.Unit
		}
		if q, ok := ParseQuantity(rawClinical); ok {
			lot.ClinicalQty = &q.Amount
			lot.ClinicalUnit = q.Unit
		}
		lots = append(lots, lot)
	}

	return entries, lots, nil
}

// LoadExits reads the exits sheet. The discard flag accepts the loose
// truthy spellings found in practice and defaults to false.
func LoadExits(path string) ([]domain.ExitRecord, error) {
	t, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	if !t.HasColumn("codigo") {
		return nil, fmt.Errorf("exits sheet %s is missing the codigo column", path)
	}

	var exits []domain.ExitRecord
	for _, row := range t.Rows {
		code := t.Get(row, "codigo")
		if code == "" {
			continue
		}

		e := domain.ExitRecord{
			ExitDate:    t.Get(row, "data_saida"),
			Code:        code,
			RawQuantity: t.Get(row, "quantidade"),
			Lot:         t.Get(row, "lote"),
			ExpiryDate:  t.Get(row, "data_validade"),
			Cost:        t.Get(row, "custo"),
			Patient:     t.Get(row, "paciente"),
			Responsible: t.Get(row, "responsavel"),
		}
		if v, ok := ParseBool01(t.Get(row, "descarte")); ok {
			e.Discarded = v
		}
		exits = append(exits, e)
	}

	return exits, nil
}

func parseOptionalFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &f
}
