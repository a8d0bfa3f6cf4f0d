// internal/domain/models.go
package domain

// ConsumptionType declares how a product's demand is tracked.
type ConsumptionType string

const (
	ConsumptionFractionalDose ConsumptionType = "dose_fracionada"
	ConsumptionSingleDose     ConsumptionType = "dose_unica"
	ConsumptionExcluded       ConsumptionType = "excluir"
)

// Product is a catalog entry. It is created and updated by catalog import
// and read-only to the calculation core.
type Product struct {
	Code        string   `json:"code" db:"codigo"`
	Name        string   `json:"name" db:"nome"`
	Category    string   `json:"category" db:"categoria"`
	TrackLots   bool     `json:"track_lots" db:"controle_lotes"`
	TrackExpiry bool     `json:"track_expiry" db:"controle_validade"`
	LotMinimum  *float64 `json:"lot_minimum" db:"lote_min"`
	LotMultiple *float64 `json:"lot_multiple" db:"lote_mult"`
	MinQuantity *float64 `json:"min_quantity" db:"quantidade_minima"`
}

// ConsumptionDimension is the per-product unit configuration. The target
// scale for demand and stock is the clinical unit for fractional-dose
// products and the presentation unit otherwise.
type ConsumptionDimension struct {
	Code             string          `json:"code" db:"codigo"`
	ConsumptionType  ConsumptionType `json:"consumption_type" db:"tipo_consumo"`
	PresentationUnit string          `json:"presentation_unit" db:"unidade_apresentacao"`
	ClinicalUnit     string          `json:"clinical_unit" db:"unidade_clinica"`
	ConversionFactor *float64        `json:"conversion_factor" db:"fator_conversao"`
	Route            string          `json:"route" db:"via_aplicacao"`
	Notes            string          `json:"notes" db:"observacao"`
}

// TargetUnit returns the unit demand and stock are tracked in.
func (d ConsumptionDimension) TargetUnit() string {
	if d.ConsumptionType == ConsumptionFractionalDose {
		return d.ClinicalUnit
	}
	return d.PresentationUnit
}

// EntryRecord is an append-only stock entry row. The quantity is kept raw;
// the parsed numeric form lives on the lot snapshot.
type EntryRecord struct {
	ID          int64  `json:"id" db:"id"`
	EntryDate   string `json:"entry_date" db:"data_entrada"`
	Code        string `json:"code" db:"codigo"`
	RawQuantity string `json:"raw_quantity" db:"quantidade_raw"`
	Lot         string `json:"lot" db:"lote"`
	ExpiryDate  string `json:"expiry_date" db:"data_validade"`
	UnitValue   string `json:"unit_value" db:"valor_unitario"`
	Invoice     string `json:"invoice" db:"nota_fiscal"`
	Agent       string `json:"agent" db:"representante"`
	Responsible string `json:"responsible" db:"responsavel"`
	Paid        *bool  `json:"paid" db:"pago"`
}

// ExitRecord is an append-only stock exit row. Discarded exits are waste and
// never contribute to demand.
type ExitRecord struct {
	ID          int64  `json:"id" db:"id"`
	ExitDate    string `json:"exit_date" db:"data_saida"`
	Code        string `json:"code" db:"codigo"`
	RawQuantity string `json:"raw_quantity" db:"quantidade_raw"`
	Lot         string `json:"lot" db:"lote"`
	ExpiryDate  string `json:"expiry_date" db:"data_validade"`
	Cost        string `json:"cost" db:"custo"`
	Patient     string `json:"patient" db:"paciente"`
	Responsible string `json:"responsible" db:"responsavel"`
	Discarded   bool   `json:"discarded" db:"descarte_flag"`
}

// LotSnapshot is the current physical quantity of one lot, carrying both the
// raw strings and the pre-parsed numeric/unit pairs for the two scales.
type LotSnapshot struct {
	ID                 int64    `json:"id" db:"id"`
	Code               string   `json:"code" db:"codigo"`
	Lot                string   `json:"lot" db:"lote"`
	RawPresentationQty string   `json:"raw_presentation_qty" db:"qtd_apresentacao_raw"`
	RawClinicalQty     string   `json:"raw_clinical_qty" db:"qtd_unidade_raw"`
	EntryDate          string   `json:"entry_date" db:"data_entrada"`
	ExpiryDate         string   `json:"expiry_date" db:"data_validade"`
	PresentationQty    *float64 `json:"presentation_qty" db:"qtd_apres_num"`
	PresentationUnit   string   `json:"presentation_unit" db:"qtd_apres_un"`
	ClinicalQty        *float64 `json:"clinical_qty" db:"qtd_unid_num"`
	ClinicalUnit       string   `json:"clinical_unit" db:"qtd_unid_un"`
}

// ConsolidatedStock is the per-product sum over lot snapshots, one total per
// unit scale. Products with no lots consolidate to zero, not absence.
type ConsolidatedStock struct {
	Code             string  `json:"code" db:"codigo"`
	PresentationQty  float64 `json:"presentation_qty" db:"estoque_total_apres"`
	PresentationUnit string  `json:"presentation_unit" db:"unidade_apresentacao"`
	ClinicalQty      float64 `json:"clinical_qty" db:"estoque_total_unid"`
	ClinicalUnit     string  `json:"clinical_unit" db:"unidade_unidade"`
}

// DailyDemand is a derived aggregate keyed by (date, code, unit). It is
// deleted and regenerated wholesale on every rebuild.
type DailyDemand struct {
	Date     string  `json:"date" db:"data"`
	Code     string  `json:"code" db:"codigo"`
	Unit     string  `json:"unit" db:"unidade"`
	Quantity float64 `json:"quantity" db:"qtd_total"`
}

// MonthlyDemand is the daily aggregate re-keyed by year-month.
type MonthlyDemand struct {
	YearMonth string  `json:"year_month" db:"ano_mes"`
	Code      string  `json:"code" db:"codigo"`
	Unit      string  `json:"unit" db:"unidade"`
	Quantity  float64 `json:"quantity" db:"qtd_total"`
}

// Params are the three global replenishment parameters. They live in the
// params table string-encoded, with configuration fallbacks when unset.
type Params struct {
	ServiceLevel   float64 `json:"service_level"`
	LeadTimeMean   float64 `json:"lead_time_mean"`
	LeadTimeStdDev float64 `json:"lead_time_std_dev"`
}

// ReportRow is one product's verification result. Rows are computed per run
// and never persisted.
type ReportRow struct {
	Code             string   `json:"code"`
	Name             string   `json:"name"`
	ConsumptionType  string   `json:"consumption_type,omitempty"`
	TargetUnit       string   `json:"target_unit,omitempty"`
	PresentationUnit string   `json:"presentation_unit,omitempty"`
	ClinicalUnit     string   `json:"clinical_unit,omitempty"`
	CurrentStock     *float64 `json:"current_stock,omitempty"`
	DemandMean       *float64 `json:"demand_mean,omitempty"`
	DemandStdDev     *float64 `json:"demand_std_dev,omitempty"`
	LeadTimeMean     *float64 `json:"lead_time_mean,omitempty"`
	LeadTimeStdDev   *float64 `json:"lead_time_std_dev,omitempty"`
	ZScore           *float64 `json:"z_score,omitempty"`
	LeadTimeDemand   *float64 `json:"lead_time_demand,omitempty"`
	LeadTimeSigma    *float64 `json:"lead_time_sigma,omitempty"`
	SafetyStock      *float64 `json:"safety_stock,omitempty"`
	ReorderPoint     *float64 `json:"reorder_point,omitempty"`
	Shortfall        *float64 `json:"shortfall,omitempty"`
	SuggestedPresent *float64 `json:"suggested_presentation_qty,omitempty"`
	SuggestedClinic  *float64 `json:"suggested_clinical_qty,omitempty"`
	CoverageDays     *float64 `json:"coverage_days,omitempty"`
	Status           Status   `json:"status"`
	Reason           string   `json:"reason,omitempty"`
}
