// Package ingest handles spreadsheet ingestion: best-effort parsing of the
// free-text quantity and date strings found in imported sheets, and loading
// of catalog, entry and exit rows from XLSX files.
package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var numberRe = regexp.MustCompile(`[-+]?\d+(?:[.,]\d+)?`)

// Quantity is the parsed form of a raw "value unit - description" string,
// e.g. "5,5 ml - mililitro" or "2 FR - Frascos".
type Quantity struct {
	Amount      float64
	Unit        string
	Description string
}

// ParseQuantity interprets a quantity-with-unit string. The value may use
// comma or dot as decimal separator; the unit is the second word before the
// first hyphen, uppercased. The boolean reports whether a numeric amount was
// found; callers skip the record otherwise.
func ParseQuantity(raw string) (Quantity, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Quantity{}, false
	}

	head, desc, _ := strings.Cut(s, "-")
	head = strings.TrimSpace(head)
	desc = strings.TrimSpace(desc)

	parts := strings.Fields(head)
	if len(parts) == 0 {
		return Quantity{}, false
	}

	match := numberRe.FindString(parts[0])
	if match == "" {
		return Quantity{}, false
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		return Quantity{}, false
	}

	q := Quantity{Amount: amount, Description: desc}
	if len(parts) >= 2 {
		q.Unit = strings.ToUpper(strings.TrimSpace(parts[1]))
	}
	return q, true
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
}

// ParseDate normalizes a raw date string to YYYY-MM-DD. Timestamps are
// truncated to the day. Unparsable values report false; the caller drops the
// single record rather than aborting the whole rebuild.
func ParseDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	// ISO timestamps: keep the date part only.
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// ParseBool01 interprets the loose truthy/falsy spellings found in imported
// sheets ("1", "sim", "yes", ...). The boolean ok reports whether the value
// was recognizable.
func ParseBool01(raw string) (value, ok bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "":
		return false, false
	case "1", "true", "t", "sim", "s", "y", "yes":
		return true, true
	case "0", "false", "f", "nao", "não", "n", "no":
		return false, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		switch int(f) {
		case 0:
			return false, true
		case 1:
			return true, true
		}
	}
	return false, false
}
