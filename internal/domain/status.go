package domain

import "strings"

// Status classifies how urgently a product needs restocking.
type Status string

const (
	StatusCritical  Status = "CRITICAL"
	StatusReplenish Status = "REPLENISH"
	StatusOK        Status = "OK"
	// StatusVerify flags rows that need manual review (missing dimension,
	// missing demand data, unresolved conversion). It is never merged into
	// OK or CRITICAL.
	StatusVerify Status = "VERIFY"
)

var statusPriorities = map[Status]int{
	StatusCritical:  0,
	StatusReplenish: 1,
	StatusOK:        2,
	StatusVerify:    3,
}

// Priority returns the sort rank of a status; unknown statuses sort last.
func (s Status) Priority() int {
	if p, ok := statusPriorities[s]; ok {
		return p
	}
	return len(statusPriorities)
}

// ParseStatus returns the status for a given label (case-insensitive).
func ParseStatus(label string) (Status, bool) {
	s := Status(strings.ToUpper(strings.TrimSpace(label)))
	_, ok := statusPriorities[s]
	return s, ok
}
