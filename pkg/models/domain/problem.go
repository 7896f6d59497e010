package domain

import "time"

const (
	NotAvailable = "N/A"
	Ongoing      = "Ongoing"
)

// EndTime is either a calendar timestamp or the ongoing marker. A nil Time
// without the marker means the source did not report one.
type EndTime struct {
	Time    *time.Time
	Ongoing bool
}

func (e EndTime) Value() interface{} {
	switch {
	case e.Ongoing:
		return Ongoing
	case e.Time == nil:
		return nil
	default:
		return *e.Time
	}
}

// NormalizedRow is the flat form of one problem record.
type NormalizedRow struct {
	ProblemID       string
	DisplayID       string
	Title           string
	ImpactLevel     string
	SeverityLevel   string
	Status          string
	RootCauseEntity string
	StartTime       *time.Time
	EndTime         EndTime
	ManagementZones string
}

type AggregateKey struct {
	ImpactLevel   string
	SeverityLevel string
}

type AggregateRow struct {
	AggregateKey
	Count int
}
