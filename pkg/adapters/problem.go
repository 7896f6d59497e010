package adapters

import (
	"strings"
	"time"

	"github.com/de-tools/problem-report/pkg/models/api"
	"github.com/de-tools/problem-report/pkg/models/domain"
	"github.com/samber/lo"
)

const ongoingEndTime = -1

const cellTimeLayout = "2006-01-02 15:04:05"

// Spreadsheet date serials start in 1900.
var firstCellDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// MapProblemToNormalizedRow never fails: absent fields map to their zero value
// or to the N/A marker.
func MapProblemToNormalizedRow(p api.Problem) domain.NormalizedRow {
	return domain.NormalizedRow{
		ProblemID:       p.ProblemID,
		DisplayID:       p.DisplayID,
		Title:           p.Title,
		ImpactLevel:     p.ImpactLevel,
		SeverityLevel:   p.SeverityLevel,
		Status:          p.Status,
		RootCauseEntity: rootCauseName(p.RootCauseEntity),
		StartTime:       optionalTime(p.StartTime),
		EndTime:         endTime(p.EndTime),
		ManagementZones: joinZoneNames(p.ManagementZones),
	}
}

func MapProblemsToNormalizedRows(problems []api.Problem) []domain.NormalizedRow {
	return lo.Map(problems, func(p api.Problem, _ int) domain.NormalizedRow {
		return MapProblemToNormalizedRow(p)
	})
}

// MillisToTime interprets ms as milliseconds since the Unix epoch, in UTC.
func MillisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func rootCauseName(entity *api.EntityStub) string {
	if entity == nil {
		return domain.NotAvailable
	}
	if entity.Name == nil {
		return ""
	}
	return *entity.Name
}

func optionalTime(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := MillisToTime(*ms)
	return &t
}

func endTime(ms *int64) domain.EndTime {
	if ms != nil && *ms == ongoingEndTime {
		return domain.EndTime{Ongoing: true}
	}
	return domain.EndTime{Time: optionalTime(ms)}
}

// timeCell leaves absent times empty and writes times the spreadsheet cannot
// hold as a date serial as text in the same layout.
func timeCell(v interface{}) interface{} {
	if p, ok := v.(*time.Time); ok {
		if p == nil {
			return nil
		}
		v = *p
	}
	t, ok := v.(time.Time)
	if !ok {
		return v
	}
	if t.Before(firstCellDate) {
		return t.UTC().Format(cellTimeLayout)
	}
	return t
}

func joinZoneNames(zones []api.ManagementZone) string {
	names := lo.Map(zones, func(z api.ManagementZone, _ int) string {
		if z.Name == nil {
			return domain.NotAvailable
		}
		return *z.Name
	})
	return strings.Join(names, ", ")
}

func MapNormalizedRowToCells(row domain.NormalizedRow) []interface{} {
	return []interface{}{
		row.ProblemID,
		row.DisplayID,
		row.Title,
		row.ImpactLevel,
		row.SeverityLevel,
		row.Status,
		row.RootCauseEntity,
		timeCell(row.StartTime),
		timeCell(row.EndTime.Value()),
		row.ManagementZones,
	}
}

func MapAggregateRowToCells(row domain.AggregateRow) []interface{} {
	return []interface{}{row.ImpactLevel, row.SeverityLevel, row.Count}
}
