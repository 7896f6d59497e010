package aggregate

import (
	"cmp"
	"slices"

	"github.com/de-tools/problem-report/pkg/models/domain"
	"github.com/samber/lo"
)

// ByImpactAndSeverity counts rows per (impact level, severity level) pair.
// Output is sorted ascending by impact level, then severity level.
func ByImpactAndSeverity(rows []domain.NormalizedRow) []domain.AggregateRow {
	groups := lo.GroupBy(rows, func(row domain.NormalizedRow) domain.AggregateKey {
		return domain.AggregateKey{ImpactLevel: row.ImpactLevel, SeverityLevel: row.SeverityLevel}
	})

	result := lo.MapToSlice(groups, func(key domain.AggregateKey, members []domain.NormalizedRow) domain.AggregateRow {
		return domain.AggregateRow{AggregateKey: key, Count: len(members)}
	})

	slices.SortFunc(result, func(a, b domain.AggregateRow) int {
		return cmp.Or(
			cmp.Compare(a.ImpactLevel, b.ImpactLevel),
			cmp.Compare(a.SeverityLevel, b.SeverityLevel),
		)
	})
	return result
}

// Total returns the number of rows the aggregate accounts for.
func Total(rows []domain.AggregateRow) int {
	return lo.SumBy(rows, func(row domain.AggregateRow) int { return row.Count })
}
