package terminal

import (
	"bytes"
	"testing"

	"github.com/de-tools/problem-report/pkg/models/domain"
	"github.com/de-tools/problem-report/pkg/services/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_Handle(t *testing.T) {
	var buf bytes.Buffer
	result := &report.Result{
		Window:         domain.TimeWindow{From: 1709251200000, To: 1709337540000, Location: "UTC"},
		ManagementZone: "Prod",
		Rows:           make([]domain.NormalizedRow, 3),
		Aggregates: []domain.AggregateRow{
			{AggregateKey: domain.AggregateKey{ImpactLevel: "INFRASTRUCTURE", SeverityLevel: "AVAILABILITY"}, Count: 2},
			{AggregateKey: domain.AggregateKey{ImpactLevel: "SERVICES", SeverityLevel: "ERROR"}, Count: 1},
		},
		Location: "/tmp/report.xlsx",
	}

	require.NoError(t, NewReporter(&buf).Handle(result))

	out := buf.String()
	assert.Contains(t, out, `Problems for management zone "Prod"`)
	assert.Contains(t, out, "Window: 2024-03-01 00:00 to 2024-03-01 23:59 (UTC)")
	assert.Contains(t, out, "Problems: 3")
	assert.Contains(t, out, "Saved to: /tmp/report.xlsx")
	assert.Contains(t, out, "| INFRASTRUCTURE           | AVAILABILITY             |        2 |")
	assert.Contains(t, out, "| SERVICES                 | ERROR                    |        1 |")
}

func TestReporter_Handle_NoLocation(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewReporter(&buf).Handle(&report.Result{Window: domain.TimeWindow{Location: "UTC"}}))

	assert.NotContains(t, buf.String(), "Saved to")
	assert.Contains(t, buf.String(), "Problems: 0")
}
