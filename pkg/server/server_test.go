package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/problem-report/pkg/models/api"
	"github.com/de-tools/problem-report/pkg/services/report"
	"github.com/de-tools/problem-report/pkg/services/timecodec"
	"github.com/de-tools/problem-report/pkg/store/client"
	"github.com/de-tools/problem-report/pkg/store/sink"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newProblemSource(t *testing.T, problems []api.Problem) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Api-Token secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		total := int64(len(problems))
		_ = json.NewEncoder(w).Encode(api.ProblemsPage{TotalCount: &total, Problems: problems})
	}))
}

func newTestServer(t *testing.T, registry *prometheus.Registry) *httptest.Server {
	t.Helper()
	ctrl := report.NewController(
		timecodec.New(time.UTC),
		func(baseURL, token string) (client.ProblemsClient, error) {
			return client.NewProblemsClient(baseURL, token, client.Options{})
		},
		report.DefaultSinkResolver(sink.S3Config{}),
	)
	router := ConfigureRouter(zerolog.New(zerolog.NewTestWriter(t)), Config{
		Dependencies: Dependencies{Controller: ctrl, Registry: registry},
	})
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func reportForm(sourceURL, token string) url.Values {
	return url.Values{
		"url":            {sourceURL},
		"fromDate":       {"2024-03-01"},
		"fromTime":       {"00:00"},
		"toDate":         {"2024-03-02"},
		"toTime":         {"23:59"},
		"managementZone": {"Prod"},
		"token":          {token},
	}
}

func TestWebAPI_CreateReport(t *testing.T) {
	name := "host-1"
	source := newProblemSource(t, []api.Problem{{
		ProblemID:     "p-1",
		DisplayID:     "P-1",
		Title:         "CPU saturation",
		ImpactLevel:   "INFRASTRUCTURE",
		SeverityLevel: "RESOURCE_CONTENTION",
		Status:        "OPEN",
		RootCauseEntity: &api.EntityStub{
			Name: &name,
		},
		StartTime: lo.ToPtr(int64(1709251200000)),
		EndTime:   lo.ToPtr(int64(-1)),
	}})
	defer source.Close()
	ts := newTestServer(t, prometheus.NewRegistry())

	resp, err := http.PostForm(ts.URL+"/api/v1/reports", reportForm(source.URL, "secret"))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "dynatrace_problems.xlsx")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Raw Data")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "P-1", rows[1][1])
	assert.Equal(t, "Ongoing", rows[1][8])
}

func TestWebAPI_CreateReport_Errors(t *testing.T) {
	source := newProblemSource(t, nil)
	defer source.Close()
	ts := newTestServer(t, prometheus.NewRegistry())

	tests := []struct {
		name           string
		form           url.Values
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "source rejects token",
			form:           reportForm(source.URL, "wrong"),
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `Failed to fetch data. Status code: 401, Response: {"error":"unauthorized"}`,
		},
		{
			name:           "missing token",
			form:           reportForm(source.URL, ""),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "An error occurred: missing required field: token",
		},
		{
			name: "invalid date",
			form: func() url.Values {
				v := reportForm(source.URL, "secret")
				v.Set("fromDate", "01/03/2024")
				return v
			}(),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "An error occurred: invalid time format",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.PostForm(ts.URL+"/api/v1/reports", tc.form)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(body), tc.expectedBody), "unexpected body %q", body)
		})
	}
}

func TestWebAPI_HealthAndMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	ts := newTestServer(t, registry)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, err = http.PostForm(ts.URL+"/api/v1/reports", url.Values{})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()

	metrics := string(body)
	assert.Contains(t, metrics, `problem_report_web_reports_total{outcome="invalid_input"} 1`)
	assert.Contains(t, metrics, fmt.Sprintf(`problem_report_web_http_requests_total{method="GET",route="/healthz",status="%d"} 1`, http.StatusOK))
}

func TestNewMetrics_ReusesRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := NewMetrics(registry)
	second := NewMetrics(registry)

	first.RecordReport("success")
	second.RecordReport("success")

	families, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "problem_report_web_reports_total" {
			assert.Equal(t, float64(2), mf.GetMetric()[0].GetCounter().GetValue())
			return
		}
	}
	t.Fatal("reports counter not registered")
}

func TestNewWebAPI_DefaultShutdownTimeout(t *testing.T) {
	w := NewWebAPI(zerolog.New(zerolog.NewTestWriter(t)), Config{Addr: "127.0.0.1:0"})
	assert.Equal(t, defaultShutdownTimeout, w.shutdownTimeout)
	assert.NotNil(t, w.Handler())
}

func TestNewRegistry_RuntimeCollectors(t *testing.T) {
	families, err := NewRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
}
