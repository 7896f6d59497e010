package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/de-tools/problem-report/pkg/models/api"
	"github.com/de-tools/problem-report/pkg/models/domain"
	"github.com/de-tools/problem-report/pkg/runtime/export"
	"github.com/de-tools/problem-report/pkg/services/report"
	"github.com/rs/zerolog"
)

const (
	DefaultFileName = "dynatrace_problems.xlsx"
	maxRequestBytes = 1 << 20
)

type OutcomeRecorder interface {
	RecordReport(outcome string)
}

type Handler struct {
	ctrl     report.Controller
	outcomes OutcomeRecorder
}

func NewHandler(ctrl report.Controller, outcomes OutcomeRecorder) *Handler {
	return &Handler{
		ctrl:     ctrl,
		outcomes: outcomes,
	}
}

// CreateReport accepts the report form (urlencoded, multipart or JSON) and
// responds with the finished workbook as an attachment.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	req, err := decodeRequest(w, r)
	if err != nil {
		h.record("bad_request")
		http.Error(w, fmt.Sprintf("An error occurred: %v", err), http.StatusBadRequest)
		return
	}

	result, err := h.ctrl.Generate(ctx, domain.ReportParams{
		SourceURL:      req.URL,
		FromDate:       req.FromDate,
		FromTime:       req.FromTime,
		ToDate:         req.ToDate,
		ToTime:         req.ToTime,
		ManagementZone: req.ManagementZone,
		Token:          req.Token,
	})
	if err != nil {
		status, outcome := classify(err)
		h.record(outcome)
		logger.Error().
			Err(err).
			Str("zone", req.ManagementZone).
			Msg("failed to generate report")
		http.Error(w, domain.Message(err), status)
		return
	}

	h.record("success")
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": DefaultFileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Document)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Document); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to write report")
	}
}

func (h *Handler) record(outcome string) {
	if h.outcomes != nil {
		h.outcomes.RecordReport(outcome)
	}
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (api.ReportRequest, error) {
	var req api.ReportRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("invalid request body: %w", err)
		}
		return withLegacyWindow(req), nil
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxRequestBytes); err != nil {
			return req, fmt.Errorf("invalid form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return req, fmt.Errorf("invalid form: %w", err)
	}

	req.URL = r.FormValue("url")
	req.FromDate = r.FormValue("fromDate")
	req.FromTime = r.FormValue("fromTime")
	req.ToDate = r.FormValue("toDate")
	req.ToTime = r.FormValue("toTime")
	req.ManagementZone = r.FormValue("managementZone")
	req.Token = r.FormValue("token")
	req.From = r.FormValue("from")
	req.To = r.FormValue("to")
	return withLegacyWindow(req), nil
}

// withLegacyWindow fills fromDate/toDate from the single from/to fields when
// only those were sent.
func withLegacyWindow(req api.ReportRequest) api.ReportRequest {
	if req.FromDate == "" {
		req.FromDate = req.From
	}
	if req.ToDate == "" {
		req.ToDate = req.To
	}
	return req
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrMissingField), errors.Is(err, domain.ErrInvalidTimeFormat):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrSourceUnavailable):
		return http.StatusBadGateway, "source_unavailable"
	default:
		return http.StatusInternalServerError, "error"
	}
}
