package domain

import "strings"

// ReportParams holds everything a single fetch-and-export run needs.
type ReportParams struct {
	SourceURL      string
	FromDate       string
	FromTime       string
	ToDate         string
	ToTime         string
	ManagementZone string
	Token          string
}

// Validate reports every required field that is blank.
func (p ReportParams) Validate() error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"url", p.SourceURL},
		{"from", p.FromDate},
		{"to", p.ToDate},
		{"management zone", p.ManagementZone},
		{"token", p.Token},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldError{Fields: missing}
	}
	return nil
}

// TimeWindow is the resolved query window in milliseconds since the Unix epoch.
type TimeWindow struct {
	From     int64
	To       int64
	Location string
}
