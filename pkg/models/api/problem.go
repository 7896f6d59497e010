package api

// ProblemsPage is a single page returned by the problems endpoint.
type ProblemsPage struct {
	TotalCount *int64    `json:"totalCount,omitempty"`
	PageSize   *int      `json:"pageSize,omitempty"`
	Problems   []Problem `json:"problems"`
}

type Problem struct {
	ProblemID       string           `json:"problemId"`
	DisplayID       string           `json:"displayId"`
	Title           string           `json:"title"`
	ImpactLevel     string           `json:"impactLevel"`
	SeverityLevel   string           `json:"severityLevel"`
	Status          string           `json:"status"`
	RootCauseEntity *EntityStub      `json:"rootCauseEntity,omitempty"`
	StartTime       *int64           `json:"startTime,omitempty"`
	EndTime         *int64           `json:"endTime,omitempty"`
	ManagementZones []ManagementZone `json:"managementZones"`
}

type EntityStub struct {
	EntityID *EntityID `json:"entityId,omitempty"`
	Name     *string   `json:"name,omitempty"`
}

type EntityID struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type ManagementZone struct {
	ID   string  `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`
}

// ReportRequest carries the form fields accepted by the web front end.
type ReportRequest struct {
	URL            string `json:"url"`
	FromDate       string `json:"fromDate"`
	FromTime       string `json:"fromTime"`
	ToDate         string `json:"toDate"`
	ToTime         string `json:"toTime"`
	ManagementZone string `json:"managementZone"`
	Token          string `json:"token"`

	// From and To are the single datetime fields older clients send.
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}
