package problems

import (
	"context"
	"fmt"

	"github.com/de-tools/problem-report/pkg/models/api"
	"github.com/de-tools/problem-report/pkg/models/domain"
	"github.com/de-tools/problem-report/pkg/store/client"
	"github.com/rs/zerolog"
)

const PageSize = 500

// State is the position of a fetch run. Fetching is the only non-terminal state.
type State int

const (
	StateFetching State = iota
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Query struct {
	Window         domain.TimeWindow
	ManagementZone string
}

type Fetcher interface {
	Fetch(ctx context.Context, query Query) ([]api.Problem, error)
}

type pagedFetcher struct {
	client   client.ProblemsClient
	pageSize int
}

func NewFetcher(c client.ProblemsClient) Fetcher {
	return &pagedFetcher{client: c, pageSize: PageSize}
}

// Selector builds the problemSelector expression scoping results to one zone.
func Selector(zone string) string {
	return fmt.Sprintf(`managementZones("%s")`, zone)
}

type run struct {
	state      State
	page       int
	totalCount *int64
	records    []api.Problem
	err        error
}

// Fetch requests pages one after another, starting at 1, until the source
// reports that every record has been received. Any failed page aborts the run.
func (f *pagedFetcher) Fetch(ctx context.Context, query Query) ([]api.Problem, error) {
	logger := zerolog.Ctx(ctx)

	r := &run{state: StateFetching, page: 1, records: []api.Problem{}}
	for r.state == StateFetching {
		f.step(ctx, query, r)
	}

	if r.state == StateAborted {
		return nil, r.err
	}

	logger.Info().
		Int("pages", r.page).
		Int("records", len(r.records)).
		Str("zone", query.ManagementZone).
		Msg("fetched problems")
	return r.records, nil
}

func (f *pagedFetcher) step(ctx context.Context, query Query, r *run) {
	logger := zerolog.Ctx(ctx)

	page, err := f.client.GetProblemsPage(ctx, client.PageQuery{
		From:            query.Window.From,
		To:              query.Window.To,
		ProblemSelector: Selector(query.ManagementZone),
		Page:            r.page,
		PageSize:        f.pageSize,
	})
	if err != nil {
		r.state = StateAborted
		r.err = fmt.Errorf("failed to fetch problems page %d: %w", r.page, err)
		return
	}

	r.records = append(r.records, page.Problems...)
	if page.TotalCount != nil {
		r.totalCount = page.TotalCount
	}

	event := logger.Debug().
		Int("page", r.page).
		Int("received", len(page.Problems)).
		Int("accumulated", len(r.records))
	if r.totalCount != nil {
		event = event.Int64("total_count", *r.totalCount)
	}
	event.Msg("problems page received")

	switch {
	case r.totalCount != nil && int64(len(r.records)) >= *r.totalCount:
		r.state = StateDone
	case len(page.Problems) == 0:
		if r.totalCount != nil {
			logger.Warn().
				Int64("total_count", *r.totalCount).
				Int("accumulated", len(r.records)).
				Msg("source returned an empty page before reaching totalCount")
		}
		r.state = StateDone
	default:
		r.page++
	}
}
