package problems

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/de-tools/problem-report/pkg/models/api"
	"github.com/de-tools/problem-report/pkg/models/domain"
	"github.com/de-tools/problem-report/pkg/store/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProblemsClient struct {
	mock.Mock
}

func (m *mockProblemsClient) GetProblemsPage(ctx context.Context, query client.PageQuery) (*api.ProblemsPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.ProblemsPage), args.Error(1)
}

func problems(offset, n int) []api.Problem {
	out := make([]api.Problem, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, api.Problem{ProblemID: fmt.Sprintf("P%d", offset+i)})
	}
	return out
}

func total(n int64) *int64 { return &n }

func pageQuery(page int) client.PageQuery {
	return client.PageQuery{
		From:            100,
		To:              200,
		ProblemSelector: `managementZones("Prod")`,
		Page:            page,
		PageSize:        PageSize,
	}
}

var query = Query{Window: domain.TimeWindow{From: 100, To: 200}, ManagementZone: "Prod"}

func TestFetch_IssuesCeilTotalOverPageSizeRequests(t *testing.T) {
	tests := []struct {
		name          string
		total         int
		expectedPages int
	}{
		{name: "single partial page", total: 1, expectedPages: 1},
		{name: "exactly one page", total: 500, expectedPages: 1},
		{name: "two full pages", total: 1000, expectedPages: 2},
		{name: "three pages", total: 1200, expectedPages: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(mockProblemsClient)
			remaining := tt.total
			for page := 1; remaining > 0; page++ {
				n := min(remaining, PageSize)
				m.On("GetProblemsPage", mock.Anything, pageQuery(page)).
					Return(&api.ProblemsPage{TotalCount: total(int64(tt.total)), Problems: problems((page-1)*PageSize, n)}, nil).
					Once()
				remaining -= n
			}

			records, err := NewFetcher(m).Fetch(context.Background(), query)
			require.NoError(t, err)

			assert.Len(t, records, tt.total)
			assert.Equal(t, "P0", records[0].ProblemID)
			assert.Equal(t, fmt.Sprintf("P%d", tt.total-1), records[tt.total-1].ProblemID)
			m.AssertNumberOfCalls(t, "GetProblemsPage", tt.expectedPages)
			m.AssertExpectations(t)
		})
	}
}

func TestFetch_ZeroProblems(t *testing.T) {
	m := new(mockProblemsClient)
	m.On("GetProblemsPage", mock.Anything, pageQuery(1)).
		Return(&api.ProblemsPage{TotalCount: total(0), Problems: []api.Problem{}}, nil).
		Once()

	records, err := NewFetcher(m).Fetch(context.Background(), query)
	require.NoError(t, err)

	assert.NotNil(t, records)
	assert.Empty(t, records)
	m.AssertExpectations(t)
}

func TestFetch_WithoutTotalCountStopsOnEmptyPage(t *testing.T) {
	m := new(mockProblemsClient)
	m.On("GetProblemsPage", mock.Anything, pageQuery(1)).
		Return(&api.ProblemsPage{Problems: problems(0, 500)}, nil).Once()
	m.On("GetProblemsPage", mock.Anything, pageQuery(2)).
		Return(&api.ProblemsPage{Problems: problems(500, 20)}, nil).Once()
	m.On("GetProblemsPage", mock.Anything, pageQuery(3)).
		Return(&api.ProblemsPage{Problems: []api.Problem{}}, nil).Once()

	records, err := NewFetcher(m).Fetch(context.Background(), query)
	require.NoError(t, err)

	assert.Len(t, records, 520)
	m.AssertExpectations(t)
}

func TestFetch_TotalCountFromLaterPageIsHonoured(t *testing.T) {
	m := new(mockProblemsClient)
	m.On("GetProblemsPage", mock.Anything, pageQuery(1)).
		Return(&api.ProblemsPage{Problems: problems(0, 500)}, nil).Once()
	m.On("GetProblemsPage", mock.Anything, pageQuery(2)).
		Return(&api.ProblemsPage{TotalCount: total(600), Problems: problems(500, 100)}, nil).Once()

	records, err := NewFetcher(m).Fetch(context.Background(), query)
	require.NoError(t, err)

	assert.Len(t, records, 600)
	m.AssertExpectations(t)
}

func TestFetch_EmptyPageBeforeTotalCountTerminates(t *testing.T) {
	m := new(mockProblemsClient)
	m.On("GetProblemsPage", mock.Anything, pageQuery(1)).
		Return(&api.ProblemsPage{TotalCount: total(900), Problems: problems(0, 500)}, nil).Once()
	m.On("GetProblemsPage", mock.Anything, pageQuery(2)).
		Return(&api.ProblemsPage{TotalCount: total(900), Problems: []api.Problem{}}, nil).Once()

	records, err := NewFetcher(m).Fetch(context.Background(), query)
	require.NoError(t, err)

	assert.Len(t, records, 500)
	m.AssertExpectations(t)
}

func TestFetch_FirstPageFailureAborts(t *testing.T) {
	m := new(mockProblemsClient)
	m.On("GetProblemsPage", mock.Anything, pageQuery(1)).
		Return(nil, &domain.SourceError{StatusCode: 500, Body: "internal error"}).Once()

	records, err := NewFetcher(m).Fetch(context.Background(), query)

	assert.Nil(t, records)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)

	var srcErr *domain.SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, 500, srcErr.StatusCode)
	assert.Equal(t, "internal error", srcErr.Body)
	m.AssertExpectations(t)
}

func TestFetch_LaterPageFailureDiscardsAccumulatedRecords(t *testing.T) {
	m := new(mockProblemsClient)
	m.On("GetProblemsPage", mock.Anything, pageQuery(1)).
		Return(&api.ProblemsPage{TotalCount: total(800), Problems: problems(0, 500)}, nil).Once()
	m.On("GetProblemsPage", mock.Anything, pageQuery(2)).
		Return(nil, &domain.SourceError{StatusCode: 503, Body: "unavailable"}).Once()

	records, err := NewFetcher(m).Fetch(context.Background(), query)

	assert.Nil(t, records)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	m.AssertNumberOfCalls(t, "GetProblemsPage", 2)
}

func TestSelector(t *testing.T) {
	assert.Equal(t, `managementZones("Production EU")`, Selector("Production EU"))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "fetching", StateFetching.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "aborted", StateAborted.String())
}
