package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/de-tools/problem-report/pkg/models/api"
	"github.com/de-tools/problem-report/pkg/models/domain"
	"github.com/rs/zerolog"
)

const defaultTimeout = 60 * time.Second

// PageQuery is the set of query parameters sent with every page request.
type PageQuery struct {
	From            int64
	To              int64
	ProblemSelector string
	Page            int
	PageSize        int
}

// ProblemsClient returns one page of problems per call.
type ProblemsClient interface {
	GetProblemsPage(ctx context.Context, query PageQuery) (*api.ProblemsPage, error)
}

type Options struct {
	Timeout            time.Duration
	InsecureSkipVerify bool
	HTTPClient         *http.Client
}

type problemsClient struct {
	baseURL *url.URL
	token   string
	http    *http.Client
}

func NewProblemsClient(baseURL, token string, opts Options) (ProblemsClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid source url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid source url %q: scheme and host are required", baseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
		if opts.InsecureSkipVerify {
			httpClient.Transport = &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}
	}

	return &problemsClient{
		baseURL: u,
		token:   token,
		http:    httpClient,
	}, nil
}

func (c *problemsClient) GetProblemsPage(ctx context.Context, query PageQuery) (*api.ProblemsPage, error) {
	logger := zerolog.Ctx(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(query), nil)
	if err != nil {
		return nil, &domain.SourceError{Err: fmt.Errorf("failed to create problems request: %w", err)}
	}
	req.Header.Set("Authorization", "Api-Token "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn().Err(err).Int("page", query.Page).Msg("problems request failed")
		return nil, &domain.SourceError{Err: err}
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close response body")
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.SourceError{Err: fmt.Errorf("failed to read problems response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn().Int("status", resp.StatusCode).Int("page", query.Page).Msg("problems request rejected")
		return nil, &domain.SourceError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var page api.ProblemsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &domain.SourceError{Err: fmt.Errorf("failed to unmarshal problems page: %w", err)}
	}

	return &page, nil
}

// pageURL keeps any query parameters already present on the base URL.
func (c *problemsClient) pageURL(query PageQuery) string {
	u := *c.baseURL
	values := u.Query()
	values.Set("from", strconv.FormatInt(query.From, 10))
	values.Set("to", strconv.FormatInt(query.To, 10))
	values.Set("problemSelector", query.ProblemSelector)
	values.Set("page", strconv.Itoa(query.Page))
	values.Set("pageSize", strconv.Itoa(query.PageSize))
	u.RawQuery = values.Encode()
	return u.String()
}
