package report

import (
	"context"
	"fmt"

	"github.com/de-tools/problem-report/pkg/adapters"
	"github.com/de-tools/problem-report/pkg/models/domain"
	"github.com/de-tools/problem-report/pkg/runtime/export"
	"github.com/de-tools/problem-report/pkg/services/aggregate"
	"github.com/de-tools/problem-report/pkg/services/problems"
	"github.com/de-tools/problem-report/pkg/services/timecodec"
	"github.com/de-tools/problem-report/pkg/store/client"
	"github.com/de-tools/problem-report/pkg/store/sink"
	"github.com/rs/zerolog"
)

// ClientFactory opens a problems client for one run. The token lives only as
// long as the returned client.
type ClientFactory func(baseURL, token string) (client.ProblemsClient, error)

// SinkResolver picks where a destination is written.
type SinkResolver func(destination string) (sink.Sink, error)

type Controller interface {
	// Generate fetches, shapes and encodes a report without persisting it.
	Generate(ctx context.Context, params domain.ReportParams) (*Result, error)
	// Export runs Generate and stores the document at destination.
	Export(ctx context.Context, params domain.ReportParams, destination string) (*Result, error)
}

type Result struct {
	Window         domain.TimeWindow
	ManagementZone string
	Rows           []domain.NormalizedRow
	Aggregates     []domain.AggregateRow
	Report         *domain.Report
	Document       []byte
	Location       string
}

type controller struct {
	codec      *timecodec.Codec
	newClient  ClientFactory
	resolveDst SinkResolver
}

func NewController(codec *timecodec.Codec, newClient ClientFactory, resolveDst SinkResolver) Controller {
	if codec == nil {
		codec = timecodec.New(nil)
	}
	return &controller{
		codec:      codec,
		newClient:  newClient,
		resolveDst: resolveDst,
	}
}

func (c *controller) Generate(ctx context.Context, params domain.ReportParams) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	if err := params.Validate(); err != nil {
		return nil, err
	}

	window, err := c.codec.Window(params)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int64("from", window.From).
		Int64("to", window.To).
		Str("timezone", window.Location).
		Str("zone", params.ManagementZone).
		Msg("resolved report window")
	if window.From > window.To {
		logger.Warn().Msg("from is after to, passing the window to the source unchanged")
	}

	source, err := c.newClient(params.SourceURL, params.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create problems client: %w", err)
	}

	records, err := problems.NewFetcher(source).Fetch(ctx, problems.Query{
		Window:         window,
		ManagementZone: params.ManagementZone,
	})
	if err != nil {
		return nil, err
	}

	rows := adapters.MapProblemsToNormalizedRows(records)
	aggregates := aggregate.ByImpactAndSeverity(rows)

	report, err := export.Build(rows, aggregates)
	if err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}
	document, err := export.EncodeBytes(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	return &Result{
		Window:         window,
		ManagementZone: params.ManagementZone,
		Rows:           rows,
		Aggregates:     aggregates,
		Report:         report,
		Document:       document,
	}, nil
}

func (c *controller) Export(ctx context.Context, params domain.ReportParams, destination string) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	if destination == "" {
		return nil, &domain.MissingFieldError{Fields: []string{"output"}}
	}

	result, err := c.Generate(ctx, params)
	if err != nil {
		return nil, err
	}

	target, err := c.resolveDst(destination)
	if err != nil {
		return nil, &domain.PersistError{Destination: destination, Err: err}
	}
	location, err := target.Put(ctx, destination, result.Document, export.ContentType)
	if err != nil {
		return nil, &domain.PersistError{Destination: destination, Err: err}
	}
	result.Location = location

	logger.Info().
		Str("location", location).
		Int("problems", len(result.Rows)).
		Int("groups", len(result.Aggregates)).
		Msg("report exported")
	return result, nil
}

// DefaultSinkResolver writes s3:// destinations through an object store sink
// built from cfg and everything else to the local file system.
func DefaultSinkResolver(cfg sink.S3Config) SinkResolver {
	return func(destination string) (sink.Sink, error) {
		if sink.IsObjectStorage(destination) {
			if cfg.Endpoint == "" {
				return sink.NewAWSSink(cfg), nil
			}
			return sink.NewS3Sink(cfg)
		}
		return sink.NewFileSink(), nil
	}
}
