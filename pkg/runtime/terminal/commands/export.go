package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/problem-report/pkg/models/domain"
	"github.com/de-tools/problem-report/pkg/services/config"
	"github.com/de-tools/problem-report/pkg/services/report"
	"github.com/de-tools/problem-report/pkg/services/timecodec"
	"github.com/de-tools/problem-report/pkg/store/client"
	"github.com/de-tools/problem-report/pkg/store/sink"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// SummaryHandler receives the result of a successful export.
type SummaryHandler interface {
	Handle(result *report.Result) error
}

type ExportCmd struct {
	settingsPath string
	profilesPath string
	profile      string
	url          string
	fromDate     string
	fromTime     string
	toDate       string
	toTime       string
	zone         string
	token        string
	output       string
	timezone     string
	insecure     bool
	debug        bool

	logger   zerolog.Logger
	reporter SummaryHandler
}

func NewExportCmd(logger zerolog.Logger, reporter SummaryHandler) *cobra.Command {
	ec := &ExportCmd{logger: logger, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch problems for a management zone and write the spreadsheet report",
		RunE:  ec.run,
	}

	cmd.Flags().StringVar(&ec.settingsPath, "config", "", "Path to a settings file (yaml, toml or json)")
	cmd.Flags().StringVar(&ec.profilesPath, "profiles", config.DefaultProfilesPath(), "Path to the credential profiles file")
	cmd.Flags().StringVar(&ec.profile, "profile", "", "Credential profile to use")
	cmd.Flags().StringVar(&ec.url, "url", "", "Problems API URL, e.g. https://<env-id>.live.dynatrace.com/api/v2/problems")
	cmd.Flags().StringVar(&ec.fromDate, "from-date", "", "Start date (YYYY-MM-DD or YYYY-MM-DD HH:MM)")
	cmd.Flags().StringVar(&ec.fromTime, "from-time", "", "Start time (HH:MM, default "+timecodec.DefaultFromClock+")")
	cmd.Flags().StringVar(&ec.toDate, "to-date", "", "End date (YYYY-MM-DD or YYYY-MM-DD HH:MM)")
	cmd.Flags().StringVar(&ec.toTime, "to-time", "", "End time (HH:MM, default "+timecodec.DefaultToClock+")")
	cmd.Flags().StringVar(&ec.zone, "zone", "", "Management zone name, e.g. Production")
	cmd.Flags().StringVar(&ec.token, "token", "", "API token")
	cmd.Flags().StringVarP(&ec.output, "output", "o", "", "Destination path or s3://bucket/key")
	cmd.Flags().StringVar(&ec.timezone, "timezone", "", "Time zone used to read the dates (default: host zone)")
	cmd.Flags().BoolVar(&ec.insecure, "insecure", false, "Skip TLS certificate verification")
	cmd.Flags().BoolVar(&ec.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (ec *ExportCmd) run(cmd *cobra.Command, _ []string) error {
	logger := ec.logger
	if ec.debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}
	ctx := logger.WithContext(cmd.Context())

	settings, err := config.LoadSettings(ec.settingsPath)
	if err != nil {
		return err
	}
	if err := ec.applyProfile(ctx); err != nil {
		return err
	}
	ec.applySettings(settings)

	loc, err := timecodec.LoadLocation(ec.timezone)
	if err != nil {
		return err
	}
	if loc.String() == "Local" {
		logger.Warn().Msg("dates are read in the host time zone, pass --timezone to pin one")
	}

	timeout := settings.Source.Timeout
	insecure := ec.insecure || settings.Source.InsecureSkipVerify
	ctrl := report.NewController(
		timecodec.New(loc),
		func(baseURL, token string) (client.ProblemsClient, error) {
			return client.NewProblemsClient(baseURL, token, client.Options{
				Timeout:            timeout,
				InsecureSkipVerify: insecure,
			})
		},
		report.DefaultSinkResolver(sink.S3Config{
			Endpoint:        settings.S3.Endpoint,
			Profile:         settings.S3.Profile,
			AccessKeyID:     settings.S3.AccessKeyID,
			SecretAccessKey: settings.S3.SecretAccessKey,
			Region:          settings.S3.Region,
			UseSSL:          settings.S3.UseSSL,
		}),
	)

	result, err := ctrl.Export(ctx, ec.params(), ec.output)
	if err != nil {
		logger.Error().Err(err).Msg("export failed")
		return errors.New(domain.Message(err))
	}

	return ec.reporter.Handle(result)
}

// applyProfile fills connection fields not given as flags.
func (ec *ExportCmd) applyProfile(ctx context.Context) error {
	if ec.profile == "" {
		return nil
	}
	registry, err := config.NewRegistry(ec.profilesPath)
	if err != nil {
		return fmt.Errorf("failed to load profiles from %s: %w", ec.profilesPath, err)
	}
	p, err := registry.GetProfile(ctx, ec.profile)
	if err != nil {
		return err
	}
	ec.url = firstNonEmpty(ec.url, p.URL)
	ec.token = firstNonEmpty(ec.token, p.Token)
	ec.zone = firstNonEmpty(ec.zone, p.ManagementZone)
	return nil
}

func (ec *ExportCmd) applySettings(s *config.Settings) {
	ec.url = firstNonEmpty(ec.url, s.Source.URL)
	ec.token = firstNonEmpty(ec.token, s.Source.Token)
	ec.zone = firstNonEmpty(ec.zone, s.Report.ManagementZone)
	ec.output = firstNonEmpty(ec.output, s.Report.Output)
	ec.timezone = firstNonEmpty(ec.timezone, s.Report.Timezone)
}

func (ec *ExportCmd) params() domain.ReportParams {
	return domain.ReportParams{
		SourceURL:      ec.url,
		FromDate:       ec.fromDate,
		FromTime:       ec.fromTime,
		ToDate:         ec.toDate,
		ToTime:         ec.toTime,
		ManagementZone: ec.zone,
		Token:          ec.token,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
