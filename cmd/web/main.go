package main

import (
	"fmt"
	"net"
	"os"

	"github.com/de-tools/problem-report/pkg/server"
	"github.com/de-tools/problem-report/pkg/services/config"
	"github.com/de-tools/problem-report/pkg/services/report"
	"github.com/de-tools/problem-report/pkg/services/timecodec"
	"github.com/de-tools/problem-report/pkg/store/client"
	"github.com/de-tools/problem-report/pkg/store/sink"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var settingsPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web front end for problem reports",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&settingsPath, "config", "c", "",
		"Path to a settings file (yaml, toml or json)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loc, err := timecodec.LoadLocation(settings.Report.Timezone)
	if err != nil {
		return err
	}
	logger.Info().Str("timezone", loc.String()).Msg("form dates are read in this time zone")

	ctrl := report.NewController(
		timecodec.New(loc),
		func(baseURL, token string) (client.ProblemsClient, error) {
			return client.NewProblemsClient(baseURL, token, client.Options{
				Timeout:            settings.Source.Timeout,
				InsecureSkipVerify: settings.Source.InsecureSkipVerify,
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

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		logger.Error().Msgf("Missing server configuration from .env file")
		os.Exit(1)
	}

	registry := server.NewRegistry()

	api := server.NewWebAPI(logger, server.Config{
		Addr: net.JoinHostPort(host, port),
		Dependencies: server.Dependencies{
			Controller: ctrl,
			Registry:   registry,
		},
	})
	return api.Start()
}
