package terminal

import (
	"io"
	"os"

	"github.com/de-tools/problem-report/pkg/runtime/terminal/commands"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	reporter *Reporter
	output   io.Writer
	logger   zerolog.Logger
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	Logger *zerolog.Logger
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	cli := &CLI{
		reporter: NewReporter(opts.Output),
		output:   opts.Output,
		logger:   logger,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "problem-report",
		Short:         "Export monitoring problems to a spreadsheet report",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(cli.output)

	cmd.AddCommand(commands.NewExportCmd(cli.logger, cli.reporter))
	cmd.AddCommand(commands.NewProfilesCmd())

	return cmd
}
