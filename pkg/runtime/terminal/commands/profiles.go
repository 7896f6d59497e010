package commands

import (
	"fmt"
	"strings"

	"github.com/de-tools/problem-report/pkg/services/config"
	"github.com/spf13/cobra"
)

type ProfilesCmd struct {
	profilesPath string
}

func NewProfilesCmd() *cobra.Command {
	pc := &ProfilesCmd{}
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List configured credential profiles",
		RunE:  pc.run,
	}

	cmd.Flags().StringVar(&pc.profilesPath, "profiles", config.DefaultProfilesPath(), "Path to the credential profiles file")

	return cmd
}

func (pc *ProfilesCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	registry, err := config.NewRegistry(pc.profilesPath)
	if err != nil {
		return fmt.Errorf("failed to load profiles from %s: %w", pc.profilesPath, err)
	}

	profiles, err := registry.GetProfiles(ctx)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No profiles found in %s\n", pc.profilesPath)
		return nil
	}

	var lines []string
	for _, name := range profiles {
		p, err := registry.GetProfile(ctx, name)
		if err != nil {
			return err
		}
		lines = append(lines, fmt.Sprintf("%s\t%s", p.Name, p.URL))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Profiles in %s:\n%s\n", pc.profilesPath, strings.Join(lines, "\n"))
	return nil
}
