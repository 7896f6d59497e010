package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

const ProfilesFileName = ".problemreport"

// Profile holds the connection details of one monitoring environment.
type Profile struct {
	Name           string
	URL            string
	Token          string
	ManagementZone string
}

type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, name string) (*Profile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{cfg: cfg}, nil
}

// DefaultProfilesPath returns $HOME/.problemreport.
func DefaultProfilesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ProfilesFileName
	}
	return filepath.Join(home, ProfilesFileName)
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, name string) (*Profile, error) {
	section, err := cr.cfg.GetSection(name)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", name)
	}

	return &Profile{
		Name:           name,
		URL:            section.Key("url").String(),
		Token:          section.Key("token").String(),
		ManagementZone: section.Key("management_zone").String(),
	}, nil
}
