package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "PROBLEMREPORT"

type Settings struct {
	Source SourceSettings `mapstructure:"source"`
	Report ReportSettings `mapstructure:"report"`
	S3     S3Settings     `mapstructure:"s3"`
}

type SourceSettings struct {
	URL                string        `mapstructure:"url"`
	Token              string        `mapstructure:"token"`
	Timeout            time.Duration `mapstructure:"timeout"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
}

type ReportSettings struct {
	ManagementZone string `mapstructure:"management_zone"`
	Timezone       string `mapstructure:"timezone"`
	Output         string `mapstructure:"output"`
}

type S3Settings struct {
	Endpoint        string `mapstructure:"endpoint"`
	Profile         string `mapstructure:"profile"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

var defaults = map[string]interface{}{
	"source.url":                  "",
	"source.token":                "",
	"source.timeout":              60 * time.Second,
	"source.insecure_skip_verify": false,
	"report.management_zone":      "",
	"report.timezone":             "Local",
	"report.output":               "dynatrace_problems.xlsx",
	"s3.endpoint":                 "",
	"s3.profile":                  "",
	"s3.access_key_id":            "",
	"s3.secret_access_key":        "",
	"s3.region":                   "",
	"s3.use_ssl":                  true,
}

// LoadSettings reads the optional settings file at path and applies
// PROBLEMREPORT_* environment overrides, e.g. PROBLEMREPORT_SOURCE_TOKEN.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return &s, nil
}
