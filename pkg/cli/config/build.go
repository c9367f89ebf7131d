package config

import (
	"github.com/urfave/cli/v3"

	"github.com/cytomine/stevedore/pkg/domain/model"
)

// Build holds the build-parameter file location.
type Build struct {
	ConfigPath string
}

// Flags returns CLI flags for build configuration
func (c *Build) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "build-config",
			Usage:       "Path to the TOML build-parameter file (defaults apply when omitted)",
			Destination: &c.ConfigPath,
			Sources:     cli.EnvVars("STEVEDORE_BUILD_CONFIG"),
		},
	}
}

// Configure loads the build-parameter set.
func (c *Build) Configure() (*model.BuildConfig, error) {
	return model.LoadBuildConfig(c.ConfigPath)
}
